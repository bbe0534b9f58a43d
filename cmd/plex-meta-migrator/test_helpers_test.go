package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakePlexServer serves just enough of the Plex Media Server API for the
// command tests: identity, one library section, item details, edit and
// playlist endpoints. Writes are recorded for assertions.
type fakePlexServer struct {
	t   *testing.T
	srv *httptest.Server

	name       string
	sectionXML string
	detailsXML map[string]string

	playlistsXML     string
	playlistItemsXML map[string]string

	mu       sync.Mutex
	edits    []url.Values
	uploads  []string
	creates  []url.Values
}

func newFakePlexServer(t *testing.T, name, sectionXML string) *fakePlexServer {
	t.Helper()
	f := &fakePlexServer{
		t:                t,
		name:             name,
		sectionXML:       sectionXML,
		detailsXML:       map[string]string{},
		playlistItemsXML: map[string]string{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakePlexServer) URL() string { return f.srv.URL }

func (f *fakePlexServer) recordedEdits() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.edits...)
}

func (f *fakePlexServer) recordedUploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func (f *fakePlexServer) recordedCreates() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.creates...)
}

func (f *fakePlexServer) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")
	path := r.URL.Path

	switch {
	case path == "/":
		fmt.Fprintf(w, `<MediaContainer friendlyName=%q machineIdentifier="machine-%s" version="1.41.0"/>`, f.name, f.name)
	case path == "/library/sections":
		fmt.Fprint(w, `<MediaContainer><Directory key="1" type="movie" title="Movies"/></MediaContainer>`)
	case path == "/library/sections/1/all" && r.Method == http.MethodGet:
		fmt.Fprint(w, f.sectionXML)
	case path == "/library/sections/1/all" && r.Method == http.MethodPut:
		f.mu.Lock()
		f.edits = append(f.edits, r.URL.Query())
		f.mu.Unlock()
	case path == "/playlists" && r.Method == http.MethodGet:
		fmt.Fprint(w, f.playlistsXML)
	case path == "/playlists" && r.Method == http.MethodPost:
		f.mu.Lock()
		f.creates = append(f.creates, r.URL.Query())
		f.mu.Unlock()
		fmt.Fprintf(w, `<MediaContainer><Playlist ratingKey="900" title=%q playlistType="video" smart="0" leafCount="1"/></MediaContainer>`, r.URL.Query().Get("title"))
	case strings.HasPrefix(path, "/playlists/") && strings.HasSuffix(path, "/items"):
		key := strings.TrimSuffix(strings.TrimPrefix(path, "/playlists/"), "/items")
		fmt.Fprint(w, f.playlistItemsXML[key])
	case strings.HasPrefix(path, "/library/metadata/") && (strings.HasSuffix(path, "/posters") || strings.HasSuffix(path, "/arts")):
		f.mu.Lock()
		f.uploads = append(f.uploads, path+"?url="+r.URL.Query().Get("url"))
		f.mu.Unlock()
	case strings.HasPrefix(path, "/library/metadata/"):
		key := strings.TrimPrefix(path, "/library/metadata/")
		body, ok := f.detailsXML[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	default:
		f.t.Errorf("fake plex server got unexpected request: %s %s", r.Method, path)
		w.WriteHeader(http.StatusNotFound)
	}
}

// writeTestConfig writes a config file pointing history and creds at the
// test's temp dir and returns its path.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`%s

[auth]
creds_file = %q

[history]
enabled = true
path = %q
`, extra, filepath.Join(base, "creds.json"), filepath.Join(base, "history.db"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
