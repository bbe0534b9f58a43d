package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cdzombak/plex-meta-migrator/internal/services"
)

const sectionItemsXML = `<MediaContainer size="2">
  <Video ratingKey="101" type="movie" title="Heat" year="1995" thumb="/library/metadata/101/thumb/1" summary="Crime saga.">
    <Media><Part file="/data/movies/Heat (1995)/Heat.1995.mkv"/></Media>
    <Field locked="1" name="title"/>
    <Field locked="1" name="genre"/>
    <Genre tag="Crime"/>
    <Genre tag="Thriller"/>
  </Video>
  <Video ratingKey="102" type="movie" title="Ronin" year="1998">
    <Media><Part file="/data/movies/Ronin (1998)/Ronin.1998.mkv"/></Media>
  </Video>
</MediaContainer>`

func TestSectionItemsParsesMediaPartsAndFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections/1/all" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Plex-Token"); got != "tok" {
			t.Fatalf("missing token header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(sectionItemsXML))
	}))
	defer server.Close()

	client := NewServerClient(server.URL, "tok", WithClientIdentifier("cid"))
	items, err := client.SectionItems(context.Background(), "1")
	if err != nil {
		t.Fatalf("SectionItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	heat := items[0]
	if got := heat.Filenames(); len(got) != 1 || got[0] != "Heat.1995.mkv" {
		t.Fatalf("unexpected filenames: %v", got)
	}
	if heat.DisplayName() != "Heat (1995)" {
		t.Fatalf("unexpected display name: %q", heat.DisplayName())
	}
	if len(heat.Fields) != 2 || !heat.Fields[0].Locked || heat.Fields[0].Name != "title" {
		t.Fatalf("unexpected fields: %+v", heat.Fields)
	}
	if len(heat.Genres) != 2 || heat.Genres[1].Tag != "Thriller" {
		t.Fatalf("unexpected genres: %+v", heat.Genres)
	}
	if heat.TypeID() != 1 {
		t.Fatalf("unexpected type id: %d", heat.TypeID())
	}
}

func TestSectionByTitleCaseInsensitive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<MediaContainer><Directory key="3" type="movie" title="Movies"/><Directory key="4" type="show" title="TV Shows"/></MediaContainer>`))
	}))
	defer server.Close()

	client := NewServerClient(server.URL, "tok")
	section, err := client.SectionByTitle(context.Background(), "movies")
	if err != nil {
		t.Fatalf("SectionByTitle: %v", err)
	}
	if section.Key != "3" {
		t.Fatalf("unexpected section key: %q", section.Key)
	}

	_, err = client.SectionByTitle(context.Background(), "Music")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditItemFieldsBuildsEditQuery(t *testing.T) {
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/library/sections/3/all" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		captured = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	params := url.Values{}
	params.Set("title.value", "Heat")
	params.Set("title.locked", "1")

	client := NewServerClient(server.URL, "tok")
	if err := client.EditItemFields(context.Background(), "3", 1, "101", params); err != nil {
		t.Fatalf("EditItemFields: %v", err)
	}

	if captured.Get("type") != "1" || captured.Get("id") != "101" {
		t.Fatalf("missing type/id params: %v", captured)
	}
	if captured.Get("title.value") != "Heat" || captured.Get("title.locked") != "1" {
		t.Fatalf("missing field params: %v", captured)
	}
}

func TestUnauthorizedSurfacesSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewServerClient(server.URL, "bad")
	_, err := client.Sections(context.Background())
	if !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCreatePlaylistUsesMachineIdentifierURI(t *testing.T) {
	var createQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<MediaContainer friendlyName="Old Server" machineIdentifier="abc123" version="1.40"/>`))
		case r.URL.Path == "/playlists" && r.Method == http.MethodPost:
			createQuery = r.URL.Query()
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<MediaContainer><Playlist ratingKey="900" title="Favourites" playlistType="video" smart="0" leafCount="2"/></MediaContainer>`))
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewServerClient(server.URL, "tok")
	playlist, err := client.CreatePlaylist(context.Background(), "Favourites", "video", []string{"101", "102"})
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if playlist.RatingKey != "900" || playlist.LeafCount != 2 {
		t.Fatalf("unexpected playlist: %+v", playlist)
	}

	wantURI := "server://abc123/com.plexapp.plugins.library/library/metadata/101,102"
	if got := createQuery.Get("uri"); got != wantURI {
		t.Fatalf("unexpected uri: got %q want %q", got, wantURI)
	}
	if createQuery.Get("smart") != "0" {
		t.Fatalf("expected smart=0, got %q", createQuery.Get("smart"))
	}
}

func TestImageURLCarriesToken(t *testing.T) {
	client := NewServerClient("http://plex.local:32400", "secret")
	got := client.ImageURL("/library/metadata/101/thumb/1")
	want := "http://plex.local:32400/library/metadata/101/thumb/1?X-Plex-Token=secret"
	if got != want {
		t.Fatalf("unexpected image url: got %q want %q", got, want)
	}
	if client.ImageURL("") != "" {
		t.Fatal("expected empty url for empty path")
	}
}
