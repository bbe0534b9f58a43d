package migrate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cdzombak/plex-meta-migrator/internal/match"
	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

func playlistItem(ratingKey, file string) plex.Item {
	return plex.Item{
		RatingKey: ratingKey,
		Type:      "movie",
		Media:     []plex.Media{{Parts: []plex.Part{{File: file}}}},
	}
}

func TestNewPlaylistPlanDefaultsTitleAndMatchesInOrder(t *testing.T) {
	source := plex.Playlist{RatingKey: "500", Title: "Friday Night", PlaylistType: "video", LeafCount: 3}
	items := []plex.Item{
		playlistItem("p1", "/old/Ronin.1998.mkv"),
		playlistItem("p2", "/old/Heat.1995.mkv"),
		playlistItem("p3", "/old/Missing.mkv"),
	}
	dest := match.BuildIndex([]plex.Item{
		playlistItem("d1", "/new/Heat.1995.mkv"),
		playlistItem("d2", "/new/Ronin.1998.mkv"),
	})

	plan := NewPlaylistPlan(source, "  ", items, dest, match.Options{})
	if plan.Title != "Friday Night" {
		t.Fatalf("expected source title fallback, got %q", plan.Title)
	}
	if len(plan.Result.Matched) != 2 || plan.Result.Matched[0].RatingKey != "d2" {
		t.Fatalf("unexpected matched items: %+v", plan.Result.Matched)
	}
	if len(plan.Result.Unmatched) != 1 || plan.Result.Unmatched[0].RatingKey != "p3" {
		t.Fatalf("unexpected unmatched items: %+v", plan.Result.Unmatched)
	}
}

func TestPlaylistPlanApplyCreatesPlaylist(t *testing.T) {
	var createQuery url.Values
	dst := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<MediaContainer machineIdentifier="dest-machine"/>`))
		case r.URL.Path == "/playlists" && r.Method == http.MethodPost:
			createQuery = r.URL.Query()
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<MediaContainer><Playlist ratingKey="901" title="Friday Night" playlistType="video" leafCount="2"/></MediaContainer>`))
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer dst.Close()

	plan := PlaylistPlan{
		Source: plex.Playlist{Title: "Friday Night", PlaylistType: "video"},
		Title:  "Friday Night",
		Result: match.PlaylistResult{
			Matched: []plex.Item{{RatingKey: "d2"}, {RatingKey: "d1"}},
		},
	}

	created, err := plan.Apply(context.Background(), plex.NewServerClient(dst.URL, "tok"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if created.RatingKey != "901" || created.LeafCount != 2 {
		t.Fatalf("unexpected playlist: %+v", created)
	}
	wantURI := "server://dest-machine/com.plexapp.plugins.library/library/metadata/d2,d1"
	if got := createQuery.Get("uri"); got != wantURI {
		t.Fatalf("unexpected uri: got %q want %q", got, wantURI)
	}
}

func TestPlaylistPlanApplyWithNoMatches(t *testing.T) {
	plan := PlaylistPlan{Source: plex.Playlist{Title: "Empty"}, Title: "Empty"}
	_, err := plan.Apply(context.Background(), plex.NewServerClient("http://unused.local", "tok"))
	if err == nil {
		t.Fatal("expected error when no items matched")
	}
}
