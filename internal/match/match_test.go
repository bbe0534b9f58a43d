package match

import (
	"testing"

	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

func item(ratingKey, title string, files ...string) plex.Item {
	it := plex.Item{RatingKey: ratingKey, Type: "movie", Title: title}
	for _, file := range files {
		it.Media = append(it.Media, plex.Media{Parts: []plex.Part{{File: file}}})
	}
	return it
}

func TestLibrariesExactMatch(t *testing.T) {
	source := []plex.Item{
		item("s1", "Heat", "/old/movies/Heat.1995.mkv"),
		item("s2", "Ronin", "/old/movies/Ronin.1998.mkv"),
		item("s3", "Orphan", "/old/movies/Orphan.2009.mkv"),
	}
	dest := BuildIndex([]plex.Item{
		item("d1", "Heat", "/new/films/Heat.1995.mkv"),
		item("d2", "Ronin", "/new/films/Ronin.1998.mkv"),
	})

	result := Libraries(source, dest, Options{})
	if len(result.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(result.Pairs))
	}
	if result.Pairs[0].Source.RatingKey != "s1" || result.Pairs[0].Destination.RatingKey != "d1" {
		t.Fatalf("unexpected first pair: %+v", result.Pairs[0])
	}
	if result.Pairs[0].Stage != StageExact {
		t.Fatalf("expected exact stage, got %s", result.Pairs[0].Stage)
	}
	if len(result.UnmatchedSource) != 1 || result.UnmatchedSource[0].RatingKey != "s3" {
		t.Fatalf("unexpected unmatched: %+v", result.UnmatchedSource)
	}
}

func TestLibrariesNormalizedFallback(t *testing.T) {
	source := []plex.Item{item("s1", "Amelie", "/old/movies/Amélie.2001.mkv")}
	// Same name, decomposed unicode and different case.
	dest := BuildIndex([]plex.Item{item("d1", "Amelie", "/new/films/AMÉLIE.2001.MKV")})

	result := Libraries(source, dest, Options{})
	if len(result.Pairs) != 0 {
		t.Fatal("exact stage should miss across composition and case differences")
	}

	result = Libraries(source, dest, Options{NormalizedFallback: true})
	if len(result.Pairs) != 1 {
		t.Fatalf("expected normalized match, got %+v", result)
	}
	if result.Pairs[0].Stage != StageNormalized {
		t.Fatalf("expected normalized stage, got %s", result.Pairs[0].Stage)
	}
}

func TestLibrariesDeduplicatesPairs(t *testing.T) {
	// Two parts of the same source item both resolve to the same destination.
	source := []plex.Item{item("s1", "Heat", "/old/Heat.Part1.mkv", "/old/Heat.Part2.mkv")}
	dest := BuildIndex([]plex.Item{item("d1", "Heat", "/new/Heat.Part1.mkv", "/new/Heat.Part2.mkv")})

	result := Libraries(source, dest, Options{})
	if len(result.Pairs) != 1 {
		t.Fatalf("expected deduplicated single pair, got %d", len(result.Pairs))
	}
}

func TestLibrariesLastWriterWinsOnCollision(t *testing.T) {
	dest := BuildIndex([]plex.Item{
		item("d1", "Heat copy A", "/new/a/Heat.mkv"),
		item("d2", "Heat copy B", "/new/b/Heat.mkv"),
	})

	got, ok := dest.Exact("Heat.mkv")
	if !ok || got.RatingKey != "d2" {
		t.Fatalf("expected later item to win collision, got %+v ok=%v", got, ok)
	}
}

func TestPlaylistItemsPreservesOrder(t *testing.T) {
	playlist := []plex.Item{
		item("p1", "Track B", "/music/b.flac"),
		item("p2", "Track A", "/music/a.flac"),
		item("p3", "Track Z", "/music/z.flac"),
	}
	dest := BuildIndex([]plex.Item{
		item("d1", "Track A", "/library/a.flac"),
		item("d2", "Track B", "/library/b.flac"),
	})

	result := PlaylistItems(playlist, dest, Options{})
	if len(result.Matched) != 2 {
		t.Fatalf("expected 2 matched, got %d", len(result.Matched))
	}
	if result.Matched[0].RatingKey != "d2" || result.Matched[1].RatingKey != "d1" {
		t.Fatalf("playlist order not preserved: %+v", result.Matched)
	}
	if len(result.Unmatched) != 1 || result.Unmatched[0].RatingKey != "p3" {
		t.Fatalf("unexpected unmatched: %+v", result.Unmatched)
	}
}

func TestItemsWithoutFilesAreUnmatched(t *testing.T) {
	source := []plex.Item{{RatingKey: "s1", Type: "show", Title: "A Show"}}
	dest := BuildIndex(nil)

	result := Libraries(source, dest, Options{NormalizedFallback: true})
	if len(result.Pairs) != 0 || len(result.UnmatchedSource) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
