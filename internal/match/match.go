package match

import "github.com/cdzombak/plex-meta-migrator/internal/services/plex"

// Stage names how a pair was matched.
type Stage string

const (
	StageExact      Stage = "exact"
	StageNormalized Stage = "normalized"
)

// Pair is one source item matched to one destination item via a filename.
type Pair struct {
	Source      plex.Item
	Destination plex.Item
	Filename    string
	Stage       Stage
}

// Options controls the join.
type Options struct {
	// NormalizedFallback enables the second stage over normalized filenames.
	NormalizedFallback bool
}

// Result is the outcome of joining two libraries.
type Result struct {
	Pairs           []Pair
	UnmatchedSource []plex.Item
}

// Libraries joins source items against a destination index. Each distinct
// source/destination rating-key pair appears at most once; source items whose
// filenames all miss end up in UnmatchedSource.
func Libraries(source []plex.Item, dest *Index, opts Options) Result {
	var result Result
	seen := make(map[[2]string]struct{})

	for _, item := range source {
		matched := false
		for _, filename := range item.Filenames() {
			destItem, ok := dest.Exact(filename)
			stage := StageExact
			if !ok && opts.NormalizedFallback {
				destItem, ok = dest.Normalized(filename)
				stage = StageNormalized
			}
			if !ok {
				continue
			}
			matched = true
			key := [2]string{item.RatingKey, destItem.RatingKey}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result.Pairs = append(result.Pairs, Pair{
				Source:      item,
				Destination: destItem,
				Filename:    filename,
				Stage:       stage,
			})
		}
		if !matched {
			result.UnmatchedSource = append(result.UnmatchedSource, item)
		}
	}
	return result
}

// PlaylistResult is the outcome of matching playlist items against a library.
type PlaylistResult struct {
	// Matched holds destination items in playlist order.
	Matched []plex.Item
	// Unmatched holds the playlist items that missed.
	Unmatched []plex.Item
}

// PlaylistItems matches playlist entries against a destination index,
// preserving playlist order. The first filename of an entry that hits wins.
func PlaylistItems(playlistItems []plex.Item, dest *Index, opts Options) PlaylistResult {
	var result PlaylistResult
	for _, item := range playlistItems {
		matched := false
		for _, filename := range item.Filenames() {
			destItem, ok := dest.Exact(filename)
			if !ok && opts.NormalizedFallback {
				destItem, ok = dest.Normalized(filename)
			}
			if ok {
				result.Matched = append(result.Matched, destItem)
				matched = true
				break
			}
		}
		if !matched {
			result.Unmatched = append(result.Unmatched, item)
		}
	}
	return result
}
