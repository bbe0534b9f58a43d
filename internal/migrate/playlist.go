package migrate

import (
	"context"
	"strings"

	"github.com/cdzombak/plex-meta-migrator/internal/match"
	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

// PlaylistPlan is everything needed to recreate a playlist on the
// destination server.
type PlaylistPlan struct {
	Source plex.Playlist
	Title  string
	Result match.PlaylistResult
}

// NewPlaylistPlan matches the playlist's items against the destination index.
// An empty title falls back to the source playlist title.
func NewPlaylistPlan(source plex.Playlist, title string, items []plex.Item, dest *match.Index, opts match.Options) PlaylistPlan {
	if strings.TrimSpace(title) == "" {
		title = source.Title
	}
	return PlaylistPlan{
		Source: source,
		Title:  title,
		Result: match.PlaylistItems(items, dest, opts),
	}
}

// Apply creates the playlist on the destination server with the matched
// items in source playlist order.
func (p PlaylistPlan) Apply(ctx context.Context, dest *plex.ServerClient) (*plex.Playlist, error) {
	keys := make([]string, 0, len(p.Result.Matched))
	for _, item := range p.Result.Matched {
		keys = append(keys, item.RatingKey)
	}
	return dest.CreatePlaylist(ctx, p.Title, p.Source.PlaylistType, keys)
}
