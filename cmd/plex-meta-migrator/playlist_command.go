package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cdzombak/plex-meta-migrator/internal/history"
	"github.com/cdzombak/plex-meta-migrator/internal/match"
	"github.com/cdzombak/plex-meta-migrator/internal/migrate"
	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

const playlistPreviewItems = 10

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlags  serverFlags
		destFlags    serverFlags
		playlistFlag string
		titleFlag    string
		applyFlag    bool
		jsonFlag     bool
	)

	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Recreate a playlist on another server using matched items",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			runCtx := cmd.Context()
			logger := ctx.log()
			startedAt := time.Now().UTC()

			source, err := resolveServer(runCtx, cmd, ctx, "source", sourceFlags, cfg.Source)
			if err != nil {
				return err
			}
			playlist, err := pickPlaylist(runCtx, cmd, source, playlistFlag)
			if err != nil {
				return err
			}

			dest, err := resolveServer(runCtx, cmd, ctx, "dest", destFlags, cfg.Destination)
			if err != nil {
				return err
			}
			if err := dest.resolveSection(runCtx, cmd, "dest", firstNonEmpty(destFlags.library, cfg.Destination.Library)); err != nil {
				return err
			}

			logger.Info("loading playlist",
				slog.String("playlist", playlist.Title),
				slog.String("dest", dest.Label()))

			items, err := source.Client.PlaylistItems(runCtx, playlist.RatingKey)
			if err != nil {
				return fmt.Errorf("load playlist items: %w", err)
			}
			destItems, err := dest.Client.SectionItems(runCtx, dest.Section.Key)
			if err != nil {
				return fmt.Errorf("load destination library: %w", err)
			}

			opts := match.Options{NormalizedFallback: cfg.Matching.NormalizedFallback}
			plan := migrate.NewPlaylistPlan(*playlist, titleFlag, items, match.BuildIndex(destItems), opts)

			out := cmd.OutOrStdout()
			if jsonFlag {
				if err := writeJSON(cmd, playlistPreviewJSON(plan, dest)); err != nil {
					return err
				}
			} else {
				printPlaylistPreview(cmd, plan, dest)
			}

			apply := applyFlag
			if !apply && !jsonFlag && len(plan.Result.Matched) > 0 && interactive(cmd) {
				apply, err = confirmApply(cmd)
				if err != nil {
					return err
				}
			}

			errCount := 0
			migrated := 0
			if apply {
				if len(plan.Result.Matched) == 0 {
					return fmt.Errorf("no playlist items matched the destination library")
				}
				created, err := plan.Apply(runCtx, dest.Client)
				if err != nil {
					errCount = 1
					fmt.Fprintf(cmd.ErrOrStderr(), "create playlist failed: %v\n", err)
				} else {
					migrated = len(plan.Result.Matched)
					if !jsonFlag {
						fmt.Fprintf(out, "\nCreated playlist %q with %d items.\n", created.Title, migrated)
					}
				}
			} else if !jsonFlag {
				fmt.Fprintln(out, "\nDry run; no playlist created. Re-run with --apply to create it.")
			}

			recordRun(ctx, history.Run{
				Mode:          history.ModePlaylist,
				DryRun:        !apply,
				SourceLabel:   playlist.Title + " @ " + source.ServerName,
				DestLabel:     dest.Label(),
				MatchedItems:  len(plan.Result.Matched),
				MigratedItems: migrated,
				ErrorCount:    errCount,
				StartedAt:     startedAt,
				FinishedAt:    time.Now().UTC(),
			})
			if errCount > 0 {
				return fmt.Errorf("playlist migration finished with errors")
			}
			return nil
		},
	}

	addServerFlags(cmd, "source", &sourceFlags)
	addServerFlags(cmd, "dest", &destFlags)
	cmd.Flags().StringVar(&playlistFlag, "playlist", "", "Title of the source playlist to migrate")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Title for the new playlist (defaults to the source title)")
	cmd.Flags().BoolVar(&applyFlag, "apply", false, "Create the playlist on the destination server")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the preview as JSON")

	return cmd
}

// pickPlaylist resolves the playlist by title or interactively. Smart
// playlists are excluded; their contents are rule-driven, not item lists.
func pickPlaylist(ctx context.Context, cmd *cobra.Command, source *serverSelection, title string) (*plex.Playlist, error) {
	playlists, err := source.Client.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	regular := playlists[:0]
	for _, pl := range playlists {
		if !pl.Smart {
			regular = append(regular, pl)
		}
	}
	if len(regular) == 0 {
		return nil, fmt.Errorf("server %q has no regular playlists", source.ServerName)
	}

	if name := strings.TrimSpace(title); name != "" {
		for i := range regular {
			if strings.EqualFold(regular[i].Title, name) {
				return &regular[i], nil
			}
		}
		return nil, fmt.Errorf("no playlist named %q on %s", name, source.ServerName)
	}

	if !interactive(cmd) {
		return nil, fmt.Errorf("multiple playlists available; pass --playlist (stdin is not a terminal)")
	}

	labels := make([]string, len(regular))
	for i, pl := range regular {
		labels[i] = fmt.Sprintf("%s (%s, %d items)", pl.Title, pl.PlaylistType, pl.LeafCount)
	}
	idx, err := selectFromList(cmd, "playlist", labels)
	if err != nil {
		return nil, err
	}
	return &regular[idx], nil
}

func printPlaylistPreview(cmd *cobra.Command, plan migrate.PlaylistPlan, dest *serverSelection) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Playlist:    %s (%d items)\n", plan.Source.Title, len(plan.Result.Matched)+len(plan.Result.Unmatched))
	fmt.Fprintf(out, "Destination: %s\n", dest.Label())
	fmt.Fprintf(out, "New title:   %s\n", plan.Title)
	fmt.Fprintf(out, "Matched %d items, %d unmatched.\n\n", len(plan.Result.Matched), len(plan.Result.Unmatched))

	for i, item := range plan.Result.Matched {
		if i == playlistPreviewItems {
			fmt.Fprintf(out, "  ... and %d more\n", len(plan.Result.Matched)-playlistPreviewItems)
			break
		}
		fmt.Fprintf(out, "  %2d. %s\n", i+1, item.DisplayName())
	}

	if len(plan.Result.Unmatched) > 0 {
		fmt.Fprintf(out, "\nWarning: %d playlist items have no match in the destination library:\n", len(plan.Result.Unmatched))
		for i, item := range plan.Result.Unmatched {
			if i == playlistPreviewItems {
				fmt.Fprintf(out, "  ... and %d more\n", len(plan.Result.Unmatched)-playlistPreviewItems)
				break
			}
			fmt.Fprintf(out, "  - %s\n", item.DisplayName())
		}
	}
}

type playlistPreview struct {
	Playlist    string   `json:"playlist"`
	NewTitle    string   `json:"new_title"`
	Destination string   `json:"destination"`
	Matched     []string `json:"matched"`
	Unmatched   []string `json:"unmatched"`
}

func playlistPreviewJSON(plan migrate.PlaylistPlan, dest *serverSelection) playlistPreview {
	payload := playlistPreview{
		Playlist:    plan.Source.Title,
		NewTitle:    plan.Title,
		Destination: dest.Label(),
		Matched:     make([]string, 0, len(plan.Result.Matched)),
		Unmatched:   make([]string, 0, len(plan.Result.Unmatched)),
	}
	for _, item := range plan.Result.Matched {
		payload.Matched = append(payload.Matched, item.DisplayName())
	}
	for _, item := range plan.Result.Unmatched {
		payload.Unmatched = append(payload.Unmatched, item.DisplayName())
	}
	return payload
}
