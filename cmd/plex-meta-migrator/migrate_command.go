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

const unmatchedListLimit = 15

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlags serverFlags
		destFlags   serverFlags
		applyFlag   bool
		jsonFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy locked metadata from one library to its match in another",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			runCtx := cmd.Context()
			logger := ctx.log()
			startedAt := time.Now().UTC()

			source, err := resolveServer(runCtx, cmd, ctx, "source", sourceFlags, cfg.Source)
			if err != nil {
				return err
			}
			if err := source.resolveSection(runCtx, cmd, "source", firstNonEmpty(sourceFlags.library, cfg.Source.Library)); err != nil {
				return err
			}
			dest, err := resolveServer(runCtx, cmd, ctx, "dest", destFlags, cfg.Destination)
			if err != nil {
				return err
			}
			if err := dest.resolveSection(runCtx, cmd, "dest", firstNonEmpty(destFlags.library, cfg.Destination.Library)); err != nil {
				return err
			}

			logger.Info("loading libraries",
				slog.String("source", source.Label()),
				slog.String("dest", dest.Label()))

			sourceItems, err := source.Client.SectionItems(runCtx, source.Section.Key)
			if err != nil {
				return fmt.Errorf("load source library: %w", err)
			}
			destItems, err := dest.Client.SectionItems(runCtx, dest.Section.Key)
			if err != nil {
				return fmt.Errorf("load destination library: %w", err)
			}

			opts := match.Options{NormalizedFallback: cfg.Matching.NormalizedFallback}
			result := match.Libraries(sourceItems, match.BuildIndex(destItems), opts)

			migrator := migrate.NewMigrator(source.Client, dest.Client, dest.Section.Key, logger)
			plans, err := migrator.BuildPlans(runCtx, result.Pairs)
			if err != nil {
				return err
			}
			preview := migrate.Summarize(len(result.Pairs), plans)

			out := cmd.OutOrStdout()
			if jsonFlag {
				if err := writeJSON(cmd, migratePreviewJSON(source, dest, result, preview, plans)); err != nil {
					return err
				}
			} else {
				printMatchOverview(cmd, source, dest, len(sourceItems), result, preview)
				printPlanTable(cmd, plans)
				printUnmatched(cmd, result.UnmatchedSource)
			}

			apply := applyFlag
			if !apply && !jsonFlag && len(plans) > 0 && interactive(cmd) {
				apply, err = confirmApply(cmd)
				if err != nil {
					return err
				}
			}

			var summary migrate.Summary
			if apply {
				for _, plan := range plans {
					summary.Accumulate(migrator.ApplyItem(runCtx, plan))
				}
				if !jsonFlag {
					fmt.Fprintf(out, "\nMigrated %d of %d items (%d fields copied, %d errors)\n",
						summary.ItemsMigrated, len(plans), summary.FieldsCopied, summary.Errors)
				}
			} else if !jsonFlag {
				fmt.Fprintln(out, "\nDry run; no changes written. Re-run with --apply to copy metadata.")
			}

			recordRun(ctx, history.Run{
				Mode:          history.ModeMetadata,
				DryRun:        !apply,
				SourceLabel:   source.Label(),
				DestLabel:     dest.Label(),
				MatchedItems:  len(result.Pairs),
				MigratedItems: summary.ItemsMigrated,
				CopiedFields:  summary.FieldsCopied,
				ErrorCount:    summary.Errors,
				StartedAt:     startedAt,
				FinishedAt:    time.Now().UTC(),
			})
			return nil
		},
	}

	addServerFlags(cmd, "source", &sourceFlags)
	addServerFlags(cmd, "dest", &destFlags)
	cmd.Flags().BoolVar(&applyFlag, "apply", false, "Write the copied metadata to the destination server")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the preview as JSON")

	return cmd
}

func printMatchOverview(cmd *cobra.Command, source, dest *serverSelection, sourceTotal int, result match.Result, preview migrate.Preview) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source:      %s (%d items)\n", source.Label(), sourceTotal)
	fmt.Fprintf(out, "Destination: %s\n", dest.Label())
	fmt.Fprintf(out, "Matched %d pairs (%d source items unmatched); %d items carry %d locked fields.\n\n",
		len(result.Pairs), len(result.UnmatchedSource), preview.ItemsWithLockedField, preview.FieldsToCopy)
}

func printPlanTable(cmd *cobra.Command, plans []migrate.ItemPlan) {
	if len(plans) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matched items carry locked fields; nothing to copy.")
		return
	}

	rows := make([][]string, 0, len(plans))
	for _, plan := range plans {
		names := make([]string, 0, len(plan.Fields))
		for _, field := range plan.Fields {
			names = append(names, field.Name)
		}
		rows = append(rows, []string{
			plan.Pair.Source.DisplayName(),
			string(plan.Pair.Stage),
			fmt.Sprintf("%d", len(plan.Fields)),
			strings.Join(names, ", "),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Item", "Match", "Fields", "Locked Fields"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
}

type previewItemJSON struct {
	Item   string   `json:"item"`
	Match  string   `json:"match"`
	Fields []string `json:"fields"`
}

type migratePreview struct {
	Source               string            `json:"source"`
	Destination          string            `json:"destination"`
	MatchedPairs         int               `json:"matched_pairs"`
	UnmatchedSource      []string          `json:"unmatched_source"`
	ItemsWithLockedField int               `json:"items_with_locked_fields"`
	FieldsToCopy         int               `json:"fields_to_copy"`
	Items                []previewItemJSON `json:"items"`
}

func migratePreviewJSON(source, dest *serverSelection, result match.Result, preview migrate.Preview, plans []migrate.ItemPlan) migratePreview {
	payload := migratePreview{
		Source:               source.Label(),
		Destination:          dest.Label(),
		MatchedPairs:         len(result.Pairs),
		UnmatchedSource:      make([]string, 0, len(result.UnmatchedSource)),
		ItemsWithLockedField: preview.ItemsWithLockedField,
		FieldsToCopy:         preview.FieldsToCopy,
		Items:                make([]previewItemJSON, 0, len(plans)),
	}
	for _, item := range result.UnmatchedSource {
		payload.UnmatchedSource = append(payload.UnmatchedSource, item.DisplayName())
	}
	for _, plan := range plans {
		names := make([]string, 0, len(plan.Fields))
		for _, field := range plan.Fields {
			names = append(names, field.Name)
		}
		payload.Items = append(payload.Items, previewItemJSON{
			Item:   plan.Pair.Source.DisplayName(),
			Match:  string(plan.Pair.Stage),
			Fields: names,
		})
	}
	return payload
}

func printUnmatched(cmd *cobra.Command, unmatched []plex.Item) {
	if len(unmatched) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Unmatched source items (%d):\n", len(unmatched))
	for i, item := range unmatched {
		if i == unmatchedListLimit {
			fmt.Fprintf(out, "  ... and %d more\n", len(unmatched)-unmatchedListLimit)
			break
		}
		fmt.Fprintf(out, "  - %s\n", item.DisplayName())
	}
}

func recordRun(ctx *commandContext, run history.Run) {
	store, err := ctx.openHistory()
	if err != nil {
		ctx.log().Warn("history store unavailable", slog.String("error", err.Error()))
		return
	}
	if store == nil {
		return
	}
	defer store.Close()
	if _, err := store.RecordRun(context.Background(), run); err != nil {
		ctx.log().Warn("record run failed", slog.String("error", err.Error()))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
