package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limitFlag int
		jsonFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent migration runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("run history is disabled (history.enabled = false)")
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					string(run.Mode),
					yesNo(run.DryRun),
					run.SourceLabel,
					run.DestLabel,
					fmt.Sprintf("%d", run.MatchedItems),
					fmt.Sprintf("%d", run.MigratedItems),
					fmt.Sprintf("%d", run.CopiedFields),
					fmt.Sprintf("%d", run.ErrorCount),
				})
			}
			cmd.Println(renderTable(
				[]string{"Started", "Mode", "Dry Run", "Source", "Destination", "Matched", "Migrated", "Fields", "Errors"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit runs as JSON")
	return cmd
}
