package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

type sectionJSON struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

func sectionsJSON(sections []plex.Section) []sectionJSON {
	payload := make([]sectionJSON, 0, len(sections))
	for _, section := range sections {
		payload = append(payload, sectionJSON{
			Key:   section.Key,
			Title: section.Title,
			Type:  section.Type,
		})
	}
	return payload
}

func newLibrariesCommand(ctx *commandContext) *cobra.Command {
	var (
		flags    serverFlags
		jsonFlag bool
	)

	cmd := &cobra.Command{
		Use:   "libraries",
		Short: "List the library sections of a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			runCtx := cmd.Context()

			selection, err := resolveServer(runCtx, cmd, ctx, "source", flags, cfg.Source)
			if err != nil {
				return err
			}

			sections, err := selection.Client.Sections(runCtx)
			if err != nil {
				return fmt.Errorf("list libraries: %w", err)
			}

			if jsonFlag {
				return writeJSON(cmd, sectionsJSON(sections))
			}

			rows := make([][]string, 0, len(sections))
			for _, section := range sections {
				rows = append(rows, []string{section.Key, section.Title, section.Type})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Libraries on %s:\n", selection.ServerName)
			cmd.Println(renderTable(
				[]string{"Key", "Title", "Type"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	addServerFlags(cmd, "source", &flags)
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the library list as JSON")
	return cmd
}
