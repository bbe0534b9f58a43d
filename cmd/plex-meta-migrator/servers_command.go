package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

func newServersCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "servers",
		Short: "List the servers available to your Plex account",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.credsStore()
			if err != nil {
				return err
			}
			creds, err := store.Load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(creds.AuthToken) == "" {
				return errors.New("not signed in to plex.tv; run 'plex-meta-migrator auth login'")
			}

			account, err := ctx.accountClient()
			if err != nil {
				return err
			}
			servers, err := account.Servers(cmd.Context(), creds.AuthToken)
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, serversJSON(servers))
			}

			rows := make([][]string, 0, len(servers))
			for _, srv := range servers {
				rows = append(rows, []string{srv.Name, srv.ClientIdentifier, bestConnectionLabel(srv)})
			}
			cmd.Println(renderTable(
				[]string{"Name", "Machine ID", "Best Connection"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the server list as JSON")
	return cmd
}

func bestConnectionLabel(srv plex.Resource) string {
	if url := srv.BestConnection(); url != "" {
		return url
	}
	return "(unreachable)"
}

type serverJSON struct {
	Name      string `json:"name"`
	MachineID string `json:"machine_id"`
	URL       string `json:"url"`
}

func serversJSON(servers []plex.Resource) []serverJSON {
	payload := make([]serverJSON, 0, len(servers))
	for _, srv := range servers {
		payload = append(payload, serverJSON{
			Name:      srv.Name,
			MachineID: srv.ClientIdentifier,
			URL:       bestConnectionLabel(srv),
		})
	}
	return payload
}
