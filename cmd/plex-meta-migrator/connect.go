package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cdzombak/plex-meta-migrator/internal/config"
	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

// serverFlags carries the per-side connection flags for migrate and
// playlist commands.
type serverFlags struct {
	url     string
	token   string
	server  string
	library string
}

func addServerFlags(cmd *cobra.Command, role string, flags *serverFlags) {
	cmd.Flags().StringVar(&flags.url, role+"-url", "", "Direct URL of the "+role+" server")
	cmd.Flags().StringVar(&flags.token, role+"-token", "", "Auth token for the "+role+" server")
	cmd.Flags().StringVar(&flags.server, role+"-server", "", "Name of the "+role+" server in your Plex account")
	cmd.Flags().StringVar(&flags.library, role+"-library", "", "Library section title on the "+role+" server")
}

// serverSelection is a resolved connection to one side of a migration.
type serverSelection struct {
	Client     *plex.ServerClient
	Section    *plex.Section
	ServerName string
}

// Label identifies the selection in output and run history.
func (s *serverSelection) Label() string {
	if s.Section == nil {
		return s.ServerName
	}
	if s.ServerName == "" {
		return s.Section.Title
	}
	return s.Section.Title + " @ " + s.ServerName
}

// resolveServer connects to the server described by flags and config. Direct
// URL plus token wins; otherwise the cached plex.tv account lists servers,
// picked by name flag or interactively.
func resolveServer(ctx context.Context, cmd *cobra.Command, cmdCtx *commandContext, role string, flags serverFlags, fromConfig config.Server) (*serverSelection, error) {
	url := strings.TrimSpace(flags.url)
	token := strings.TrimSpace(flags.token)
	if url == "" {
		url = fromConfig.URL
	}
	if token == "" {
		token = fromConfig.Token
	}

	if url != "" && token != "" {
		clientID, err := cmdCtx.clientIdentifier()
		if err != nil {
			return nil, err
		}
		client := plex.NewServerClient(url, token, plex.WithClientIdentifier(clientID))
		selection := &serverSelection{Client: client}
		if info, err := client.ServerInfo(ctx); err == nil {
			selection.ServerName = info.FriendlyName
		} else {
			selection.ServerName = url
		}
		return selection, nil
	}
	if url != "" || token != "" {
		return nil, fmt.Errorf("%s server needs both a URL and a token (or neither, to use your Plex account)", role)
	}

	return resolveAccountServer(ctx, cmd, cmdCtx, role, flags.server)
}

func resolveAccountServer(ctx context.Context, cmd *cobra.Command, cmdCtx *commandContext, role, serverName string) (*serverSelection, error) {
	store, err := cmdCtx.credsStore()
	if err != nil {
		return nil, err
	}
	creds, err := store.Load()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(creds.AuthToken) == "" {
		return nil, fmt.Errorf("no %s server configured and not signed in to plex.tv; run 'plex-meta-migrator auth login' or set --%s-url/--%s-token", role, role, role)
	}

	account, err := cmdCtx.accountClient()
	if err != nil {
		return nil, err
	}
	servers, err := account.Servers(ctx, creds.AuthToken)
	if err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("your Plex account has no servers")
	}

	resource, err := pickServer(cmd, role, serverName, servers)
	if err != nil {
		return nil, err
	}

	client, err := account.Connect(*resource)
	if err != nil {
		return nil, err
	}
	return &serverSelection{Client: client, ServerName: resource.Name}, nil
}

func pickServer(cmd *cobra.Command, role, serverName string, servers []plex.Resource) (*plex.Resource, error) {
	if name := strings.TrimSpace(serverName); name != "" {
		for i := range servers {
			if strings.EqualFold(servers[i].Name, name) {
				return &servers[i], nil
			}
		}
		return nil, fmt.Errorf("no server named %q in your Plex account", name)
	}

	if !interactive(cmd) {
		return nil, fmt.Errorf("multiple servers available; pass --%s-server (stdin is not a terminal)", role)
	}

	names := make([]string, len(servers))
	for i, srv := range servers {
		names[i] = srv.Name
	}
	idx, err := selectFromList(cmd, role+" server", names)
	if err != nil {
		return nil, err
	}
	return &servers[idx], nil
}

// resolveSection fills in the selection's library section, prompting when no
// title was given and stdin is a terminal.
func (s *serverSelection) resolveSection(ctx context.Context, cmd *cobra.Command, role, title string) error {
	title = strings.TrimSpace(title)
	if title != "" {
		section, err := s.Client.SectionByTitle(ctx, title)
		if err != nil {
			return fmt.Errorf("%s library %q: %w", role, title, err)
		}
		s.Section = section
		return nil
	}

	sections, err := s.Client.Sections(ctx)
	if err != nil {
		return fmt.Errorf("list %s libraries: %w", role, err)
	}
	if len(sections) == 0 {
		return fmt.Errorf("%s server %q has no libraries", role, s.ServerName)
	}
	if len(sections) == 1 {
		s.Section = &sections[0]
		return nil
	}
	if !interactive(cmd) {
		return fmt.Errorf("multiple libraries on the %s server; pass --%s-library (stdin is not a terminal)", role, role)
	}

	titles := make([]string, len(sections))
	for i, section := range sections {
		titles[i] = fmt.Sprintf("%s (%s)", section.Title, section.Type)
	}
	idx, err := selectFromList(cmd, role+" library", titles)
	if err != nil {
		return err
	}
	s.Section = &sections[idx]
	return nil
}
