package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the cached plex.tv sign-in",
	}

	cmd.AddCommand(newAuthLoginCommand(ctx))
	cmd.AddCommand(newAuthLogoutCommand(ctx))
	cmd.AddCommand(newAuthStatusCommand(ctx))

	return cmd
}

func newAuthLoginCommand(ctx *commandContext) *cobra.Command {
	var usernameFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to plex.tv and cache the auth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			store, err := ctx.credsStore()
			if err != nil {
				return err
			}
			creds, err := plex.EnsureClientIdentifier(store)
			if err != nil {
				return err
			}
			account, err := ctx.accountClient()
			if err != nil {
				return err
			}

			username := firstNonEmpty(usernameFlag, cfg.Auth.Username)
			if username == "" {
				if !interactive(cmd) {
					return errors.New("username required; pass --username or set auth.username")
				}
				username, err = promptLine(cmd, "Plex username or email: ")
				if err != nil {
					return err
				}
			}
			if username == "" {
				return errors.New("username is empty")
			}

			password, err := promptPassword(cmd)
			if err != nil {
				return err
			}

			runCtx := cmd.Context()
			token, err := account.SignIn(runCtx, username, password, "")
			if errors.Is(err, plex.ErrTwoFactorRequired) {
				if !interactive(cmd) {
					return err
				}
				code, promptErr := promptLine(cmd, "Verification code: ")
				if promptErr != nil {
					return promptErr
				}
				token, err = account.SignIn(runCtx, username, password, code)
			}
			if err != nil {
				return err
			}

			creds.AuthToken = token
			if err := store.Save(creds); err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s; token cached at %s\n", username, cfg.Auth.CredsFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&usernameFlag, "username", "u", "", "Plex account username or email")
	return cmd
}

func newAuthLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached plex.tv token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.credsStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cached credentials removed.")
			return nil
		},
	}
}

func newAuthStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a cached plex.tv token exists and still works",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			store, err := ctx.credsStore()
			if err != nil {
				return err
			}
			creds, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Credentials file: %s\n", cfg.Auth.CredsFile)
			if strings.TrimSpace(creds.AuthToken) == "" {
				fmt.Fprintln(out, "Not signed in. Run 'plex-meta-migrator auth login'.")
				return nil
			}

			account, err := ctx.accountClient()
			if err != nil {
				return err
			}
			if err := account.CheckToken(cmd.Context(), creds.AuthToken); err != nil {
				fmt.Fprintf(out, "Signed in, but the token was rejected: %v\n", err)
				fmt.Fprintln(out, "Run 'plex-meta-migrator auth login' to refresh it.")
				return nil
			}
			fmt.Fprintln(out, "Signed in; token is valid.")
			return nil
		},
	}
}

// promptPassword reads a password without echo when stdin is a real
// terminal, and falls back to a plain line read otherwise (tests, pipes).
func promptPassword(cmd *cobra.Command) (string, error) {
	if cmd.InOrStdin() == os.Stdin && stdinIsTerminal() {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return promptLine(cmd, "Password: ")
}
