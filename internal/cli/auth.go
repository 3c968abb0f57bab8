package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/auth"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Connect to the document store",
		Long: `Connect this device to the document store used for sync.

Without --token, runs the OAuth device flow: open the printed URL, enter the
code, and the token is stored once approved. The remote document is located
by its description or created from local data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				if token == "" {
					token = os.Getenv("LIFTLOG_TOKEN")
				}
				if token == "" {
					o := s.cfg.OAuth
					t, err := auth.DeviceLogin(cmd.Context(), auth.Config{
						ClientID:      o.ClientID,
						DeviceAuthURL: o.DeviceAuthURL,
						TokenURL:      o.TokenURL,
						Scopes:        o.Scopes,
					}, func(uri, code string) {
						fmt.Fprintf(cmd.OutOrStdout(), "Open %s and enter code %s\n", uri, code)
					})
					if err != nil {
						return err
					}
					token = t
				}
				if err := s.app.Connect(cmd.Context(), strings.TrimSpace(token)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Connected (document %s)\n", s.app.Syncer.DocumentID())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token (skips the device flow)")
	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and document ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				if !s.app.IsConnected() {
					return errors.New("not connected")
				}
				if err := s.app.Disconnect(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Disconnected")
				return nil
			})
		},
	}
}
