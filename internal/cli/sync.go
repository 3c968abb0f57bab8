package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/gist"
)

var errNotConnected = errors.New("not connected: run liftlog login first")

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local data with the document store once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				if !s.app.IsConnected() {
					return errNotConnected
				}
				res, err := s.app.SyncNow(cmd.Context())
				if err != nil {
					if gist.IsAuth(err) {
						return fmt.Errorf("token rejected, you have been logged out: %w", err)
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), describeAction(res.Action))
				return nil
			})
		},
	}
}

// NewDaemonCommand creates the daemon command.
func NewDaemonCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Sync in the background until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				if !s.app.IsConnected() {
					return errNotConnected
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				s.app.StartAutoSync()
				s.log.Info("auto-sync running", "interval", s.cfg.Sync.Interval)
				<-ctx.Done()
				s.app.StopAutoSync()
				s.log.Info("auto-sync stopped")
				return nil
			})
		},
	}
}

func describeAction(a gist.Action) string {
	switch a {
	case gist.ActionCreated:
		return "Created remote document from local data"
	case gist.ActionUploaded:
		return "Uploaded local changes"
	case gist.ActionDownloaded:
		return "Downloaded newer remote data"
	default:
		return "Already in sync"
	}
}
