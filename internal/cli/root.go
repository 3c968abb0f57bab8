// Package cli implements the liftlog command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/app"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/gist"
	"github.com/claude/liftlog/internal/kvstore"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DataDir    string
	Verbose    bool
	Version    string
}

// NewRootCommand creates the root command for the liftlog CLI.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:           "liftlog",
		Short:         "LiftLog - workout tracker",
		Long:          "Log workouts, track personal records and sync your training log across devices.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "liftlog.yaml", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "local data directory (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewDaemonCommand(opts))
	cmd.AddCommand(NewWorkoutCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewRecordsCommand(opts))
	cmd.AddCommand(NewProgramCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewMCPCommand(opts))

	return cmd
}

// session is an opened local data directory plus the application root.
type session struct {
	cfg *config.ClientConfig
	kv  kvstore.Store
	app *app.App
	log *slog.Logger
}

// openSession loads config, opens the local store and builds the app.
// Logs go to logOut so stdout stays free for command output.
func openSession(opts *RootOptions, logOut io.Writer) (*session, error) {
	cfg, err := config.LoadClient(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	kv, err := kvstore.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening data dir: %w", err)
	}
	log.Debug("data dir opened", "path", cfg.DataDir)

	api := gist.NewAPI(cfg.Sync.BaseURL, cfg.Sync.Timeout)
	a := app.New(kv, api, log, app.WithSyncInterval(cfg.Sync.Interval))
	return &session{cfg: cfg, kv: kv, app: a, log: log}, nil
}

func (s *session) Close() error {
	s.app.Close()
	return s.kv.Close()
}

// withSession runs fn against an opened session and closes it afterwards.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(*session) error) error {
	s, err := openSession(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
