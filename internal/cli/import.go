package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/ingest/alpha"
)

// NewImportCommand creates the import command group.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import workouts from other apps",
	}

	var force bool
	alphaCmd := &cobra.Command{
		Use:   "alpha <file.csv>",
		Short: "Import an Alpha Progression CSV export",
		Long: `Import an Alpha Progression CSV export.

Each session becomes a history workout on its date, replacing any workout
already logged that day. Warmup sets are skipped. A file that was already
imported is skipped unless --force is given. Personal records are
rebuilt from the full history afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				im := alpha.NewImporter(s.app.Tracker, s.app.Detector, s.kv, s.log.With("component", "import"))
				res, err := im.ImportFile(args[0], force)
				if err != nil {
					return err
				}
				if res.Message != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Skipped: %s (use --force to import again)\n", res.Message)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"Imported %d sessions into %d workouts (%d sets, %d warmups skipped, %d exercises with records)\n",
					res.SessionsReceived, res.WorkoutsSaved, res.SetsImported, res.WarmupsSkipped, res.RecordExercises)
				return nil
			})
		},
	}
	alphaCmd.Flags().BoolVar(&force, "force", false, "import even if this file was imported before")
	cmd.AddCommand(alphaCmd)

	return cmd
}
