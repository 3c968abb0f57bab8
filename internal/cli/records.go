package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/records"
)

// NewRecordsCommand creates the records command.
func NewRecordsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records [exercise]",
		Short: "Show personal records",
		Long: `Show personal records.

Without arguments, lists every exercise with records. With an exercise name,
prints that exercise's records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					exercises := s.app.Records.Exercises()
					if len(exercises) == 0 {
						fmt.Fprintln(out, "No personal records yet")
						return nil
					}
					for _, ex := range exercises {
						fmt.Fprintf(out, "%s (%d)\n", ex.Name, len(ex.Records))
					}
					return nil
				}

				ex := s.app.Records.Records(strings.Join(args, " "))
				if len(ex.Records) == 0 {
					fmt.Fprintf(out, "No records for %s\n", ex.Name)
					return nil
				}
				fmt.Fprintln(out, ex.Name)
				for _, r := range ex.Records {
					fmt.Fprintf(out, "  %-32s %-20s %s\n", records.Describe(r), records.Format(r), r.Date)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(newRecordsRecentCommand(rootOpts))
	return cmd
}

func newRecordsRecentCommand(rootOpts *RootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show records set in the last days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				out := cmd.OutOrStdout()
				recent := s.app.Records.Recent(days, time.Now())
				if len(recent) == 0 {
					fmt.Fprintf(out, "No records in the last %d days\n", days)
					return nil
				}
				for _, rr := range recent {
					fmt.Fprintf(out, "%s  %s: %s %s\n", rr.Record.Date, rr.Exercise,
						records.Describe(rr.Record), records.Format(rr.Record))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "look-back window in days")
	return cmd
}
