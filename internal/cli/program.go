package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewProgramCommand creates the program command group.
func NewProgramCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "program",
		Short: "Follow a multi-week training program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				p := s.app.Tracker.ActiveProgram()
				if p == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No active program")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: week %d day %d, %d days completed\n",
					p.ProgramID, p.CurrentWeek, p.CurrentDay, len(p.CompletedDays))
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start <program id>",
		Short: "Start a program at week 1, day 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				p, err := s.app.Tracker.StartProgram(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started %s\n", p.ProgramID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "complete <week> <day>",
		Short: "Mark a program day completed and move to it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid week %q", args[0])
			}
			day, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid day %q", args[1])
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				if err := s.app.Tracker.SetProgramPosition(week, day); err != nil {
					return err
				}
				added, err := s.app.Tracker.CompleteProgramDay(week, day)
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(cmd.OutOrStdout(), "Week %d day %d was already completed\n", week, day)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed week %d day %d\n", week, day)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the active program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				return s.app.Tracker.StopProgram()
			})
		},
	})

	return cmd
}
