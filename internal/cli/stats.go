package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/records"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show training totals and the weekly streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				st := s.app.Tracker.Stats()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Workouts:        %d\n", st.TotalWorkouts)
				fmt.Fprintf(out, "Sets:            %d\n", st.TotalSets)
				fmt.Fprintf(out, "Volume:          %s %s\n", strconv.FormatFloat(st.TotalVolume, 'f', -1, 64), records.WeightUnit)
				fmt.Fprintf(out, "This week:       %d\n", st.WorkoutsThisWeek)
				fmt.Fprintf(out, "Week streak:     %d\n", st.WeekStreak)
				if st.LastWorkout != "" {
					fmt.Fprintf(out, "Last workout:    %s\n", st.LastWorkout)
				}
				fmt.Fprintf(out, "Records:         %d exercises\n", len(s.app.Records.Exercises()))
				return nil
			})
		},
	}
}
