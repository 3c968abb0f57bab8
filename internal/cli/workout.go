package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/records"
)

// NewWorkoutCommand creates the workout command group.
func NewWorkoutCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Log the workout in progress",
	}
	cmd.AddCommand(newWorkoutAddCommand(rootOpts))
	cmd.AddCommand(newWorkoutSetCommand(rootOpts))
	cmd.AddCommand(newWorkoutCompleteCommand(rootOpts))
	cmd.AddCommand(newWorkoutFinishCommand(rootOpts))
	cmd.AddCommand(newWorkoutShowCommand(rootOpts))
	return cmd
}

func newWorkoutAddCommand(rootOpts *RootOptions) *cobra.Command {
	var category, equipment string

	cmd := &cobra.Command{
		Use:   "add <exercise name>",
		Short: "Add an exercise to the current workout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				idx, err := s.app.Tracker.AddExercise(strings.Join(args, " "), category, equipment)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added exercise #%d\n", idx+1)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "exercise category")
	cmd.Flags().StringVar(&equipment, "equipment", "", "equipment used")
	return cmd
}

func newWorkoutSetCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		reps, weight float64
		elapsed      string
		done         bool
	)

	cmd := &cobra.Command{
		Use:   "set <exercise#> <set#>",
		Short: "Write reps, weight or time into a set",
		Long: `Write reps, weight or time into a set of the current workout.

Numbers are 1-based. Using the next unused set number appends a set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exIdx, setIdx, err := parsePosition(args)
			if err != nil {
				return err
			}
			if elapsed != "" {
				if _, err := records.ParseTime(elapsed); err != nil {
					return err
				}
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				return s.app.Tracker.LogSet(exIdx, setIdx, models.Set{
					Reps:      models.Num(reps),
					Weight:    models.Num(weight),
					Time:      elapsed,
					Completed: done,
				})
			})
		},
	}

	cmd.Flags().Float64Var(&reps, "reps", 0, "repetitions")
	cmd.Flags().Float64Var(&weight, "weight", 0, "weight in "+records.WeightUnit)
	cmd.Flags().StringVar(&elapsed, "time", "", "elapsed time (MM:SS or seconds)")
	cmd.Flags().BoolVar(&done, "done", false, "mark the set completed")
	return cmd
}

func newWorkoutCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "complete <exercise#> <set#>",
		Short: "Mark a set completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exIdx, setIdx, err := parsePosition(args)
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				return s.app.Tracker.CompleteSet(exIdx, setIdx, !undo)
			})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "mark the set not completed")
	return cmd
}

func newWorkoutFinishCommand(rootOpts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Save the current workout to history and check for records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				res, err := s.app.FinishWorkout(date)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Saved workout %s: %d exercises, %d sets\n",
					res.Workout.Date, len(res.Workout.Exercises), res.Workout.SetCount())
				for _, ea := range res.Achievements {
					fmt.Fprintf(out, "New records for %s:\n", ea.Exercise)
					for _, a := range ea.Achievements {
						fmt.Fprintf(out, "  %s\n", records.FormatAchievement(a))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "workout date YYYY-MM-DD (default today)")
	return cmd
}

func newWorkoutShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				cur := s.app.Tracker.CurrentWorkout()
				if len(cur.Exercises) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No workout in progress")
					return nil
				}
				printExercises(cmd.OutOrStdout(), cur.Exercises, true)
				return nil
			})
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved workouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				hist := s.app.Tracker.History()
				if from != "" || to != "" {
					end := to
					if end == "" {
						end = "9999-12-31"
					}
					hist = s.app.Tracker.HistoryBetween(from, end)
				}
				out := cmd.OutOrStdout()
				if len(hist) == 0 {
					fmt.Fprintln(out, "No workouts")
					return nil
				}
				for _, w := range hist {
					fmt.Fprintf(out, "%s  %d sets  %s %s\n", w.Date, w.SetCount(), strconv.FormatFloat(w.Volume(), 'f', -1, 64), records.WeightUnit)
					printExercises(out, w.Exercises, false)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date YYYY-MM-DD")
	return cmd
}

// parsePosition converts 1-based "<exercise#> <set#>" arguments to indexes.
func parsePosition(args []string) (int, int, error) {
	ex, err := strconv.Atoi(args[0])
	if err != nil || ex < 1 {
		return 0, 0, fmt.Errorf("invalid exercise number %q", args[0])
	}
	set, err := strconv.Atoi(args[1])
	if err != nil || set < 1 {
		return 0, 0, fmt.Errorf("invalid set number %q", args[1])
	}
	return ex - 1, set - 1, nil
}

func printExercises(out io.Writer, exercises []models.WorkoutExercise, numbered bool) {
	for i, ex := range exercises {
		if numbered {
			fmt.Fprintf(out, "%d. %s\n", i+1, ex.Name)
		} else {
			fmt.Fprintf(out, "  %s\n", ex.Name)
		}
		for j, set := range ex.Sets {
			mark := " "
			if set.Completed {
				mark = "x"
			}
			fmt.Fprintf(out, "    [%s] %d: %s\n", mark, j+1, formatSet(set))
		}
	}
}

func formatSet(s models.Set) string {
	var parts []string
	if !s.Weight.IsZero() {
		parts = append(parts, s.Weight.String()+" "+records.WeightUnit)
	}
	if !s.Reps.IsZero() {
		parts = append(parts, s.Reps.String()+" reps")
	}
	if s.Time != "" {
		parts = append(parts, s.Time)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " × ")
}

