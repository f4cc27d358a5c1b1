package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/importer"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/tracker"
	"github.com/spf13/cobra"
)

func newLogCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "log <exercise> <reps> <weight>",
		Short:   "Record a performed set in the current workout",
		Example: `  ironlog-cli log "Bench Press" 8 62.5`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reps, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("reps must be a whole number: %q", args[1])
			}
			weight, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("weight must be a number: %q", args[2])
			}

			a, err := s.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.Service.LogSet(cmd.Context(), args[0], reps, weight)
			if err != nil {
				return err
			}
			printEvents(cmd, events)
			return nil
		},
	}
}

func newCompleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <exercise> <joint_pain> <pump> <workload>",
		Short: "Complete an exercise and rate it (each rating 0-3)",
		Long: `Complete an exercise of the current workout. Ratings steer the next
prescription: joint_pain 0 none to 3 severe, pump 0 none to 3 great,
workload 0 too easy, 2 about right, 3 too hard.`,
		Example: `  ironlog-cli complete "Bench Press" 0 2 2`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratings := make([]int, 3)
			for i, name := range []string{"joint_pain", "pump", "workload"} {
				v, err := strconv.Atoi(args[i+1])
				if err != nil {
					return fmt.Errorf("%s must be a whole number: %q", name, args[i+1])
				}
				ratings[i] = v
			}
			fb := tracker.Feedback{JointPain: ratings[0], Pump: ratings[1], Workload: ratings[2]}

			a, err := s.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.Service.CompleteExercise(cmd.Context(), args[0], fb)
			if err != nil {
				return err
			}
			printEvents(cmd, events)
			return nil
		},
	}
}

func newFinishWorkoutCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "finish-workout",
		Short: "Complete the current workout once every exercise is done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.Service.CompleteWorkout(cmd.Context())
			if err != nil {
				return err
			}
			printEvents(cmd, events)

			pos, err := a.Service.Position(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Styles.Muted.Render("next: "+slotLabel(pos.Week, pos.Workout)))
			return nil
		},
	}
}

func newTrainCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Show the workout in progress with prescribed and logged sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := a.Service.CurrentWorkout(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderWorkout(view))
			return nil
		},
	}
}

func newHistoryCmd(s *session) *cobra.Command {
	var (
		limit    int
		exercise string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded events, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.Service.History(cmd.Context())
			if err != nil {
				return err
			}
			if exercise != "" {
				filtered := events[:0:0]
				for _, e := range events {
					if name, ok := event.ExerciseOf(e); ok && name == exercise {
						filtered = append(filtered, e)
					}
				}
				events = filtered
			}
			if limit > 0 && len(events) > limit {
				events = events[len(events)-limit:]
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), Styles.Muted.Render("no events recorded"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistory(events))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last N events")
	cmd.Flags().StringVarP(&exercise, "exercise", "e", "", "show only events for this exercise")
	return cmd
}

func newPositionCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "position",
		Short: "Show which week and workout is in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := a.Service.CurrentWorkout(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s of %d weeks\n", slotLabel(view.WeekIndex, view.WorkoutIndex), view.Weeks)
			if view.PlanFinished {
				fmt.Fprintln(out, Styles.Success.Render("plan finished"))
			}
			return nil
		},
	}
}

func newMigrateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending event store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.config()
			if err != nil {
				return err
			}
			if err := storage.RunMigrations(cfg.Database.Driver, cfg.Database.Source()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Styles.Success.Render("migrations applied")+" "+Styles.Muted.Render(cfg.Database.Driver))
			return nil
		},
	}
}

func newExportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the event log as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 0 {
				_, err := importer.Export(cmd.Context(), a.Store, cmd.OutOrStdout())
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			n, err := importer.Export(cmd.Context(), a.Store, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s exported %d events to %s\n", IconOK.Render(), n, args[0])
			return nil
		},
	}
}

func printEvents(cmd *cobra.Command, events []event.Event) {
	for _, e := range events {
		fmt.Fprintln(cmd.OutOrStdout(), IconOK.Render()+" "+describe(e))
	}
}
