// ABOUTME: CLI commands for the exercise diary.
// ABOUTME: Adds, removes and shows exercise sessions.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/spf13/cobra"
)

var (
	exerciseIntensity string
	exerciseCalories  float64
	exerciseDate      string
)

var exerciseCmd = &cobra.Command{
	Use:     "exercise",
	Aliases: []string{"ex", "workout"},
	Short:   "Manage the exercise diary",
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add <type> <minutes>",
	Short: "Log an exercise session",
	Long: `Log an exercise session.

Calories burnt are estimated from the exercise type, duration and your
profile weight unless --calories is given. Intensity scales the estimate:
low 0.9x, moderate 1.0x, high 1.2x.

EXAMPLES:

  fitness exercise add running 30 --intensity high
  fitness exercise add yoga 45 --intensity low
  fitness exercise add rowing 20 --calories 250`,
	Aliases: []string{"log"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(exerciseDate)
		if err != nil {
			return err
		}
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid minutes %q: %w", args[1], err)
		}

		req := diary.ExerciseRequest{
			ExerciseType:    args[0],
			DurationMinutes: minutes,
			Intensity:       exerciseIntensity,
		}
		if cmd.Flags().Changed("calories") {
			req.BaseCalories = &exerciseCalories
		}

		doc, entry, err := tracker.LogExercise(cmd.Context(), currentUser(), date, req)
		if err != nil {
			return err
		}

		color.Green("✓ Added %s workout (%d min, %s)", entry.ExerciseType, entry.DurationMinutes, kcal(entry.CaloriesBurnt))
		fmt.Printf("  %s day total: %s burnt in %d min\n",
			faintID(entry.ID), kcal(doc.Summary.TotalCaloriesBurnt), doc.Summary.TotalDuration)
		return nil
	},
}

var exerciseRmCmd = &cobra.Command{
	Use:     "rm <index> <exercise_type>",
	Aliases: []string{"delete", "del"},
	Short:   "Remove an exercise by position",
	Long: `Remove an exercise session. The exercise type must match the entry at
the index, which guards against removing the wrong session.

EXAMPLES:

  fitness exercise rm 0 running`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(exerciseDate)
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[0], err)
		}

		doc, entry, err := tracker.DeleteExercise(cmd.Context(), currentUser(), date, index, args[1])
		if err != nil {
			return err
		}

		color.Green("✓ Removed %s workout", entry.ExerciseType)
		fmt.Printf("  day total: %s burnt in %d min\n", kcal(doc.Summary.TotalCaloriesBurnt), doc.Summary.TotalDuration)
		return nil
	},
}

var exerciseShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"ls", "list"},
	Short:   "Show a day's exercise",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(exerciseDate)
		if err != nil {
			return err
		}

		doc, err := tracker.Exercise.Get(cmd.Context(), currentUser(), date)
		if err != nil {
			if errors.Is(err, diary.ErrNotFound) {
				fmt.Printf("No exercise logged on %s.\n", date)
				return nil
			}
			return err
		}

		header("Exercise on %s", doc.Date)
		for i, e := range doc.List("exercises") {
			intensity := string(e.Intensity)
			if intensity == "" {
				intensity = "moderate"
			}
			fmt.Printf("  %d  %s %s %4d min  %s  %s\n",
				i,
				faintID(e.ID),
				padRight(truncate(e.ExerciseType, 20), 20),
				e.DurationMinutes,
				padRight(intensity, 8),
				kcal(e.CaloriesBurnt),
			)
		}
		fmt.Println()
		fmt.Printf("Total: %s burnt in %d min\n", kcal(doc.Summary.TotalCaloriesBurnt), doc.Summary.TotalDuration)
		return nil
	},
}

func init() {
	exerciseAddCmd.Flags().StringVarP(&exerciseIntensity, "intensity", "i", "", "low, moderate or high")
	exerciseAddCmd.Flags().Float64Var(&exerciseCalories, "calories", 0, "base calories burnt before intensity")

	exerciseCmd.PersistentFlags().StringVarP(&exerciseDate, "date", "d", "", "diary date (YYYY-MM-DD, default today)")

	exerciseCmd.AddCommand(exerciseAddCmd, exerciseRmCmd, exerciseShowCmd)
	rootCmd.AddCommand(exerciseCmd)
}
