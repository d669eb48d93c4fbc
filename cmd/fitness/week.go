// ABOUTME: CLI commands for the weekly rollups and the daily caloric balance.
// ABOUTME: Prints the last seven days of nutrition or exercise.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/spf13/cobra"
)

var balanceDate string

var weekCmd = &cobra.Command{
	Use:   "week [nutrition|exercise]",
	Short: "Show the last seven days",
	Long: `Show nutrition or exercise for the seven days ending today.
Days without a diary count as zero.

EXAMPLES:

  fitness week              # Nutrition
  fitness week exercise`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"nutrition", "exercise"},
	RunE: func(cmd *cobra.Command, args []string) error {
		view := "nutrition"
		if len(args) == 1 {
			view = strings.ToLower(args[0])
		}

		switch view {
		case "nutrition", "meals":
			w, err := tracker.WeeklyNutrition(cmd.Context(), currentUser())
			if err != nil {
				return err
			}
			printWeeklyNutrition(w)
		case "exercise":
			w, err := tracker.WeeklyExercise(cmd.Context(), currentUser())
			if err != nil {
				return err
			}
			printWeeklyExercise(w)
		default:
			return fmt.Errorf("unknown view: %s (use nutrition or exercise)", view)
		}
		return nil
	},
}

func printWeeklyNutrition(w *diary.WeeklyNutrition) {
	header("Nutrition %s to %s", w.StartDate, w.EndDate)
	for i, d := range w.Dates {
		fmt.Printf("  %s  %s\n", d, kcal(w.DailyCalories[i]))
	}
	fmt.Println()
	fmt.Printf("Days logged: %d\n", w.DaysLogged)
	fmt.Printf("Average macros: protein %s  carbs %s  fat %s\n",
		grams(w.Macros.Protein), grams(w.Macros.Carbs), grams(w.Macros.Fat))
	if len(w.RecentMeals) > 0 {
		fmt.Println()
		fmt.Println("Latest meals:")
		for _, m := range w.RecentMeals {
			fmt.Printf("  %s %s %s %s\n", m.Date, padRight(string(m.MealType), 10), padRight(truncate(m.FoodName, 28), 28), kcal(m.Calories))
		}
	}
}

func printWeeklyExercise(w *diary.WeeklyExercise) {
	header("Exercise %s to %s", w.StartDate, w.EndDate)
	for i, d := range w.Dates {
		fmt.Printf("  %s  %d workout(s)  %s\n", d, w.DailyWorkouts[i], kcal(w.CaloriesBurnt[i]))
	}
	fmt.Println()
	fmt.Printf("Total: %s burnt in %d min\n", kcal(w.TotalCaloriesBurnt), w.TotalDuration)
	if len(w.LastWorkouts) > 0 {
		fmt.Println()
		fmt.Println("Last workouts:")
		for _, r := range w.LastWorkouts {
			fmt.Printf("  %s %s %4d min  %s\n", r.Date, padRight(truncate(r.ExerciseType, 20), 20), r.DurationMinutes, kcal(r.CaloriesBurnt))
		}
	}
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Compare a day's intake with calories burnt",
	Long: `Compare the calories eaten on a day with the calories burnt by exercise.

The daily requirement comes from config: daily_calories when set, otherwise
the profile (gender, age, height_cm, weight_kg, activity_level).

EXAMPLES:

  fitness balance
  fitness balance --date 2024-01-05`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(balanceDate)
		if err != nil {
			return err
		}

		b, err := tracker.CaloricBalance(cmd.Context(), currentUser(), date)
		if err != nil {
			if errors.Is(err, diary.ErrNotFound) {
				fmt.Printf("No balance for %s: log both meals and exercise first.\n", date)
				return nil
			}
			return err
		}

		header("Balance on %s", b.Date)
		fmt.Printf("  Intake:      %s\n", kcal(b.TotalCaloriesIntake))
		fmt.Printf("  Burnt:       %s\n", kcal(b.TotalCaloriesBurnt))
		if b.DailyCaloriesRequirement != nil {
			fmt.Printf("  Requirement: %s\n", kcal(*b.DailyCaloriesRequirement))
		}

		status := string(b.CaloricBalance.Status)
		switch b.CaloricBalance.Status {
		case diary.Surplus:
			status = color.YellowString(status)
		case diary.Deficit:
			status = color.GreenString(status)
		}
		fmt.Printf("  Status:      %s (%s)\n", status, kcal(b.CaloricBalance.CaloriesDiff))
		return nil
	},
}

func init() {
	balanceCmd.Flags().StringVarP(&balanceDate, "date", "d", "", "date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(weekCmd, balanceCmd)
}
