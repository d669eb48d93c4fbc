// ABOUTME: CLI command for daily nutrition goals from the configured profile.
// ABOUTME: Shows calorie and macro goals with what is left for the day.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/spf13/cobra"
)

var goalsDate string

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show daily nutrition goals",
	Long: `Show the daily calorie and macro goals and what is left of them.

Goals come from the profile (gender, age, height_cm, weight_kg,
activity_level): calories are the daily energy expenditure, protein is
1g per kg, fat is 25% of calories and carbs take the rest.

EXAMPLES:

  fitness config set profile.gender female
  fitness goals
  fitness goals --date 2024-01-05`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(goalsDate)
		if err != nil {
			return err
		}

		p, err := tracker.NutritionGoals(cmd.Context(), currentUser(), date)
		if errors.Is(err, diary.ErrNoGoals) {
			fmt.Println("No profile configured.")
			fmt.Println("Set one with 'fitness config set profile.<field> <value>'.")
			return nil
		}
		if err != nil {
			return err
		}

		header("Goals on %s", p.Date)
		fmt.Printf("  %s %s %s %s\n", padRight("", 9), padRight("Goal", 12), padRight("Eaten", 12), "Left")
		goalRow("Calories", kcal(p.Goals.Calories), kcal(p.Consumed.TotalCalories), p.Remaining.Calories, kcal)
		goalRow("Protein", grams(p.Goals.Protein), grams(p.Consumed.TotalProtein), p.Remaining.Protein, grams)
		goalRow("Carbs", grams(p.Goals.Carbs), grams(p.Consumed.TotalCarbs), p.Remaining.Carbs, grams)
		goalRow("Fat", grams(p.Goals.Fat), grams(p.Consumed.TotalFat), p.Remaining.Fat, grams)
		return nil
	},
}

func goalRow(name, goal, eaten string, left float64, format func(float64) string) {
	rest := format(left)
	if left < 0 {
		rest = color.YellowString("%s over", format(-left))
	}
	fmt.Printf("  %s %s %s %s\n", padRight(name, 9), padRight(goal, 12), padRight(eaten, 12), rest)
}

func init() {
	goalsCmd.Flags().StringVarP(&goalsDate, "date", "d", "", "date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(goalsCmd)
}
