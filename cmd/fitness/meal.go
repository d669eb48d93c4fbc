// ABOUTME: CLI commands for the meal diary.
// ABOUTME: Adds, removes and shows food entries grouped by meal type.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/harperreed/fitness/internal/models"
	"github.com/spf13/cobra"
)

var (
	mealQty      float64
	mealCalories float64
	mealFat      float64
	mealCarbs    float64
	mealProtein  float64
	mealDesc     string
	mealFoodID   string
	mealDate     string
)

var mealCmd = &cobra.Command{
	Use:     "meal",
	Aliases: []string{"meals", "food"},
	Short:   "Manage the meal diary",
}

var mealAddCmd = &cobra.Command{
	Use:   "add <meal_type> <food_name>",
	Short: "Log a food",
	Long: `Log a food in a meal of the day.

Meal types are breakfast, lunch, dinner and snacks. Nutrition is per serving
and multiplied by --qty. Without --calories the nutrition is parsed from
--desc, for example:

  --desc "Per 100g - Calories: 200kcal | Fat: 10.00g | Carbs: 20.00g | Protein: 5.00g"

EXAMPLES:

  fitness meal add breakfast Oatmeal --calories 150 --carbs 27 --protein 5 --fat 3
  fitness meal add lunch "Chicken wrap" --qty 1.5 --calories 400
  fitness meal add snacks Almonds --date 2024-01-05 --desc "Per 28g - Calories: 164kcal | Fat: 14.00g | Carbs: 6.00g | Protein: 6.00g"`,
	Aliases: []string{"log"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(mealDate)
		if err != nil {
			return err
		}

		req := diary.MealRequest{
			MealType:        args[0],
			FoodID:          mealFoodID,
			FoodName:        args[1],
			FoodDescription: mealDesc,
			Quantity:        mealQty,
		}
		if cmd.Flags().Changed("calories") {
			req.PerServing = &models.Serving{
				Calories: mealCalories,
				Fat:      mealFat,
				Carbs:    mealCarbs,
				Protein:  mealProtein,
			}
		}

		doc, entry, err := tracker.LogMeal(cmd.Context(), currentUser(), date, req)
		if err != nil {
			return err
		}

		color.Green("✓ Added %s to %s (%s)", entry.FoodName, entry.MealType, kcal(entry.TotalCalories))
		fmt.Printf("  %s day total: %s\n", faintID(entry.ID), kcal(doc.Summary.TotalCalories))
		return nil
	},
}

var mealRmCmd = &cobra.Command{
	Use:     "rm <meal_type> <index>",
	Aliases: []string{"delete", "del"},
	Short:   "Remove a food by its position in a meal",
	Long: `Remove a food from a meal. Index is the 0-based position shown by
'fitness meal show'.

EXAMPLES:

  fitness meal rm lunch 0
  fitness meal rm dinner 1 --date 2024-01-05`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(mealDate)
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[1], err)
		}

		doc, entry, err := tracker.DeleteMeal(cmd.Context(), currentUser(), date, args[0], index)
		if err != nil {
			return err
		}

		color.Green("✓ Removed %s from %s", entry.FoodName, entry.MealType)
		fmt.Printf("  day total: %s\n", kcal(doc.Summary.TotalCalories))
		return nil
	},
}

var mealShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"ls", "list"},
	Short:   "Show a day's meals",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(mealDate)
		if err != nil {
			return err
		}

		doc, err := tracker.Meals.Get(cmd.Context(), currentUser(), date)
		if err != nil {
			if errors.Is(err, diary.ErrNotFound) {
				fmt.Printf("No meals logged on %s.\n", date)
				return nil
			}
			return err
		}

		printMealDiary(doc)
		return nil
	},
}

func printMealDiary(doc *diary.MealDocument) {
	header("Meals on %s", doc.Date)
	for _, list := range doc.Kind().Lists {
		entries := doc.List(list)
		if len(entries) == 0 {
			continue
		}
		fmt.Printf("\n%s\n", color.CyanString(list))
		for i, e := range entries {
			fmt.Printf("  %d  %s %s %s\n",
				i,
				faintID(e.ID),
				padRight(truncate(e.FoodName, 28), 28),
				kcal(e.TotalCalories),
			)
		}
	}

	s := doc.Summary
	fmt.Println()
	fmt.Printf("Total: %s  fat %s  carbs %s  protein %s\n",
		kcal(s.TotalCalories), grams(s.TotalFat), grams(s.TotalCarbs), grams(s.TotalProtein))
}

func init() {
	mealAddCmd.Flags().Float64VarP(&mealQty, "qty", "q", 1, "servings consumed")
	mealAddCmd.Flags().Float64Var(&mealCalories, "calories", 0, "calories per serving")
	mealAddCmd.Flags().Float64Var(&mealFat, "fat", 0, "fat grams per serving")
	mealAddCmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "carb grams per serving")
	mealAddCmd.Flags().Float64Var(&mealProtein, "protein", 0, "protein grams per serving")
	mealAddCmd.Flags().StringVar(&mealDesc, "desc", "", "food description with nutrition per serving")
	mealAddCmd.Flags().StringVar(&mealFoodID, "food-id", "", "external food id")

	mealCmd.PersistentFlags().StringVarP(&mealDate, "date", "d", "", "diary date (YYYY-MM-DD, default today)")

	mealCmd.AddCommand(mealAddCmd, mealRmCmd, mealShowCmd)
	rootCmd.AddCommand(mealCmd)
}
