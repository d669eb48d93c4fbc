// ABOUTME: Tests for the tracker's boundary operations.
// ABOUTME: Covers entry derivation through the nutrition, estimator and requirement collaborators.
package diary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/fitness/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMealWithPerServing(t *testing.T) {
	ctx := context.Background()
	tr := setupTestTracker(t, Options{})

	doc, entry, err := tr.LogMeal(ctx, "u", "2024-01-01", MealRequest{
		MealType:   "Breakfast",
		FoodID:     "oat-1",
		FoodName:   "Oatmeal",
		Quantity:   1.5,
		PerServing: &models.Serving{Calories: 200, Protein: 6, Carbs: 30, Fat: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Breakfast, entry.MealType)
	assert.Equal(t, 300.0, entry.TotalCalories)
	assert.InDelta(t, 9, entry.TotalProtein, 1e-9)
	assert.Equal(t, models.Date("2024-01-01"), entry.LogDate)
	assert.Equal(t, 300.0, doc.Summary.TotalCalories)
}

func TestLogMealFromNutritionSource(t *testing.T) {
	ctx := context.Background()
	tr := setupTestTracker(t, Options{Nutrition: fixedNutrition{Calories: 120, Protein: 3}})

	_, entry, err := tr.LogMeal(ctx, "u", "2024-01-01", MealRequest{
		MealType:        "snacks",
		FoodName:        "Crackers",
		FoodDescription: "Per 30g - Calories: 120kcal",
		Quantity:        2,
	})
	require.NoError(t, err)
	assert.Equal(t, 240.0, entry.TotalCalories)
	assert.Equal(t, 6.0, entry.TotalProtein)
}

func TestLogMealRejections(t *testing.T) {
	ctx := context.Background()
	tr := setupTestTracker(t, Options{})
	var verr *ValidationError

	_, _, err := tr.LogMeal(ctx, "u", "2024-01-01", MealRequest{MealType: "brunch", Quantity: 1, PerServing: &models.Serving{}})
	assert.True(t, errors.As(err, &verr))

	_, _, err = tr.LogMeal(ctx, "u", "2024-01-01", MealRequest{MealType: "lunch", FoodName: "x", Quantity: 1})
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "nutrition", verr.Field)

	_, err = tr.Meals.Get(ctx, "u", "2024-01-01")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogExerciseWithEstimator(t *testing.T) {
	ctx := context.Background()
	tr := setupTestTracker(t, Options{Estimator: fixedEstimator(300)})

	doc, entry, err := tr.LogExercise(ctx, "u", "2024-01-01", ExerciseRequest{
		ExerciseType:    "running",
		DurationMinutes: 30,
		Intensity:       "LOW",
	})
	require.NoError(t, err)
	assert.InDelta(t, 270, entry.CaloriesBurnt, 1e-9)
	assert.InDelta(t, 270, doc.Summary.TotalCaloriesBurnt, 1e-9)
}

func TestLogExerciseRequiresCalories(t *testing.T) {
	tr := setupTestTracker(t, Options{})
	_, _, err := tr.LogExercise(context.Background(), "u", "2024-01-01", ExerciseRequest{ExerciseType: "run", DurationMinutes: 10})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "calories_burnt", verr.Field)

	_, _, err = tr.LogExercise(context.Background(), "u", "2024-01-01", ExerciseRequest{ExerciseType: "  "})
	assert.True(t, errors.As(err, &verr))
}

func TestLogWeight(t *testing.T) {
	ctx := context.Background()
	tr := setupTestTracker(t, Options{})
	at := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

	doc, entry, err := tr.LogWeight(ctx, "u", "2024-01-01", WeightRequest{WeightInKg: 72.4, Notes: "after run", Timestamp: &at})
	require.NoError(t, err)
	require.NotNil(t, entry.Notes)
	assert.Equal(t, "after run", *entry.Notes)
	require.Len(t, doc.List("weights"), 1)
	assert.True(t, doc.List("weights")[0].Timestamp.Equal(at))

	_, _, err = tr.LogWeight(ctx, "u", "2024-01-01", WeightRequest{WeightInKg: 0})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestTrackerToday(t *testing.T) {
	tr := setupTestTracker(t, Options{})
	assert.Equal(t, models.Date("2024-01-07"), tr.Today())
}
