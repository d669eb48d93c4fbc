// ABOUTME: Tracker bundles the meal, exercise and weight diaries of one store.
// ABOUTME: Builds entries at the boundary using the nutrition, calorie and requirement collaborators.
package diary

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/fitness/internal/goals"
	"github.com/harperreed/fitness/internal/models"
	"github.com/harperreed/fitness/internal/storage"
)

// RequirementProvider supplies a user's daily caloric requirement.
type RequirementProvider interface {
	DailyCalories(ctx context.Context, userID string) (float64, error)
}

// CalorieEstimator returns base calories burnt for an exercise before intensity adjustment.
type CalorieEstimator interface {
	EstimateCalories(ctx context.Context, exerciseType string, minutes int) (float64, error)
}

// NutritionSource returns per-serving nutrition for a food.
type NutritionSource interface {
	Nutrition(ctx context.Context, foodID, description string) (models.Serving, error)
}

// GoalProvider supplies daily calorie and macro goals.
type GoalProvider interface {
	Macros() (goals.MacroGoals, error)
}

// Options configures a Tracker. Zero fields are allowed; operations that
// need a missing collaborator report a validation error.
type Options struct {
	Requirements RequirementProvider
	Goals        GoalProvider
	Estimator    CalorieEstimator
	Nutrition    NutritionSource
	Logger       *log.Logger
	// Now defaults to time.Now and anchors "today" for rollups.
	Now func() time.Time
}

// Tracker is the entry point for all diary operations of a store.
type Tracker struct {
	Meals    *Service[models.MealEntry, models.NutritionSummary]
	Exercise *Service[models.ExerciseEntry, models.ExerciseSummary]
	Weight   *Service[models.WeightEntry, models.NoSummary]

	requirements RequirementProvider
	goals        GoalProvider
	estimator    CalorieEstimator
	nutrition    NutritionSource
	log          *log.Logger
	now          func() time.Time
}

// NewTracker creates a tracker over store.
func NewTracker(store storage.Store, opts Options) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		Meals:        NewService(MealKind, store, logger),
		Exercise:     NewService(ExerciseKind, store, logger),
		Weight:       NewService(WeightKind, store, logger),
		requirements: opts.Requirements,
		goals:        opts.Goals,
		estimator:    opts.Estimator,
		nutrition:    opts.Nutrition,
		log:          logger,
		now:          now,
	}
}

// Today returns the tracker's current calendar date.
func (t *Tracker) Today() models.Date {
	return models.DateOf(t.now())
}

// MealRequest describes a food to log. PerServing may be nil when
// FoodDescription carries the nutrition.
type MealRequest struct {
	MealType        string          `json:"meal_type"`
	FoodID          string          `json:"food_id"`
	FoodName        string          `json:"food_name"`
	FoodDescription string          `json:"food_description,omitempty"`
	Quantity        float64         `json:"quantity_consumed"`
	PerServing      *models.Serving `json:"per_serving,omitempty"`
}

// LogMeal derives the entry's totals and appends it to the meal diary.
func (t *Tracker) LogMeal(ctx context.Context, userID string, date models.Date, req MealRequest) (*MealDocument, models.MealEntry, error) {
	mealType, err := models.ParseMealType(req.MealType)
	if err != nil {
		return nil, models.MealEntry{}, err
	}

	per := req.PerServing
	if per == nil {
		if t.nutrition == nil || req.FoodDescription == "" {
			return nil, models.MealEntry{}, invalid("nutrition", "per-serving values or a food description are required")
		}
		serving, err := t.nutrition.Nutrition(ctx, req.FoodID, req.FoodDescription)
		if err != nil {
			return nil, models.MealEntry{}, invalid("food_description", "no nutrition found: %v", err)
		}
		per = &serving
	}

	entry := models.NewMealEntry(models.MealInput{
		UserID:          userID,
		MealType:        mealType,
		FoodID:          req.FoodID,
		FoodName:        req.FoodName,
		FoodDescription: req.FoodDescription,
		Quantity:        req.Quantity,
		PerServing:      *per,
		Date:            date,
	})
	doc, err := t.Meals.Add(ctx, userID, date, entry)
	return doc, entry, err
}

// ExerciseRequest describes an exercise session to log. BaseCalories may be
// nil to ask the estimator.
type ExerciseRequest struct {
	ExerciseType    string   `json:"exercise_type"`
	DurationMinutes int      `json:"duration_minutes"`
	Intensity       string   `json:"intensity,omitempty"`
	BaseCalories    *float64 `json:"base_calories,omitempty"`
}

// LogExercise intensity-adjusts the base calories and appends the entry.
func (t *Tracker) LogExercise(ctx context.Context, userID string, date models.Date, req ExerciseRequest) (*ExerciseDocument, models.ExerciseEntry, error) {
	exerciseType := strings.TrimSpace(req.ExerciseType)
	if exerciseType == "" {
		return nil, models.ExerciseEntry{}, invalid("exercise_type", "is required")
	}

	var base float64
	switch {
	case req.BaseCalories != nil:
		base = *req.BaseCalories
	case t.estimator != nil:
		est, err := t.estimator.EstimateCalories(ctx, exerciseType, req.DurationMinutes)
		if err != nil {
			return nil, models.ExerciseEntry{}, fmt.Errorf("estimate calories: %w", err)
		}
		base = est
	default:
		return nil, models.ExerciseEntry{}, invalid("calories_burnt", "is required when no estimator is configured")
	}

	intensity := models.Intensity(strings.ToLower(strings.TrimSpace(req.Intensity)))
	entry := models.NewExerciseEntry(exerciseType, req.DurationMinutes, base, intensity)
	doc, err := t.Exercise.Add(ctx, userID, date, entry)
	return doc, entry, err
}

// WeightRequest describes a weight measurement to log.
type WeightRequest struct {
	WeightInKg float64    `json:"weight_in_kg"`
	Notes      string     `json:"notes,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// LogWeight appends a weight entry.
func (t *Tracker) LogWeight(ctx context.Context, userID string, date models.Date, req WeightRequest) (*WeightDocument, models.WeightEntry, error) {
	entry := models.NewWeightEntry(req.WeightInKg)
	if req.Notes != "" {
		entry = entry.WithNotes(req.Notes)
	}
	if req.Timestamp != nil {
		entry = entry.WithTimestamp(*req.Timestamp)
	}
	doc, err := t.Weight.Add(ctx, userID, date, entry)
	return doc, entry, err
}

// DeleteMeal removes the entry at index of the meal type's list.
func (t *Tracker) DeleteMeal(ctx context.Context, userID string, date models.Date, mealType string, index int) (*MealDocument, models.MealEntry, error) {
	mt, err := models.ParseMealType(mealType)
	if err != nil {
		return nil, models.MealEntry{}, err
	}
	return t.Meals.Delete(ctx, userID, date, string(mt), index, nil)
}

// DeleteExercise removes the exercise at index. The entry there must have
// expectedType as its exercise_type, compared case-insensitively.
func (t *Tracker) DeleteExercise(ctx context.Context, userID string, date models.Date, index int, expectedType string) (*ExerciseDocument, models.ExerciseEntry, error) {
	expectedType = strings.TrimSpace(expectedType)
	if expectedType == "" {
		return nil, models.ExerciseEntry{}, invalid("exercise_type", "is required")
	}
	expect := func(e models.ExerciseEntry) bool {
		return strings.EqualFold(e.ExerciseType, expectedType)
	}
	return t.Exercise.Delete(ctx, userID, date, "exercises", index, expect)
}

// DeleteWeight removes the weight entry at index.
func (t *Tracker) DeleteWeight(ctx context.Context, userID string, date models.Date, index int) (*WeightDocument, models.WeightEntry, error) {
	return t.Weight.Delete(ctx, userID, date, "weights", index, nil)
}
