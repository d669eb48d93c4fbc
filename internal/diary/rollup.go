// ABOUTME: Multi-day and cross-kind queries: weekly nutrition and exercise, caloric balance, weight history.
// ABOUTME: Series are zero-filled; averages count only days that have a diary.
package diary

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/fitness/internal/models"
	"golang.org/x/sync/errgroup"
)

const weekDays = 7

// MacroAverages are per-day macro means over logged days.
type MacroAverages struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// RecentMeal is the latest entry of a meal type within a window.
type RecentMeal struct {
	Date     models.Date     `json:"date"`
	MealType models.MealType `json:"meal_type"`
	FoodName string          `json:"food_name"`
	Calories float64         `json:"calories"`
}

// WeeklyNutrition is the trailing seven day nutrition rollup.
type WeeklyNutrition struct {
	UserID        string        `json:"user_id"`
	StartDate     models.Date   `json:"start_date"`
	EndDate       models.Date   `json:"end_date"`
	Dates         []models.Date `json:"dates"`
	DailyCalories []float64     `json:"daily_calories"`
	DaysLogged    int           `json:"days_logged"`
	Macros        MacroAverages `json:"macros"`
	RecentMeals   []RecentMeal  `json:"meals"`
}

func (t *Tracker) week() (models.Date, models.Date) {
	end := t.Today()
	return end.AddDays(-(weekDays - 1)), end
}

// WeeklyNutrition folds the seven days ending today.
func (t *Tracker) WeeklyNutrition(ctx context.Context, userID string) (*WeeklyNutrition, error) {
	start, end := t.week()
	days, err := t.Meals.Days(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return foldNutrition(userID, days), nil
}

func foldNutrition(userID string, days []Day[models.MealEntry, models.NutritionSummary]) *WeeklyNutrition {
	out := &WeeklyNutrition{
		UserID:        userID,
		Dates:         make([]models.Date, 0, len(days)),
		DailyCalories: make([]float64, 0, len(days)),
		RecentMeals:   []RecentMeal{},
	}
	if len(days) > 0 {
		out.StartDate, out.EndDate = days[0].Date, days[len(days)-1].Date
	}

	var protein, carbs, fat float64
	for _, d := range days {
		s := d.Summary()
		out.Dates = append(out.Dates, d.Date)
		out.DailyCalories = append(out.DailyCalories, s.TotalCalories)
		if d.Logged() {
			out.DaysLogged++
			protein += s.TotalProtein
			carbs += s.TotalCarbs
			fat += s.TotalFat
		}
	}
	if out.DaysLogged > 0 {
		n := float64(out.DaysLogged)
		out.Macros = MacroAverages{Protein: protein / n, Carbs: carbs / n, Fat: fat / n}
	}

	for _, mt := range []models.MealType{models.Breakfast, models.Lunch, models.Dinner} {
		if m, ok := latestMeal(days, mt); ok {
			out.RecentMeals = append(out.RecentMeals, m)
		}
	}
	return out
}

func latestMeal(days []Day[models.MealEntry, models.NutritionSummary], mt models.MealType) (RecentMeal, bool) {
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].Logged() {
			continue
		}
		entries := days[i].Doc.List(string(mt))
		if len(entries) == 0 {
			continue
		}
		e := entries[len(entries)-1]
		return RecentMeal{Date: days[i].Date, MealType: mt, FoodName: e.FoodName, Calories: e.TotalCalories}, true
	}
	return RecentMeal{}, false
}

// RecentWorkout is one of the latest exercise sessions.
type RecentWorkout struct {
	Date            models.Date `json:"date"`
	ExerciseType    string      `json:"exercise_type"`
	DurationMinutes int         `json:"duration_minutes"`
	CaloriesBurnt   float64     `json:"calories_burnt"`
}

// WeeklyExercise is the trailing seven day exercise rollup.
type WeeklyExercise struct {
	UserID             string          `json:"user_id"`
	StartDate          models.Date     `json:"start_date"`
	EndDate            models.Date     `json:"end_date"`
	Dates              []models.Date   `json:"dates"`
	DailyWorkouts      []int           `json:"daily_workouts"`
	CaloriesBurnt      []float64       `json:"calories_burnt"`
	TotalCaloriesBurnt float64         `json:"total_calories_burnt"`
	TotalDuration      int             `json:"total_duration"`
	LastWorkouts       []RecentWorkout `json:"last_workouts"`
}

const lastWorkoutCount = 3

// WeeklyExercise folds the seven days ending today.
func (t *Tracker) WeeklyExercise(ctx context.Context, userID string) (*WeeklyExercise, error) {
	start, end := t.week()
	days, err := t.Exercise.Days(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return foldExercise(userID, days), nil
}

func foldExercise(userID string, days []Day[models.ExerciseEntry, models.ExerciseSummary]) *WeeklyExercise {
	out := &WeeklyExercise{
		UserID:        userID,
		Dates:         make([]models.Date, 0, len(days)),
		DailyWorkouts: make([]int, 0, len(days)),
		CaloriesBurnt: make([]float64, 0, len(days)),
		LastWorkouts:  []RecentWorkout{},
	}
	if len(days) > 0 {
		out.StartDate, out.EndDate = days[0].Date, days[len(days)-1].Date
	}

	for _, d := range days {
		s := d.Summary()
		workouts := 0
		if d.Logged() {
			workouts = len(d.Doc.List("exercises"))
		}
		out.Dates = append(out.Dates, d.Date)
		out.DailyWorkouts = append(out.DailyWorkouts, workouts)
		out.CaloriesBurnt = append(out.CaloriesBurnt, s.TotalCaloriesBurnt)
		out.TotalCaloriesBurnt += s.TotalCaloriesBurnt
		out.TotalDuration += s.TotalDuration
	}

	for i := len(days) - 1; i >= 0 && len(out.LastWorkouts) < lastWorkoutCount; i-- {
		if !days[i].Logged() {
			continue
		}
		entries := days[i].Doc.List("exercises")
		for j := len(entries) - 1; j >= 0 && len(out.LastWorkouts) < lastWorkoutCount; j-- {
			e := entries[j]
			out.LastWorkouts = append(out.LastWorkouts, RecentWorkout{
				Date:            days[i].Date,
				ExerciseType:    e.ExerciseType,
				DurationMinutes: e.DurationMinutes,
				CaloriesBurnt:   e.CaloriesBurnt,
			})
		}
	}
	return out
}

// BalanceStatus classifies intake against expenditure.
type BalanceStatus string

const (
	Surplus  BalanceStatus = "surplus"
	Deficit  BalanceStatus = "deficit"
	Balanced BalanceStatus = "balanced"
)

// Balance is the classified difference between intake and calories burnt.
type Balance struct {
	Status       BalanceStatus `json:"status"`
	CaloriesDiff float64       `json:"calories_diff"`
}

// ClassifyBalance computes intake - burnt. A surplus reports the difference
// as is, a deficit reports its absolute value and a balanced day reports 0.
func ClassifyBalance(intake, burnt float64) Balance {
	diff := intake - burnt
	switch {
	case diff > 0:
		return Balance{Status: Surplus, CaloriesDiff: diff}
	case diff < 0:
		return Balance{Status: Deficit, CaloriesDiff: -diff}
	default:
		return Balance{Status: Balanced, CaloriesDiff: 0}
	}
}

// CaloricBalance is the cross-diary comparison for one date.
type CaloricBalance struct {
	UserID                   string      `json:"user_id"`
	Date                     models.Date `json:"date"`
	DailyCaloriesRequirement *float64    `json:"daily_calories_requirement,omitempty"`
	TotalCaloriesIntake      float64     `json:"total_calories_intake"`
	TotalCaloriesBurnt       float64     `json:"total_calories_burnt"`
	CaloricBalance           Balance     `json:"caloric_balance"`
}

// CaloricBalance compares the date's meal intake with its exercise burn.
// Both diaries must exist; otherwise ErrNotFound is returned. The requirement
// is reported only when the tracker has a RequirementProvider.
func (t *Tracker) CaloricBalance(ctx context.Context, userID string, date models.Date) (*CaloricBalance, error) {
	if err := validateOwner(userID, date); err != nil {
		return nil, err
	}

	var (
		meals       *MealDocument
		exercise    *ExerciseDocument
		requirement *float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := t.Meals.Get(gctx, userID, date)
		meals = doc
		return err
	})
	g.Go(func() error {
		doc, err := t.Exercise.Get(gctx, userID, date)
		exercise = doc
		return err
	})
	if t.requirements != nil {
		g.Go(func() error {
			kcal, err := t.requirements.DailyCalories(gctx, userID)
			if err != nil {
				return fmt.Errorf("daily caloric requirement: %w", err)
			}
			requirement = &kcal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &CaloricBalance{
		UserID:                   userID,
		Date:                     date,
		DailyCaloriesRequirement: requirement,
		TotalCaloriesIntake:      meals.Summary.TotalCalories,
		TotalCaloriesBurnt:       exercise.Summary.TotalCaloriesBurnt,
	}
	out.CaloricBalance = ClassifyBalance(out.TotalCaloriesIntake, out.TotalCaloriesBurnt)
	return out, nil
}

// WeightRanges maps history range names to their length in days.
var WeightRanges = map[string]int{
	"1d": 1,
	"1w": 7,
	"1m": 30,
	"3m": 90,
	"6m": 180,
	"1y": 365,
}

// WeightPoint is one measurement in a weight history.
type WeightPoint struct {
	Date       models.Date `json:"date"`
	WeightInKg float64     `json:"weight_in_kg"`
	Notes      *string     `json:"notes,omitempty"`
	Timestamp  *string     `json:"timestamp,omitempty"`
}

// WeightHistory lists weight measurements over a named range ending today.
type WeightHistory struct {
	UserID    string        `json:"user_id"`
	Range     string        `json:"range"`
	StartDate models.Date   `json:"start_date"`
	EndDate   models.Date   `json:"end_date"`
	Points    []WeightPoint `json:"points"`
	Change    float64       `json:"change"`
}

// WeightHistory returns measurements in chronological order and the net change
// between the first and last of them.
func (t *Tracker) WeightHistory(ctx context.Context, userID, rng string) (*WeightHistory, error) {
	if rng == "" {
		rng = "1w"
	}
	n, ok := WeightRanges[rng]
	if !ok {
		return nil, invalid("range", "%q is not one of 1d, 1w, 1m, 3m, 6m, 1y", rng)
	}
	end := t.Today()
	start := end.AddDays(-(n - 1))

	docs, err := t.Weight.Range(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	out := &WeightHistory{UserID: userID, Range: rng, StartDate: start, EndDate: end, Points: []WeightPoint{}}
	for _, doc := range docs {
		for _, e := range doc.List("weights") {
			p := WeightPoint{Date: doc.Date, WeightInKg: e.WeightInKg, Notes: e.Notes}
			if e.Timestamp != nil {
				ts := e.Timestamp.Format(time.RFC3339)
				p.Timestamp = &ts
			}
			out.Points = append(out.Points, p)
		}
	}
	if len(out.Points) > 1 {
		out.Change = out.Points[len(out.Points)-1].WeightInKg - out.Points[0].WeightInKg
	}
	return out, nil
}
