// ABOUTME: Exercise entry record, intensity multipliers and daily exercise summary.
// ABOUTME: Stored calories_burnt is already intensity-adjusted.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intensity scales an exercise's base calorie estimate.
type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
)

// Multiplier returns the calorie factor for the intensity.
// Unknown or empty intensities count as moderate.
func (i Intensity) Multiplier() float64 {
	switch Intensity(strings.ToLower(string(i))) {
	case IntensityLow:
		return 0.9
	case IntensityHigh:
		return 1.2
	default:
		return 1.0
	}
}

// AdjustCalories applies the intensity multiplier to a base estimate.
func (i Intensity) AdjustCalories(base float64) float64 {
	return base * i.Multiplier()
}

// ExerciseEntry is one logged exercise session.
type ExerciseEntry struct {
	ID              uuid.UUID `json:"id"`
	ExerciseType    string    `json:"exercise_type"`
	DurationMinutes int       `json:"duration_minutes"`
	CaloriesBurnt   float64   `json:"calories_burnt"`
	Intensity       Intensity `json:"intensity,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewExerciseEntry builds an entry, adjusting baseCalories by intensity.
func NewExerciseEntry(exerciseType string, minutes int, baseCalories float64, intensity Intensity) ExerciseEntry {
	return ExerciseEntry{
		ID:              uuid.New(),
		ExerciseType:    strings.TrimSpace(exerciseType),
		DurationMinutes: minutes,
		CaloriesBurnt:   intensity.AdjustCalories(baseCalories),
		Intensity:       intensity,
		CreatedAt:       time.Now().UTC(),
	}
}

// Validate checks the entry's fields.
func (e ExerciseEntry) Validate() error {
	if e.ExerciseType == "" {
		return invalid("exercise_type", "is required")
	}
	if e.DurationMinutes < 0 {
		return invalid("duration_minutes", "must not be negative, got %d", e.DurationMinutes)
	}
	return nonNegative("calories_burnt", e.CaloriesBurnt)
}

// ListName returns "exercises", the only list of an exercise diary.
func (e ExerciseEntry) ListName() string {
	return "exercises"
}

// Contribution returns what the entry adds to the daily summary.
func (e ExerciseEntry) Contribution() ExerciseSummary {
	return ExerciseSummary{
		TotalCaloriesBurnt: e.CaloriesBurnt,
		TotalDuration:      e.DurationMinutes,
	}
}

// ExerciseSummary is the daily_exercise_summary of an exercise diary.
type ExerciseSummary struct {
	TotalCaloriesBurnt float64 `json:"total_calories_burnt"`
	TotalDuration      int     `json:"total_duration"`
}

// Plus returns the field-wise sum of s and o.
func (s ExerciseSummary) Plus(o ExerciseSummary) ExerciseSummary {
	return ExerciseSummary{
		TotalCaloriesBurnt: s.TotalCaloriesBurnt + o.TotalCaloriesBurnt,
		TotalDuration:      s.TotalDuration + o.TotalDuration,
	}
}
