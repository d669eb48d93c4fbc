// ABOUTME: Daily caloric requirement providers and macronutrient goals.
// ABOUTME: Static targets or Harris-Benedict BMR scaled by an activity factor.
package goals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownGender   = errors.New("gender must be male or female")
	ErrUnknownActivity = errors.New("unknown activity level")
)

// Static is a fixed daily caloric requirement.
type Static float64

// DailyCalories returns the fixed requirement for every user.
func (s Static) DailyCalories(context.Context, string) (float64, error) {
	return float64(s), nil
}

// ActivityFactors scale BMR into total daily energy expenditure.
var ActivityFactors = map[string]float64{
	"sedentary":         1.2,
	"lightly active":    1.375,
	"moderately active": 1.55,
	"very active":       1.725,
	"super active":      1.9,
}

// Profile holds the body measurements a requirement is derived from.
type Profile struct {
	Gender        string  `json:"gender" env:"GENDER"`
	Age           int     `json:"age" env:"AGE"`
	HeightCm      float64 `json:"height_cm" env:"HEIGHT_CM"`
	WeightKg      float64 `json:"weight_kg" env:"WEIGHT_KG"`
	ActivityLevel string  `json:"activity_level" env:"ACTIVITY_LEVEL"`
}

// IsZero reports whether no profile was configured.
func (p Profile) IsZero() bool {
	return p == Profile{}
}

// BMR returns the Harris-Benedict basal metabolic rate in kcal.
func (p Profile) BMR() (float64, error) {
	switch strings.ToLower(strings.TrimSpace(p.Gender)) {
	case "male":
		return 66.5 + 13.75*p.WeightKg + 5.003*p.HeightCm - 6.75*float64(p.Age), nil
	case "female":
		return 655 + 9.563*p.WeightKg + 1.850*p.HeightCm - 4.676*float64(p.Age), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownGender, p.Gender)
	}
}

func (p Profile) tdee() (float64, error) {
	bmr, err := p.BMR()
	if err != nil {
		return 0, err
	}
	factor, ok := ActivityFactors[strings.ToLower(strings.TrimSpace(p.ActivityLevel))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, p.ActivityLevel)
	}
	return bmr * factor, nil
}

// DailyCalories returns the rounded total daily energy expenditure.
func (p Profile) DailyCalories(context.Context, string) (float64, error) {
	tdee, err := p.tdee()
	if err != nil {
		return 0, err
	}
	return math.Round(tdee), nil
}

// MacroGoals are daily nutrition targets.
type MacroGoals struct {
	Calories float64 `json:"total_calories_goal"`
	Fat      float64 `json:"total_fat_goal"`
	Carbs    float64 `json:"total_carbs_goal"`
	Protein  float64 `json:"total_protein_goal"`
}

// Macros derives goals from the profile: 1g protein per kg, 25% of
// calories from fat and the remainder from carbs.
func (p Profile) Macros() (MacroGoals, error) {
	tdee, err := p.tdee()
	if err != nil {
		return MacroGoals{}, err
	}
	protein := p.WeightKg
	fat := tdee * 0.25 / 9
	carbs := (tdee - (protein*4 + fat*9)) / 4
	return MacroGoals{
		Calories: math.Round(tdee),
		Fat:      round2(fat),
		Carbs:    round2(carbs),
		Protein:  round2(protein),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
