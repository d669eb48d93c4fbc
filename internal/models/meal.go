// ABOUTME: Meal entry record and daily nutrition summary.
// ABOUTME: Totals are per-serving nutrition times quantity, computed once at creation.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MealType selects which list of a meal diary an entry belongs to.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snacks    MealType = "snacks"
)

// AllMealTypes lists meal types in diary order.
var AllMealTypes = []MealType{Breakfast, Lunch, Dinner, Snacks}

// MinQuantity is the smallest quantity of servings a meal entry may record.
const MinQuantity = 0.1

// ParseMealType normalizes s and checks it is a known meal type.
func ParseMealType(s string) (MealType, error) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllMealTypes {
		if mt == known {
			return mt, nil
		}
	}
	return "", invalid("meal_type", "%q is not one of breakfast, lunch, dinner, snacks", s)
}

// Serving is the nutrition of one serving of a food.
type Serving struct {
	Calories float64 `json:"calories"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
}

// MealInput describes a food eaten before its totals are derived.
type MealInput struct {
	UserID          string
	MealType        MealType
	FoodID          string
	FoodName        string
	FoodDescription string
	Quantity        float64
	PerServing      Serving
	Date            Date
}

// MealEntry is one logged food serving.
type MealEntry struct {
	ID                 uuid.UUID `json:"id"`
	UserID             string    `json:"user_id"`
	MealType           MealType  `json:"meal_type"`
	FoodID             string    `json:"food_id"`
	FoodName           string    `json:"food_name"`
	FoodDescription    string    `json:"food_description,omitempty"`
	QuantityConsumed   float64   `json:"quantity_consumed"`
	CaloriesPerServing float64   `json:"calories_per_serving"`
	FatPerServing      float64   `json:"fat_per_serving"`
	CarbsPerServing    float64   `json:"carbs_per_serving"`
	ProteinPerServing  float64   `json:"protein_per_serving"`
	TotalCalories      float64   `json:"total_calories"`
	TotalFat           float64   `json:"total_fat"`
	TotalCarbs         float64   `json:"total_carbs"`
	TotalProtein       float64   `json:"total_protein"`
	LogDate            Date      `json:"log_date"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewMealEntry builds an entry from in, deriving the stored totals.
func NewMealEntry(in MealInput) MealEntry {
	return MealEntry{
		ID:                 uuid.New(),
		UserID:             in.UserID,
		MealType:           in.MealType,
		FoodID:             in.FoodID,
		FoodName:           in.FoodName,
		FoodDescription:    in.FoodDescription,
		QuantityConsumed:   in.Quantity,
		CaloriesPerServing: in.PerServing.Calories,
		FatPerServing:      in.PerServing.Fat,
		CarbsPerServing:    in.PerServing.Carbs,
		ProteinPerServing:  in.PerServing.Protein,
		TotalCalories:      in.PerServing.Calories * in.Quantity,
		TotalFat:           in.PerServing.Fat * in.Quantity,
		TotalCarbs:         in.PerServing.Carbs * in.Quantity,
		TotalProtein:       in.PerServing.Protein * in.Quantity,
		LogDate:            in.Date,
		CreatedAt:          time.Now().UTC(),
	}
}

// Validate checks the entry's fields.
func (m MealEntry) Validate() error {
	if strings.TrimSpace(m.FoodName) == "" {
		return invalid("food_name", "is required")
	}
	if _, err := ParseMealType(string(m.MealType)); err != nil {
		return err
	}
	if m.QuantityConsumed < MinQuantity {
		return invalid("quantity_consumed", "must be at least %g, got %g", MinQuantity, m.QuantityConsumed)
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"quantity_consumed", m.QuantityConsumed},
		{"calories_per_serving", m.CaloriesPerServing},
		{"fat_per_serving", m.FatPerServing},
		{"carbs_per_serving", m.CarbsPerServing},
		{"protein_per_serving", m.ProteinPerServing},
		{"total_calories", m.TotalCalories},
		{"total_fat", m.TotalFat},
		{"total_carbs", m.TotalCarbs},
		{"total_protein", m.TotalProtein},
	}
	for _, f := range fields {
		if err := nonNegative(f.name, f.value); err != nil {
			return err
		}
	}
	if m.LogDate != "" && !m.LogDate.Valid() {
		return invalid("log_date", "%q is not a YYYY-MM-DD date", m.LogDate)
	}
	return nil
}

// ListName returns the meal diary list the entry is filed under.
func (m MealEntry) ListName() string {
	return string(m.MealType)
}

// Contribution returns what the entry adds to the daily summary.
func (m MealEntry) Contribution() NutritionSummary {
	return NutritionSummary{
		TotalCalories: m.TotalCalories,
		TotalFat:      m.TotalFat,
		TotalCarbs:    m.TotalCarbs,
		TotalProtein:  m.TotalProtein,
	}
}

// NutritionSummary is the daily_nutrition_summary of a meal diary.
type NutritionSummary struct {
	TotalCalories float64 `json:"total_calories"`
	TotalFat      float64 `json:"total_fat"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalProtein  float64 `json:"total_protein"`
}

// Plus returns the field-wise sum of s and o.
func (s NutritionSummary) Plus(o NutritionSummary) NutritionSummary {
	return NutritionSummary{
		TotalCalories: s.TotalCalories + o.TotalCalories,
		TotalFat:      s.TotalFat + o.TotalFat,
		TotalCarbs:    s.TotalCarbs + o.TotalCarbs,
		TotalProtein:  s.TotalProtein + o.TotalProtein,
	}
}
