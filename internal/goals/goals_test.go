// ABOUTME: Tests for caloric requirement providers.
// ABOUTME: Checks Harris-Benedict values, activity factors and macro splits.
package goals

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestStatic(t *testing.T) {
	got, err := Static(2100).DailyCalories(context.Background(), "anyone")
	if err != nil {
		t.Fatalf("DailyCalories: %v", err)
	}
	if got != 2100 {
		t.Errorf("got %v, want 2100", got)
	}
}

func TestProfileDailyCalories(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    float64
		wantErr error
	}{
		{
			name:    "male sedentary",
			profile: Profile{Gender: "male", Age: 30, HeightCm: 180, WeightKg: 80, ActivityLevel: "Sedentary"},
			// (66.5 + 1100 + 900.54 - 202.5) * 1.2
			want: math.Round(1864.54 * 1.2),
		},
		{
			name:    "female moderately active",
			profile: Profile{Gender: "Female", Age: 25, HeightCm: 165, WeightKg: 60, ActivityLevel: "Moderately active"},
			// (655 + 573.78 + 305.25 - 116.9) * 1.55
			want: math.Round(1417.13 * 1.55),
		},
		{
			name:    "unknown gender",
			profile: Profile{Gender: "other", ActivityLevel: "sedentary"},
			wantErr: ErrUnknownGender,
		},
		{
			name:    "unknown activity",
			profile: Profile{Gender: "male", ActivityLevel: "couch"},
			wantErr: ErrUnknownActivity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.profile.DailyCalories(context.Background(), "u")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DailyCalories: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfileMacros(t *testing.T) {
	p := Profile{Gender: "male", Age: 30, HeightCm: 180, WeightKg: 80, ActivityLevel: "very active"}
	m, err := p.Macros()
	if err != nil {
		t.Fatalf("Macros: %v", err)
	}
	tdee := 1864.54 * 1.725
	if m.Calories != math.Round(tdee) {
		t.Errorf("calories = %v", m.Calories)
	}
	if m.Protein != 80 {
		t.Errorf("protein = %v, want 80", m.Protein)
	}
	if math.Abs(m.Fat-tdee*0.25/9) > 0.01 {
		t.Errorf("fat = %v", m.Fat)
	}
	// Macro calories add back up to the total.
	total := m.Protein*4 + m.Fat*9 + m.Carbs*4
	if math.Abs(total-tdee) > 0.1 {
		t.Errorf("macro calories = %v, want about %v", total, tdee)
	}
}

func TestProfileIsZero(t *testing.T) {
	if !(Profile{}).IsZero() {
		t.Error("empty profile should be zero")
	}
	if (Profile{Age: 1}).IsZero() {
		t.Error("profile with age should not be zero")
	}
}
