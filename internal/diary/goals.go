// ABOUTME: Daily nutrition goals measured against the day's meal diary.
// ABOUTME: Remaining amounts go negative once a goal is exceeded.
package diary

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/harperreed/fitness/internal/goals"
	"github.com/harperreed/fitness/internal/models"
)

// GoalProgress is the day's intake against the nutrition goals.
type GoalProgress struct {
	UserID    string                  `json:"user_id"`
	Date      models.Date             `json:"date"`
	Goals     goals.MacroGoals        `json:"goals"`
	Consumed  models.NutritionSummary `json:"consumed"`
	Remaining goals.MacroGoals        `json:"remaining"`
}

// NutritionGoals returns the goals and what is left of them on date.
// A day without a meal diary has consumed nothing. ErrNoGoals when the
// tracker has no GoalProvider.
func (t *Tracker) NutritionGoals(ctx context.Context, userID string, date models.Date) (*GoalProgress, error) {
	if t.goals == nil {
		return nil, ErrNoGoals
	}
	if err := validateOwner(userID, date); err != nil {
		return nil, err
	}

	g, err := t.goals.Macros()
	if err != nil {
		return nil, fmt.Errorf("nutrition goals: %w", err)
	}

	out := &GoalProgress{UserID: userID, Date: date, Goals: g}
	doc, err := t.Meals.Get(ctx, userID, date)
	switch {
	case err == nil:
		out.Consumed = doc.Summary
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	out.Remaining = goals.MacroGoals{
		Calories: left(g.Calories, out.Consumed.TotalCalories),
		Fat:      left(g.Fat, out.Consumed.TotalFat),
		Carbs:    left(g.Carbs, out.Consumed.TotalCarbs),
		Protein:  left(g.Protein, out.Consumed.TotalProtein),
	}
	return out, nil
}

func left(goal, consumed float64) float64 {
	return math.Round((goal-consumed)*100) / 100
}
