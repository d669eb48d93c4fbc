// ABOUTME: MET-based exercise calorie estimation.
// ABOUTME: Base calories = MET x body weight in kg x hours.
package lookup

import (
	"context"
	"fmt"
	"strings"
)

// DefaultMET is used for exercise types missing from METs.
const DefaultMET = 5.0

// DefaultWeightKg is assumed when the estimator has no body weight.
const DefaultWeightKg = 70.0

// METs maps common exercise types to metabolic equivalents.
var METs = map[string]float64{
	"walking":         3.5,
	"hiking":          6.0,
	"running":         9.8,
	"jogging":         7.0,
	"cycling":         7.5,
	"swimming":        8.0,
	"rowing":          7.0,
	"yoga":            2.5,
	"pilates":         3.0,
	"dancing":         5.0,
	"weight training": 5.0,
	"weightlifting":   5.0,
	"elliptical":      5.0,
	"jump rope":       12.3,
	"basketball":      6.5,
	"soccer":          7.0,
	"tennis":          7.3,
	"stretching":      2.3,
	"hiit":            8.0,
	"stair climbing":  9.0,
	"boxing":          7.8,
	"climbing":        8.0,
}

// METEstimator estimates base calories burnt from MET values.
type METEstimator struct {
	WeightKg float64
}

// MET returns the metabolic equivalent for an exercise type.
func MET(exerciseType string) float64 {
	if met, ok := METs[strings.ToLower(strings.TrimSpace(exerciseType))]; ok {
		return met
	}
	return DefaultMET
}

// EstimateCalories returns MET x kg x hours, before intensity adjustment.
func (e METEstimator) EstimateCalories(_ context.Context, exerciseType string, minutes int) (float64, error) {
	if minutes < 0 {
		return 0, fmt.Errorf("duration must not be negative, got %d minutes", minutes)
	}
	kg := e.WeightKg
	if kg <= 0 {
		kg = DefaultWeightKg
	}
	return MET(exerciseType) * kg * float64(minutes) / 60, nil
}
