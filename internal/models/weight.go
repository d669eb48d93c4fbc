// ABOUTME: Weight entry record. Weight diaries keep no derived summary.
// ABOUTME: NoSummary is the identity summary used by the weight kind.
package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// WeightEntry is one weight measurement.
type WeightEntry struct {
	ID         uuid.UUID  `json:"id"`
	WeightInKg float64    `json:"weight_in_kg"`
	Notes      *string    `json:"notes,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// NewWeightEntry creates a weight entry.
func NewWeightEntry(kg float64) WeightEntry {
	return WeightEntry{ID: uuid.New(), WeightInKg: kg}
}

// WithNotes returns a copy of w with notes set.
func (w WeightEntry) WithNotes(notes string) WeightEntry {
	w.Notes = &notes
	return w
}

// WithTimestamp returns a copy of w with the measurement time set.
func (w WeightEntry) WithTimestamp(t time.Time) WeightEntry {
	w.Timestamp = &t
	return w
}

// Validate requires a positive, finite weight.
func (w WeightEntry) Validate() error {
	if math.IsNaN(w.WeightInKg) || math.IsInf(w.WeightInKg, 0) || w.WeightInKg <= 0 {
		return invalid("weight_in_kg", "must be a positive number, got %g", w.WeightInKg)
	}
	return nil
}

// ListName returns "weights", the only list of a weight diary.
func (w WeightEntry) ListName() string {
	return "weights"
}

// Contribution is empty; weight entries stand alone.
func (w WeightEntry) Contribution() NoSummary {
	return NoSummary{}
}

// NoSummary is the summary of diaries that keep none.
type NoSummary struct{}

// Plus is the identity.
func (NoSummary) Plus(NoSummary) NoSummary {
	return NoSummary{}
}
