// ABOUTME: Shared test helpers for the diary package.
// ABOUTME: Provides SQLite-backed trackers, a fixed clock and a failing store.
package diary

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/fitness/internal/models"
	"github.com/harperreed/fitness/internal/storage"
	"github.com/stretchr/testify/require"
)

// testNow is 2024-01-07, so the trailing week is 2024-01-01..2024-01-07.
var testNow = time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "fitness.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func setupTestTracker(t *testing.T, opts Options) *Tracker {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	return NewTracker(setupTestStore(t), opts)
}

func meal(mt models.MealType, name string, calories, quantity float64) models.MealEntry {
	return models.NewMealEntry(models.MealInput{
		UserID:     "user_1",
		MealType:   mt,
		FoodID:     name,
		FoodName:   name,
		Quantity:   quantity,
		PerServing: models.Serving{Calories: calories, Protein: 10, Carbs: 20, Fat: 5},
	})
}

var errStoreDown = errors.New("store unavailable")

// failingStore fails every call and counts them.
type failingStore struct {
	calls int
}

func (f *failingStore) Find(context.Context, storage.Key) (*storage.Record, error) {
	f.calls++
	return nil, errStoreDown
}

func (f *failingStore) Append(context.Context, storage.Key, storage.Shape, map[string][]json.RawMessage, map[string]float64) (*storage.Record, error) {
	f.calls++
	return nil, errStoreDown
}

func (f *failingStore) Replace(context.Context, storage.Key, *storage.Record) (*storage.Record, error) {
	f.calls++
	return nil, errStoreDown
}

func (f *failingStore) FindRange(context.Context, string, string, string, string) ([]*storage.Record, error) {
	f.calls++
	return nil, errStoreDown
}

func (f *failingStore) Close() error { return nil }

type staticRequirement float64

func (s staticRequirement) DailyCalories(context.Context, string) (float64, error) {
	return float64(s), nil
}

type fixedEstimator float64

func (f fixedEstimator) EstimateCalories(context.Context, string, int) (float64, error) {
	return float64(f), nil
}

type fixedNutrition models.Serving

func (f fixedNutrition) Nutrition(context.Context, string, string) (models.Serving, error) {
	return models.Serving(f), nil
}
