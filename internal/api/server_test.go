// ABOUTME: Tests for the HTTP API.
// ABOUTME: Drives the chi router through httptest against a SQLite-backed tracker.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/fitness/internal/diary"
	"github.com/harperreed/fitness/internal/goals"
	"github.com/harperreed/fitness/internal/lookup"
	"github.com/harperreed/fitness/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "fitness.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tracker := diary.NewTracker(store, diary.Options{
		Requirements: goals.Static(2000),
		Nutrition:    lookup.Descriptions{},
		Now:          func() time.Time { return time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC) },
	})
	return NewServer(tracker, Options{})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	s := setupTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMealLifecycle(t *testing.T) {
	s := setupTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/users/user_1/meals", map[string]any{
		"date":              "2024-01-01",
		"meal_type":         "breakfast",
		"food_id":           "oat",
		"food_name":         "Oatmeal",
		"quantity_consumed": 1.5,
		"per_serving":       map[string]float64{"calories": 200, "protein": 6},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	diaryDoc := body["diary"].(map[string]any)
	summary := diaryDoc["daily_nutrition_summary"].(map[string]any)
	assert.Equal(t, 300.0, summary["total_calories"])

	rec = do(t, s, http.MethodPost, "/v1/users/user_1/meals", map[string]any{
		"date":              "2024-01-01",
		"meal_type":         "lunch",
		"food_name":         "Salad",
		"food_description":  "Per bowl - Calories: 400kcal | Fat: 20.00g | Carbs: 30.00g | Protein: 10.00g",
		"quantity_consumed": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/users/user_1/meals/2024-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary = decodeBody(t, rec)["daily_nutrition_summary"].(map[string]any)
	assert.Equal(t, 700.0, summary["total_calories"])

	rec = do(t, s, http.MethodDelete, "/v1/users/user_1/meals/2024-01-01/breakfast/0", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody(t, rec)
	assert.Equal(t, "Oatmeal", body["entry"].(map[string]any)["food_name"])
	summary = body["diary"].(map[string]any)["daily_nutrition_summary"].(map[string]any)
	assert.Equal(t, 400.0, summary["total_calories"])

	rec = do(t, s, http.MethodGet, "/v1/users/user_1/meals?start=2024-01-01&end=2024-01-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)
}

func TestErrorStatuses(t *testing.T) {
	s := setupTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/users/u/exercise", map[string]any{
		"date": "2024-01-01", "exercise_type": "running", "duration_minutes": 30, "base_calories": 300,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing diary", http.MethodGet, "/v1/users/u/meals/2024-01-01", nil, http.StatusNotFound},
		{"bad date", http.MethodGet, "/v1/users/u/meals/2024-1-1", nil, http.StatusBadRequest},
		{"bad index", http.MethodDelete, "/v1/users/u/exercise/2024-01-01/abc", nil, http.StatusBadRequest},
		{"index out of range", http.MethodDelete, "/v1/users/u/exercise/2024-01-01/1?exercise_type=running", nil, http.StatusConflict},
		{"missing exercise type", http.MethodDelete, "/v1/users/u/exercise/2024-01-01/0", nil, http.StatusBadRequest},
		{"type mismatch", http.MethodDelete, "/v1/users/u/exercise/2024-01-01/0?exercise_type=yoga", nil, http.StatusConflict},
		{"unknown field", http.MethodPost, "/v1/users/u/weight", map[string]any{"kg": 80}, http.StatusBadRequest},
		{"invalid weight", http.MethodPost, "/v1/users/u/weight", map[string]any{"weight_in_kg": 0}, http.StatusBadRequest},
		{"unparseable description", http.MethodPost, "/v1/users/u/meals", map[string]any{
			"meal_type": "lunch", "food_name": "x", "food_description": "tasty", "quantity_consumed": 1,
		}, http.StatusBadRequest},
		{"no balance", http.MethodGet, "/v1/users/u/balance/2023-06-01", nil, http.StatusNotFound},
		{"balance without meals", http.MethodGet, "/v1/users/u/balance/2024-01-01", nil, http.StatusNotFound},
		{"no goals", http.MethodGet, "/v1/users/u/goals", nil, http.StatusNotFound},
		{"bad range", http.MethodGet, "/v1/users/u/weight?range=10y", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, decodeBody(t, rec), "error")
		})
	}

	// The failed deletes changed nothing.
	rec = do(t, s, http.MethodGet, "/v1/users/u/exercise/2024-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody(t, rec)["daily_exercise_summary"].(map[string]any)
	assert.Equal(t, 300.0, summary["total_calories_burnt"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(&diary.StorageError{Op: "find", Err: errors.New("down")}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusBadRequest, statusFor(&diary.ValidationError{Field: "x", Reason: "y"}))
}

func TestRollupsAndBalance(t *testing.T) {
	s := setupTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/users/u/meals", map[string]any{
		"date": "2024-01-05", "meal_type": "dinner", "food_name": "Curry",
		"quantity_consumed": 1, "per_serving": map[string]float64{"calories": 2200},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, s, http.MethodPost, "/v1/users/u/exercise", map[string]any{
		"date": "2024-01-05", "exercise_type": "walk", "duration_minutes": 60, "base_calories": 400,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, s, http.MethodPost, "/v1/users/u/weight", map[string]any{"weight_in_kg": 80.5, "notes": "gym"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/users/u/balance/2024-01-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"user_id": "u",
		"date": "2024-01-05",
		"daily_calories_requirement": 2000,
		"total_calories_intake": 2200,
		"total_calories_burnt": 400,
		"caloric_balance": {"status": "surplus", "calories_diff": 1800}
	}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/users/u/summary/nutrition", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 1.0, body["days_logged"])
	assert.Len(t, body["daily_calories"], 7)

	rec = do(t, s, http.MethodGet, "/v1/users/u/summary/exercise", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 400.0, decodeBody(t, rec)["total_calories_burnt"])

	rec = do(t, s, http.MethodGet, "/v1/users/u/weight?range=1w", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["points"], 1)

	rec = do(t, s, http.MethodGet, "/v1/users/u/weight/2024-01-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodDelete, "/v1/users/u/weight/2024-01-07/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNutritionGoals(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "fitness.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tracker := diary.NewTracker(store, diary.Options{
		Goals: goals.Profile{Gender: "male", Age: 30, HeightCm: 180, WeightKg: 80, ActivityLevel: "sedentary"},
		Now:   func() time.Time { return time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC) },
	})
	s := NewServer(tracker, Options{})

	rec := do(t, s, http.MethodPost, "/v1/users/u/meals", map[string]any{
		"meal_type": "lunch", "food_name": "Bowl", "quantity_consumed": 1,
		"per_serving": map[string]float64{"calories": 737, "protein": 40},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/users/u/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "2024-01-07", body["date"])
	assert.Equal(t, 2237.0, body["goals"].(map[string]any)["total_calories_goal"])
	remaining := body["remaining"].(map[string]any)
	assert.Equal(t, 1500.0, remaining["total_calories_goal"])
	assert.Equal(t, 40.0, remaining["total_protein_goal"])

	rec = do(t, s, http.MethodGet, "/v1/users/u/goals?date=2024-01-06", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2237.0, decodeBody(t, rec)["remaining"].(map[string]any)["total_calories_goal"])

	rec = do(t, s, http.MethodGet, "/v1/users/u/goals?date=soon", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := setupTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/users/u/meals", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
