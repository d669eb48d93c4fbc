// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Calls tool and resource handlers directly against a SQLite-backed tracker.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/fitness/internal/diary"
	"github.com/harperreed/fitness/internal/goals"
	"github.com/harperreed/fitness/internal/lookup"
	"github.com/harperreed/fitness/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const today = "2024-03-10"

// setupTestServer creates a server over a temp SQLite store with a fixed clock.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "fitness.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tracker := diary.NewTracker(store, diary.Options{
		Requirements: goals.Static(2000),
		Goals:        goals.Profile{Gender: "male", Age: 30, HeightCm: 180, WeightKg: 80, ActivityLevel: "sedentary"},
		Estimator:    lookup.METEstimator{WeightKg: 70},
		Nutrition:    lookup.Descriptions{},
		Now:          func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) },
	})

	server, err := NewServer(tracker, "alice", nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func ptr(f float64) *float64 { return &f }

func TestNewServer(t *testing.T) {
	server := setupTestServer(t)
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.tracker == nil {
		t.Error("Expected non-nil tracker")
	}
}

func TestHandleLogMeal(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     logMealInput
		wantKcal  float64
		wantErr   bool
		errSubstr string
	}{
		{
			name:     "explicit per-serving values",
			input:    logMealInput{MealType: "breakfast", FoodName: "Oatmeal", Quantity: 1.5, Calories: ptr(200), Protein: 6},
			wantKcal: 300,
		},
		{
			name: "values from food description",
			input: logMealInput{
				MealType:        "lunch",
				FoodName:        "Chicken salad",
				FoodDescription: "Per 100g - Calories: 150kcal | Fat: 7.00g | Carbs: 4.00g | Protein: 18.00g",
				Quantity:        2,
			},
			wantKcal: 300,
		},
		{
			name:      "unknown meal type",
			input:     logMealInput{MealType: "brunch", FoodName: "Eggs", Quantity: 1, Calories: ptr(100)},
			wantErr:   true,
			errSubstr: "meal_type",
		},
		{
			name:      "no nutrition at all",
			input:     logMealInput{MealType: "dinner", FoodName: "Mystery", Quantity: 1},
			wantErr:   true,
			errSubstr: "food description",
		},
		{
			name:      "bad date",
			input:     logMealInput{Date: "March 3rd", MealType: "dinner", FoodName: "Soup", Quantity: 1, Calories: ptr(100)},
			wantErr:   true,
			errSubstr: "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleLogMeal(ctx, &mcp.CallToolRequest{}, tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if tt.errSubstr != "" && !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.EntryID == "" {
				t.Error("Expected non-empty EntryID")
			}
			doc, ok := output.Diary.(*diary.MealDocument)
			if !ok {
				t.Fatalf("Diary is %T, want *diary.MealDocument", output.Diary)
			}
			if doc.Date != today {
				t.Errorf("Date = %s, want %s", doc.Date, today)
			}
			if !strings.Contains(output.Message, "kcal") {
				t.Errorf("Message = %q", output.Message)
			}
			var found bool
			for _, e := range doc.All() {
				if e.ID.String() == output.EntryID {
					found = true
					if e.TotalCalories != tt.wantKcal {
						t.Errorf("TotalCalories = %v, want %v", e.TotalCalories, tt.wantKcal)
					}
				}
			}
			if !found {
				t.Errorf("entry %s not in diary", output.EntryID)
			}
		})
	}

	doc, err := server.tracker.Meals.Get(ctx, "alice", today)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Summary.TotalCalories != 600 {
		t.Errorf("TotalCalories = %v, want 600", doc.Summary.TotalCalories)
	}
}

func TestHandleLogExercise(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, output, err := server.handleLogExercise(ctx, &mcp.CallToolRequest{}, logExerciseInput{
		ExerciseType:    "running",
		DurationMinutes: 30,
		Intensity:       "high",
		Calories:        ptr(300),
	})
	if err != nil {
		t.Fatalf("handleLogExercise: %v", err)
	}
	doc := output.Diary.(*diary.ExerciseDocument)
	if doc.Summary.TotalCaloriesBurnt != 360 {
		t.Errorf("TotalCaloriesBurnt = %v, want 360", doc.Summary.TotalCaloriesBurnt)
	}

	// Estimated from MET when calories are omitted: 7.5 * 70 * 1h.
	_, output, err = server.handleLogExercise(ctx, &mcp.CallToolRequest{}, logExerciseInput{
		UserID:          "bob",
		ExerciseType:    "cycling",
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("handleLogExercise estimate: %v", err)
	}
	doc = output.Diary.(*diary.ExerciseDocument)
	if doc.UserID != "bob" {
		t.Errorf("UserID = %q, want bob", doc.UserID)
	}
	if got := doc.Summary.TotalCaloriesBurnt; got < 524.99 || got > 525.01 {
		t.Errorf("TotalCaloriesBurnt = %v, want 525", got)
	}
}

func TestHandleLogWeight(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, output, err := server.handleLogWeight(ctx, &mcp.CallToolRequest{}, logWeightInput{
		WeightInKg: 70.2,
		Notes:      "morning",
		Timestamp:  "2024-03-10T07:00:00Z",
	})
	if err != nil {
		t.Fatalf("handleLogWeight: %v", err)
	}
	doc := output.Diary.(*diary.WeightDocument)
	if len(doc.List("weights")) != 1 {
		t.Fatalf("weights = %d, want 1", len(doc.List("weights")))
	}

	if _, _, err := server.handleLogWeight(ctx, &mcp.CallToolRequest{}, logWeightInput{WeightInKg: 70, Timestamp: "yesterday"}); err == nil {
		t.Error("Expected error for invalid timestamp")
	}
	if _, _, err := server.handleLogWeight(ctx, &mcp.CallToolRequest{}, logWeightInput{WeightInKg: -1}); err == nil {
		t.Error("Expected error for negative weight")
	}
}

func TestHandleDeleteMeal(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	for _, name := range []string{"Toast", "Jam"} {
		if _, _, err := server.handleLogMeal(ctx, &mcp.CallToolRequest{}, logMealInput{MealType: "breakfast", FoodName: name, Quantity: 1, Calories: ptr(100)}); err != nil {
			t.Fatalf("log %s: %v", name, err)
		}
	}

	_, output, err := server.handleDeleteMeal(ctx, &mcp.CallToolRequest{}, deleteMealInput{Date: today, MealType: "breakfast", Index: 0})
	if err != nil {
		t.Fatalf("handleDeleteMeal: %v", err)
	}
	doc := output.Diary.(*diary.MealDocument)
	if doc.Summary.TotalCalories != 100 {
		t.Errorf("TotalCalories = %v, want 100", doc.Summary.TotalCalories)
	}
	if !strings.Contains(output.Message, "Toast") {
		t.Errorf("Message = %q, want it to name Toast", output.Message)
	}

	_, _, err = server.handleDeleteMeal(ctx, &mcp.CallToolRequest{}, deleteMealInput{Date: today, MealType: "breakfast", Index: 5})
	if !errors.Is(err, diary.ErrInvalidIndex) {
		t.Errorf("err = %v, want ErrInvalidIndex", err)
	}

	_, _, err = server.handleDeleteMeal(ctx, &mcp.CallToolRequest{}, deleteMealInput{Date: "2024-01-01", MealType: "breakfast", Index: 0})
	if err == nil || !strings.Contains(err.Error(), "nothing logged") {
		t.Errorf("err = %v, want nothing logged", err)
	}
}

func TestHandleDeleteExerciseTypeCheck(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogExercise(ctx, &mcp.CallToolRequest{}, logExerciseInput{ExerciseType: "swimming", DurationMinutes: 30, Calories: ptr(250)}); err != nil {
		t.Fatalf("log: %v", err)
	}

	_, _, err := server.handleDeleteExercise(ctx, &mcp.CallToolRequest{}, deleteExerciseInput{Date: today, Index: 0})
	var verr *diary.ValidationError
	if !errors.As(err, &verr) || verr.Field != "exercise_type" {
		t.Fatalf("err = %v, want exercise_type validation error", err)
	}

	_, _, err = server.handleDeleteExercise(ctx, &mcp.CallToolRequest{}, deleteExerciseInput{Date: today, Index: 0, ExerciseType: "running"})
	if !errors.Is(err, diary.ErrInconsistentState) {
		t.Fatalf("err = %v, want ErrInconsistentState", err)
	}

	_, output, err := server.handleDeleteExercise(ctx, &mcp.CallToolRequest{}, deleteExerciseInput{Date: today, Index: 0, ExerciseType: "swimming"})
	if err != nil {
		t.Fatalf("handleDeleteExercise: %v", err)
	}
	if doc := output.Diary.(*diary.ExerciseDocument); doc.Len() != 0 {
		t.Errorf("Len = %d, want 0", doc.Len())
	}
}

func TestHandleDeleteWeight(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogWeight(ctx, &mcp.CallToolRequest{}, logWeightInput{WeightInKg: 80}); err != nil {
		t.Fatalf("log: %v", err)
	}
	_, output, err := server.handleDeleteWeight(ctx, &mcp.CallToolRequest{}, deleteWeightInput{Date: today, Index: 0})
	if err != nil {
		t.Fatalf("handleDeleteWeight: %v", err)
	}
	if !strings.Contains(output.Message, "80.0 kg") {
		t.Errorf("Message = %q", output.Message)
	}
}

func TestHandleGetDiary(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogWeight(ctx, &mcp.CallToolRequest{}, logWeightInput{WeightInKg: 80}); err != nil {
		t.Fatalf("log: %v", err)
	}

	_, output, err := server.handleGetDiary(ctx, &mcp.CallToolRequest{}, getDiaryInput{})
	if err != nil {
		t.Fatalf("handleGetDiary: %v", err)
	}
	out := output.(map[string]any)
	if out["meal_diary"] != nil {
		t.Errorf("meal_diary = %v, want nil", out["meal_diary"])
	}
	if out["weight_diary"] == nil {
		t.Error("weight_diary should be present")
	}

	_, output, err = server.handleGetDiary(ctx, &mcp.CallToolRequest{}, getDiaryInput{Kind: "weight"})
	if err != nil {
		t.Fatalf("handleGetDiary weight: %v", err)
	}
	if _, ok := output.(map[string]any)["meal_diary"]; ok {
		t.Error("meal_diary should be omitted when kind is weight")
	}

	if _, _, err := server.handleGetDiary(ctx, &mcp.CallToolRequest{}, getDiaryInput{Kind: "sleep"}); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestHandleRollups(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogMeal(ctx, &mcp.CallToolRequest{}, logMealInput{MealType: "dinner", FoodName: "Pasta", Quantity: 1, Calories: ptr(2200)}); err != nil {
		t.Fatalf("log meal: %v", err)
	}
	if _, _, err := server.handleLogExercise(ctx, &mcp.CallToolRequest{}, logExerciseInput{ExerciseType: "walking", DurationMinutes: 60, Calories: ptr(400)}); err != nil {
		t.Fatalf("log exercise: %v", err)
	}

	_, balance, err := server.handleCaloricBalance(ctx, &mcp.CallToolRequest{}, balanceInput{})
	if err != nil {
		t.Fatalf("handleCaloricBalance: %v", err)
	}
	if balance.CaloricBalance.Status != diary.Surplus || balance.CaloricBalance.CaloriesDiff != 1800 {
		t.Errorf("balance = %+v, want surplus 1800", balance.CaloricBalance)
	}
	if balance.DailyCaloriesRequirement == nil || *balance.DailyCaloriesRequirement != 2000 {
		t.Errorf("requirement = %v, want 2000", balance.DailyCaloriesRequirement)
	}

	_, nutrition, err := server.handleWeeklyNutrition(ctx, &mcp.CallToolRequest{}, userInput{})
	if err != nil {
		t.Fatalf("handleWeeklyNutrition: %v", err)
	}
	if nutrition.DaysLogged != 1 || nutrition.DailyCalories[6] != 2200 {
		t.Errorf("nutrition = %+v", nutrition)
	}

	_, exercise, err := server.handleWeeklyExercise(ctx, &mcp.CallToolRequest{}, userInput{})
	if err != nil {
		t.Fatalf("handleWeeklyExercise: %v", err)
	}
	if len(exercise.LastWorkouts) != 1 {
		t.Errorf("LastWorkouts = %d, want 1", len(exercise.LastWorkouts))
	}

	if _, _, err := server.handleWeightHistory(ctx, &mcp.CallToolRequest{}, weightHistoryInput{Range: "5y"}); err == nil {
		t.Error("Expected error for unknown range")
	}

	if _, _, err := server.handleCaloricBalance(ctx, &mcp.CallToolRequest{}, balanceInput{Date: "2024-01-01"}); err == nil {
		t.Error("Expected error for a date with no diaries")
	}
}

func TestHandleNutritionGoals(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogMeal(ctx, &mcp.CallToolRequest{}, logMealInput{MealType: "lunch", FoodName: "Wrap", Quantity: 1, Calories: ptr(237), Protein: 30}); err != nil {
		t.Fatalf("log meal: %v", err)
	}

	_, progress, err := server.handleNutritionGoals(ctx, &mcp.CallToolRequest{}, goalsInput{})
	if err != nil {
		t.Fatalf("handleNutritionGoals: %v", err)
	}
	if progress.UserID != "alice" || progress.Date != today {
		t.Errorf("progress for %s on %s, want alice on %s", progress.UserID, progress.Date, today)
	}
	if progress.Goals.Calories != 2237 || progress.Goals.Protein != 80 {
		t.Errorf("goals = %+v, want 2237 kcal and 80g protein", progress.Goals)
	}
	if progress.Remaining.Calories != 2000 || progress.Remaining.Protein != 50 {
		t.Errorf("remaining = %+v, want 2000 kcal and 50g protein", progress.Remaining)
	}

	if _, _, err := server.handleNutritionGoals(ctx, &mcp.CallToolRequest{}, goalsInput{Date: "yesterday"}); err == nil {
		t.Error("Expected error for unparseable date")
	}
}

func TestHandleNutritionGoalsWithoutProfile(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "fitness.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	server, err := NewServer(diary.NewTracker(store, diary.Options{}), "alice", nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	_, _, err = server.handleNutritionGoals(context.Background(), &mcp.CallToolRequest{}, goalsInput{})
	if !errors.Is(err, diary.ErrNoGoals) {
		t.Errorf("got %v, want ErrNoGoals", err)
	}
}

func TestHandleTodayResource(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogMeal(ctx, &mcp.CallToolRequest{}, logMealInput{MealType: "lunch", FoodName: "Soup", Quantity: 1, Calories: ptr(250)}); err != nil {
		t.Fatalf("log: %v", err)
	}

	result, err := server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTodayResource: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].URI != todayURI {
		t.Fatalf("unexpected contents %+v", result.Contents)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if string(body["date"]) != `"`+today+`"` {
		t.Errorf("date = %s", body["date"])
	}
	if string(body["exercise_diary"]) != "null" {
		t.Errorf("exercise_diary = %s, want null", body["exercise_diary"])
	}
	if string(body["caloric_balance"]) != "null" {
		t.Errorf("caloric_balance = %s, want null without an exercise diary", body["caloric_balance"])
	}

	if _, _, err := server.handleLogExercise(ctx, &mcp.CallToolRequest{}, logExerciseInput{ExerciseType: "yoga", DurationMinutes: 20, Calories: ptr(100)}); err != nil {
		t.Fatalf("log exercise: %v", err)
	}
	result, err = server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTodayResource: %v", err)
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !strings.Contains(string(body["caloric_balance"]), `"surplus"`) {
		t.Errorf("caloric_balance = %s", body["caloric_balance"])
	}
}

func TestHandleTodayResourceEmpty(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleTodayResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTodayResource: %v", err)
	}
	if !strings.Contains(result.Contents[0].Text, `"caloric_balance": null`) {
		t.Errorf("expected null balance, got %s", result.Contents[0].Text)
	}
}

func TestHandleWeekResource(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogWeight(ctx, &mcp.CallToolRequest{}, logWeightInput{Date: "2024-03-08", WeightInKg: 81}); err != nil {
		t.Fatalf("log: %v", err)
	}

	result, err := server.handleWeekResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleWeekResource: %v", err)
	}

	var body struct {
		UserID    string                `json:"user_id"`
		Nutrition diary.WeeklyNutrition `json:"nutrition"`
		Weight    diary.WeightHistory   `json:"weight"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.UserID != "alice" {
		t.Errorf("user_id = %q", body.UserID)
	}
	if len(body.Nutrition.Dates) != 7 {
		t.Errorf("dates = %d, want 7", len(body.Nutrition.Dates))
	}
	if len(body.Weight.Points) != 1 {
		t.Errorf("weight points = %d, want 1", len(body.Weight.Points))
	}
}
