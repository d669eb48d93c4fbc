// ABOUTME: MCP tool implementations for meal, exercise and weight diaries.
// ABOUTME: Logging, positional deletes, diary reads and weekly, balance and weight rollups.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/fitness/internal/diary"
	"github.com/harperreed/fitness/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_meal",
		Description: "Log a food to a meal (breakfast, lunch, dinner, snacks). Totals are per-serving values times quantity.",
	}, s.handleLogMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_exercise",
		Description: "Log an exercise session. Calories are adjusted by intensity (low 0.9, moderate 1.0, high 1.2).",
	}, s.handleLogExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_weight",
		Description: "Log a body weight measurement in kilograms",
	}, s.handleLogWeight)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_meal",
		Description: "Delete the entry at a zero-based index of a meal list",
	}, s.handleDeleteMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_exercise",
		Description: "Delete the exercise at a zero-based index, optionally checking its type first",
	}, s.handleDeleteExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_weight",
		Description: "Delete the weight entry at a zero-based index",
	}, s.handleDeleteWeight)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_diary",
		Description: "Get the meal, exercise and weight diaries for a date",
	}, s.handleGetDiary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "weekly_nutrition",
		Description: "Daily calories, average macros and recent meals for the last seven days",
	}, s.handleWeeklyNutrition)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "weekly_exercise",
		Description: "Workouts per day, calories burnt and the last three workouts for the last seven days",
	}, s.handleWeeklyExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "caloric_balance",
		Description: "Compare calories eaten with calories burnt on a date",
	}, s.handleCaloricBalance)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "nutrition_goals",
		Description: "Daily calorie and macro goals from the user's profile, with what is left on a date",
	}, s.handleNutritionGoals)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "weight_history",
		Description: "Weight measurements over a range (1d, 1w, 1m, 3m, 6m, 1y)",
	}, s.handleWeightHistory)
}

// Tool input/output types

type logMealInput struct {
	UserID          string   `json:"user_id,omitempty" jsonschema:"User to log for; defaults to the configured user"`
	Date            string   `json:"date,omitempty" jsonschema:"Diary date (YYYY-MM-DD), defaults to today"`
	MealType        string   `json:"meal_type" jsonschema:"One of breakfast, lunch, dinner, snacks"`
	FoodName        string   `json:"food_name" jsonschema:"Name of the food"`
	FoodID          string   `json:"food_id,omitempty" jsonschema:"Identifier from the nutrition database"`
	FoodDescription string   `json:"food_description,omitempty" jsonschema:"Nutrition text such as 'Per 100g - Calories: 200kcal | Fat: 10.00g | Carbs: 20.00g | Protein: 5.00g'"`
	Quantity        float64  `json:"quantity" jsonschema:"Servings eaten, at least 0.1"`
	Calories        *float64 `json:"calories,omitempty" jsonschema:"Calories per serving; omit to read them from food_description"`
	Fat             float64  `json:"fat,omitempty" jsonschema:"Fat grams per serving"`
	Carbs           float64  `json:"carbs,omitempty" jsonschema:"Carbohydrate grams per serving"`
	Protein         float64  `json:"protein,omitempty" jsonschema:"Protein grams per serving"`
}

type logExerciseInput struct {
	UserID          string   `json:"user_id,omitempty" jsonschema:"User to log for; defaults to the configured user"`
	Date            string   `json:"date,omitempty" jsonschema:"Diary date (YYYY-MM-DD), defaults to today"`
	ExerciseType    string   `json:"exercise_type" jsonschema:"Kind of exercise (running, cycling, yoga, etc.)"`
	DurationMinutes int      `json:"duration_minutes" jsonschema:"Duration in minutes"`
	Intensity       string   `json:"intensity,omitempty" jsonschema:"low, moderate or high"`
	Calories        *float64 `json:"calories,omitempty" jsonschema:"Base calories burnt before intensity adjustment; omit to estimate"`
}

type logWeightInput struct {
	UserID     string  `json:"user_id,omitempty" jsonschema:"User to log for; defaults to the configured user"`
	Date       string  `json:"date,omitempty" jsonschema:"Diary date (YYYY-MM-DD), defaults to today"`
	WeightInKg float64 `json:"weight_in_kg" jsonschema:"Body weight in kilograms"`
	Notes      string  `json:"notes,omitempty" jsonschema:"Optional notes"`
	Timestamp  string  `json:"timestamp,omitempty" jsonschema:"Measurement time (RFC 3339)"`
}

type deleteMealInput struct {
	UserID   string `json:"user_id,omitempty" jsonschema:"User to act for; defaults to the configured user"`
	Date     string `json:"date" jsonschema:"Diary date (YYYY-MM-DD)"`
	MealType string `json:"meal_type" jsonschema:"One of breakfast, lunch, dinner, snacks"`
	Index    int    `json:"index" jsonschema:"Zero-based position in the meal list"`
}

type deleteExerciseInput struct {
	UserID       string `json:"user_id,omitempty" jsonschema:"User to act for; defaults to the configured user"`
	Date         string `json:"date" jsonschema:"Diary date (YYYY-MM-DD)"`
	Index        int    `json:"index" jsonschema:"Zero-based position in the exercise list"`
	ExerciseType string `json:"exercise_type" jsonschema:"Exercise type of the entry at the index; the delete is refused on mismatch"`
}

type deleteWeightInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User to act for; defaults to the configured user"`
	Date   string `json:"date" jsonschema:"Diary date (YYYY-MM-DD)"`
	Index  int    `json:"index" jsonschema:"Zero-based position in the weight list"`
}

type getDiaryInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User to read; defaults to the configured user"`
	Date   string `json:"date,omitempty" jsonschema:"Diary date (YYYY-MM-DD), defaults to today"`
	Kind   string `json:"kind,omitempty" jsonschema:"meal, exercise or weight; omit for all three"`
}

type userInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User to read; defaults to the configured user"`
}

type balanceInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User to read; defaults to the configured user"`
	Date   string `json:"date,omitempty" jsonschema:"Date (YYYY-MM-DD), defaults to today"`
}

type goalsInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User to read; defaults to the configured user"`
	Date   string `json:"date,omitempty" jsonschema:"Date (YYYY-MM-DD), defaults to today"`
}

type weightHistoryInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User to read; defaults to the configured user"`
	Range  string `json:"range,omitempty" jsonschema:"1d, 1w, 1m, 3m, 6m or 1y; defaults to 1w"`
}

type diaryOutput struct {
	Message string `json:"message"`
	EntryID string `json:"entry_id,omitempty"`
	Diary   any    `json:"diary"`
}

func (s *Server) user(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.userID
}

func (s *Server) date(d string) (models.Date, error) {
	if d = strings.TrimSpace(d); d == "" {
		return s.tracker.Today(), nil
	}
	return models.ParseDate(d)
}

// toolError rewrites diary errors into messages a model can act on.
func toolError(action string, err error) error {
	switch {
	case errors.Is(err, diary.ErrNotFound):
		return fmt.Errorf("%s: nothing logged for that date", action)
	case errors.Is(err, diary.ErrInvalidIndex), errors.Is(err, diary.ErrInconsistentState):
		return fmt.Errorf("%s: %w; read the diary again and retry with the current index", action, err)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

// Tool handlers

func (s *Server) handleLogMeal(ctx context.Context, req *mcp.CallToolRequest, input logMealInput) (*mcp.CallToolResult, diaryOutput, error) {
	date, err := s.date(input.Date)
	if err != nil {
		return nil, diaryOutput{}, err
	}
	mreq := diary.MealRequest{
		MealType:        input.MealType,
		FoodID:          input.FoodID,
		FoodName:        input.FoodName,
		FoodDescription: input.FoodDescription,
		Quantity:        input.Quantity,
	}
	if input.Calories != nil {
		mreq.PerServing = &models.Serving{
			Calories: *input.Calories,
			Fat:      input.Fat,
			Carbs:    input.Carbs,
			Protein:  input.Protein,
		}
	}

	doc, entry, err := s.tracker.LogMeal(ctx, s.user(input.UserID), date, mreq)
	if err != nil {
		return nil, diaryOutput{}, toolError("log meal", err)
	}
	return nil, diaryOutput{
		Message: fmt.Sprintf("Logged %s for %s: %.0f kcal (day total %.0f kcal)",
			entry.FoodName, entry.MealType, entry.TotalCalories, doc.Summary.TotalCalories),
		EntryID: entry.ID.String(),
		Diary:   doc,
	}, nil
}

func (s *Server) handleLogExercise(ctx context.Context, req *mcp.CallToolRequest, input logExerciseInput) (*mcp.CallToolResult, diaryOutput, error) {
	date, err := s.date(input.Date)
	if err != nil {
		return nil, diaryOutput{}, err
	}
	doc, entry, err := s.tracker.LogExercise(ctx, s.user(input.UserID), date, diary.ExerciseRequest{
		ExerciseType:    input.ExerciseType,
		DurationMinutes: input.DurationMinutes,
		Intensity:       input.Intensity,
		BaseCalories:    input.Calories,
	})
	if err != nil {
		return nil, diaryOutput{}, toolError("log exercise", err)
	}
	return nil, diaryOutput{
		Message: fmt.Sprintf("Logged %d min of %s: %.0f kcal burnt (day total %.0f kcal)",
			entry.DurationMinutes, entry.ExerciseType, entry.CaloriesBurnt, doc.Summary.TotalCaloriesBurnt),
		EntryID: entry.ID.String(),
		Diary:   doc,
	}, nil
}

func (s *Server) handleLogWeight(ctx context.Context, req *mcp.CallToolRequest, input logWeightInput) (*mcp.CallToolResult, diaryOutput, error) {
	date, err := s.date(input.Date)
	if err != nil {
		return nil, diaryOutput{}, err
	}
	wreq := diary.WeightRequest{WeightInKg: input.WeightInKg, Notes: input.Notes}
	if input.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, input.Timestamp)
		if err != nil {
			return nil, diaryOutput{}, fmt.Errorf("timestamp must be RFC 3339: %w", err)
		}
		wreq.Timestamp = &ts
	}

	doc, entry, err := s.tracker.LogWeight(ctx, s.user(input.UserID), date, wreq)
	if err != nil {
		return nil, diaryOutput{}, toolError("log weight", err)
	}
	return nil, diaryOutput{
		Message: fmt.Sprintf("Logged %.1f kg on %s", entry.WeightInKg, date),
		EntryID: entry.ID.String(),
		Diary:   doc,
	}, nil
}

func (s *Server) handleDeleteMeal(ctx context.Context, req *mcp.CallToolRequest, input deleteMealInput) (*mcp.CallToolResult, diaryOutput, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, diaryOutput{}, err
	}
	doc, removed, err := s.tracker.DeleteMeal(ctx, s.user(input.UserID), date, input.MealType, input.Index)
	if err != nil {
		return nil, diaryOutput{}, toolError("delete meal", err)
	}
	return nil, diaryOutput{
		Message: fmt.Sprintf("Deleted %s from %s (day total now %.0f kcal)", removed.FoodName, removed.MealType, doc.Summary.TotalCalories),
		EntryID: removed.ID.String(),
		Diary:   doc,
	}, nil
}

func (s *Server) handleDeleteExercise(ctx context.Context, req *mcp.CallToolRequest, input deleteExerciseInput) (*mcp.CallToolResult, diaryOutput, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, diaryOutput{}, err
	}
	doc, removed, err := s.tracker.DeleteExercise(ctx, s.user(input.UserID), date, input.Index, input.ExerciseType)
	if err != nil {
		return nil, diaryOutput{}, toolError("delete exercise", err)
	}
	return nil, diaryOutput{
		Message: fmt.Sprintf("Deleted %s (day total now %.0f kcal burnt)", removed.ExerciseType, doc.Summary.TotalCaloriesBurnt),
		EntryID: removed.ID.String(),
		Diary:   doc,
	}, nil
}

func (s *Server) handleDeleteWeight(ctx context.Context, req *mcp.CallToolRequest, input deleteWeightInput) (*mcp.CallToolResult, diaryOutput, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, diaryOutput{}, err
	}
	doc, removed, err := s.tracker.DeleteWeight(ctx, s.user(input.UserID), date, input.Index)
	if err != nil {
		return nil, diaryOutput{}, toolError("delete weight", err)
	}
	return nil, diaryOutput{
		Message: fmt.Sprintf("Deleted %.1f kg entry", removed.WeightInKg),
		EntryID: removed.ID.String(),
		Diary:   doc,
	}, nil
}

// dayDiaries reads every requested kind for one date. Missing diaries are nil.
func (s *Server) dayDiaries(ctx context.Context, userID string, date models.Date, kind string) (map[string]any, error) {
	out := map[string]any{"user_id": userID, "date": date}
	want := func(k string) bool { return kind == "" || kind == k }

	if kind != "" && kind != "meal" && kind != "exercise" && kind != "weight" {
		return nil, fmt.Errorf("unknown diary kind %q (want meal, exercise or weight)", kind)
	}
	if want("meal") {
		doc, err := s.tracker.Meals.Get(ctx, userID, date)
		if err := keepMissing(err); err != nil {
			return nil, err
		}
		out["meal_diary"] = nilIfMissing(doc)
	}
	if want("exercise") {
		doc, err := s.tracker.Exercise.Get(ctx, userID, date)
		if err := keepMissing(err); err != nil {
			return nil, err
		}
		out["exercise_diary"] = nilIfMissing(doc)
	}
	if want("weight") {
		doc, err := s.tracker.Weight.Get(ctx, userID, date)
		if err := keepMissing(err); err != nil {
			return nil, err
		}
		out["weight_diary"] = nilIfMissing(doc)
	}
	return out, nil
}

func keepMissing(err error) error {
	if errors.Is(err, diary.ErrNotFound) {
		return nil
	}
	return err
}

// nilIfMissing keeps a typed nil pointer from marshaling as a document.
func nilIfMissing[T any](doc *T) any {
	if doc == nil {
		return nil
	}
	return doc
}

func (s *Server) handleGetDiary(ctx context.Context, req *mcp.CallToolRequest, input getDiaryInput) (*mcp.CallToolResult, any, error) {
	date, err := s.date(input.Date)
	if err != nil {
		return nil, nil, err
	}
	out, err := s.dayDiaries(ctx, s.user(input.UserID), date, strings.ToLower(strings.TrimSpace(input.Kind)))
	if err != nil {
		return nil, nil, toolError("get diary", err)
	}
	return nil, out, nil
}

func (s *Server) handleWeeklyNutrition(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, diary.WeeklyNutrition, error) {
	w, err := s.tracker.WeeklyNutrition(ctx, s.user(input.UserID))
	if err != nil {
		return nil, diary.WeeklyNutrition{}, toolError("weekly nutrition", err)
	}
	return nil, *w, nil
}

func (s *Server) handleWeeklyExercise(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, diary.WeeklyExercise, error) {
	w, err := s.tracker.WeeklyExercise(ctx, s.user(input.UserID))
	if err != nil {
		return nil, diary.WeeklyExercise{}, toolError("weekly exercise", err)
	}
	return nil, *w, nil
}

func (s *Server) handleCaloricBalance(ctx context.Context, req *mcp.CallToolRequest, input balanceInput) (*mcp.CallToolResult, diary.CaloricBalance, error) {
	date, err := s.date(input.Date)
	if err != nil {
		return nil, diary.CaloricBalance{}, err
	}
	b, err := s.tracker.CaloricBalance(ctx, s.user(input.UserID), date)
	if err != nil {
		return nil, diary.CaloricBalance{}, toolError("caloric balance", err)
	}
	return nil, *b, nil
}

func (s *Server) handleNutritionGoals(ctx context.Context, req *mcp.CallToolRequest, input goalsInput) (*mcp.CallToolResult, diary.GoalProgress, error) {
	date, err := s.date(input.Date)
	if err != nil {
		return nil, diary.GoalProgress{}, err
	}
	p, err := s.tracker.NutritionGoals(ctx, s.user(input.UserID), date)
	if err != nil {
		return nil, diary.GoalProgress{}, toolError("nutrition goals", err)
	}
	return nil, *p, nil
}

func (s *Server) handleWeightHistory(ctx context.Context, req *mcp.CallToolRequest, input weightHistoryInput) (*mcp.CallToolResult, diary.WeightHistory, error) {
	h, err := s.tracker.WeightHistory(ctx, s.user(input.UserID), input.Range)
	if err != nil {
		return nil, diary.WeightHistory{}, toolError("weight history", err)
	}
	return nil, *h, nil
}
