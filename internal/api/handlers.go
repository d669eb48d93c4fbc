// ABOUTME: HTTP handlers for meal, exercise and weight diaries and their rollups.
// ABOUTME: Path parameters are validated here; everything else is the Tracker's job.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/harperreed/fitness/internal/models"
)

func badRequest(field, format string, args ...any) error {
	return &diary.ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("body", "%v", err)
	}
	return nil
}

func pathDate(r *http.Request) (models.Date, error) {
	return models.ParseDate(chi.URLParam(r, "date"))
}

func pathIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("index", "%q is not an integer", raw)
	}
	return i, nil
}

// bodyDate returns d, or today when it is empty.
func (s *Server) bodyDate(d models.Date) (models.Date, error) {
	if d == "" {
		return s.tracker.Today(), nil
	}
	return models.ParseDate(string(d))
}

// queryRange reads start and end; both default to today.
func (s *Server) queryRange(r *http.Request) (models.Date, models.Date, error) {
	today := s.tracker.Today()
	start, end := today, today
	var err error
	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = models.ParseDate(v); err != nil {
			return "", "", err
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = models.ParseDate(v); err != nil {
			return "", "", err
		}
	}
	return start, end, nil
}

type entryResponse struct {
	Entry any `json:"entry"`
	Diary any `json:"diary"`
}

// Meals

type mealBody struct {
	Date models.Date `json:"date,omitempty"`
	diary.MealRequest
}

func (s *Server) logMeal(w http.ResponseWriter, r *http.Request) {
	var body mealBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := s.bodyDate(body.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, entry, err := s.tracker.LogMeal(r.Context(), chi.URLParam(r, "userID"), date, body.MealRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entryResponse{Entry: entry, Diary: doc})
}

func (s *Server) getMeals(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.tracker.Meals.Get(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) mealRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.queryRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	docs, err := s.tracker.Meals.Range(r.Context(), chi.URLParam(r, "userID"), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) deleteMeal(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, removed, err := s.tracker.DeleteMeal(r.Context(), chi.URLParam(r, "userID"), date, chi.URLParam(r, "mealType"), index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entryResponse{Entry: removed, Diary: doc})
}

// Exercise

type exerciseBody struct {
	Date models.Date `json:"date,omitempty"`
	diary.ExerciseRequest
}

func (s *Server) logExercise(w http.ResponseWriter, r *http.Request) {
	var body exerciseBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := s.bodyDate(body.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, entry, err := s.tracker.LogExercise(r.Context(), chi.URLParam(r, "userID"), date, body.ExerciseRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entryResponse{Entry: entry, Diary: doc})
}

func (s *Server) getExercise(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.tracker.Exercise.Get(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) exerciseRange(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.queryRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	docs, err := s.tracker.Exercise.Range(r.Context(), chi.URLParam(r, "userID"), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) deleteExercise(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	expected := r.URL.Query().Get("exercise_type")
	doc, removed, err := s.tracker.DeleteExercise(r.Context(), chi.URLParam(r, "userID"), date, index, expected)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entryResponse{Entry: removed, Diary: doc})
}

// Weight

type weightBody struct {
	Date models.Date `json:"date,omitempty"`
	diary.WeightRequest
}

func (s *Server) logWeight(w http.ResponseWriter, r *http.Request) {
	var body weightBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	date, err := s.bodyDate(body.Date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, entry, err := s.tracker.LogWeight(r.Context(), chi.URLParam(r, "userID"), date, body.WeightRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entryResponse{Entry: entry, Diary: doc})
}

func (s *Server) getWeight(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.tracker.Weight.Get(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) weightHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.tracker.WeightHistory(r.Context(), chi.URLParam(r, "userID"), r.URL.Query().Get("range"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) deleteWeight(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := pathIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, removed, err := s.tracker.DeleteWeight(r.Context(), chi.URLParam(r, "userID"), date, index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entryResponse{Entry: removed, Diary: doc})
}

// Rollups

func (s *Server) weeklyNutrition(w http.ResponseWriter, r *http.Request) {
	out, err := s.tracker.WeeklyNutrition(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) weeklyExercise(w http.ResponseWriter, r *http.Request) {
	out, err := s.tracker.WeeklyExercise(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) caloricBalance(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.tracker.CaloricBalance(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) nutritionGoals(w http.ResponseWriter, r *http.Request) {
	date, err := s.bodyDate(models.Date(r.URL.Query().Get("date")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.tracker.NutritionGoals(r.Context(), chi.URLParam(r, "userID"), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
