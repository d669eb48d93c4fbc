// ABOUTME: Export and import of a user's diaries.
// ABOUTME: Supports JSON, YAML, and Markdown export formats; imports JSON.
package diary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/fitness/internal/models"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for one user's diaries.
type ExportData struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Tool       string              `json:"tool"`
	UserID     string              `json:"user_id"`
	Meals      []*MealDocument     `json:"meal_diaries"`
	Exercise   []*ExerciseDocument `json:"exercise_diaries"`
	Weight     []*WeightDocument   `json:"weight_diaries"`
}

// Export collects the user's diaries of every kind between start and end.
func (t *Tracker) Export(ctx context.Context, userID string, start, end models.Date) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "fitness",
		UserID:     userID,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := t.Meals.Range(gctx, userID, start, end)
		data.Meals = docs
		return err
	})
	g.Go(func() error {
		docs, err := t.Exercise.Range(gctx, userID, start, end)
		data.Exercise = docs
		return err
	})
	g.Go(func() error {
		docs, err := t.Weight.Range(gctx, userID, start, end)
		data.Weight = docs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// ImportSummary counts imported diaries per kind.
type ImportSummary struct {
	Meals    int
	Exercise int
	Weight   int
}

// Import writes every diary in data, replacing existing diaries for the same
// user and date. Summaries are recomputed from the entries. Diaries without a
// user take userID.
func (t *Tracker) Import(ctx context.Context, userID string, data *ExportData) (*ImportSummary, error) {
	summary := &ImportSummary{}
	var err error
	if summary.Meals, err = importDocs(ctx, t.Meals, userID, data.Meals); err != nil {
		return nil, err
	}
	if summary.Exercise, err = importDocs(ctx, t.Exercise, userID, data.Exercise); err != nil {
		return nil, err
	}
	if summary.Weight, err = importDocs(ctx, t.Weight, userID, data.Weight); err != nil {
		return nil, err
	}
	return summary, nil
}

func importDocs[E Entry[S], S Summary[S]](ctx context.Context, s *Service[E, S], userID string, docs []*Document[E, S]) (int, error) {
	n := 0
	for _, doc := range docs {
		if doc.UserID == "" {
			doc.UserID = userID
		}
		if _, err := s.Put(ctx, doc); err != nil {
			return n, fmt.Errorf("import %s diary %s: %w", s.kind.Name, doc.Date, err)
		}
		n++
	}
	return n, nil
}

// Put validates doc, recomputes its summary and replaces the stored diary.
func (s *Service[E, S]) Put(ctx context.Context, doc *Document[E, S]) (*Document[E, S], error) {
	if err := validateOwner(doc.UserID, doc.Date); err != nil {
		return nil, err
	}
	for _, list := range s.kind.Lists {
		for _, e := range doc.Entries[list] {
			if err := e.Validate(); err != nil {
				return nil, err
			}
			if e.ListName() != list {
				return nil, invalid("list", "entry for %q filed under %q", e.ListName(), list)
			}
		}
	}
	doc.kind = s.kind
	doc.Summary = s.kind.Recompute(doc.Entries)

	rec, err := s.kind.encode(doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Replace(ctx, s.key(doc.UserID, doc.Date), rec); err != nil {
		return nil, storageErr("replace", err)
	}
	return doc, nil
}

// ToJSON renders the export as indented JSON.
func (d *ExportData) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ParseExportJSON reads an export produced by ToJSON.
func ParseExportJSON(data []byte) (*ExportData, error) {
	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return &export, nil
}

type yamlMeal struct {
	ID       string  `yaml:"id"`
	Food     string  `yaml:"food"`
	Quantity float64 `yaml:"quantity"`
	Calories float64 `yaml:"calories"`
	Protein  float64 `yaml:"protein"`
	Carbs    float64 `yaml:"carbs"`
	Fat      float64 `yaml:"fat"`
}

type yamlMealDay struct {
	Date          string                `yaml:"date"`
	TotalCalories float64               `yaml:"total_calories"`
	TotalProtein  float64               `yaml:"total_protein"`
	TotalCarbs    float64               `yaml:"total_carbs"`
	TotalFat      float64               `yaml:"total_fat"`
	Meals         map[string][]yamlMeal `yaml:"meals"`
}

type yamlExercise struct {
	ID        string  `yaml:"id"`
	Type      string  `yaml:"type"`
	Duration  int     `yaml:"duration_minutes"`
	Calories  float64 `yaml:"calories_burnt"`
	Intensity string  `yaml:"intensity,omitempty"`
}

type yamlExerciseDay struct {
	Date               string         `yaml:"date"`
	TotalCaloriesBurnt float64        `yaml:"total_calories_burnt"`
	TotalDuration      int            `yaml:"total_duration"`
	Exercises          []yamlExercise `yaml:"exercises"`
}

type yamlWeight struct {
	ID        string  `yaml:"id"`
	Kg        float64 `yaml:"weight_in_kg"`
	Notes     string  `yaml:"notes,omitempty"`
	Timestamp string  `yaml:"timestamp,omitempty"`
}

type yamlWeightDay struct {
	Date    string       `yaml:"date"`
	Weights []yamlWeight `yaml:"weights"`
}

// ToYAML renders the export as YAML with short entry ids.
func (d *ExportData) ToYAML() ([]byte, error) {
	yamlData := struct {
		Version    string            `yaml:"version"`
		ExportedAt string            `yaml:"exported_at"`
		Tool       string            `yaml:"tool"`
		UserID     string            `yaml:"user_id"`
		Meals      []yamlMealDay     `yaml:"meals"`
		Exercise   []yamlExerciseDay `yaml:"exercise"`
		Weight     []yamlWeightDay   `yaml:"weight"`
	}{
		Version:    d.Version,
		ExportedAt: d.ExportedAt.Format(time.RFC3339),
		Tool:       d.Tool,
		UserID:     d.UserID,
		Meals:      make([]yamlMealDay, 0, len(d.Meals)),
		Exercise:   make([]yamlExerciseDay, 0, len(d.Exercise)),
		Weight:     make([]yamlWeightDay, 0, len(d.Weight)),
	}

	for _, doc := range d.Meals {
		day := yamlMealDay{
			Date:          string(doc.Date),
			TotalCalories: doc.Summary.TotalCalories,
			TotalProtein:  doc.Summary.TotalProtein,
			TotalCarbs:    doc.Summary.TotalCarbs,
			TotalFat:      doc.Summary.TotalFat,
			Meals:         make(map[string][]yamlMeal),
		}
		for _, list := range MealKind.Lists {
			for _, m := range doc.List(list) {
				day.Meals[list] = append(day.Meals[list], yamlMeal{
					ID:       shortID(m.ID.String()),
					Food:     m.FoodName,
					Quantity: m.QuantityConsumed,
					Calories: m.TotalCalories,
					Protein:  m.TotalProtein,
					Carbs:    m.TotalCarbs,
					Fat:      m.TotalFat,
				})
			}
		}
		yamlData.Meals = append(yamlData.Meals, day)
	}

	for _, doc := range d.Exercise {
		day := yamlExerciseDay{
			Date:               string(doc.Date),
			TotalCaloriesBurnt: doc.Summary.TotalCaloriesBurnt,
			TotalDuration:      doc.Summary.TotalDuration,
		}
		for _, e := range doc.List("exercises") {
			day.Exercises = append(day.Exercises, yamlExercise{
				ID:        shortID(e.ID.String()),
				Type:      e.ExerciseType,
				Duration:  e.DurationMinutes,
				Calories:  e.CaloriesBurnt,
				Intensity: string(e.Intensity),
			})
		}
		yamlData.Exercise = append(yamlData.Exercise, day)
	}

	for _, doc := range d.Weight {
		day := yamlWeightDay{Date: string(doc.Date)}
		for _, w := range doc.List("weights") {
			yw := yamlWeight{ID: shortID(w.ID.String()), Kg: w.WeightInKg}
			if w.Notes != nil {
				yw.Notes = *w.Notes
			}
			if w.Timestamp != nil {
				yw.Timestamp = w.Timestamp.Format(time.RFC3339)
			}
			day.Weights = append(day.Weights, yw)
		}
		yamlData.Weight = append(yamlData.Weight, day)
	}

	return yaml.Marshal(yamlData)
}

// ToMarkdown renders one table per diary kind.
func (d *ExportData) ToMarkdown() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Fitness Export - %s\n\n", d.UserID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", d.ExportedAt.Format(time.RFC3339)))

	if len(d.Meals) > 0 {
		sb.WriteString("## Meals\n\n")
		sb.WriteString("| Date | Meal | Food | Qty | Calories | Protein | Carbs | Fat |\n")
		sb.WriteString("|------|------|------|-----|----------|---------|-------|-----|\n")
		for _, doc := range d.Meals {
			for _, list := range MealKind.Lists {
				for _, m := range doc.List(list) {
					sb.WriteString(fmt.Sprintf("| %s | %s | %s | %g | %.0f | %.1f | %.1f | %.1f |\n",
						doc.Date, list, escapeCell(m.FoodName), m.QuantityConsumed,
						m.TotalCalories, m.TotalProtein, m.TotalCarbs, m.TotalFat))
				}
			}
			sb.WriteString(fmt.Sprintf("| %s | **total** | | | **%.0f** | %.1f | %.1f | %.1f |\n",
				doc.Date, doc.Summary.TotalCalories, doc.Summary.TotalProtein,
				doc.Summary.TotalCarbs, doc.Summary.TotalFat))
		}
		sb.WriteString("\n")
	}

	if len(d.Exercise) > 0 {
		sb.WriteString("## Exercise\n\n")
		sb.WriteString("| Date | Type | Duration | Intensity | Calories |\n")
		sb.WriteString("|------|------|----------|-----------|----------|\n")
		for _, doc := range d.Exercise {
			for _, e := range doc.List("exercises") {
				intensity := string(e.Intensity)
				if intensity == "" {
					intensity = string(models.IntensityModerate)
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %d min | %s | %.0f |\n",
					doc.Date, escapeCell(e.ExerciseType), e.DurationMinutes, intensity, e.CaloriesBurnt))
			}
		}
		sb.WriteString("\n")
	}

	if len(d.Weight) > 0 {
		sb.WriteString("## Weight\n\n")
		sb.WriteString("| Date | Weight | Notes |\n")
		sb.WriteString("|------|--------|-------|\n")
		for _, doc := range d.Weight {
			for _, w := range doc.List("weights") {
				notes := ""
				if w.Notes != nil {
					notes = *w.Notes
				}
				sb.WriteString(fmt.Sprintf("| %s | %.1f kg | %s |\n", doc.Date, w.WeightInKg, escapeCell(notes)))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
