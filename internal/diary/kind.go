// ABOUTME: Generic diary kind and document types.
// ABOUTME: A kind names its lists and summary field; documents marshal to the persisted diary shape.
package diary

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/harperreed/fitness/internal/models"
	"github.com/harperreed/fitness/internal/storage"
)

// Entry is a record that can be filed in a diary list and folded into summary S.
type Entry[S any] interface {
	Validate() error
	ListName() string
	Contribution() S
}

// Summary is an additive aggregate whose zero value is the empty sum.
type Summary[S any] interface {
	Plus(S) S
}

// Kind describes one diary collection.
type Kind[E Entry[S], S Summary[S]] struct {
	Name  string
	Lists []string
	// SummaryField is the document field holding the summary; empty when the kind has none.
	SummaryField string
}

var (
	MealKind = &Kind[models.MealEntry, models.NutritionSummary]{
		Name:         storage.KindMeal,
		Lists:        []string{"breakfast", "lunch", "dinner", "snacks"},
		SummaryField: "daily_nutrition_summary",
	}
	ExerciseKind = &Kind[models.ExerciseEntry, models.ExerciseSummary]{
		Name:         storage.KindExercise,
		Lists:        []string{"exercises"},
		SummaryField: "daily_exercise_summary",
	}
	WeightKind = &Kind[models.WeightEntry, models.NoSummary]{
		Name:  storage.KindWeight,
		Lists: []string{"weights"},
	}
)

type (
	MealDocument     = Document[models.MealEntry, models.NutritionSummary]
	ExerciseDocument = Document[models.ExerciseEntry, models.ExerciseSummary]
	WeightDocument   = Document[models.WeightEntry, models.NoSummary]
)

// kindOf finds the package-level kind for an entry/summary pair.
func kindOf[E Entry[S], S Summary[S]]() *Kind[E, S] {
	for _, k := range []any{MealKind, ExerciseKind, WeightKind} {
		if kind, ok := k.(*Kind[E, S]); ok {
			return kind
		}
	}
	return nil
}

// HasList reports whether name is one of the kind's lists.
func (k *Kind[E, S]) HasList(name string) bool {
	for _, l := range k.Lists {
		if l == name {
			return true
		}
	}
	return false
}

// Recompute folds every entry's contribution, in list order, from the zero summary.
func (k *Kind[E, S]) Recompute(entries map[string][]E) S {
	var total S
	for _, list := range k.Lists {
		for _, e := range entries[list] {
			total = total.Plus(e.Contribution())
		}
	}
	return total
}

// Shape returns the empty storage shape of the kind.
func (k *Kind[E, S]) Shape() storage.Shape {
	var zero S
	fields, _ := summaryFields(zero)
	return storage.Shape{Lists: k.Lists, Summary: fields}
}

func summaryFields[S any](s S) ([]string, error) {
	m, err := summaryToMap(s)
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields, nil
}

func summaryToMap[S any](s S) (map[string]float64, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	m := make(map[string]float64)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("summary is not numeric: %w", err)
	}
	return m, nil
}

func mapToSummary[S any](m map[string]float64) (S, error) {
	var s S
	if len(m) == 0 {
		return s, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return s, fmt.Errorf("encode summary: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode summary: %w", err)
	}
	return s, nil
}

// NewDocument returns an empty document of the kind.
func (k *Kind[E, S]) NewDocument(userID string, date models.Date) *Document[E, S] {
	doc := &Document[E, S]{UserID: userID, Date: date, Entries: make(map[string][]E, len(k.Lists)), kind: k}
	for _, l := range k.Lists {
		doc.Entries[l] = []E{}
	}
	return doc
}

func (k *Kind[E, S]) decode(rec *storage.Record) (*Document[E, S], error) {
	doc := k.NewDocument(rec.UserID, models.Date(rec.Date))
	for _, list := range k.Lists {
		for i, raw := range rec.Lists[list] {
			var e E
			if err := json.Unmarshal(raw, &e); err != nil {
				return nil, fmt.Errorf("decode %s entry %d: %w", list, i, err)
			}
			doc.Entries[list] = append(doc.Entries[list], e)
		}
	}
	summary, err := mapToSummary[S](rec.Summary)
	if err != nil {
		return nil, err
	}
	doc.Summary = summary
	return doc, nil
}

func (k *Kind[E, S]) encode(doc *Document[E, S]) (*storage.Record, error) {
	rec := storage.NewRecord(storage.Key{Kind: k.Name, UserID: doc.UserID, Date: string(doc.Date)}, k.Shape())
	for _, list := range k.Lists {
		for _, e := range doc.Entries[list] {
			raw, err := json.Marshal(e)
			if err != nil {
				return nil, fmt.Errorf("encode %s entry: %w", list, err)
			}
			rec.Lists[list] = append(rec.Lists[list], raw)
		}
	}
	summary, err := summaryToMap(doc.Summary)
	if err != nil {
		return nil, err
	}
	rec.Summary = summary
	return rec, nil
}

// Document is one user's diary of a kind for one date.
type Document[E Entry[S], S Summary[S]] struct {
	UserID  string
	Date    models.Date
	Entries map[string][]E
	Summary S

	kind *Kind[E, S]
}

// Kind returns the document's kind.
func (d *Document[E, S]) Kind() *Kind[E, S] {
	if d.kind == nil {
		return kindOf[E, S]()
	}
	return d.kind
}

// List returns the entries of one list.
func (d *Document[E, S]) List(name string) []E {
	return d.Entries[name]
}

// All returns every entry in list order.
func (d *Document[E, S]) All() []E {
	var all []E
	for _, l := range d.Kind().Lists {
		all = append(all, d.Entries[l]...)
	}
	return all
}

// Len returns the number of entries across all lists.
func (d *Document[E, S]) Len() int {
	n := 0
	for _, es := range d.Entries {
		n += len(es)
	}
	return n
}

// MarshalJSON writes the flat diary shape: user_id, date, one field per list and the summary field.
func (d *Document[E, S]) MarshalJSON() ([]byte, error) {
	k := d.Kind()
	m := make(map[string]any, len(k.Lists)+3)
	m["user_id"] = d.UserID
	m["date"] = d.Date
	for _, l := range k.Lists {
		es := d.Entries[l]
		if es == nil {
			es = []E{}
		}
		m[l] = es
	}
	if k.SummaryField != "" {
		m[k.SummaryField] = d.Summary
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the flat diary shape. The summary is recomputed from the entries.
func (d *Document[E, S]) UnmarshalJSON(data []byte) error {
	k := kindOf[E, S]()
	if k == nil {
		return fmt.Errorf("no diary kind for %T", d)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	doc := k.NewDocument("", "")
	if raw, ok := fields["user_id"]; ok {
		if err := json.Unmarshal(raw, &doc.UserID); err != nil {
			return fmt.Errorf("decode user_id: %w", err)
		}
	}
	if raw, ok := fields["date"]; ok {
		if err := json.Unmarshal(raw, &doc.Date); err != nil {
			return fmt.Errorf("decode date: %w", err)
		}
	}
	for _, l := range k.Lists {
		raw, ok := fields[l]
		if !ok {
			continue
		}
		var es []E
		if err := json.Unmarshal(raw, &es); err != nil {
			return fmt.Errorf("decode %s: %w", l, err)
		}
		if es != nil {
			doc.Entries[l] = es
		}
	}
	doc.Summary = k.Recompute(doc.Entries)
	*d = *doc
	return nil
}
