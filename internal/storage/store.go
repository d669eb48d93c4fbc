// ABOUTME: Store interface for per-user, per-day diary documents.
// ABOUTME: Records are kind-agnostic: named entry lists plus numeric summary fields.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no diary document exists for a key.
var ErrNotFound = errors.New("diary not found")

// Key identifies one diary document.
type Key struct {
	Kind   string
	UserID string
	Date   string
}

func (k Key) String() string {
	return k.Kind + "/" + k.UserID + "/" + k.Date
}

func (k Key) validate() error {
	if k.Kind == "" || k.UserID == "" || k.Date == "" {
		return fmt.Errorf("incomplete key %q", k.String())
	}
	if strings.ContainsAny(k.UserID, "/\x00") {
		return fmt.Errorf("user id %q contains a reserved character", k.UserID)
	}
	return nil
}

// Shape is the empty form of a diary kind, used when a document is created.
type Shape struct {
	Lists   []string
	Summary []string
}

// Record is the stored form of a diary document.
type Record struct {
	UserID  string                       `json:"user_id"`
	Date    string                       `json:"date"`
	Lists   map[string][]json.RawMessage `json:"lists"`
	Summary map[string]float64           `json:"summary"`
}

// NewRecord returns an empty record for key with every list and summary field present.
func NewRecord(key Key, shape Shape) *Record {
	r := &Record{
		UserID:  key.UserID,
		Date:    key.Date,
		Lists:   make(map[string][]json.RawMessage, len(shape.Lists)),
		Summary: make(map[string]float64, len(shape.Summary)),
	}
	for _, l := range shape.Lists {
		r.Lists[l] = []json.RawMessage{}
	}
	for _, f := range shape.Summary {
		r.Summary[f] = 0
	}
	return r
}

// Apply pushes entries onto lists and adds deltas to summary fields.
func (r *Record) Apply(pushes map[string][]json.RawMessage, deltas map[string]float64) {
	if r.Lists == nil {
		r.Lists = make(map[string][]json.RawMessage)
	}
	if r.Summary == nil {
		r.Summary = make(map[string]float64)
	}
	for list, entries := range pushes {
		r.Lists[list] = append(r.Lists[list], entries...)
	}
	for field, d := range deltas {
		r.Summary[field] += d
	}
}

// fill adds any list or summary field of shape that r lacks.
func (r *Record) fill(shape Shape) {
	empty := NewRecord(Key{UserID: r.UserID, Date: r.Date}, shape)
	if r.Lists == nil {
		r.Lists = empty.Lists
	}
	if r.Summary == nil {
		r.Summary = empty.Summary
	}
	for l := range empty.Lists {
		if r.Lists[l] == nil {
			r.Lists[l] = []json.RawMessage{}
		}
	}
	for f := range empty.Summary {
		if _, ok := r.Summary[f]; !ok {
			r.Summary[f] = 0
		}
	}
}

// Store persists diary documents with atomic single-document mutations.
type Store interface {
	// Find returns the document for key, or ErrNotFound.
	Find(ctx context.Context, key Key) (*Record, error)

	// Append creates the document with shape if it is missing, pushes entries onto
	// the named lists and adds deltas to summary fields, all in one atomic step.
	// It returns the document as stored afterwards.
	Append(ctx context.Context, key Key, shape Shape, pushes map[string][]json.RawMessage, deltas map[string]float64) (*Record, error)

	// Replace overwrites the document's lists and summary, creating it if needed.
	Replace(ctx context.Context, key Key, rec *Record) (*Record, error)

	// FindRange returns the user's documents of kind with start <= date <= end, ordered by date.
	FindRange(ctx context.Context, kind, userID, start, end string) ([]*Record, error)

	Close() error
}

// Updater is implemented by stores that can read, change and write one
// document in a single atomic step. The store returns ErrNotFound without
// calling fn when the document is missing. fn may be called more than once.
type Updater interface {
	Update(ctx context.Context, key Key, fn func(rec *Record) (*Record, error)) (*Record, error)
}

// DataDir returns the default data directory under XDG_DATA_HOME.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "fitness")
}

// DefaultDBPath returns the default SQLite database path.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "fitness.db")
}

// Diary kinds. Each kind is stored in its own collection.
const (
	KindMeal     = "meal"
	KindExercise = "exercise"
	KindWeight   = "weight"
)

// Kinds lists every diary kind.
var Kinds = []string{KindMeal, KindExercise, KindWeight}

// IsKnownKind reports whether kind names a diary collection.
func IsKnownKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
