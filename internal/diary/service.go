// ABOUTME: Generic diary service: append, positional delete, point and range reads.
// ABOUTME: Appends increment the summary atomically; deletes recompute it from the remaining entries.
package diary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/fitness/internal/models"
	"github.com/harperreed/fitness/internal/storage"
)

// maxRangeDays bounds zero-filled series so a typo cannot allocate decades of days.
const maxRangeDays = 366

// Service runs diary operations for one kind over a store.
type Service[E Entry[S], S Summary[S]] struct {
	kind  *Kind[E, S]
	store storage.Store
	log   *log.Logger
}

// NewService creates a service for kind. A nil logger discards output.
func NewService[E Entry[S], S Summary[S]](kind *Kind[E, S], store storage.Store, logger *log.Logger) *Service[E, S] {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service[E, S]{
		kind:  kind,
		store: store,
		log:   logger.With("kind", kind.Name),
	}
}

// Kind returns the service's diary kind.
func (s *Service[E, S]) Kind() *Kind[E, S] {
	return s.kind
}

func validateOwner(userID string, date models.Date) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user_id", "is required")
	}
	if strings.ContainsAny(userID, "/\x00") {
		return invalid("user_id", "must not contain '/'")
	}
	if !date.Valid() {
		return invalid("date", "%q is not a YYYY-MM-DD date", date)
	}
	return nil
}

func (s *Service[E, S]) key(userID string, date models.Date) storage.Key {
	return storage.Key{Kind: s.kind.Name, UserID: userID, Date: string(date)}
}

// Add appends entries to the user's diary for date, creating the diary if needed.
// The push and the summary increment happen in one store call.
func (s *Service[E, S]) Add(ctx context.Context, userID string, date models.Date, entries ...E) (*Document[E, S], error) {
	if err := validateOwner(userID, date); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, invalid("entries", "at least one entry is required")
	}

	pushes := make(map[string][]json.RawMessage)
	var delta S
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		list := e.ListName()
		if !s.kind.HasList(list) {
			return nil, invalid("list", "%q is not a %s diary list", list, s.kind.Name)
		}
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode entry: %w", err)
		}
		pushes[list] = append(pushes[list], raw)
		delta = delta.Plus(e.Contribution())
	}
	deltas, err := summaryToMap(delta)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Append(ctx, s.key(userID, date), s.kind.Shape(), pushes, deltas)
	if err != nil {
		return nil, storageErr("append", err)
	}
	doc, err := s.kind.decode(rec)
	if err != nil {
		return nil, storageErr("decode", err)
	}

	s.log.Info("added entries", "user", userID, "date", date, "count", len(entries))
	return doc, nil
}

// Get returns the user's diary for date, or ErrNotFound.
func (s *Service[E, S]) Get(ctx context.Context, userID string, date models.Date) (*Document[E, S], error) {
	if err := validateOwner(userID, date); err != nil {
		return nil, err
	}
	rec, err := s.store.Find(ctx, s.key(userID, date))
	if err != nil {
		return nil, storageErr("find", err)
	}
	doc, err := s.kind.decode(rec)
	if err != nil {
		return nil, storageErr("decode", err)
	}
	s.log.Debug("read diary", "user", userID, "date", date, "entries", doc.Len())
	return doc, nil
}

// Delete removes the entry at index of list. If expect is non-nil it must
// accept the entry at index or nothing is changed and ErrInconsistentState
// is returned. The summary is recomputed from what remains and written
// together with the list. It returns the updated diary and the removed entry.
//
// On stores that implement storage.Updater the read and the write are one
// atomic step. Other stores read and then replace the document, so an Add
// that lands between the two is lost.
//
// Deletion is positional: two concurrent deletes on one diary can remove
// the wrong logical entry. Callers that need more pass an expect check.
func (s *Service[E, S]) Delete(ctx context.Context, userID string, date models.Date, list string, index int, expect func(E) bool) (*Document[E, S], E, error) {
	var removed E
	if err := validateOwner(userID, date); err != nil {
		return nil, removed, err
	}
	if !s.kind.HasList(list) {
		return nil, removed, invalid("list", "%q is not a %s diary list", list, s.kind.Name)
	}

	var doc *Document[E, S]
	if u, ok := s.store.(storage.Updater); ok {
		// fnErr keeps diary errors apart from store failures.
		var fnErr error
		_, err := u.Update(ctx, s.key(userID, date), func(rec *storage.Record) (*storage.Record, error) {
			doc, removed, fnErr = s.remove(rec, list, index, expect)
			if fnErr != nil {
				return nil, fnErr
			}
			return s.kind.encode(doc)
		})
		if fnErr != nil {
			return nil, removed, fnErr
		}
		if err != nil {
			return nil, removed, storageErr("update", err)
		}
	} else {
		rec, err := s.store.Find(ctx, s.key(userID, date))
		if err != nil {
			return nil, removed, storageErr("find", err)
		}
		if doc, removed, err = s.remove(rec, list, index, expect); err != nil {
			return nil, removed, err
		}
		out, err := s.kind.encode(doc)
		if err != nil {
			return nil, removed, err
		}
		if _, err := s.store.Replace(ctx, s.key(userID, date), out); err != nil {
			return nil, removed, storageErr("replace", err)
		}
	}

	s.log.Info("deleted entry", "user", userID, "date", date, "list", list, "index", index)
	return doc, removed, nil
}

// remove decodes rec and takes out the entry at index, recomputing the summary.
func (s *Service[E, S]) remove(rec *storage.Record, list string, index int, expect func(E) bool) (*Document[E, S], E, error) {
	var removed E
	doc, err := s.kind.decode(rec)
	if err != nil {
		return nil, removed, storageErr("decode", err)
	}

	entries := doc.Entries[list]
	if index < 0 || index >= len(entries) {
		return nil, removed, fmt.Errorf("%w: %d (%s has %d entries)", ErrInvalidIndex, index, list, len(entries))
	}
	removed = entries[index]
	if expect != nil && !expect(removed) {
		return nil, removed, fmt.Errorf("%w: %s[%d]", ErrInconsistentState, list, index)
	}

	doc.Entries[list] = slices.Delete(slices.Clone(entries), index, index+1)
	doc.Summary = s.kind.Recompute(doc.Entries)
	return doc, removed, nil
}

func validateRange(userID string, start, end models.Date) error {
	if err := validateOwner(userID, start); err != nil {
		return err
	}
	if !end.Valid() {
		return invalid("end_date", "%q is not a YYYY-MM-DD date", end)
	}
	if end < start {
		return invalid("end_date", "%s is before start date %s", end, start)
	}
	return nil
}

// Range returns the user's diaries between start and end inclusive, ordered
// by date. Days without a diary are omitted.
func (s *Service[E, S]) Range(ctx context.Context, userID string, start, end models.Date) ([]*Document[E, S], error) {
	if err := validateRange(userID, start, end); err != nil {
		return nil, err
	}
	recs, err := s.store.FindRange(ctx, s.kind.Name, userID, string(start), string(end))
	if err != nil {
		return nil, storageErr("find range", err)
	}
	docs := make([]*Document[E, S], 0, len(recs))
	for _, rec := range recs {
		doc, err := s.kind.decode(rec)
		if err != nil {
			return nil, storageErr("decode", err)
		}
		docs = append(docs, doc)
	}
	s.log.Debug("read range", "user", userID, "start", start, "end", end, "diaries", len(docs))
	return docs, nil
}

// Day is one calendar date of a zero-filled series. Doc is nil when nothing was logged.
type Day[E Entry[S], S Summary[S]] struct {
	Date models.Date
	Doc  *Document[E, S]
}

// Logged reports whether a diary exists for the day.
func (d Day[E, S]) Logged() bool {
	return d.Doc != nil
}

// Summary returns the day's summary, zero when nothing was logged.
func (d Day[E, S]) Summary() S {
	if d.Doc == nil {
		var zero S
		return zero
	}
	return d.Doc.Summary
}

// Days returns one Day per date from start to end inclusive, in order.
func (s *Service[E, S]) Days(ctx context.Context, userID string, start, end models.Date) ([]Day[E, S], error) {
	if err := validateRange(userID, start, end); err != nil {
		return nil, err
	}
	if n := int(end.Time().Sub(start.Time()).Hours()/24) + 1; n > maxRangeDays {
		return nil, invalid("date range", "spans %d days, at most %d allowed", n, maxRangeDays)
	}
	dates := models.DatesBetween(start, end)

	docs, err := s.Range(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	byDate := make(map[models.Date]*Document[E, S], len(docs))
	for _, doc := range docs {
		byDate[doc.Date] = doc
	}

	days := make([]Day[E, S], len(dates))
	for i, d := range dates {
		days[i] = Day[E, S]{Date: d, Doc: byDate[d]}
	}
	return days, nil
}
