// ABOUTME: Diary store over an ordered key-value database.
// ABOUTME: Documents live at diary/<kind>/<user>/<date> as JSON records.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// KV is the key-value surface the KV diary store runs on.
type KV interface {
	// Get returns the value at key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Update atomically replaces the value at key with fn(old).
	// old is nil when the key is absent. fn may be called more than once.
	Update(key []byte, fn func(old []byte) ([]byte, error)) error

	// Scan calls fn for every key with the prefix.
	Scan(prefix []byte, fn func(key, value []byte) error) error

	Close() error
}

// KVStore implements Store on a KV.
type KVStore struct {
	kv KV
}

// NewKVStore wraps kv as a diary store.
func NewKVStore(kv KV) *KVStore {
	return &KVStore{kv: kv}
}

func kvPrefix(kind, userID string) []byte {
	return []byte("diary/" + kind + "/" + userID + "/")
}

func kvKey(key Key) []byte {
	return append(kvPrefix(key.Kind, key.UserID), key.Date...)
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode diary: %w", err)
	}
	return &rec, nil
}

// Find returns the document for key.
func (s *KVStore) Find(ctx context.Context, key Key) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := key.validate(); err != nil {
		return nil, err
	}
	data, err := s.kv.Get(kvKey(key))
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

// Append creates, pushes and increments in one KV update.
func (s *KVStore) Append(ctx context.Context, key Key, shape Shape, pushes map[string][]json.RawMessage, deltas map[string]float64) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := key.validate(); err != nil {
		return nil, err
	}

	var out *Record
	err := s.kv.Update(kvKey(key), func(old []byte) ([]byte, error) {
		rec := NewRecord(key, shape)
		if old != nil {
			var err error
			if rec, err = decodeRecord(old); err != nil {
				return nil, err
			}
			rec.fill(shape)
		}
		rec.Apply(pushes, deltas)
		out = rec
		return json.Marshal(rec)
	})
	if err != nil {
		return nil, fmt.Errorf("append to %s: %w", key, err)
	}
	return out, nil
}

// Replace overwrites the document at key.
func (s *KVStore) Replace(ctx context.Context, key Key, rec *Record) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := key.validate(); err != nil {
		return nil, err
	}
	stored := &Record{UserID: key.UserID, Date: key.Date, Lists: rec.Lists, Summary: rec.Summary}
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode diary: %w", err)
	}
	err = s.kv.Update(kvKey(key), func([]byte) ([]byte, error) {
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace %s: %w", key, err)
	}
	return stored, nil
}

// Update rewrites the document in one KV update.
func (s *KVStore) Update(ctx context.Context, key Key, fn func(rec *Record) (*Record, error)) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := key.validate(); err != nil {
		return nil, err
	}

	var out *Record
	err := s.kv.Update(kvKey(key), func(old []byte) ([]byte, error) {
		if old == nil {
			return nil, ErrNotFound
		}
		rec, err := decodeRecord(old)
		if err != nil {
			return nil, err
		}
		next, err := fn(rec)
		if err != nil {
			return nil, err
		}
		out = &Record{UserID: key.UserID, Date: key.Date, Lists: next.Lists, Summary: next.Summary}
		return json.Marshal(out)
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", key, err)
	}
	return out, nil
}

// FindRange scans the user's prefix and keeps dates inside [start, end].
func (s *KVStore) FindRange(ctx context.Context, kind, userID, start, end string) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := kvPrefix(kind, userID)
	var records []*Record
	err := s.kv.Scan(prefix, func(key, value []byte) error {
		date := string(bytes.TrimPrefix(key, prefix))
		// Longer suffixes belong to user ids that extend this one.
		if len(date) != len("2006-01-02") || date < start || date > end {
			return nil
		}
		rec, err := decodeRecord(value)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s range: %w", kind, err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}

// Close closes the underlying KV.
func (s *KVStore) Close() error {
	return s.kv.Close()
}
