// ABOUTME: Data migration between diary storage backends.
// ABOUTME: Copies one user's documents of each kind from source to destination.

package storage

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// Date bounds that cover every stored document.
const (
	MinDate = "0001-01-01"
	MaxDate = "9999-12-31"
)

// MigrateOptions selects what MigrateData copies.
type MigrateOptions struct {
	UserID string
	// Kinds defaults to every kind.
	Kinds []string
	// Start and End default to the full date range.
	Start string
	End   string
}

// MigrateSummary holds document counts per kind.
type MigrateSummary struct {
	Documents map[string]int
}

// Total returns the number of documents copied.
func (s *MigrateSummary) Total() int {
	n := 0
	for _, c := range s.Documents {
		n += c
	}
	return n
}

// MigrateData copies documents from src to dst. Documents already present in
// dst for the same (user, date) are overwritten.
func MigrateData(ctx context.Context, src, dst Store, opts MigrateOptions) (*MigrateSummary, error) {
	if opts.UserID == "" {
		return nil, fmt.Errorf("migrate: user id is required")
	}
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = Kinds
	}
	start, end := opts.Start, opts.End
	if start == "" {
		start = MinDate
	}
	if end == "" {
		end = MaxDate
	}

	counts := make([]int, len(kinds))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			records, err := src.FindRange(ctx, kind, opts.UserID, start, end)
			if err != nil {
				return fmt.Errorf("list source %s diaries: %w", kind, err)
			}
			for _, rec := range records {
				key := Key{Kind: kind, UserID: rec.UserID, Date: rec.Date}
				if _, err := dst.Replace(ctx, key, rec); err != nil {
					return fmt.Errorf("write %s: %w", key, err)
				}
				counts[i]++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &MigrateSummary{Documents: make(map[string]int, len(kinds))}
	for i, kind := range kinds {
		summary.Documents[kind] = counts[i]
	}
	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
