// ABOUTME: SQL diary store shared by the SQLite and Postgres backends.
// ABOUTME: Each kind has a table keyed by (user_id, date) holding JSON lists and summary.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStore stores diaries in a SQL database.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(dbPath string) (*SQLStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes read-modify-write transactions in this process.
	db.SetMaxOpenConns(1)

	s := &SQLStore{db: db, dialect: dialectSQLite}

	if err := s.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	// The file exists once the schema is written.
	if err := os.Chmod(dbPath, 0600); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	return s, nil
}

// OpenPostgres connects to Postgres using a lib/pq connection string.
func OpenPostgres(dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres backend requires a database URL")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &SQLStore{db: db, dialect: dialectPostgres}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLStore) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLStore) initSchema() error {
	for _, kind := range Kinds {
		tbl := tableName(kind)
		schema := `
		CREATE TABLE IF NOT EXISTS ` + tbl + ` (
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			lists TEXT NOT NULL,
			summary TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (user_id, date)
		)`
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("create %s: %w", tbl, err)
		}
	}
	return nil
}

func tableName(kind string) string {
	return kind + "_diaries"
}

func tableFor(kind string) (string, error) {
	if !IsKnownKind(kind) {
		return "", fmt.Errorf("unknown diary kind %q", kind)
	}
	return tableName(kind), nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// withTx runs fn in a transaction, committing if it returns nil.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) find(ctx context.Context, q queryer, tbl string, key Key, lock bool) (*Record, error) {
	query := `SELECT user_id, date, lists, summary FROM ` + tbl + ` WHERE user_id = ? AND date = ?`
	if lock && s.dialect == dialectPostgres {
		query += " FOR UPDATE"
	}
	rec, err := scanRecord(q.QueryRowContext(ctx, s.rebind(query), key.UserID, key.Date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec              Record
		lists, summaries string
	)
	if err := row.Scan(&rec.UserID, &rec.Date, &lists, &summaries); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(lists), &rec.Lists); err != nil {
		return nil, fmt.Errorf("decode lists: %w", err)
	}
	if err := json.Unmarshal([]byte(summaries), &rec.Summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &rec, nil
}

func encodeColumns(rec *Record) (string, string, error) {
	lists, err := json.Marshal(rec.Lists)
	if err != nil {
		return "", "", fmt.Errorf("encode lists: %w", err)
	}
	summary, err := json.Marshal(rec.Summary)
	if err != nil {
		return "", "", fmt.Errorf("encode summary: %w", err)
	}
	return string(lists), string(summary), nil
}

func (s *SQLStore) insertIfMissing(ctx context.Context, tx *sql.Tx, tbl string, rec *Record) error {
	lists, summary, err := encodeColumns(rec)
	if err != nil {
		return err
	}
	query := `INSERT INTO ` + tbl + ` (user_id, date, lists, summary, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO NOTHING`
	if _, err := tx.ExecContext(ctx, s.rebind(query), rec.UserID, rec.Date, lists, summary, now()); err != nil {
		return fmt.Errorf("create diary: %w", err)
	}
	return nil
}

func (s *SQLStore) upsert(ctx context.Context, tx *sql.Tx, tbl string, rec *Record) error {
	lists, summary, err := encodeColumns(rec)
	if err != nil {
		return err
	}
	query := `INSERT INTO ` + tbl + ` (user_id, date, lists, summary, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			lists = excluded.lists,
			summary = excluded.summary,
			updated_at = excluded.updated_at`
	if _, err := tx.ExecContext(ctx, s.rebind(query), rec.UserID, rec.Date, lists, summary, now()); err != nil {
		return fmt.Errorf("write diary: %w", err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Find returns the document for key.
func (s *SQLStore) Find(ctx context.Context, key Key) (*Record, error) {
	tbl, err := tableFor(key.Kind)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, s.db, tbl, key, false)
}

// Append upserts, pushes and increments inside one transaction.
func (s *SQLStore) Append(ctx context.Context, key Key, shape Shape, pushes map[string][]json.RawMessage, deltas map[string]float64) (*Record, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	tbl, err := tableFor(key.Kind)
	if err != nil {
		return nil, err
	}

	var out *Record
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.insertIfMissing(ctx, tx, tbl, NewRecord(key, shape)); err != nil {
			return err
		}
		rec, err := s.find(ctx, tx, tbl, key, true)
		if err != nil {
			return err
		}
		rec.fill(shape)
		rec.Apply(pushes, deltas)
		if err := s.upsert(ctx, tx, tbl, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append to %s: %w", key, err)
	}
	return out, nil
}

// Replace overwrites the document's lists and summary.
func (s *SQLStore) Replace(ctx context.Context, key Key, rec *Record) (*Record, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	tbl, err := tableFor(key.Kind)
	if err != nil {
		return nil, err
	}
	stored := &Record{UserID: key.UserID, Date: key.Date, Lists: rec.Lists, Summary: rec.Summary}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		return s.upsert(ctx, tx, tbl, stored)
	})
	if err != nil {
		return nil, fmt.Errorf("replace %s: %w", key, err)
	}
	return stored, nil
}

// Update rewrites the document under a row lock inside one transaction.
func (s *SQLStore) Update(ctx context.Context, key Key, fn func(rec *Record) (*Record, error)) (*Record, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	tbl, err := tableFor(key.Kind)
	if err != nil {
		return nil, err
	}

	var out *Record
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		rec, err := s.find(ctx, tx, tbl, key, true)
		if err != nil {
			return err
		}
		next, err := fn(rec)
		if err != nil {
			return err
		}
		out = &Record{UserID: key.UserID, Date: key.Date, Lists: next.Lists, Summary: next.Summary}
		return s.upsert(ctx, tx, tbl, out)
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", key, err)
	}
	return out, nil
}

// FindRange returns documents ordered by date.
func (s *SQLStore) FindRange(ctx context.Context, kind, userID, start, end string) ([]*Record, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT user_id, date, lists, summary FROM ` + tbl + `
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`
	rows, err := s.db.QueryContext(ctx, s.rebind(query), userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query %s range: %w", kind, err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s diary: %w", kind, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
