package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/truthcheck/internal/model"
)

// Schema is the history table. url holds the normalized page URL.
const Schema = `
CREATE TABLE IF NOT EXISTS history (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL DEFAULT '',
	result_text TEXT NOT NULL DEFAULT '',
	timestamp   INTEGER NOT NULL,
	type        TEXT NOT NULL DEFAULT 'text'
);
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
`

const (
	DefaultMaxEntries = 100
	DefaultFreshFor   = 24 * time.Hour
)

// SQLiteStore persists analyses, keeping only the most recent entries
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
	now        func() time.Time
}

// Open opens (or creates) the history database at path. An empty path or
// ":memory:" keeps it in memory.
func Open(path string, maxEntries int) (*SQLiteStore, error) {
	dsn := path
	if dsn == "" || dsn == ":memory:" {
		dsn = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// One connection: an in-memory database exists per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout=5000"}
	if dsn != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	store, err := New(db, maxEntries)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open database and applies the schema
func New(db *sql.DB, maxEntries int) (*SQLiteStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &SQLiteStore{db: db, maxEntries: maxEntries, now: time.Now}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts the entry, replacing any entry for the same URL, and trims the
// table to the most recent maxEntries
func (s *SQLiteStore) Save(ctx context.Context, entry model.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Type == "" {
		entry.Type = model.ContentText
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (id, url, title, result_text, timestamp, type)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			id = excluded.id,
			title = excluded.title,
			result_text = excluded.result_text,
			timestamp = excluded.timestamp,
			type = excluded.type`,
		entry.ID, model.NormalizeURL(entry.URL), entry.Title, entry.ResultText,
		entry.Timestamp.UnixMilli(), string(entry.Type))
	if err != nil {
		return fmt.Errorf("save history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY timestamp DESC, id LIMIT ?
		)`, s.maxEntries)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns the entry for url, or nil when there is none
func (s *SQLiteStore) Get(ctx context.Context, url string) (*model.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, result_text, timestamp, type FROM history WHERE url = ?`,
		model.NormalizeURL(url))

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history entry: %w", err)
	}
	return entry, nil
}

// FindFresh returns the entry for url when it is younger than maxAge, or nil
func (s *SQLiteStore) FindFresh(ctx context.Context, url string, maxAge time.Duration) (*model.HistoryEntry, error) {
	if maxAge <= 0 {
		maxAge = DefaultFreshFor
	}
	entry, err := s.Get(ctx, url)
	if err != nil || entry == nil {
		return nil, err
	}
	if !entry.IsFresh(s.now(), maxAge) {
		return nil, nil
	}
	return entry, nil
}

// List returns up to limit entries, newest first. limit <= 0 lists everything.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, result_text, timestamp, type FROM history ORDER BY timestamp DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// Delete removes the entry for url
func (s *SQLiteStore) Delete(ctx context.Context, url string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE url = ?`, model.NormalizeURL(url)); err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	return nil
}

// Clear removes every entry
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Export writes every entry to w as a JSON array, newest first
func (s *SQLiteStore) Export(ctx context.Context, w io.Writer) error {
	entries, err := s.List(ctx, 0)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return nil
}

// Import reads a JSON array of entries and saves them. Every entry must carry a
// url and a timestamp; an invalid entry rejects the whole import.
func (s *SQLiteStore) Import(ctx context.Context, r io.Reader) (int, error) {
	var entries []model.HistoryEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("decode history: %w", err)
	}
	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	// Oldest first so trimming keeps the newest
	for i := len(entries) - 1; i >= 0; i-- {
		if err := s.Save(ctx, entries[i]); err != nil {
			return len(entries) - 1 - i, err
		}
	}
	return len(entries), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*model.HistoryEntry, error) {
	var (
		entry model.HistoryEntry
		ts    int64
		typ   string
	)
	if err := row.Scan(&entry.ID, &entry.URL, &entry.Title, &entry.ResultText, &ts, &typ); err != nil {
		return nil, err
	}
	entry.Timestamp = time.UnixMilli(ts).UTC()
	entry.Type = model.ContentType(typ)
	return &entry, nil
}
