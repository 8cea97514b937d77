// Package catalog keeps a SQLite library of imported game logs. It stores
// log metadata only; logs are always replayed from their files.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vinayprograms/mafiareplay/internal/gamelog"
)

// ErrNotFound is returned when no entry matches an ID.
var ErrNotFound = errors.New("game not found")

// logNamespace scopes content-derived IDs for logs without a game_id.
var logNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mafia-replay/game-log"))

// Entry is one catalogued game.
type Entry struct {
	ID             string
	Path           string
	SchemaVersion  string
	Winner         string
	Players        int
	Events         int
	TimestampStart string
	TimestampEnd   string
	ImportedAt     time.Time
}

// Store stores catalog entries in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog at path. Parent directories are
// created as needed; ":memory:" opens a throwaway catalog.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// init creates the database schema.
func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		schema_version TEXT,
		winner TEXT,
		players INTEGER NOT NULL,
		events INTEGER NOT NULL,
		timestamp_start TEXT,
		timestamp_end TEXT,
		imported_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_games_imported ON games(imported_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// EntryFor builds the catalog entry for a parsed log. The ID is the log's
// game_id, or a name-based UUID of its bytes when it has none, so
// re-importing the same file is idempotent.
func EntryFor(path string, log *gamelog.Log, raw []byte) Entry {
	id := log.GameID
	if id == "" {
		id = uuid.NewSHA1(logNamespace, raw).String()
	}
	return Entry{
		ID:             id,
		Path:           path,
		SchemaVersion:  log.SchemaVersion,
		Winner:         log.Winner,
		Players:        len(log.Players),
		Events:         len(log.Events),
		TimestampStart: log.TimestampStart,
		TimestampEnd:   log.TimestampEnd,
	}
}

// Import loads the log at path and upserts its entry.
func (s *Store) Import(ctx context.Context, path string) (Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to resolve path: %w", err)
	}
	log, raw, err := gamelog.LoadFile(abs)
	if err != nil {
		return Entry{}, err
	}
	entry := EntryFor(abs, log, raw)
	if err := s.Save(ctx, &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Save upserts an entry. ImportedAt is set to now when zero.
func (s *Store) Save(ctx context.Context, e *Entry) error {
	if e.ImportedAt.IsZero() {
		e.ImportedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO games (id, path, schema_version, winner, players, events, timestamp_start, timestamp_end, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			schema_version = excluded.schema_version,
			winner = excluded.winner,
			players = excluded.players,
			events = excluded.events,
			timestamp_start = excluded.timestamp_start,
			timestamp_end = excluded.timestamp_end,
			imported_at = excluded.imported_at
	`, e.ID, e.Path, e.SchemaVersion, e.Winner, e.Players, e.Events, e.TimestampStart, e.TimestampEnd, e.ImportedAt)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, schema_version, winner, players, events, timestamp_start, timestamp_end, imported_at
		FROM games WHERE id = ?
	`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to load game: %w", err)
	}
	return e, nil
}

// List returns every entry, most recently imported first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, schema_version, winner, players, events, timestamp_start, timestamp_end, imported_at
		FROM games ORDER BY imported_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Remove deletes an entry.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var schema, winner, start, end sql.NullString
	err := row.Scan(&e.ID, &e.Path, &schema, &winner, &e.Players, &e.Events, &start, &end, &e.ImportedAt)
	e.SchemaVersion = schema.String
	e.Winner = winner.String
	e.TimestampStart = start.String
	e.TimestampEnd = end.String
	return e, err
}
