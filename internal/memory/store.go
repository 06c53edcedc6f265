package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"nowplaying/internal/logging"
	"nowplaying/internal/textutil"
)

const (
	// MinLearnLength is the shortest normalized name Learn accepts.
	MinLearnLength = 2
	// MinAliasLength is the shortest normalized alias InsertAliasIfMissing accepts.
	MinAliasLength = 3
	// AliasConfidence is the confidence assigned to seeded aliases.
	AliasConfidence = 1
)

// Artist is one learned artist name.
type Artist struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Confidence  int       `json:"confidence"`
	Occurrences int       `json:"occurrences"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store manages the artist memory backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Open initializes or connects to the memory database at path and applies
// the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("memory database path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "memory"),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// LookupAll returns every known artist ordered by confidence, then
// occurrences (both descending), then name.
func (s *Store) LookupAll(ctx context.Context) ([]Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, display_name, confidence, occurrences, updated_at
         FROM artists
         ORDER BY confidence DESC, occurrences DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query artists: %w", err)
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, artist)
	}
	return artists, rows.Err()
}

// Get returns the artist stored under the normalized form of name, or nil
// when no such row exists.
func (s *Store) Get(ctx context.Context, name string) (*Artist, error) {
	key := textutil.Key(name)
	if key == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT name, display_name, confidence, occurrences, updated_at FROM artists WHERE name = ?`, key)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get artist: %w", err)
	}
	return &artist, nil
}

// Count returns the number of stored names, aliases included.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM artists").Scan(&count); err != nil {
		return 0, fmt.Errorf("count artists: %w", err)
	}
	return count, nil
}

// Learn records a sighting of name. A new name is inserted with
// insertScore and one occurrence; a known name gains incrementScore
// confidence and one occurrence. Names shorter than MinLearnLength after
// normalization are ignored.
func (s *Store) Learn(ctx context.Context, name string, insertScore, incrementScore int) error {
	display := textutil.Normalize(name)
	key := textutil.Lower(display)
	if utf8.RuneCountInString(key) < MinLearnLength {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artists (name, display_name, confidence, occurrences, updated_at)
         VALUES (?, ?, ?, 1, ?)
         ON CONFLICT(name) DO UPDATE SET
             confidence = artists.confidence + ?,
             occurrences = artists.occurrences + 1,
             display_name = excluded.display_name,
             updated_at = excluded.updated_at`,
		key, display, insertScore, now, incrementScore,
	)
	if err != nil {
		return fmt.Errorf("learn artist %q: %w", key, err)
	}
	s.logger.Debug("learned artist",
		logging.String("name", key),
		logging.Int("insert_score", insertScore),
		logging.Int("increment_score", incrementScore))
	return nil
}

// InsertAliasIfMissing seeds alias with AliasConfidence and one occurrence
// unless an entry with the same normalized name exists. Aliases shorter
// than MinAliasLength are ignored. It reports whether a row was inserted.
func (s *Store) InsertAliasIfMissing(ctx context.Context, alias string) (bool, error) {
	display := textutil.Normalize(alias)
	key := textutil.Lower(display)
	if utf8.RuneCountInString(key) < MinAliasLength {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO artists (name, display_name, confidence, occurrences, updated_at)
         VALUES (?, ?, ?, 1, ?)
         ON CONFLICT(name) DO NOTHING`,
		key, display, AliasConfidence, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("insert alias %q: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("alias rows affected: %w", err)
	}
	return affected > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtist(row scanner) (Artist, error) {
	var (
		artist    Artist
		updatedAt string
	)
	if err := row.Scan(&artist.Name, &artist.DisplayName, &artist.Confidence, &artist.Occurrences, &updatedAt); err != nil {
		return Artist{}, err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		artist.UpdatedAt = parsed
	}
	return artist, nil
}
