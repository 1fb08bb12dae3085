package qa

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchemaVersion = "1"

// SQLiteSource keeps question/answer pairs in a SQLite database file
type SQLiteSource struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// CreateSQLiteSource creates (or opens) a SQLite source and ensures its schema
func CreateSQLiteSource(dbPath string) (*SQLiteSource, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	src := &SQLiteSource{
		db:     db,
		dbPath: dbPath,
	}

	if err := src.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := src.ensureVersion(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return src, nil
}

// OpenSQLiteSource opens an existing SQLite source
func OpenSQLiteSource(dbPath string) (*SQLiteSource, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database does not exist: %s", dbPath)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	src := &SQLiteSource{
		db:     db,
		dbPath: dbPath,
	}

	version, err := src.getMetadata(context.Background(), "version")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read version metadata: %w", err)
	}
	if version != sqliteSchemaVersion {
		db.Close()
		return nil, fmt.Errorf("unsupported schema version %q", version)
	}

	return src, nil
}

// initSchema creates the database schema
func (s *SQLiteSource) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS qa_pairs (
		position INTEGER PRIMARY KEY,
		question TEXT NOT NULL UNIQUE,
		answer TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ensureVersion stamps a fresh database with the schema version and rejects
// one written by a different version.
func (s *SQLiteSource) ensureVersion(ctx context.Context) error {
	var version string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, "version").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.setMetadata(ctx, s.db, "version", sqliteSchemaVersion)
	case err != nil:
		return fmt.Errorf("failed to read version metadata: %w", err)
	case version != sqliteSchemaVersion:
		return fmt.Errorf("unsupported schema version %q", version)
	default:
		return nil
	}
}

// Replace swaps the stored pairs for the contents of store in one transaction
func (s *SQLiteSource) Replace(ctx context.Context, store *Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM qa_pairs`); err != nil {
		return fmt.Errorf("failed to clear pairs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO qa_pairs (position, question, answer) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range store.Pairs() {
		if _, err := stmt.ExecContext(ctx, i, p.Question, p.Answer); err != nil {
			return fmt.Errorf("failed to insert %q: %w", p.Question, err)
		}
	}

	if err := s.setMetadata(ctx, tx, "count", strconv.Itoa(store.Len())); err != nil {
		return err
	}
	if err := s.setMetadata(ctx, tx, "imported_at", time.Now().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

// Load reads all pairs ordered by their stored position
func (s *SQLiteSource) Load(ctx context.Context) (*Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT question, answer FROM qa_pairs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairs: %w", err)
	}
	defer rows.Close()

	pairs := []Pair{}
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.Question, &p.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return NewStore(pairs), nil
}

// Count returns the number of stored pairs
func (s *SQLiteSource) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM qa_pairs`).Scan(&count); err != nil {
		return 0
	}

	return count
}

// ImportedAt returns when pairs were last written, zero if never
func (s *SQLiteSource) ImportedAt() time.Time {
	value, err := s.getMetadata(context.Background(), "imported_at")
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Close closes the database connection
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// getMetadata retrieves a metadata value
func (s *SQLiteSource) getMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("metadata key not found: %s", key)
	}
	return value, err
}

// setMetadata stores a metadata value
func (s *SQLiteSource) setMetadata(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO metadata (key, value)
		VALUES (?, ?)
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to store %s metadata: %w", key, err)
	}
	return nil
}
