// # internal/cache/store.go
//
// Persistent artifact store backing the in-memory cache across runs. One
// sqlite file, single writer, WAL for watch-mode churn.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Record is one persisted compilation result.
type Record struct {
	Fingerprint string
	ClientJS    string
	ServerJS    string
	CSS         string
	BuildID     string
	GeneratedAt time.Time
}

// ErrNotFound is returned by Load when no record exists for a fingerprint.
var ErrNotFound = errors.New("cache: record not found")

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// OpenStore opens (creating if needed) the artifact database at path.
func OpenStore(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("cache store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("cache store path %q is a directory, expected file", cleanPath)
	}
	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite cache %q: %w", cleanPath, err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}
	return &Store{path: cleanPath, db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS artifacts (
  fingerprint TEXT PRIMARY KEY,
  client_js TEXT NOT NULL,
  server_js TEXT NOT NULL,
  css TEXT NOT NULL,
  build_id TEXT NOT NULL,
  generated_at_utc TEXT NOT NULL,
  created_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
CREATE INDEX IF NOT EXISTS idx_artifacts_generated ON artifacts(generated_at_utc);
`)
	if err != nil {
		return fmt.Errorf("create artifacts table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts a record; the latest compilation for a fingerprint wins.
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Fingerprint == "" {
		return fmt.Errorf("record fingerprint must not be empty")
	}
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
INSERT INTO artifacts (fingerprint, client_js, server_js, css, build_id, generated_at_utc)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET
  client_js=excluded.client_js,
  server_js=excluded.server_js,
  css=excluded.css,
  build_id=excluded.build_id,
  generated_at_utc=excluded.generated_at_utc
`,
		rec.Fingerprint, rec.ClientJS, rec.ServerJS, rec.CSS, rec.BuildID,
		rec.GeneratedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save artifact %s: %w", rec.Fingerprint, err)
	}
	return nil
}

func (s *Store) Load(fingerprint string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rec Record
	var generated string
	err := s.db.QueryRow(`
SELECT fingerprint, client_js, server_js, css, build_id, generated_at_utc
FROM artifacts WHERE fingerprint = ?
`, fingerprint).Scan(&rec.Fingerprint, &rec.ClientJS, &rec.ServerJS, &rec.CSS, &rec.BuildID, &generated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load artifact %s: %w", fingerprint, err)
	}
	if ts, perr := time.Parse(time.RFC3339Nano, generated); perr == nil {
		rec.GeneratedAt = ts
	}
	return rec, nil
}

func (s *Store) Delete(fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM artifacts WHERE fingerprint = ?`, fingerprint); err != nil {
		return fmt.Errorf("delete artifact %s: %w", fingerprint, err)
	}
	return nil
}

// Count returns the number of persisted artifacts.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM artifacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count artifacts: %w", err)
	}
	return n, nil
}
