// # internal/history/store.go
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Snapshot records the outcome of one documentation build.
type Snapshot struct {
	BuildID         string
	Timestamp       time.Time
	ModuleCount     int
	EntityCount     int
	ResolvedCount   int
	ExternalCount   int
	UnresolvedCount int
	DiagnosticCount int
	DurationMS      int64
}

// Store persists build snapshots in a local sqlite database so watch
// sessions and repeated runs can be compared over time.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) SaveSnapshot(snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.BuildID == "" {
		return fmt.Errorf("snapshot build id must not be empty")
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}

	query := `
INSERT INTO builds (
  build_id, ts_utc, module_count, entity_count, resolved_count,
  external_count, unresolved_count, diagnostic_count, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(build_id) DO UPDATE SET
  ts_utc=excluded.ts_utc,
  module_count=excluded.module_count,
  entity_count=excluded.entity_count,
  resolved_count=excluded.resolved_count,
  external_count=excluded.external_count,
  unresolved_count=excluded.unresolved_count,
  diagnostic_count=excluded.diagnostic_count,
  duration_ms=excluded.duration_ms
`
	return s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			snapshot.BuildID,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.ModuleCount,
			snapshot.EntityCount,
			snapshot.ResolvedCount,
			snapshot.ExternalCount,
			snapshot.UnresolvedCount,
			snapshot.DiagnosticCount,
			snapshot.DurationMS,
		)
		return err
	})
}

// LoadSnapshots returns snapshots in chronological order, optionally
// limited to those at or after since.
func (s *Store) LoadSnapshots(since time.Time) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT
  build_id, ts_utc, module_count, entity_count, resolved_count,
  external_count, unresolved_count, diagnostic_count, duration_ms
FROM builds
`
	args := make([]any, 0, 1)
	if !since.IsZero() {
		query += " WHERE ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC, build_id ASC"

	var rows *sql.Rows
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var (
			tsRaw    string
			snapshot Snapshot
		)
		if err := rows.Scan(
			&snapshot.BuildID,
			&tsRaw,
			&snapshot.ModuleCount,
			&snapshot.EntityCount,
			&snapshot.ResolvedCount,
			&snapshot.ExternalCount,
			&snapshot.UnresolvedCount,
			&snapshot.DiagnosticCount,
			&snapshot.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts.UTC()
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snapshots, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
