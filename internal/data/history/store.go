// Package history keeps a SQLite log of extraction runs so successive runs
// can be compared.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
	defaultKey  = "default"

	// timeLayout is fixed width so started_at_utc sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

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

	// busy_timeout + WAL reduce lock conflicts when watch mode reruns quickly.
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

// SaveRun inserts run, assigning an ID and start time when they are unset.
// It returns the stored run.
func (s *Store) SaveRun(run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ProjectKey = projectKey(run.ProjectKey)
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.SchemaVersion == 0 {
		run.SchemaVersion = SchemaVersion
	}
	if run.SchemaVersion != SchemaVersion {
		return run, fmt.Errorf("unsupported run schema version %d", run.SchemaVersion)
	}
	if run.Status == "" {
		run.Status = StatusOK
	}

	query := `
INSERT INTO runs (
  id, project_key, schema_version, started_at_utc, duration_ms, status,
  unit_count, failed_unit_count, syntax_error_count,
  class_count, namespace_count, attribute_count, method_count,
  resolved_parent_count, distant_parent_count,
  artifact_count, failed_artifact_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	err := s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			run.ID,
			run.ProjectKey,
			run.SchemaVersion,
			run.StartedAt.UTC().Format(timeLayout),
			run.Duration.Milliseconds(),
			string(run.Status),
			run.Units,
			run.FailedUnits,
			run.SyntaxErrors,
			run.Classes,
			run.Namespaces,
			run.Attributes,
			run.Methods,
			run.ResolvedParents,
			run.DistantParents,
			run.Artifacts,
			run.FailedArtifacts,
		)
		return err
	})
	return run, err
}

// LoadRuns returns the project's runs started at or after since, oldest first.
func (s *Store) LoadRuns(key string, since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := selectRuns + " WHERE project_key = ?"
	args := []any{projectKey(key)}
	if !since.IsZero() {
		query += " AND started_at_utc >= ?"
		args = append(args, since.UTC().Format(timeLayout))
	}
	query += " ORDER BY started_at_utc ASC, id ASC"
	return s.query("load runs", query, args...)
}

// Latest returns the most recent run of the project, or false when none exists.
func (s *Store) Latest(key string) (Run, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.query("load latest run", selectRuns+" WHERE project_key = ? ORDER BY started_at_utc DESC, id DESC LIMIT 1", projectKey(key))
	if err != nil || len(runs) == 0 {
		return Run{}, false, err
	}
	return runs[0], true, nil
}

const selectRuns = `
SELECT
  id, project_key, schema_version, started_at_utc, duration_ms, status,
  unit_count, failed_unit_count, syntax_error_count,
  class_count, namespace_count, attribute_count, method_count,
  resolved_parent_count, distant_parent_count,
  artifact_count, failed_artifact_count
FROM runs`

func (s *Store) query(op, query string, args ...any) ([]Run, error) {
	var rows *sql.Rows
	err := s.withRetry(op, func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run        Run
			startedRaw string
			durationMS int64
			status     string
		)
		if err := rows.Scan(
			&run.ID,
			&run.ProjectKey,
			&run.SchemaVersion,
			&startedRaw,
			&durationMS,
			&status,
			&run.Units,
			&run.FailedUnits,
			&run.SyntaxErrors,
			&run.Classes,
			&run.Namespaces,
			&run.Attributes,
			&run.Methods,
			&run.ResolvedParents,
			&run.DistantParents,
			&run.Artifacts,
			&run.FailedArtifacts,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		started, err := time.Parse(timeLayout, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
		}
		run.StartedAt = started.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.Status = Status(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func projectKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return defaultKey
	}
	return key
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

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
