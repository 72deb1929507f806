// Package storage persists day-keyed task lists and the single API key slot
// in SQLite, migrating forward from the legacy per-day JSON archive files on
// first read.
package storage

import (
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dailytask/internal/task"
)

const dbName = "dailytask.db"

type Store struct {
	db      *sql.DB
	dataDir string

	// legacyDir is an extra location checked for archive files, kept for
	// installs that wrote next to the old executable.
	legacyDir string
}

// Open opens (or creates) the database under dataDir. legacyDir may be empty.
func Open(dataDir, legacyDir string) (*Store, error) {
	if dataDir == "" {
		return nil, errors.New("data dir is empty")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(filepath.Join(dataDir, dbName))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dataDir: dataDir, legacyDir: legacyDir}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_date TEXT NOT NULL,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	done INTEGER NOT NULL,
	pinned INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(task_date);
CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_date_pos ON tasks(task_date, position);
CREATE TABLE IF NOT EXISTS api_keys (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	api_key TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

// LoadTasks returns the stored list for day in position order. When the day
// has no rows it falls back to the legacy archive files once, persisting
// whatever they held so the next read hits the table. A day with no data
// anywhere is an empty list, not an error.
func (s *Store) LoadTasks(day string) ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT text, done, pinned FROM tasks WHERE task_date = ? ORDER BY position ASC;`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var done, pinned int
		if err := rows.Scan(&t.Text, &done, &pinned); err != nil {
			return nil, err
		}
		t.Done = done == 1
		t.Pinned = pinned == 1
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tasks) > 0 {
		return tasks, nil
	}

	migrated := s.legacyTasks(day)
	if len(migrated) == 0 {
		return []task.Task{}, nil
	}
	if err := s.SaveTasks(day, migrated); err != nil {
		return nil, err
	}
	return migrated, nil
}

// SaveTasks replaces the whole entry for day with list, position recorded as
// the slice index. Delete and insert run in one transaction so a failed save
// never leaves the day half-written.
func (s *Store) SaveTasks(day string, list []task.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks WHERE task_date = ?;`, day); err != nil {
		return err
	}
	for i, t := range list {
		if _, err := tx.Exec(
			`INSERT INTO tasks (task_date, position, text, done, pinned) VALUES (?, ?, ?, ?, ?);`,
			day, i, t.Text, boolInt(t.Done), boolInt(t.Pinned),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadAPIKey returns the saved key, trimmed, or "" when unset. A key found
// only in the legacy apikey.json is persisted forward first.
func (s *Store) LoadAPIKey() (string, error) {
	var key string
	err := s.db.QueryRow(`SELECT api_key FROM api_keys WHERE id = 1;`).Scan(&key)
	switch {
	case err == nil:
		if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
	case !errors.Is(err, sql.ErrNoRows):
		return "", err
	}

	legacy := s.legacyAPIKey()
	if legacy == "" {
		return "", nil
	}
	if err := s.SaveAPIKey(legacy); err != nil {
		return "", err
	}
	return legacy, nil
}

// SaveAPIKey upserts the single key slot, overwriting unconditionally.
func (s *Store) SaveAPIKey(key string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO api_keys (id, api_key, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET api_key = excluded.api_key, updated_at = excluded.updated_at;`,
		key, now,
	)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
