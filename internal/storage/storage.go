package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"checklist/internal/task"
)

// Store journals the task collection to a SQLite file so a session can be
// picked up again. The manager stays the source of truth while running.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("storage: db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("storage: %w", err)
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: schema: %w", err)
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
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	text TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS task_tags (
	task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY (task_id, tag)
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns adds columns introduced after the first schema.
func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"due":      "ALTER TABLE tasks ADD COLUMN due TEXT DEFAULT NULL;",
		"priority": "ALTER TABLE tasks ADD COLUMN priority INTEGER NOT NULL DEFAULT 2;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

// FetchTasks returns the journaled tasks in display order.
func (s *Store) FetchTasks() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT id, text, completed, created_at, due, priority FROM tasks ORDER BY position, rowid;`)
	if err != nil {
		return nil, fmt.Errorf("storage: fetch: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	index := map[string]int{}
	for rows.Next() {
		var t task.Task
		var completed, priority int
		var createdStr string
		var dueStr sql.NullString

		if err := rows.Scan(&t.ID, &t.Text, &completed, &createdStr, &dueStr, &priority); err != nil {
			return nil, fmt.Errorf("storage: fetch: %w", err)
		}
		t.Completed = completed == 1
		t.Priority = task.Priority(priority)
		if dueStr.Valid {
			parsed, err := time.Parse(time.RFC3339, dueStr.String)
			if err != nil {
				return nil, fmt.Errorf("storage: fetch %s: due %q: %w", t.ID, dueStr.String, err)
			}
			t.Due = &parsed
		}
		created, err := time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			return nil, fmt.Errorf("storage: fetch %s: created_at %q: %w", t.ID, createdStr, err)
		}
		t.CreatedAt = created
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: fetch: %w", err)
	}
	rows.Close()

	tagRows, err := s.db.Query(`SELECT task_id, tag FROM task_tags ORDER BY task_id, position;`)
	if err != nil {
		return nil, fmt.Errorf("storage: fetch tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var id, tag string
		if err := tagRows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("storage: fetch tags: %w", err)
		}
		if i, ok := index[id]; ok {
			tasks[i].Tags = append(tasks[i].Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("storage: fetch tags: %w", err)
	}
	return tasks, nil
}

// SaveTask inserts or updates t, replacing its tags. New tasks are placed
// after every journaled task; updates keep their position.
func (s *Store) SaveTask(t task.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: save: %w", err)
	}
	defer tx.Rollback()

	due, done, created := columns(t)
	_, err = tx.Exec(`
INSERT INTO tasks (id, position, text, completed, created_at, due, priority)
VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM tasks), ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	text = excluded.text,
	completed = excluded.completed,
	due = excluded.due,
	priority = excluded.priority;`,
		t.ID, t.Text, done, created, due, int(t.Priority))
	if err != nil {
		return fmt.Errorf("storage: save %s: %w", t.ID, err)
	}
	if err := replaceTags(tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// Sync replaces the journal with tasks, positioned in slice order. It is
// used to catch up after a write was lost.
func (s *Store) Sync(tasks []task.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: sync: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM task_tags;`); err != nil {
		return fmt.Errorf("storage: sync: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tasks;`); err != nil {
		return fmt.Errorf("storage: sync: %w", err)
	}
	for i, t := range tasks {
		due, done, created := columns(t)
		_, err := tx.Exec(`
INSERT INTO tasks (id, position, text, completed, created_at, due, priority)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
			t.ID, i, t.Text, done, created, due, int(t.Priority))
		if err != nil {
			return fmt.Errorf("storage: sync %s: %w", t.ID, err)
		}
		if err := replaceTags(tx, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func columns(t task.Task) (due sql.NullString, done int, created string) {
	if t.Due != nil {
		due = sql.NullString{String: t.Due.Format(time.RFC3339), Valid: true}
	}
	if t.Completed {
		done = 1
	}
	return due, done, t.CreatedAt.UTC().Format(time.RFC3339Nano)
}

func replaceTags(tx *sql.Tx, t task.Task) error {
	if _, err := tx.Exec(`DELETE FROM task_tags WHERE task_id = ?;`, t.ID); err != nil {
		return fmt.Errorf("storage: save %s tags: %w", t.ID, err)
	}
	for i, tag := range t.Tags {
		if _, err := tx.Exec(`INSERT INTO task_tags (task_id, position, tag) VALUES (?, ?, ?);`, t.ID, i, tag); err != nil {
			return fmt.Errorf("storage: save %s tags: %w", t.ID, err)
		}
	}
	return nil
}

func (s *Store) DeleteTask(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: delete: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM task_tags WHERE task_id = ?;`, id); err != nil {
		return fmt.Errorf("storage: delete %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("storage: delete %s: %w", id, err)
	}
	return tx.Commit()
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
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	u.RawQuery = q.Encode()
	return u.String()
}
