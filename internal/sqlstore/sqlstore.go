// Package sqlstore provides a MySQL-backed task store for shared machines
// where the JSON snapshot is not enough.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/prodo-app/prodo/internal/task"
)

// Store persists tasks in a MySQL database.
type Store struct {
	db *sql.DB
}

// New opens a connection to dsn and runs the idempotent migration.
func New(dsn string) (*Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	// Timestamps scan into time.Time.
	cfg.ParseTime = true
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	createTasks := `CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    title VARCHAR(500) NOT NULL,
    notes TEXT NOT NULL,
    priority VARCHAR(10) NOT NULL DEFAULT 'Medium',
    due_date CHAR(10) NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'Pending',
    created_at TIMESTAMP(6) NOT NULL,
    updated_at TIMESTAMP(6) NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, createTasks); err != nil {
		return err
	}
	// MySQL lacks IF NOT EXISTS for CREATE INDEX in some versions; ignore duplicates
	_ = s.execIgnoreDupIndex(ctx, `CREATE INDEX idx_priority_status ON tasks(priority, status)`)
	return nil
}

func (s *Store) execIgnoreDupIndex(ctx context.Context, ddl string) error {
	_, err := s.db.ExecContext(ctx, ddl)
	if err != nil {
		e := err.Error()
		if strings.Contains(e, "Duplicate key name") || strings.Contains(e, "1061") {
			return nil
		}
	}
	return err
}

// Add inserts a new task built from the draft.
func (s *Store) Add(ctx context.Context, d task.Draft) (task.Task, error) {
	d, err := d.Normalize()
	if err != nil {
		return task.Task{}, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks
    (title, notes, priority, due_date, status, created_at, updated_at)
    VALUES(?,?,?,?,?,?,?)`,
		d.Title, d.Notes, string(d.Priority), nullString(d.DueDate), string(d.Status), now, now)
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task.Task{
		ID:        task.FormatID(int(id)),
		Title:     d.Title,
		Notes:     d.Notes,
		Priority:  d.Priority,
		DueDate:   d.DueDate,
		Status:    d.Status,
		CreatedAt: &now,
		UpdatedAt: &now,
	}, nil
}

// Get returns the task with the given ID.
func (s *Store) Get(ctx context.Context, id string) (task.Task, error) {
	key := task.IDNumber(id)
	if key < 0 {
		return task.Task{}, &task.NotFoundError{ID: id}
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, title, notes, priority, due_date, status, created_at, updated_at
    FROM tasks WHERE id=?`, key)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return task.Task{}, &task.NotFoundError{ID: id}
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("query task: %w", err)
	}
	return t, nil
}

// Update applies the patch to an existing task, refreshing updated_at
// strictly past its previous value.
func (s *Store) Update(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}

	p.Apply(&t)
	touch(&t)
	if err := s.writeBack(ctx, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Delete removes the task with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	key := task.IDNumber(id)
	if key < 0 {
		return &task.NotFoundError{ID: id}
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, key)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return &task.NotFoundError{ID: id}
	}
	return nil
}

// ToggleDone flips a task between Done and Pending.
func (s *Store) ToggleDone(ctx context.Context, id string) (task.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	if t.Status == task.StatusDone {
		t.Status = task.StatusPending
	} else {
		t.Status = task.StatusDone
	}
	touch(&t)
	if err := s.writeBack(ctx, &t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// List answers a combined search and filter over the table.
func (s *Store) List(ctx context.Context, q task.Query) ([]task.Task, error) {
	query, args := buildListQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// buildListQuery renders a Query as SQL. Insertion order maps to id order;
// smart sort mirrors the in-memory store's ordering.
func buildListQuery(q task.Query) (string, []any) {
	var clauses []string
	var args []any
	if text := strings.TrimSpace(q.Text); text != "" {
		clauses = append(clauses, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(text)+"%")
	}
	if q.Priority != nil {
		clauses = append(clauses, "priority = ?")
		args = append(args, string(*q.Priority))
	}
	if q.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, string(*q.Status))
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	orderBy := " ORDER BY id ASC"
	if q.SmartSort {
		orderBy = ` ORDER BY
  CASE priority WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 ELSE 3 END,
  CASE WHEN due_date IS NULL OR due_date='' THEN 1 ELSE 0 END,
  due_date ASC,
  created_at ASC,
  id ASC`
	}

	query := `SELECT id, title, notes, priority, due_date, status, created_at, updated_at FROM tasks` +
		where + orderBy
	return query, args
}

func (s *Store) writeBack(ctx context.Context, t *task.Task) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks
    SET title=?, notes=?, priority=?, due_date=?, status=?, updated_at=?
    WHERE id=?`,
		t.Title, t.Notes, string(t.Priority), nullString(t.DueDate), string(t.Status), *t.UpdatedAt, task.IDNumber(t.ID))
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var t task.Task
	var id int64
	var due sql.NullString
	var created, updated time.Time
	if err := row.Scan(&id, &t.Title, &t.Notes, &t.Priority, &due, &t.Status, &created, &updated); err != nil {
		return task.Task{}, err
	}
	t.ID = task.FormatID(int(id))
	if due.Valid {
		t.DueDate = due.String
	}
	t.CreatedAt = &created
	t.UpdatedAt = &updated
	return t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// touch keeps updated_at strictly increasing even when the clock has not
// advanced between mutations.
func touch(t *task.Task) {
	now := time.Now().UTC()
	if t.UpdatedAt != nil && !now.After(*t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = &now
}
