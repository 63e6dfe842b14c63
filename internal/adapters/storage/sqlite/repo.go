package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/ticklist/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores tasks for the reference server.
type Repository struct {
	db *sql.DB
}

// Open opens the database at path, creating its directory and schema.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// every pooled connection would otherwise see its own empty database
	db.SetMaxOpenConns(1)
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_completed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(is_completed, id);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateTask inserts t and returns it with its assigned id. A positive t.ID
// is kept as is (snapshot import); zero lets sqlite assign one.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	var id any
	if t.ID > 0 {
		id = t.ID
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks(id, name, description, is_completed, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)
	`, id, t.Name, t.Description, boolToInt(t.IsCompleted), ts(t.CreatedAt), ts(t.UpdatedAt))
	if err != nil {
		return domain.Task{}, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, err
	}
	t.ID = newID
	return t, nil
}

// UpdateTask overwrites every mutable column of t.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, description = ?, is_completed = ?, updated_at = ?
		WHERE id = ?
	`, t.Name, t.Description, boolToInt(t.IsCompleted), ts(t.UpdatedAt), t.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// UpsertTasks inserts or fully overwrites each task by id, created_at
// included, in one transaction.
func (r *Repository) UpsertTasks(ctx context.Context, tasks []domain.Task) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range tasks {
		if t.ID <= 0 {
			return fmt.Errorf("upsert task: %w", domain.ErrInvalidID)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO tasks(id, name, description, is_completed, created_at, updated_at)
			VALUES(?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				is_completed = excluded.is_completed,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at
		`, t.ID, t.Name, t.Description, boolToInt(t.IsCompleted), ts(t.CreatedAt), ts(t.UpdatedAt)); err != nil {
			return fmt.Errorf("upsert task %d: %w", t.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, is_completed, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`, id)
	return scanTask(row)
}

// ListTasks lists tasks in id order.
func (r *Repository) ListTasks(ctx context.Context, filter domain.TaskFilter, limit, offset int) ([]domain.Task, error) {
	query := `
		SELECT id, name, description, is_completed, created_at, updated_at
		FROM tasks
	`
	switch filter {
	case domain.TaskFilterCompleted:
		query += ` WHERE is_completed = 1`
	case domain.TaskFilterIncomplete:
		query += ` WHERE is_completed = 0`
	}
	query += ` ORDER BY id ASC LIMIT ? OFFSET ?`
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// DeleteTask deletes task.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask handles scan task.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t          domain.Task
		completed  int
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&t.ID, &t.Name, &t.Description, &completed, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.IsCompleted = completed != 0
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
