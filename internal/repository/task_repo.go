package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"simpletodos/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const taskColumns = `id, text, email, owner, checked, private, created_at`

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	if err := row.Scan(
		&t.ID,
		&t.Text,
		&t.Email,
		&t.Owner,
		&t.Checked,
		&t.Private,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns every task, newest first.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + `
        FROM tasks
        ORDER BY created_at DESC, seq DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	r.logger.Debug("Tasks listed", zap.Int("count", len(tasks)))
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	query := `
        INSERT INTO tasks (id, text, email, owner, checked, private, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.Text,
		t.Email,
		t.Owner,
		t.Checked,
		t.Private,
		t.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.String("task_id", t.ID),
			zap.String("owner", t.Owner),
		)
		return fmt.Errorf("insert task: %w", err)
	}
	r.logger.Info("Task inserted", zap.String("task_id", t.ID), zap.String("owner", t.Owner))
	return nil
}

// Delete removes the task if callerID owns it and returns its last state.
func (r *TaskRepository) Delete(ctx context.Context, id, callerID string) (*model.Task, error) {
	query := `DELETE FROM tasks WHERE id = $1 AND owner = $2 RETURNING ` + taskColumns
	return r.guardedWrite(ctx, id, query, id, callerID)
}

// SetChecked is allowed for the owner, and for anyone while the task is public.
func (r *TaskRepository) SetChecked(ctx context.Context, id, callerID string, checked bool) (*model.Task, error) {
	query := `UPDATE tasks SET checked = $1
        WHERE id = $2 AND (owner = $3 OR NOT private)
        RETURNING ` + taskColumns
	return r.guardedWrite(ctx, id, query, checked, id, callerID)
}

func (r *TaskRepository) SetPrivate(ctx context.Context, id, callerID string, private bool) (*model.Task, error) {
	query := `UPDATE tasks SET private = $1
        WHERE id = $2 AND owner = $3
        RETURNING ` + taskColumns
	return r.guardedWrite(ctx, id, query, private, id, callerID)
}

// guardedWrite runs a write whose WHERE clause carries the permission check.
// No row back means the task is gone or the caller lost the right to it.
func (r *TaskRepository) guardedWrite(ctx context.Context, id, query string, args ...any) (*model.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missingOrForbidden(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("write task %s: %w", id, err)
	}
	return t, nil
}

func (r *TaskRepository) missingOrForbidden(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("lookup task %s: %w", id, err)
	}
	if exists {
		return ErrForbidden
	}
	return ErrNotFound
}

func (r *TaskRepository) CountIncomplete(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE checked = FALSE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count incomplete tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
