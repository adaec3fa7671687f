package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

// PostgresTaskRepository persists tasks through a pgx pool.
type PostgresTaskRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresTaskRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskRepository{pool: pool, logger: logger}
}

// Migrate creates the tasks table when missing.
func (r *PostgresTaskRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS `+tasksTable+` (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL CHECK (status IN ('processing', 'completed', 'failed')),
	result JSONB,
	error TEXT NOT NULL DEFAULT '',
	old_filename TEXT NOT NULL DEFAULT '',
	new_filename TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	view_mode TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
)`)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", tasksTable, err)
	}
	return nil
}

func (r *PostgresTaskRepository) Create(ctx context.Context, task entity.Task) error {
	if err := checkCreate(task); err != nil {
		return err
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO `+tasksTable+` (id, status, old_filename, new_filename, mode, model, view_mode, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		task.ID, string(task.Status), task.OldFilename, task.NewFilename,
		string(task.Mode), task.Model, task.ViewMode, task.CreatedAt,
	)
	if err != nil {
		r.logger.Error("registry.task.create_failed", "task_id", task.ID, "driver", "postgres", "error", err)
		return fmt.Errorf("insert task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *PostgresTaskRepository) Get(ctx context.Context, id string) (entity.Task, error) {
	var (
		t            entity.Task
		status, mode string
		result       []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, status, result, error, old_filename, new_filename, mode, model, view_mode, created_at, finished_at
		 FROM `+tasksTable+` WHERE id = $1`, id,
	).Scan(&t.ID, &status, &result, &t.Error, &t.OldFilename, &t.NewFilename, &mode, &t.Model, &t.ViewMode, &t.CreatedAt, &t.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Task{}, ErrNotFound
	}
	if err != nil {
		return entity.Task{}, fmt.Errorf("select task: %w", err)
	}
	t.Status = constants.TaskStatus(status)
	t.Mode = constants.Mode(mode)
	if t.Result, err = decodeResult(result); err != nil {
		return entity.Task{}, err
	}
	return t, nil
}

func (r *PostgresTaskRepository) SetTerminal(ctx context.Context, id string, out entity.Outcome) error {
	if err := checkOutcome(out); err != nil {
		return err
	}
	b, err := encodeResult(out.Result)
	if err != nil {
		return err
	}
	var result any
	if b != nil {
		result = string(b)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE `+tasksTable+` SET status = $2, result = $3::jsonb, error = $4, finished_at = now()
		 WHERE id = $1 AND status = $5`,
		id, string(out.Status), result, out.Error, string(constants.TaskStatusProcessing),
	)
	if err != nil {
		r.logger.Error("registry.task.update_failed", "task_id", id, "driver", "postgres", "error", err)
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return classifyMissedUpdate(ctx, r, id)
	}
	r.logger.Debug("registry.task.terminal", "task_id", id, "status", out.Status, "driver", "postgres")
	return nil
}
