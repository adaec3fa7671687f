package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

// SQLiteTaskRepository persists tasks in a local SQLite file.
type SQLiteTaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteTaskRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time; avoids SQLITE_BUSY under concurrent SetTerminal calls
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	schema := `
CREATE TABLE IF NOT EXISTS ` + tasksTable + ` (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	result TEXT,
	error TEXT NOT NULL DEFAULT '',
	old_filename TEXT NOT NULL DEFAULT '',
	new_filename TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	view_mode TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	finished_at TEXT
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Info("registry.sqlite.opened", "path", path)
	return &SQLiteTaskRepository{db: db, logger: logger}, nil
}

func (r *SQLiteTaskRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteTaskRepository) Create(ctx context.Context, task entity.Task) error {
	if err := checkCreate(task); err != nil {
		return err
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO `+tasksTable+` (id, status, old_filename, new_filename, mode, model, view_mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		task.ID, string(task.Status), task.OldFilename, task.NewFilename,
		string(task.Mode), task.Model, task.ViewMode, formatTime(task.CreatedAt),
	)
	if err != nil {
		r.logger.Error("registry.task.create_failed", "task_id", task.ID, "driver", "sqlite", "error", err)
		return fmt.Errorf("insert task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *SQLiteTaskRepository) Get(ctx context.Context, id string) (entity.Task, error) {
	var (
		t                entity.Task
		status, mode     string
		result, finished sql.NullString
		created          string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, status, result, error, old_filename, new_filename, mode, model, view_mode, created_at, finished_at
		 FROM `+tasksTable+` WHERE id = ?`, id,
	).Scan(&t.ID, &status, &result, &t.Error, &t.OldFilename, &t.NewFilename, &mode, &t.Model, &t.ViewMode, &created, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Task{}, ErrNotFound
	}
	if err != nil {
		return entity.Task{}, fmt.Errorf("select task: %w", err)
	}

	t.Status = constants.TaskStatus(status)
	t.Mode = constants.Mode(mode)
	if t.CreatedAt, err = parseTime(created); err != nil {
		return entity.Task{}, err
	}
	if finished.Valid {
		ft, err := parseTime(finished.String)
		if err != nil {
			return entity.Task{}, err
		}
		t.FinishedAt = &ft
	}
	if result.Valid {
		if t.Result, err = decodeResult([]byte(result.String)); err != nil {
			return entity.Task{}, err
		}
	}
	return t, nil
}

func (r *SQLiteTaskRepository) SetTerminal(ctx context.Context, id string, out entity.Outcome) error {
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

	res, err := r.db.ExecContext(ctx,
		`UPDATE `+tasksTable+` SET status = ?, result = ?, error = ?, finished_at = ?
		 WHERE id = ? AND status = ?`,
		string(out.Status), result, out.Error, formatTime(time.Now().UTC()),
		id, string(constants.TaskStatusProcessing),
	)
	if err != nil {
		r.logger.Error("registry.task.update_failed", "task_id", id, "driver", "sqlite", "error", err)
		return fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return classifyMissedUpdate(ctx, r, id)
	}
	r.logger.Debug("registry.task.terminal", "task_id", id, "status", out.Status, "driver", "sqlite")
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
