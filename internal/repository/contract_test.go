package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTask() entity.Task {
	return entity.Task{
		ID:          uuid.NewString(),
		Status:      constants.TaskStatusProcessing,
		OldFilename: "APL21-004.pdf",
		NewFilename: "APL25-008.pdf",
		Mode:        constants.ModeQuick,
		Model:       "gpt-4.1",
		ViewMode:    "significance",
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
}

func sampleReport() *entity.ScoredReport {
	return &entity.ScoredReport{
		Title: "APL 21-004 vs APL 25-008",
		Bullets: []entity.ScoredBullet{{
			BulletTitle:   "Deadline",
			BulletContent: "Reporting moved to 30 days",
			Score:         8,
			RevisionType:  constants.Update,
			Citations: entity.Citations{
				"APL21": {Page: 1, Line: 2},
				"APL25": {Page: 3, Line: 4},
			},
		}},
	}
}

// runRegistryContract exercises the behavior every backend must share.
func runRegistryContract(t *testing.T, repo TaskRepository) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		task := newTask()
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := repo.Get(ctx, task.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Status != constants.TaskStatusProcessing || got.Result != nil || got.Error != "" {
			t.Fatalf("unexpected new task: %+v", got)
		}
		if got.OldFilename != task.OldFilename || got.Mode != task.Mode || !got.CreatedAt.Equal(task.CreatedAt) {
			t.Fatalf("metadata not persisted: %+v", got)
		}
	})

	t.Run("duplicate create", func(t *testing.T) {
		task := newTask()
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.Create(ctx, task); !errors.Is(err, ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := repo.SetTerminal(ctx, "missing", entity.Failed("x")); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("completed", func(t *testing.T) {
		task := newTask()
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.SetTerminal(ctx, task.ID, entity.Completed(sampleReport())); err != nil {
			t.Fatalf("SetTerminal: %v", err)
		}
		got, err := repo.Get(ctx, task.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Status != constants.TaskStatusCompleted || got.Result == nil || got.FinishedAt == nil {
			t.Fatalf("unexpected completed task: %+v", got)
		}
		if c := got.Result.Bullets[0].Citations["APL25"]; c == nil || c.Page != 3 || c.Line != 4 {
			t.Fatalf("citations not persisted: %+v", got.Result.Bullets[0].Citations)
		}
	})

	t.Run("never reopened", func(t *testing.T) {
		task := newTask()
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.SetTerminal(ctx, task.ID, entity.Failed("boom")); err != nil {
			t.Fatalf("SetTerminal: %v", err)
		}
		err := repo.SetTerminal(ctx, task.ID, entity.Completed(sampleReport()))
		if !errors.Is(err, ErrAlreadyTerminal) {
			t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
		}
		got, _ := repo.Get(ctx, task.ID)
		if got.Status != constants.TaskStatusFailed || got.Error != "boom" || got.Result != nil {
			t.Fatalf("terminal state changed: %+v", got)
		}
	})

	t.Run("illegal outcome", func(t *testing.T) {
		task := newTask()
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
		bad := entity.Outcome{Status: constants.TaskStatusProcessing}
		if err := repo.SetTerminal(ctx, task.ID, bad); err == nil {
			t.Fatal("processing is not a terminal outcome")
		}
	})

	t.Run("one terminal transition under contention", func(t *testing.T) {
		task := newTask()
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create: %v", err)
		}
		const writers = 16
		var wins, conflicts int32
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := repo.SetTerminal(ctx, task.ID, entity.Failed(fmt.Sprintf("writer %d", i)))
				switch {
				case err == nil:
					atomic.AddInt32(&wins, 1)
				case errors.Is(err, ErrAlreadyTerminal):
					atomic.AddInt32(&conflicts, 1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()
		if wins != 1 || conflicts != writers-1 {
			t.Fatalf("wins=%d conflicts=%d, want 1 and %d", wins, conflicts, writers-1)
		}
	})
}
