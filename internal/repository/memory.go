package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

// MemoryTaskRepository keeps tasks in process memory. Tasks are stored and
// returned as copies so readers never observe a half-written task.
type MemoryTaskRepository struct {
	mu     sync.RWMutex
	tasks  map[string]entity.Task
	now    func() time.Time
	logger *slog.Logger
}

func NewMemoryTaskRepository(logger *slog.Logger) *MemoryTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryTaskRepository{
		tasks:  make(map[string]entity.Task),
		now:    time.Now,
		logger: logger,
	}
}

func (r *MemoryTaskRepository) Create(_ context.Context, task entity.Task) error {
	if err := checkCreate(task); err != nil {
		return err
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = r.now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[task.ID]; exists {
		return ErrDuplicate
	}
	r.tasks[task.ID] = task.Clone()
	r.logger.Debug("registry.task.created", "task_id", task.ID, "driver", "memory")
	return nil
}

func (r *MemoryTaskRepository) Get(_ context.Context, id string) (entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return entity.Task{}, ErrNotFound
	}
	return t.Clone(), nil
}

func (r *MemoryTaskRepository) SetTerminal(_ context.Context, id string, out entity.Outcome) error {
	if err := checkOutcome(out); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if !t.Status.CanTransition(out.Status) {
		return ErrAlreadyTerminal
	}

	finished := r.now().UTC()
	t.Status = out.Status
	t.Error = out.Error
	t.FinishedAt = &finished
	if out.Result != nil {
		res := out.Result.Clone()
		t.Result = &res
	}
	r.tasks[id] = t
	r.logger.Debug("registry.task.terminal", "task_id", id, "status", out.Status, "driver", "memory")
	return nil
}
