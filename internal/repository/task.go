package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

var (
	ErrNotFound        = common.NewAppError(common.CodeNotFound, "task not found", common.ErrNotFound)
	ErrAlreadyTerminal = common.NewAppError(common.CodeConflict, "task already finished", nil)
	ErrDuplicate       = common.NewAppError(common.CodeConflict, "task already exists", nil)
)

// TaskRepository is the task registry. Writes to a task are exactly
// Create (status processing) followed by at most one SetTerminal.
type TaskRepository interface {
	Create(ctx context.Context, task entity.Task) error
	Get(ctx context.Context, id string) (entity.Task, error)
	SetTerminal(ctx context.Context, id string, out entity.Outcome) error
}

func checkCreate(task entity.Task) error {
	if task.ID == "" {
		return common.InvalidInputf("task id is required")
	}
	if task.Status != constants.TaskStatusProcessing {
		return common.InvalidInputf("new task must be %s, got %q", constants.TaskStatusProcessing, task.Status)
	}
	return nil
}

func checkOutcome(out entity.Outcome) error {
	if !constants.TaskStatusProcessing.CanTransition(out.Status) {
		return common.InvalidInputf("illegal transition %s -> %s", constants.TaskStatusProcessing, out.Status)
	}
	switch out.Status {
	case constants.TaskStatusCompleted:
		if out.Result == nil {
			return common.InvalidInputf("completed outcome needs a result")
		}
	case constants.TaskStatusFailed:
		if out.Result != nil {
			return common.InvalidInputf("failed outcome must not carry a result")
		}
	}
	return nil
}

// classifyMissedUpdate tells apart "no such task" from "already terminal"
// after a conditional update matched no row.
func classifyMissedUpdate(ctx context.Context, repo TaskRepository, id string) error {
	t, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("lookup after update: %w", err)
	}
	if t.Status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	return fmt.Errorf("task %s not updated in status %s", id, t.Status)
}
