package entity

import (
	"time"

	"github.com/joseph-ayodele/apl-diff/constants"
)

// Task is one submitted comparison and its outcome.
type Task struct {
	ID          string               `json:"task_id"`
	Status      constants.TaskStatus `json:"status"`
	Result      *ScoredReport        `json:"json,omitempty"`
	Error       string               `json:"error,omitempty"`
	OldFilename string               `json:"old_filename"`
	NewFilename string               `json:"new_filename"`
	Mode        constants.Mode       `json:"mode"`
	Model       string               `json:"model"`
	ViewMode    string               `json:"view_mode,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	FinishedAt  *time.Time           `json:"finished_at,omitempty"`
}

// Outcome is the single terminal write for a task: exactly one of Result or Error is set.
type Outcome struct {
	Status constants.TaskStatus
	Result *ScoredReport
	Error  string
}

// Completed builds a successful outcome.
func Completed(r *ScoredReport) Outcome {
	return Outcome{Status: constants.TaskStatusCompleted, Result: r}
}

// Failed builds a failed outcome.
func Failed(msg string) Outcome {
	return Outcome{Status: constants.TaskStatusFailed, Error: msg}
}

// Clone returns a copy safe to hand to another goroutine.
func (t Task) Clone() Task {
	out := t
	if t.Result != nil {
		r := t.Result.Clone()
		out.Result = &r
	}
	if t.FinishedAt != nil {
		ft := *t.FinishedAt
		out.FinishedAt = &ft
	}
	return out
}
