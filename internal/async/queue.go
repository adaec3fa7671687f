package async

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/pipeline"
)

var (
	// ErrQueueFull is returned when every buffered slot is taken.
	ErrQueueFull = common.NewAppError(common.CodeQueueFull, "comparison queue is full, retry later", nil)
	// ErrClosed is returned after Shutdown started.
	ErrClosed = errors.New("queue is shutting down")
)

// Runner executes one job; *pipeline.Processor satisfies it.
type Runner interface {
	Run(ctx context.Context, job pipeline.Job) error
}

type Queue interface {
	Enqueue(ctx context.Context, job pipeline.Job) error
	Shutdown(ctx context.Context)
}
