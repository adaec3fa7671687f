package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/async"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
	"github.com/joseph-ayodele/apl-diff/internal/pipeline"
	"github.com/joseph-ayodele/apl-diff/internal/reference"
	"github.com/joseph-ayodele/apl-diff/internal/repository"
)

// Enqueuer admits jobs to the worker pool without blocking.
type Enqueuer interface {
	Enqueue(ctx context.Context, job pipeline.Job) error
}

// FixtureSource provides the validated example pair for every comparison.
type FixtureSource interface {
	Load() (pipeline.Fixtures, error)
}

// CompareRequest is one accepted upload pair with its options.
type CompareRequest struct {
	Old      pipeline.Document
	New      pipeline.Document
	Quick    bool
	Model    string
	ViewMode string
}

// ComparisonService registers tasks and hands them to the queue.
type ComparisonService struct {
	tasks    repository.TaskRepository
	queue    Enqueuer
	fixtures FixtureSource
	parser   *reference.Parser
	logger   *slog.Logger
	newID    func() string
}

func NewComparisonService(
	tasks repository.TaskRepository,
	queue Enqueuer,
	fixtures FixtureSource,
	parser *reference.Parser,
	logger *slog.Logger,
) *ComparisonService {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = reference.NewParser("")
	}
	return &ComparisonService{
		tasks:    tasks,
		queue:    queue,
		fixtures: fixtures,
		parser:   parser,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Submit validates the request, creates the task in processing and enqueues it.
// A task the queue refuses is failed straight away so it never stays processing.
func (s *ComparisonService) Submit(ctx context.Context, req CompareRequest) (entity.Task, error) {
	for _, d := range []pipeline.Document{req.Old, req.New} {
		if _, ok := s.parser.Parse(d.Name); !ok {
			return entity.Task{}, common.InvalidInputf("invalid %s filename %q, expected format: %sxx-xxx.pdf",
				s.parser.Prefix(), d.Name, s.parser.Prefix())
		}
	}

	fx, err := s.fixtures.Load()
	if err != nil {
		s.logger.Error("compare.fixtures.missing", "error", err)
		return entity.Task{}, err
	}

	mode := constants.ModeFull
	if req.Quick {
		mode = constants.ModeQuick
	}
	task := entity.Task{
		ID:          s.newID(),
		Status:      constants.TaskStatusProcessing,
		OldFilename: req.Old.Name,
		NewFilename: req.New.Name,
		Mode:        mode,
		Model:       req.Model,
		ViewMode:    req.ViewMode,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return entity.Task{}, common.WrapError(err, "create task")
	}

	job := pipeline.Job{
		TaskID:   task.ID,
		Old:      req.Old,
		New:      req.New,
		Fixtures: fx,
		Mode:     mode,
		Model:    req.Model,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		msg := "queue: " + err.Error()
		if ferr := s.tasks.SetTerminal(context.WithoutCancel(ctx), task.ID, entity.Failed(msg)); ferr != nil {
			s.logger.Error("compare.task.fail_record_failed", "task_id", task.ID, "error", ferr)
		}
		if errors.Is(err, async.ErrClosed) {
			err = common.NewAppError(common.CodeQueueFull, "service is shutting down", err)
		}
		return entity.Task{}, err
	}

	s.logger.Info("compare.task.accepted",
		"task_id", task.ID,
		"old", req.Old.Name,
		"new", req.New.Name,
		"mode", mode,
		"model", req.Model,
	)
	return task, nil
}

// Status returns the current view of a task.
func (s *ComparisonService) Status(ctx context.Context, id string) (entity.Task, error) {
	return s.tasks.Get(ctx, id)
}
