// Package pipeline runs an APL comparison: text extraction, reference parsing and the
// four transformation stages, then records the single terminal outcome of the task.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
	"github.com/joseph-ayodele/apl-diff/internal/extract"
	"github.com/joseph-ayodele/apl-diff/internal/llm"
	"github.com/joseph-ayodele/apl-diff/internal/reference"
	"github.com/joseph-ayodele/apl-diff/internal/repository"
)

// Job is one accepted comparison.
type Job struct {
	TaskID   string
	Old      Document
	New      Document
	Fixtures Fixtures
	Mode     constants.Mode
	Model    string
}

// StageError tags a failure with the step that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// Processor coordinates extraction, reference parsing and the transformation stages.
type Processor struct {
	Logger    *slog.Logger
	Tasks     repository.TaskRepository
	Extractor extract.TextExtractor
	Parser    *reference.Parser
	Diff      *DiffStage
	Estimate  *EstimateStage
	Final     *FinalDiffStage
	Score     *ScoreStage
}

// NewProcessor wires the four stages around one Transformer.
func NewProcessor(
	logger *slog.Logger,
	tasks repository.TaskRepository,
	extractor extract.TextExtractor,
	parser *reference.Parser,
	t llm.Transformer,
	cfg StageConfig,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = reference.NewParser("")
	}
	return &Processor{
		Logger:    logger,
		Tasks:     tasks,
		Extractor: extractor,
		Parser:    parser,
		Diff:      NewDiffStage(t, cfg, logger),
		Estimate:  NewEstimateStage(t, cfg, logger),
		Final:     NewFinalDiffStage(t, cfg, logger),
		Score:     NewScoreStage(t, cfg, logger),
	}
}

// Run executes the job and writes its terminal state exactly once. The returned
// error is the pipeline failure (already recorded on the task) or a registry error.
func (p *Processor) Run(ctx context.Context, job Job) error {
	ctx = common.WithTaskID(ctx, job.TaskID)
	start := time.Now()

	report, runErr := p.safeExecute(ctx, job)

	outcome := entity.Completed(&report)
	if runErr != nil {
		outcome = entity.Failed(runErr.Error())
	}
	// the task must reach a terminal state even when the job deadline has passed
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.Tasks.SetTerminal(writeCtx, job.TaskID, outcome); err != nil {
		p.Logger.Error("pipeline.task.record_failed", "task_id", job.TaskID, "status", outcome.Status, "error", err)
		return errors.Join(runErr, fmt.Errorf("record outcome: %w", err))
	}

	elapsed := time.Since(start).Milliseconds()
	if runErr != nil {
		p.Logger.Error("pipeline.task.failed", "task_id", job.TaskID, "error", runErr, "elapsed_ms", elapsed)
		return runErr
	}
	p.Logger.Info("pipeline.task.completed",
		"task_id", job.TaskID,
		"mode", job.Mode,
		"bullets", len(report.Bullets),
		"elapsed_ms", elapsed,
	)
	return nil
}

// safeExecute turns a panic anywhere in the run into a failure, so the task
// still gets its terminal write.
func (p *Processor) safeExecute(ctx context.Context, job Job) (report entity.ScoredReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error("pipeline.task.panic", "task_id", job.TaskID, "panic", r, "stack", string(debug.Stack()))
			report, err = entity.ScoredReport{}, fmt.Errorf("internal: panic: %v", r)
		}
	}()
	return p.Execute(ctx, job)
}

// Execute runs the stages without touching the registry. Stages run strictly in
// order and the first failure stops the run.
func (p *Processor) Execute(ctx context.Context, job Job) (entity.ScoredReport, error) {
	texts, err := p.extractAll(ctx, job)
	if err != nil {
		return entity.ScoredReport{}, &StageError{Stage: constants.StageExtract, Err: err}
	}

	oldRef, newRef, err := p.parseRefs(job)
	if err != nil {
		return entity.ScoredReport{}, &StageError{Stage: constants.StageParse, Err: err}
	}
	p.Logger.Info("pipeline.refs.parsed",
		"task_id", job.TaskID,
		"old_ref", oldRef.ID, "old_key", oldRef.CitationKey,
		"new_ref", newRef.ID, "new_key", newRef.CitationKey,
	)

	initial, err := p.Diff.Run(ctx, DiffInput{
		Example: llm.Example{OldText: texts[2], NewText: texts[3], DiffJSON: string(job.Fixtures.DiffJSON)},
		OldText: texts[0],
		NewText: texts[1],
		OldRef:  oldRef,
		NewRef:  newRef,
		Model:   job.Model,
	})
	if err != nil {
		return entity.ScoredReport{}, &StageError{Stage: constants.StageDiff, Err: err}
	}

	final := initial
	if job.Mode == constants.ModeQuick {
		p.Logger.Info("pipeline.quick_mode.skip", "task_id", job.TaskID, "skipped", []string{constants.StageEstimate, constants.StageFinal})
	} else {
		estimate, err := p.Estimate.Run(ctx, texts[0], initial, job.Model)
		if err != nil {
			return entity.ScoredReport{}, &StageError{Stage: constants.StageEstimate, Err: err}
		}
		final, err = p.Final.Run(ctx, FinalDiffInput{
			NewText:  texts[1],
			Estimate: estimate,
			Initial:  initial,
			OldRef:   oldRef,
			NewRef:   newRef,
			Model:    job.Model,
		})
		if err != nil {
			return entity.ScoredReport{}, &StageError{Stage: constants.StageFinal, Err: err}
		}
	}

	scored, err := p.Score.Run(ctx, final, oldRef, newRef, job.Model)
	if err != nil {
		return entity.ScoredReport{}, &StageError{Stage: constants.StageScore, Err: err}
	}
	return scored, nil
}

// extractAll returns the texts of old, new, example old and example new, in that order.
func (p *Processor) extractAll(ctx context.Context, job Job) ([4]string, error) {
	var texts [4]string
	docs := [4]Document{job.Old, job.New, job.Fixtures.Old, job.Fixtures.New}
	for i, d := range docs {
		res, err := p.Extractor.Extract(ctx, d.Name, d.Data)
		if err != nil {
			return texts, err
		}
		texts[i] = res.Text
	}
	return texts, nil
}

func (p *Processor) parseRefs(job Job) (entity.ReferenceID, entity.ReferenceID, error) {
	oldRef, ok := p.Parser.Parse(job.Old.Name)
	if !ok {
		return entity.ReferenceID{}, entity.ReferenceID{}, p.invalidName(job.Old.Name)
	}
	newRef, ok := p.Parser.Parse(job.New.Name)
	if !ok {
		return entity.ReferenceID{}, entity.ReferenceID{}, p.invalidName(job.New.Name)
	}
	return oldRef, newRef, nil
}

func (p *Processor) invalidName(name string) error {
	return common.InvalidInputf("invalid %s filename %q, expected format: %sxx-xxx.pdf", p.Parser.Prefix(), name, p.Parser.Prefix())
}
