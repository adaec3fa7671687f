package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
	"github.com/joseph-ayodele/apl-diff/internal/llm"
)

// DiffInput is everything the initial diff needs.
type DiffInput struct {
	Example llm.Example
	OldText string
	NewText string
	OldRef  entity.ReferenceID
	NewRef  entity.ReferenceID
	Model   string
}

// DiffStage produces the initial Diff Report from the two texts and the validated example.
type DiffStage struct{ stage }

func NewDiffStage(t llm.Transformer, cfg StageConfig, logger *slog.Logger) *DiffStage {
	return &DiffStage{newStage(constants.StageDiff, t, cfg, logger)}
}

func (s *DiffStage) Run(ctx context.Context, in DiffInput) (entity.DiffReport, error) {
	msgs := llm.InitialDiffPrompt(in.Example, in.OldText, in.NewText, in.OldRef, in.NewRef)
	raw, err := s.invoke(ctx, in.Model, msgs, true)
	if err != nil {
		return entity.DiffReport{}, err
	}
	var r entity.DiffReport
	if err := s.decode(ctx, raw, llm.DiffReportSchema, &r); err != nil {
		return entity.DiffReport{}, err
	}
	if err := checkDiffReport(r, in.OldRef, in.NewRef); err != nil {
		return entity.DiffReport{}, err
	}
	return r, nil
}

// EstimateStage reconstructs the new document from the old text and the initial diff.
// The result only feeds the final diff.
type EstimateStage struct{ stage }

func NewEstimateStage(t llm.Transformer, cfg StageConfig, logger *slog.Logger) *EstimateStage {
	return &EstimateStage{newStage(constants.StageEstimate, t, cfg, logger)}
}

func (s *EstimateStage) Run(ctx context.Context, oldText string, initial entity.DiffReport, model string) (string, error) {
	raw, err := s.invoke(ctx, model, llm.EstimatePrompt(oldText, mustJSON(initial)), false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", common.ContractViolationf("reconstruction is empty")
	}
	return raw, nil
}

// FinalDiffInput is everything the final diff needs.
type FinalDiffInput struct {
	NewText  string
	Estimate string
	Initial  entity.DiffReport
	OldRef   entity.ReferenceID
	NewRef   entity.ReferenceID
	Model    string
}

// FinalDiffStage merges the initial diff with changes found by comparing the
// reconstruction to the actual new text.
type FinalDiffStage struct{ stage }

func NewFinalDiffStage(t llm.Transformer, cfg StageConfig, logger *slog.Logger) *FinalDiffStage {
	return &FinalDiffStage{newStage(constants.StageFinal, t, cfg, logger)}
}

func (s *FinalDiffStage) Run(ctx context.Context, in FinalDiffInput) (entity.DiffReport, error) {
	msgs := llm.FinalDiffPrompt(in.NewText, in.Estimate, mustJSON(in.Initial))
	raw, err := s.invoke(ctx, in.Model, msgs, true)
	if err != nil {
		return entity.DiffReport{}, err
	}
	var r entity.DiffReport
	if err := s.decode(ctx, raw, llm.DiffReportSchema, &r); err != nil {
		return entity.DiffReport{}, err
	}
	r, dropped := dedupDiffReport(r)
	if dropped > 0 {
		s.logger.Info("pipeline.final_diff.deduplicated",
			"task_id", common.TaskIDFromContext(ctx), "dropped", dropped)
	}
	if err := checkDiffReport(r, in.OldRef, in.NewRef); err != nil {
		return entity.DiffReport{}, err
	}
	return r, nil
}

// ScoreStage scores every change and flattens the categories into one sorted list.
type ScoreStage struct{ stage }

func NewScoreStage(t llm.Transformer, cfg StageConfig, logger *slog.Logger) *ScoreStage {
	return &ScoreStage{newStage(constants.StageScore, t, cfg, logger)}
}

func (s *ScoreStage) Run(ctx context.Context, diff entity.DiffReport, oldRef, newRef entity.ReferenceID, model string) (entity.ScoredReport, error) {
	raw, err := s.invoke(ctx, model, llm.ScorePrompt(mustJSON(diff)), true)
	if err != nil {
		return entity.ScoredReport{}, err
	}
	var r entity.ScoredReport
	if err := s.decode(ctx, raw, llm.ScoredReportSchema, &r); err != nil {
		return entity.ScoredReport{}, err
	}
	if err := checkScoredReport(r, diff.ItemCount(), oldRef, newRef); err != nil {
		return entity.ScoredReport{}, err
	}
	return r, nil
}
