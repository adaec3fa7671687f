package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/llm"
)

// StageConfig is shared by all transformation stages.
type StageConfig struct {
	Timeout time.Duration // per call; 0 = none
	Lenient bool          // normalize key spellings before rejecting a report
}

// stage holds what every transformation stage needs.
type stage struct {
	name   string
	llm    llm.Transformer
	cfg    StageConfig
	logger *slog.Logger
}

func newStage(name string, t llm.Transformer, cfg StageConfig, logger *slog.Logger) stage {
	if logger == nil {
		logger = slog.Default()
	}
	return stage{name: name, llm: t, cfg: cfg, logger: logger}
}

// invoke runs one transformation call under the stage timeout.
func (s stage) invoke(ctx context.Context, model string, msgs []llm.Message, structured bool) (string, error) {
	ctx = common.WithStage(ctx, s.name)
	ctx, cancel := common.WithOptionalTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	taskID := common.TaskIDFromContext(ctx)
	start := time.Now()
	s.logger.Info("pipeline.stage.start", "task_id", taskID, "stage", s.name, "model", model)

	resp, err := s.llm.Invoke(ctx, llm.Request{
		Model:      model,
		Stage:      s.name,
		Messages:   msgs,
		Structured: structured,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, llm.ErrTransport) {
			err = errors.Join(llm.ErrTransport, err)
		}
		s.logger.Error("pipeline.stage.failed",
			"task_id", taskID, "stage", s.name, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.NewAppError(common.CodeTransformFailed, "transformation call failed", err)
	}

	s.logger.Info("pipeline.stage.ok",
		"task_id", taskID, "stage", s.name,
		"content_len", len(resp.Content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return resp.Content, nil
}

// decode validates raw against schema and decodes it into out, then applies struct rules.
// In lenient mode a schema miss gets one more try after key normalization.
func (s stage) decode(ctx context.Context, raw string, schema *llm.Schema, out any) error {
	doc := []byte(raw)
	if err := schema.Validate(doc); err != nil {
		if !s.cfg.Lenient {
			return common.NewAppError(common.CodeContractViolation, "output does not match "+schema.Name(), err)
		}
		cleaned, changes, nErr := llm.NormalizeReportJSON(doc, s.logger)
		if nErr != nil {
			return common.NewAppError(common.CodeContractViolation, "output is not a JSON object", nErr)
		}
		if vErr := schema.Validate(cleaned); vErr != nil {
			return common.NewAppError(common.CodeContractViolation, "output does not match "+schema.Name(), vErr)
		}
		s.logger.Warn("pipeline.stage.lenient_normalize_applied",
			"task_id", common.TaskIDFromContext(ctx), "stage", s.name, "changes", len(changes))
		doc = cleaned
	}

	if err := json.Unmarshal(doc, out); err != nil {
		return common.NewAppError(common.CodeContractViolation, "decode output", err)
	}
	if err := common.ValidateStruct(out); err != nil {
		return common.NewAppError(common.CodeContractViolation, "output breaks report rules", err)
	}
	return nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
