package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/llm"
)

// Document is a named PDF held in memory.
type Document struct {
	Name string
	Data []byte
}

// Fixtures is the validated example comparison every initial diff call is anchored on.
type Fixtures struct {
	Old      Document
	New      Document
	DiffJSON []byte // normalized, schema-checked Diff Report
}

// FixtureLoader reads the fixture set from disk. It re-reads on every Load so a
// missing file fails each comparison instead of only the first.
type FixtureLoader struct {
	cfg    common.FixturesConfig
	logger *slog.Logger
}

func NewFixtureLoader(cfg common.FixturesConfig, logger *slog.Logger) *FixtureLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FixtureLoader{cfg: cfg, logger: logger}
}

// Load returns the fixtures or a FIXTURE_MISSING app error.
func (l *FixtureLoader) Load() (Fixtures, error) {
	oldDoc, err := l.read(l.cfg.OldFile)
	if err != nil {
		return Fixtures{}, err
	}
	newDoc, err := l.read(l.cfg.NewFile)
	if err != nil {
		return Fixtures{}, err
	}
	diff, err := l.read(l.cfg.Diff)
	if err != nil {
		return Fixtures{}, err
	}

	normalized, _, err := llm.NormalizeReportJSON(diff.Data, l.logger)
	if err != nil {
		return Fixtures{}, common.NewAppError(common.CodeFixtureMissing, "validated diff is not JSON: "+diff.Name, err)
	}
	if err := llm.DiffReportSchema.Validate(normalized); err != nil {
		return Fixtures{}, common.NewAppError(common.CodeFixtureMissing, "validated diff does not match the report schema: "+diff.Name, err)
	}
	return Fixtures{Old: oldDoc, New: newDoc, DiffJSON: normalized}, nil
}

func (l *FixtureLoader) read(name string) (Document, error) {
	path := filepath.Join(l.cfg.Dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Error("pipeline.fixture.missing", "path", path)
			return Document{}, common.NewAppError(common.CodeFixtureMissing, fmt.Sprintf("validated file not found: %s", path), err)
		}
		return Document{}, common.NewAppError(common.CodeFixtureMissing, fmt.Sprintf("read validated file %s", path), err)
	}
	return Document{Name: name, Data: b}, nil
}
