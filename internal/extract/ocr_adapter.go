package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/ocr"
)

// OCRAdapter exposes an ocr.Extractor as a TextExtractor. Failures come back as
// EXTRACTION_FAILED app errors.
type OCRAdapter struct {
	extractor *ocr.Extractor
	logger    *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, l *slog.Logger) *OCRAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &OCRAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *OCRAdapter) Extract(ctx context.Context, name string, data []byte) (TextExtractionResult, error) {
	r, err := a.extractor.Extract(ctx, name, data)
	if err != nil {
		return TextExtractionResult{}, common.NewAppError(common.CodeExtractionFailed, "could not extract text from "+name, err)
	}
	for _, w := range r.Warnings {
		a.logger.Warn("extract.warning", "name", name, "warning", w)
	}
	return TextExtractionResult{
		Text:     r.Text,
		Pages:    r.Pages,
		Method:   r.Method,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, nil
}
