package extract

import (
	"context"
	"time"
)

// TextExtractor turns a named document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, name string, data []byte) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Duration time.Duration
	Warnings []string
}
