// Package ocr turns PDF bytes into plain text using poppler's pdftotext, with an
// optional pdftoppm + tesseract pass for scanned documents.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/apl-diff/constants"
)

var (
	// ErrMalformedDocument is returned when the input is not a readable PDF.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrNoText is returned when no text could be extracted.
	ErrNoText = errors.New("no text extracted")
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	// OCRFallback rasterizes and OCRs the PDF when pdftotext yields no text.
	OCRFallback bool
	TempDir     string // "" = os.TempDir()
}

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner (tests).
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract converts a PDF document to page-marked text. name is used for logging and errors.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (ExtractionResult, error) {
	start := time.Now()
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte(constants.PDFMagic)) {
		e.logger.Error("ocr.extract.not_pdf", "name", name, "bytes", len(data))
		return ExtractionResult{}, fmt.Errorf("%s: %w: missing %s header", name, ErrMalformedDocument, constants.PDFMagic)
	}

	f, err := os.CreateTemp(e.cfg.TempDir, "apl-*.pdf")
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			e.logger.Warn("ocr.extract.temp_cleanup_failed", "path", path, "error", err)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return ExtractionResult{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return ExtractionResult{}, fmt.Errorf("close temp file: %w", err)
	}

	e.logger.Debug("ocr.extract.start", "name", name, "bytes", len(data), "ocr_fallback", e.cfg.OCRFallback)

	res, err := e.extractPDF(ctx, path)
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("ocr.extract.failed", "name", name, "error", err, "elapsed_ms", res.Duration.Milliseconds())
		return res, fmt.Errorf("%s: %w", name, err)
	}

	e.logger.Info("ocr.extract.ok",
		"name", name,
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	text, warns, err := e.pdfToText(ctx, path)
	if err != nil {
		return ExtractionResult{Warnings: warns}, err
	}
	method := "pdf-text"

	if isBlank(text) && e.cfg.OCRFallback {
		e.logger.Warn("ocr.extract.no_text_layer", "hint", "falling back to rasterize + tesseract")
		ocrText, w, err := e.pdfToOCR(ctx, path)
		warns = append(warns, w...)
		if err != nil {
			return ExtractionResult{Method: "pdf-ocr", Warnings: warns}, err
		}
		text, method = ocrText, "pdf-ocr"
	}
	if isBlank(text) {
		return ExtractionResult{Method: method, Warnings: warns}, ErrNoText
	}

	marked, pages := MarkPages(text)
	return ExtractionResult{
		Text:     marked,
		Pages:    pages,
		Method:   method,
		Warnings: warns,
	}, nil
}

func isBlank(text string) bool {
	return strings.TrimSpace(strings.ReplaceAll(text, "\f", "")) == ""
}
