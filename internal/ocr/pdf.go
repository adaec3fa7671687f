package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (e *Extractor) pdfToText(ctx context.Context, path string) (string, []string, error) {
	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			return "", nil, fmt.Errorf("%w: pdftotext: %v", ErrMalformedDocument, err)
		}
		return "", []string{msg}, fmt.Errorf("%w: pdftotext: %v: %s", ErrMalformedDocument, err, truncate(msg, 512))
	}
	return string(out), nil, nil
}

// pdfToOCR rasterizes every page and OCRs it. Pages are joined with form feeds
// so MarkPages numbers them like pdftotext output.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (string, []string, error) {
	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "apl-pp-*")
	if err != nil {
		return "", nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("ocr.pdf.temp_cleanup_failed", "path", path, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for i, img := range matches {
		// a failed page stays as an empty one so later page numbers hold
		if i > 0 {
			b.WriteString("\f")
		}
		// tesseract <file> stdout -l <lang>
		out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, img, "stdout", "-l", e.cfg.TesseractLang)
		if err != nil {
			warns = append(warns, fmt.Sprintf("tesseract %s: %v %s", filepath.Base(img), err, strings.TrimSpace(string(errb))))
			continue
		}
		b.WriteString(reBoxNoise.ReplaceAllString(string(out), ""))
	}
	return b.String(), warns, nil
}
