package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/ocr"
)

type stubRunner struct{ out string }

func (s stubRunner) Run(context.Context, string, ...string) ([]byte, []byte, error) {
	return []byte(s.out), nil, nil
}

func newAdapter(t *testing.T, out string) *OCRAdapter {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := ocr.NewExtractor(ocr.Config{TempDir: t.TempDir()}, logger).WithRunner(stubRunner{out: out})
	return NewOCRAdapter(e, logger)
}

func TestOCRAdapter_Extract(t *testing.T) {
	a := newAdapter(t, "All Plan Letter 25-008\f")
	res, err := a.Extract(context.Background(), "APL25-008.pdf", []byte("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Pages != 1 || res.Text != "[Page 1]\nAll Plan Letter 25-008" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestOCRAdapter_ClassifiesFailure(t *testing.T) {
	a := newAdapter(t, "")
	_, err := a.Extract(context.Background(), "bad.pdf", []byte("not a pdf"))
	if err == nil {
		t.Fatal("expected error")
	}
	if common.CodeOf(err) != common.CodeExtractionFailed {
		t.Fatalf("code = %s, want %s", common.CodeOf(err), common.CodeExtractionFailed)
	}
	if !errors.Is(err, ocr.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument in chain, got %v", err)
	}
}
