// Command aplcompare runs one comparison of two local APL PDFs and prints the
// scored report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/export"
	"github.com/joseph-ayodele/apl-diff/internal/extract"
	"github.com/joseph-ayodele/apl-diff/internal/llm/openai"
	"github.com/joseph-ayodele/apl-diff/internal/ocr"
	"github.com/joseph-ayodele/apl-diff/internal/pipeline"
	"github.com/joseph-ayodele/apl-diff/internal/reference"
	"github.com/joseph-ayodele/apl-diff/internal/repository"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	oldPath := flag.String("old", "", "path to the older APL PDF (e.g. APL21-005.pdf)")
	newPath := flag.String("new", "", "path to the newer APL PDF (e.g. APL25-008.pdf)")
	quick := flag.Bool("quick", false, "skip the estimate and final diff stages")
	model := flag.String("model", cfg.LLM.DefaultModel, "model name")
	fixtures := flag.String("fixtures", cfg.Fixtures.Dir, "directory holding the example pair and its diff")
	xlsxOut := flag.String("xlsx", "", "optional path for an XLSX copy of the report")
	verbose := flag.Bool("v", false, "debug logging on stderr")
	flag.Parse()

	if *oldPath == "" || *newPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oldDoc, err := readDocument(*oldPath)
	if err != nil {
		logger.Error("read old document", "error", err)
		os.Exit(1)
	}
	newDoc, err := readDocument(*newPath)
	if err != nil {
		logger.Error("read new document", "error", err)
		os.Exit(1)
	}

	cfg.Fixtures.Dir = *fixtures
	fx, err := pipeline.NewFixtureLoader(cfg.Fixtures, logger).Load()
	if err != nil {
		logger.Error("load fixtures", "error", err)
		os.Exit(1)
	}

	extractor := extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		OCRFallback:   cfg.OCR.OCRFallback,
		TempDir:       cfg.OCR.TempDir,
	}, logger), logger)
	client := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   *model,
		Timeout: cfg.LLM.Timeout,
		Lenient: cfg.LLM.Lenient,
	}, logger)

	proc := pipeline.NewProcessor(logger, repository.NewMemoryTaskRepository(logger), extractor,
		reference.NewParser(cfg.Pipeline.ReferencePrefix), client,
		pipeline.StageConfig{Timeout: cfg.Pipeline.StageTimeout, Lenient: cfg.LLM.Lenient})

	mode := constants.ModeFull
	if *quick {
		mode = constants.ModeQuick
	}
	job := pipeline.Job{
		TaskID:   uuid.NewString(),
		Old:      oldDoc,
		New:      newDoc,
		Fixtures: fx,
		Mode:     mode,
		Model:    *model,
	}

	jobCtx, cancel := common.WithOptionalTimeout(ctx, cfg.Queue.JobTimeout)
	defer cancel()
	report, err := proc.Execute(common.WithTaskID(jobCtx, job.TaskID), job)
	if err != nil {
		fmt.Fprintln(os.Stderr, "comparison failed:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("encode report", "error", err)
		os.Exit(1)
	}

	if *xlsxOut != "" {
		data, err := export.NewService(logger).ReportXLSX(job.TaskID, &report)
		if err != nil {
			logger.Error("render xlsx", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxOut, data, 0o644); err != nil {
			logger.Error("write xlsx", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "wrote", *xlsxOut)
	}
}

func readDocument(path string) (pipeline.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Document{}, err
	}
	return pipeline.Document{Name: filepath.Base(path), Data: data}, nil
}
