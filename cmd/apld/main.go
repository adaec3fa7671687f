package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/apl-diff/internal/async"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/export"
	"github.com/joseph-ayodele/apl-diff/internal/extract"
	"github.com/joseph-ayodele/apl-diff/internal/llm/openai"
	"github.com/joseph-ayodele/apl-diff/internal/ocr"
	"github.com/joseph-ayodele/apl-diff/internal/pipeline"
	"github.com/joseph-ayodele/apl-diff/internal/reference"
	"github.com/joseph-ayodele/apl-diff/internal/repository"
	"github.com/joseph-ayodele/apl-diff/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, every comparison will fail at the first stage")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tasks, closeRegistry, err := repository.OpenRegistry(ctx, cfg.Registry, logger)
	if err != nil {
		logger.Error("failed to open task registry", "driver", cfg.Registry.Driver, "error", err)
		os.Exit(1)
	}
	defer closeRegistry()

	extractor := extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		OCRFallback:   cfg.OCR.OCRFallback,
		TempDir:       cfg.OCR.TempDir,
	}, logger), logger)

	llmClient := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.DefaultModel,
		Timeout: cfg.LLM.Timeout,
		Lenient: cfg.LLM.Lenient,
	}, logger)

	parser := reference.NewParser(cfg.Pipeline.ReferencePrefix)
	proc := pipeline.NewProcessor(logger, tasks, extractor, parser, llmClient, pipeline.StageConfig{
		Timeout: cfg.Pipeline.StageTimeout,
		Lenient: cfg.LLM.Lenient,
	})

	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithJobTimeout(cfg.Queue.JobTimeout),
	)

	compare := server.NewComparisonService(tasks, queue, pipeline.NewFixtureLoader(cfg.Fixtures, logger), parser, logger)
	httpServer := server.NewServer(cfg.Server, cfg.LLM.DefaultModel, compare, export.NewService(logger), logger)

	// optional gRPC health endpoint for orchestrators
	var (
		grpcServer *grpc.Server
		hs         *health.Server
	)
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer()
		hs = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, hs)
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		reflection.Register(grpcServer)

		go func() {
			logger.Info("grpc.health.listening", "addr", cfg.Server.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("grpc serve failed", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server stopped", "error", err)
		}
	}

	if hs != nil {
		hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	// accepted tasks get the rest of the window to finish
	queue.Shutdown(shutdownCtx)
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	logger.Info("stopped")
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
