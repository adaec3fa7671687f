package ocr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"
)

// Runner executes poppler and tesseract binaries; tests substitute it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// stderrLogCap bounds how much tool stderr ends up in a log line.
const stderrLogCap = 8 << 10

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	r.logger.Debug("ocr.exec.start", "cmd", name, "args", args)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	err := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		exitCode := -1
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exitCode = ee.ExitCode()
		}
		r.logger.Error("ocr.exec.failed",
			"cmd", name,
			"exit_code", exitCode,
			"ctx_err", ctx.Err(),
			"error", err,
			"stderr", truncate(stderr.String(), stderrLogCap),
			"elapsed_ms", elapsed,
		)
		return stdout.Bytes(), stderr.Bytes(), err
	}

	r.logger.Debug("ocr.exec.ok",
		"cmd", name,
		"stdout_bytes", stdout.Len(),
		"stderr_bytes", stderr.Len(),
		"elapsed_ms", elapsed,
	)
	return stdout.Bytes(), stderr.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
