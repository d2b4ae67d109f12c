package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ppiankov/benchforge/internal/target"
)

// Runner executes a single benchmark run of one target.
type Runner struct {
	Exec    Executor
	BaseDir string
	// LogDir receives <mode>/<id>.log with the run's stdout; empty disables.
	LogDir string
	// Live, when set, receives stdout as it is produced.
	Live   io.Writer
	Logger *slog.Logger
}

// Run executes target t in mode with n tasks and measures wall time around
// the process. Failures are reported in the result, never returned.
func (r *Runner) Run(ctx context.Context, t target.Target, mode target.Mode, n int) (res RunResult) {
	command := t.RunCommand(mode, n)
	res = RunResult{
		TargetID:  t.ID,
		Mode:      mode,
		TaskCount: n,
		Command:   command,
	}
	logger := r.logger().With("target", t.ID, "mode", mode.String(), "tasks", n)

	defer func() {
		if p := recover(); p != nil {
			res.Success = false
			res.Error = fmt.Sprintf("panic: %v", p)
			if res.EndedAt.IsZero() {
				res.EndedAt = time.Now()
			}
			res.ElapsedMs = res.EndedAt.Sub(res.StartedAt).Milliseconds()
			logger.Error("run panicked", "panic", p)
		}
	}()

	logDir := ""
	if r.LogDir != "" {
		logDir = filepath.Join(r.LogDir, mode.String())
	}
	logW := newLogWriter(logDir, t.ID+".log")
	defer closeLogWriter(logW)

	var stdout, stderr bytes.Buffer
	outW := io.MultiWriter(&stdout, logW)
	if r.Live != nil {
		outW = io.MultiWriter(&stdout, logW, r.Live)
	}
	logger.Debug("run starting", "command", command)

	res.StartedAt = time.Now()
	diag := newDiagnosisWriter(&stderr)
	err := r.Exec.Exec(ctx, target.Dir(r.BaseDir, t), command, outW, diag)
	res.EndedAt = time.Now()

	res.ElapsedMs = res.EndedAt.Sub(res.StartedAt).Milliseconds()
	res.Output = stdout.String()
	res.Stderr = stderr.String()

	if err != nil {
		res.Error = withHint(describeError(err, res.Stderr), diag.Hint())
		logger.Warn("run failed", "error", res.Error, "elapsed_ms", res.ElapsedMs)
		return res
	}

	res.Success = true
	logger.Info("run completed", "elapsed_ms", res.ElapsedMs)
	return res
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
