// Package runner builds and runs benchmark targets as shell subprocesses.
package runner

import (
	"context"
	"io"
	"time"

	"github.com/ppiankov/benchforge/internal/target"
)

// Executor runs one shell command line in dir and returns when the process
// exits. Implementations: ShellExecutor.
type Executor interface {
	Exec(ctx context.Context, dir, command string, stdout, stderr io.Writer) error
}

// ExecFunc adapts a plain function to Executor.
type ExecFunc func(ctx context.Context, dir, command string, stdout, stderr io.Writer) error

// Exec calls f.
func (f ExecFunc) Exec(ctx context.Context, dir, command string, stdout, stderr io.Writer) error {
	return f(ctx, dir, command, stdout, stderr)
}

// RunState is the progress of one target within a mode run.
type RunState int

const (
	StatePending RunState = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// RunResult is the captured outcome of one (target, mode, task count)
// execution. Elapsed time is measured by the orchestrator around the
// process, never reported by the target.
type RunResult struct {
	TargetID  string      `json:"target_id"`
	Mode      target.Mode `json:"mode"`
	TaskCount int         `json:"task_count"`
	Command   string      `json:"command"`
	Success   bool        `json:"success"`
	ElapsedMs int64       `json:"elapsed_ms"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   time.Time   `json:"ended_at"`
	Output    string      `json:"output,omitempty"`
	Stderr    string      `json:"stderr,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Elapsed returns the measured wall time.
func (r RunResult) Elapsed() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
