package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/benchforge/internal/target"
)

func TestRunner_Success(t *testing.T) {
	var gotDir, gotCmd string
	r := &Runner{
		BaseDir: "/bench",
		Logger:  quietLogger(),
		Exec: ExecFunc(func(_ context.Context, dir, command string, stdout, _ io.Writer) error {
			gotDir, gotCmd = dir, command
			time.Sleep(20 * time.Millisecond)
			_, _ = fmt.Fprint(stdout, "done: 5 tasks")
			return nil
		}),
	}

	res := r.Run(context.Background(), target.Target{ID: "node", Command: "node index.js"}, target.ModeIO, 5)

	assert.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, "node", res.TargetID)
	assert.Equal(t, target.ModeIO, res.Mode)
	assert.Equal(t, 5, res.TaskCount)
	assert.Equal(t, "node index.js io 5", res.Command)
	assert.Equal(t, "done: 5 tasks", res.Output)
	assert.GreaterOrEqual(t, res.ElapsedMs, int64(20))
	assert.False(t, res.EndedAt.Before(res.StartedAt))
	assert.Equal(t, filepath.Join("/bench", "node"), gotDir)
	assert.Equal(t, "node index.js io 5", gotCmd)
}

func TestRunner_Failure(t *testing.T) {
	r := &Runner{
		Logger: quietLogger(),
		Exec: ExecFunc(func(_ context.Context, _, _ string, stdout, stderr io.Writer) error {
			_, _ = fmt.Fprintln(stdout, "partial")
			_, _ = fmt.Fprintln(stderr, "Traceback...\nZeroDivisionError")
			return errors.New("exit status 1")
		}),
	}

	res := r.Run(context.Background(), target.Target{ID: "python", Command: "python3 benchmark.py"}, target.ModeCPU, 3)

	assert.False(t, res.Success)
	assert.Equal(t, "exit status 1: ZeroDivisionError", res.Error)
	assert.Equal(t, "partial\n", res.Output)
	assert.Contains(t, res.Stderr, "Traceback")
	assert.False(t, res.StartedAt.IsZero())
}

func TestRunner_FailureHint(t *testing.T) {
	r := &Runner{
		Logger: quietLogger(),
		Exec: ExecFunc(func(_ context.Context, _, _ string, _, stderr io.Writer) error {
			_, _ = fmt.Fprintln(stderr, "sh: 1: ruby: not found")
			return errors.New("exit status 127")
		}),
	}

	res := r.Run(context.Background(), target.Target{ID: "ruby", Command: "ruby benchmark.rb"}, target.ModeCPU, 3)

	assert.False(t, res.Success)
	assert.Equal(t, "exit status 127: sh: 1: ruby: not found (toolchain not installed)", res.Error)
}

func TestRunner_PanicBecomesFailure(t *testing.T) {
	r := &Runner{
		Logger: quietLogger(),
		Exec: ExecFunc(func(context.Context, string, string, io.Writer, io.Writer) error {
			panic("executor exploded")
		}),
	}

	var res RunResult
	require.NotPanics(t, func() {
		res = r.Run(context.Background(), target.Target{ID: "x", Command: "x"}, target.ModeCPU, 1)
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "executor exploded")
}

func TestRunner_WritesModeLog(t *testing.T) {
	logDir := t.TempDir()
	r := &Runner{
		LogDir: logDir,
		Logger: quietLogger(),
		Exec: ExecFunc(func(_ context.Context, _, _ string, stdout, _ io.Writer) error {
			_, _ = fmt.Fprint(stdout, "heavy output")
			return nil
		}),
	}

	r.Run(context.Background(), target.Target{ID: "go", Command: "./go-benchmark"}, target.ModeHeavyIO, 2)

	data, err := os.ReadFile(filepath.Join(logDir, "heavy-io", "go.log"))
	require.NoError(t, err)
	assert.Equal(t, "heavy output", string(data))
}
