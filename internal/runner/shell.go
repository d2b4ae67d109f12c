package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the
// process has been killed.
const waitDelay = 5 * time.Second

// ShellExecutor executes command lines via sh -c (cmd /C on Windows).
// MaxRuntime and IdleTimeout are off when zero: a target may run for as
// long as it needs.
type ShellExecutor struct {
	MaxRuntime  time.Duration
	IdleTimeout time.Duration
	Env         []string // appended to the inherited environment
}

// NewShellExecutor creates a ShellExecutor without time limits.
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{}
}

// Exec runs command in dir, copying the process output to stdout and stderr.
func (e *ShellExecutor) Exec(ctx context.Context, dir, command string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	runCtx := ctx
	if e.MaxRuntime > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.MaxRuntime)
		defer cancel()
	}
	runCtx, cancelIdle := context.WithCancel(runCtx)
	defer cancelIdle()

	name, args := shellCommand(command)
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	setupProcessGroup(cmd)

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	slog.Debug("spawning command", "dir", dir, "command", command)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", command, err)
	}

	itr := newIdleTimeoutReader(pipe, e.IdleTimeout, cancelIdle)
	defer itr.Stop()

	_, copyErr := io.Copy(stdout, itr)
	waitErr := cmd.Wait()

	switch {
	case itr.Idled():
		return fmt.Errorf("no output for %s, process killed", e.IdleTimeout)
	case e.MaxRuntime > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return fmt.Errorf("exceeded max runtime %s, process killed", e.MaxRuntime)
	case ctx.Err() != nil:
		return fmt.Errorf("cancelled: %w", ctx.Err())
	case waitErr != nil:
		return waitErr
	case copyErr != nil:
		return fmt.Errorf("read output: %w", copyErr)
	}
	return nil
}

func shellCommand(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", command}
	}
	return "sh", []string{"-c", command}
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// describeError formats a process error with the last stderr line, which
// is usually the most useful part of a compiler or interpreter failure.
func describeError(err error, stderr string) string {
	msg := err.Error()
	if tail := lastLine(stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}
