package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/style"
	"github.com/ppiankov/benchforge/internal/target"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const maxTargetLines = 20

// LiveReporter redraws a compact progress block in place while a mode runs.
type LiveReporter struct {
	w          io.Writer
	color      bool
	mode       target.Mode
	taskCount  int
	targets    []target.Target
	getResults func() map[string]runner.Progress
	stop       chan struct{}
	done       chan struct{}
	lastLines  int
	frame      int
	mu         sync.Mutex
}

// NewLiveReporter creates a live reporter that polls progress via getResults.
func NewLiveReporter(w io.Writer, color bool, mode target.Mode, taskCount int, targets []target.Target, getResults func() map[string]runner.Progress) *LiveReporter {
	return &LiveReporter{
		w:          w,
		color:      color,
		mode:       mode,
		taskCount:  taskCount,
		targets:    targets,
		getResults: getResults,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins the periodic refresh loop.
func (lr *LiveReporter) Start() {
	go lr.loop()
}

// Stop halts the refresh loop and clears the live display.
func (lr *LiveReporter) Stop() {
	close(lr.stop)
	<-lr.done
	lr.clearLastFrame()
}

func (lr *LiveReporter) loop() {
	defer close(lr.done)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-lr.stop:
			return
		case <-ticker.C:
			lr.render()
		}
	}
}

func (lr *LiveReporter) clearLastFrame() {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.lastLines > 0 {
		fmt.Fprintf(lr.w, "\033[%dA", lr.lastLines)
		for range lr.lastLines {
			fmt.Fprint(lr.w, "\033[K\n")
		}
		fmt.Fprintf(lr.w, "\033[%dA", lr.lastLines)
		lr.lastLines = 0
	}
}

func (lr *LiveReporter) render() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	lines := lr.buildLines(lr.getResults())

	if lr.lastLines > 0 {
		fmt.Fprintf(lr.w, "\033[%dA", lr.lastLines)
	}
	for _, line := range lines {
		fmt.Fprintf(lr.w, "\033[K%s\n", line)
	}

	lr.lastLines = len(lines)
	lr.frame++
}

// Render produces the display lines for a given progress snapshot.
// Exported for testing.
func (lr *LiveReporter) Render(results map[string]runner.Progress) []string {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.buildLines(results)
}

func (lr *LiveReporter) buildLines(results map[string]runner.Progress) []string {
	spinner := spinnerFrames[lr.frame%len(spinnerFrames)]

	var lines []string
	lines = append(lines, fmt.Sprintf("benchforge: %s, %d targets, %d tasks", lr.mode.Title(), len(lr.targets), lr.taskCount))
	lines = append(lines, "")

	var done, running, failed, queued int
	for i, t := range lr.targets {
		p, ok := results[t.ID]
		if !ok {
			p = runner.Progress{TargetID: t.ID}
		}
		switch p.State {
		case runner.StateCompleted:
			done++
		case runner.StateRunning:
			running++
		case runner.StateFailed:
			failed++
		default:
			queued++
		}
		if i < maxTargetLines {
			lines = append(lines, lr.formatLine(t, p, spinner))
		}
	}
	if extra := len(lr.targets) - maxTargetLines; extra > 0 {
		lines = append(lines, lr.s(style.Dim, fmt.Sprintf("  ... %d more targets", extra)))
	}

	lines = append(lines, "")
	lines = append(lines, lr.progressLine(done, running, failed, queued))
	return lines
}

func (lr *LiveReporter) formatLine(t target.Target, p runner.Progress, spinner string) string {
	name := fmt.Sprintf("%-12s", t.Name)
	switch p.State {
	case runner.StateCompleted:
		ms := int64(0)
		if p.Result != nil {
			ms = p.Result.ElapsedMs
		}
		return fmt.Sprintf("  %s %-8s %s %s", lr.s(style.Green, "✓"), "done", lr.s(t.Color, name), formatMs(ms))
	case runner.StateFailed:
		msg := ""
		if p.Result != nil {
			msg = p.Result.Error
		}
		if len(msg) > 100 {
			msg = msg[:100] + "..."
		}
		return fmt.Sprintf("  %s %-8s %s %s", lr.s(style.Red, "✗"), "FAILED", lr.s(t.Color, name), lr.s(style.Red, msg))
	case runner.StateRunning:
		elapsed := time.Since(p.StartedAt).Truncate(100 * time.Millisecond)
		return fmt.Sprintf("  %s %-8s %s %s", lr.s(style.Cyan, spinner), "running", lr.s(t.Color, name), elapsed)
	default:
		return lr.s(style.Dim, fmt.Sprintf("  ─ %-8s %s", "queued", name))
	}
}

func (lr *LiveReporter) progressLine(done, running, failed, queued int) string {
	var parts []string
	if done > 0 {
		parts = append(parts, lr.s(style.Green, fmt.Sprintf("%d done", done)))
	}
	if running > 0 {
		parts = append(parts, lr.s(style.Cyan, fmt.Sprintf("%d running", running)))
	}
	if failed > 0 {
		parts = append(parts, lr.s(style.Red, fmt.Sprintf("%d failed", failed)))
	}
	if queued > 0 {
		parts = append(parts, lr.s(style.Dim, fmt.Sprintf("%d queued", queued)))
	}
	return fmt.Sprintf("  progress: %s", strings.Join(parts, ", "))
}

func (lr *LiveReporter) s(token, text string) string {
	return style.Render(token, text, lr.color)
}
