package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/ppiankov/benchforge/internal/reporter"
	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/style"
	"github.com/ppiankov/benchforge/internal/target"
)

// Display modes for the --tui flag.
const (
	displayAuto    = "auto"
	displayFull    = "full"
	displayMinimal = "minimal"
	displayOff     = "off"
)

// resolveDisplay picks the live display. The interactive session shares
// stdin and stdout with the prompts, so it never gets the full TUI.
func resolveDisplay(requested string, interactive, tty bool) string {
	switch requested {
	case displayOff, displayMinimal:
		return requested
	case displayFull:
		if interactive {
			slog.Warn("full TUI is not available in interactive sessions, using minimal")
			return displayMinimal
		}
		return displayFull
	}
	if interactive || !tty {
		return displayOff
	}
	return displayFull
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// colorFor reports whether output written to w should be styled.
func colorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && style.Enabled(f, noColor)
}

// modeDisplay runs one mode through the scheduler while rendering its
// progress. It implements session.ModeRunner.
type modeDisplay struct {
	kind   string
	out    io.Writer
	color  bool
	sched  *runner.Scheduler
	cancel context.CancelFunc
}

func (d *modeDisplay) RunAll(ctx context.Context, targets []target.Target, mode target.Mode, n int) []runner.RunResult {
	switch d.kind {
	case displayFull:
		return d.runTUI(ctx, targets, mode, n)
	case displayMinimal:
		live := reporter.NewLiveReporter(d.out, d.color, mode, n, targets, d.sched.Results)
		live.Start()
		defer live.Stop()
	}
	return d.sched.RunAll(ctx, targets, mode, n)
}

func (d *modeDisplay) runTUI(ctx context.Context, targets []target.Target, mode target.Mode, n int) []runner.RunResult {
	model := reporter.NewTUIModel(mode, n, targets, d.sched.Results, d.cancel)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(d.out))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := p.Run(); err != nil {
			slog.Warn("TUI error", "error", err)
		}
	}()

	results := d.sched.RunAll(ctx, targets, mode, n)
	p.Send(reporter.DoneMsg{})
	<-done
	return results
}

// streamRuns wraps run so that each run prints its header before and its
// outcome after, for the plain streaming display.
func streamRuns(run runner.RunFunc, text *reporter.TextReporter) runner.RunFunc {
	return func(ctx context.Context, t target.Target, mode target.Mode, n int) runner.RunResult {
		text.PrintRunStart(t, mode, n)
		res := run(ctx, t, mode, n)
		text.PrintRunResult(t, res)
		return res
	}
}
