package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/style"
	"github.com/ppiankov/benchforge/internal/target"
)

const (
	runRule     = 50
	summaryRule = 60
)

// modeDescriptions label the interactive mode menu.
var modeDescriptions = map[target.Mode]string{
	target.ModeCPU:     "CPU-bound (mathematical computations)",
	target.ModeIO:      "I/O-bound (file operations + network simulation)",
	target.ModeHeavyIO: "Heavy I/O-bound (large files + compression + hashing)",
}

// TextReporter writes human-readable session output to a writer.
type TextReporter struct {
	w       io.Writer
	color   bool
	targets map[string]target.Target
}

// NewTextReporter creates a text reporter.
// If w is nil, defaults to os.Stdout.
// color enables terminal styling.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color, targets: make(map[string]target.Target)}
}

// UseTargets registers display names and colours for result rendering.
func (r *TextReporter) UseTargets(ts []target.Target) {
	for _, t := range ts {
		r.targets[t.ID] = t
	}
}

// Writer returns the underlying writer.
func (r *TextReporter) Writer() io.Writer { return r.w }

// PrintBanner writes the session banner.
func (r *TextReporter) PrintBanner() {
	title := "🌟 benchforge: cross-implementation benchmark runner 🌟"
	fmt.Fprintln(r.w, r.s(style.Bright, title))
	fmt.Fprintln(r.w, r.s(style.Bright, strings.Repeat("=", 45)))
}

// PrintSkipped writes one notice per target whose directory is missing.
func (r *TextReporter) PrintSkipped(skips []target.Skip) {
	for _, sk := range skips {
		fmt.Fprintln(r.w, r.s(style.Dim, fmt.Sprintf("⚠️  %s %s, skipping...", sk.Target.Name, sk.Reason)))
	}
}

// PrintTargetMenu lists available targets followed by the "all" and
// "compiled only" shortcuts.
func (r *TextReporter) PrintTargetMenu(available []target.Target) {
	fmt.Fprintln(r.w, r.s(style.Bright, "\n📋 Available targets:"))
	for i, t := range available {
		fmt.Fprintf(r.w, "%d. %s\n", i+1, r.name(t))
	}
	n := len(available)
	fmt.Fprintf(r.w, "%d. All targets\n", n+1)
	compiled := target.Names(target.Compiled(available))
	fmt.Fprintf(r.w, "%d. Compiled targets only (%s)\n", n+2, strings.Join(compiled, ", "))
}

// PrintModeMenu writes the workload mode menu.
func (r *TextReporter) PrintModeMenu() {
	fmt.Fprintln(r.w, r.s(style.Bright, "\n🎯 Benchmark modes:"))
	for i, m := range target.AllModes() {
		fmt.Fprintf(r.w, "%d. %s\n", i+1, modeDescriptions[m])
	}
	fmt.Fprintf(r.w, "%d. All modes\n", len(target.AllModes())+1)
}

// PrintConfiguration echoes the chosen session parameters.
func (r *TextReporter) PrintConfiguration(selected []target.Target, modes []target.Mode, taskCount int) {
	titles := make([]string, len(modes))
	for i, m := range modes {
		titles[i] = m.Title()
	}
	fmt.Fprintln(r.w, r.s(style.Bright, "\n📝 Configuration:"))
	fmt.Fprintf(r.w, "Targets: %s\n", strings.Join(target.Names(selected), ", "))
	fmt.Fprintf(r.w, "Modes: %s\n", strings.Join(titles, ", "))
	fmt.Fprintf(r.w, "Tasks: %d\n", taskCount)
}

// Question styles an interactive prompt.
func (r *TextReporter) Question(text string) string {
	return r.s(style.Cyan, text)
}

// PrintBuildHeader opens the build stage.
func (r *TextReporter) PrintBuildHeader() {
	fmt.Fprintln(r.w, r.s(style.Bright, "\n🔨 Building targets..."))
}

// PrintBuildEvent writes one build progress line.
func (r *TextReporter) PrintBuildEvent(ev runner.BuildEvent) {
	name := ev.Target.Name
	switch ev.Phase {
	case runner.BuildStarted:
		fmt.Fprintln(r.w, r.s(ev.Target.Color, fmt.Sprintf("Building %s...", name)))
	case runner.BuildSucceeded:
		fmt.Fprintln(r.w, r.s(style.Green, fmt.Sprintf("✅ %s built successfully (%s)", name, formatMs(ev.Duration.Milliseconds()))))
	case runner.BuildFailed:
		fmt.Fprintln(r.w, r.s(style.Red, fmt.Sprintf("❌ %s build failed: %s", name, ev.Error)))
	case runner.BuildNotRequired:
		fmt.Fprintln(r.w, r.s(style.Dim, fmt.Sprintf("ℹ️  %s doesn't require building", name)))
	}
}

// PrintBuildReused notes a target whose previous build is still current.
func (r *TextReporter) PrintBuildReused(t target.Target, reason string) {
	fmt.Fprintln(r.w, r.s(style.Dim, fmt.Sprintf("♻️  %s: %s", r.name(t), reason)))
}

// PrintModeHeader opens a mode run.
func (r *TextReporter) PrintModeHeader(mode target.Mode) {
	fmt.Fprintln(r.w, r.s(style.Bright, fmt.Sprintf("\n🏁 Running %s benchmarks for all selected targets...", mode.Title())))
}

// PrintRunStart writes the per-run header and command line.
func (r *TextReporter) PrintRunStart(t target.Target, mode target.Mode, taskCount int) {
	fmt.Fprintln(r.w, r.s(t.Color, fmt.Sprintf("\n🚀 Running %s %s benchmark (%d tasks)", t.Name, mode.Title(), taskCount)))
	fmt.Fprintln(r.w, r.s(style.Dim, "Command: "+t.RunCommand(mode, taskCount)))
	fmt.Fprintln(r.w, strings.Repeat("─", runRule))
}

// PrintRunResult writes the outcome of one run. Stdout is expected to have
// been streamed already.
func (r *TextReporter) PrintRunResult(t target.Target, res runner.RunResult) {
	if !res.Success {
		fmt.Fprintln(r.w, r.s(style.Red, fmt.Sprintf("❌ Error running %s: %s", t.Name, res.Error)))
		return
	}
	if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
		fmt.Fprintln(r.w, r.s(style.Yellow, "Warning: "+stderr))
	}
	fmt.Fprintln(r.w, r.s(style.Dim, fmt.Sprintf("Total execution time: %dms", res.ElapsedMs)))
}

// PrintSummary writes the ranked results of one mode.
func (r *TextReporter) PrintSummary(sum Summary) {
	fmt.Fprintln(r.w, r.s(style.Bright, fmt.Sprintf("\n📊 %s Benchmark Results Summary", sum.Mode.Title())))
	fmt.Fprintln(r.w, strings.Repeat("═", summaryRule))

	if len(sum.Ranked) > 0 {
		fmt.Fprintln(r.w, r.s(style.Green, "✅ Successful runs (sorted by execution time):"))
		for _, p := range sum.Ranked {
			ratio := ""
			if p.Rank > 1 {
				ratio = r.s(style.Dim, fmt.Sprintf("  (%.2fx)", p.Ratio))
			}
			fmt.Fprintf(r.w, "%s %s: %dms%s\n", Medal(p.Rank), r.nameOf(p.Result.TargetID), p.Result.ElapsedMs, ratio)
		}
	}

	if len(sum.Failed) > 0 {
		fmt.Fprintln(r.w, r.s(style.Red, "\n❌ Failed runs:"))
		for _, f := range sum.Failed {
			fmt.Fprintf(r.w, "   %s: %s\n", r.nameOf(f.TargetID), f.Error)
		}
	}

	if len(sum.Ranked) == 0 && len(sum.Failed) == 0 {
		fmt.Fprintln(r.w, r.s(style.Dim, "No runs were started."))
	}
}

// PrintBuildFailures lists targets dropped during the build stage.
func (r *TextReporter) PrintBuildFailures(failed []runner.BuildFailure) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintln(r.w, r.s(style.Red, "\n❌ Excluded after failed build:"))
	for _, f := range failed {
		fmt.Fprintf(r.w, "   %s: %s\n", r.name(f.Target), f.Error)
	}
}

// PrintContinue asks the user to press Enter before the next mode.
func (r *TextReporter) PrintContinue() {
	fmt.Fprintln(r.w, r.s(style.Dim, "\nPress Enter to continue to next benchmark..."))
}

// PrintDone closes a completed session.
func (r *TextReporter) PrintDone() {
	fmt.Fprintln(r.w, r.s(style.Bright, "\n🎉 All benchmarks completed!"))
}

// PrintDeclined is written when the user does not confirm.
func (r *TextReporter) PrintDeclined() {
	fmt.Fprintln(r.w, r.s(style.Yellow, "Benchmark cancelled."))
}

// PrintInterrupted is written when the session is stopped by a signal.
func (r *TextReporter) PrintInterrupted() {
	fmt.Fprintln(r.w, r.s(style.Yellow, "\n\n👋 Benchmark interrupted by user"))
}

// PrintAborted reports a session that ended with nothing to do.
func (r *TextReporter) PrintAborted(reason string) {
	fmt.Fprintln(r.w, r.s(style.Red, "❌ "+reason))
}

// PrintError reports an unexpected failure.
func (r *TextReporter) PrintError(err error) {
	fmt.Fprintln(r.w, r.s(style.Red, fmt.Sprintf("❌ Unexpected error: %v", err)))
}

// PrintArtifacts points at the files written for the session.
func (r *TextReporter) PrintArtifacts(paths ...string) {
	for _, p := range paths {
		if p != "" {
			fmt.Fprintln(r.w, r.s(style.Dim, "→ "+p))
		}
	}
}

func (r *TextReporter) name(t target.Target) string {
	if t.Name == "" {
		t.Name = t.ID
	}
	return r.s(t.Color, t.Name)
}

func (r *TextReporter) nameOf(id string) string {
	if t, ok := r.targets[id]; ok {
		return r.name(t)
	}
	return id
}

func (r *TextReporter) s(token, text string) string {
	return style.Render(token, text, r.color)
}
