package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/benchforge/internal/config"
	"github.com/ppiankov/benchforge/internal/history"
	"github.com/ppiankov/benchforge/internal/reporter"
	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/session"
	"github.com/ppiankov/benchforge/internal/state"
	"github.com/ppiankov/benchforge/internal/target"
)

// runOptions holds the knobs of one session.
type runOptions struct {
	interactive bool

	targets string
	mode    string
	tasks   int

	settle         time.Duration
	maxRuntime     time.Duration
	idleTimeout    time.Duration
	parallelBuilds int
	skipBuild      bool
	incremental    bool

	tui       string
	jsonOut   bool
	metrics   string
	noHistory bool
}

func defaultRunOptions() runOptions {
	return runOptions{
		interactive: true,
		tasks:       target.DefaultTasks,
		settle:      time.Second,
		tui:         displayAuto,
	}
}

// answers turns the selection flags into prompt answers. Omitted flags
// fall back to every available target, the cpu mode and the default task
// count, and the session is confirmed.
func (o runOptions) answers() []string {
	targets := o.targets
	if targets == "" {
		targets = "all"
	}
	mode := o.mode
	if mode == "" {
		mode = target.ModeCPU.String()
	}
	return []string{targets, mode, strconv.Itoa(o.tasks), "y"}
}

func newRunCmd() *cobra.Command {
	opts := defaultRunOptions()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark session",
		Long: "Run probes the targets directory, builds the selected targets and runs each " +
			"workload mode in turn. Without selection flags the session is interactive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.interactive = !anyChanged(cmd, "targets", "mode", "tasks", "yes")
			return runSession(cmd, opts)
		},
	}

	var yes bool
	cmd.Flags().StringVar(&opts.targets, "targets", "", `targets to run: comma-separated ids or menu numbers, "all" or "compiled"`)
	cmd.Flags().StringVar(&opts.mode, "mode", "", "workload mode: cpu, io, heavy-io or all")
	cmd.Flags().IntVar(&opts.tasks, "tasks", target.DefaultTasks, "number of tasks per run (1-100)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip prompts and start immediately")
	cmd.Flags().DurationVar(&opts.settle, "settle", time.Second, "pause between consecutive runs")
	cmd.Flags().DurationVar(&opts.maxRuntime, "max-runtime", 0, "kill a run after this duration (0 = no limit)")
	cmd.Flags().DurationVar(&opts.idleTimeout, "idle-timeout", 0, "kill a run after no stdout for this duration (0 = off)")
	cmd.Flags().IntVar(&opts.parallelBuilds, "parallel-builds", 1, "build up to this many targets at once")
	cmd.Flags().BoolVar(&opts.skipBuild, "skip-build", false, "run targets without building them")
	cmd.Flags().BoolVar(&opts.incremental, "incremental", false, "reuse builds whose sources have not changed since the last successful build")
	cmd.Flags().StringVar(&opts.tui, "tui", displayAuto, "display mode: full (interactive TUI), minimal (live status), off (streamed output), auto")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the session report as JSON on stdout")
	cmd.Flags().StringVar(&opts.metrics, "metrics", "", "write Prometheus textfile metrics to this path")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record runs in the history database")

	return cmd
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

// applySettings fills options from the settings file where the matching
// flag was not given.
func applySettings(cmd *cobra.Command, opts *runOptions, s *config.Settings) {
	changed := cmd.Flags().Changed
	if !changed("tasks") && s.TaskCount > 0 {
		opts.tasks = s.TaskCount
	}
	if !changed("settle") && s.SettleDelay != nil {
		opts.settle = *s.SettleDelay
	}
	if !changed("max-runtime") && s.MaxRuntime > 0 {
		opts.maxRuntime = s.MaxRuntime
	}
	if !changed("idle-timeout") && s.IdleTimeout > 0 {
		opts.idleTimeout = s.IdleTimeout
	}
	if !changed("parallel-builds") && s.ParallelBuilds > 0 {
		opts.parallelBuilds = s.ParallelBuilds
	}
	if !changed("tui") && s.TUI != "" {
		opts.tui = s.TUI
	}
	if !changed("metrics") && s.MetricsFile != "" {
		opts.metrics = s.MetricsFile
	}
	if !changed("no-history") && !s.HistoryEnabled() {
		opts.noHistory = true
	}
}

func runSession(cmd *cobra.Command, opts runOptions) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	applySettings(cmd, &opts, e.settings)

	ctx, stop, interrupted := signalContext(cmd.Context())
	defer stop()

	var textW io.Writer = cmd.OutOrStdout()
	if opts.jsonOut {
		textW = cmd.ErrOrStderr()
	}
	color := colorFor(textW)
	text := reporter.NewTextReporter(textW, color)

	runDir := filepath.Join(".benchforge", time.Now().Format("20060102-150405"))
	sessionID := uuid.NewString()
	// A missing targets dir is left for the probe to report.
	if info, err := os.Stat(e.baseDir); err == nil && info.IsDir() {
		if err := state.Acquire(e.baseDir, sessionID, cmd.Name()); err != nil {
			return err
		}
		defer state.Release(e.baseDir)
	}
	slog.Info("starting session", "id", sessionID, "targets_dir", e.baseDir, "run_dir", runDir)

	exec := &runner.ShellExecutor{MaxRuntime: opts.maxRuntime, IdleTimeout: opts.idleTimeout}

	var builder session.Builder
	if !opts.skipBuild {
		tracker := state.Load(state.DefaultPath())
		if n := tracker.RecoverInterrupted(); n > 0 {
			slog.Info("recovered interrupted builds", "count", n)
		}
		builder = newBuildStage(buildStageConfig{
			exec:        runner.NewShellExecutor(),
			baseDir:     e.baseDir,
			logDir:      filepath.Join(runDir, "build"),
			parallel:    opts.parallelBuilds,
			tracker:     tracker,
			incremental: opts.incremental,
			sessionID:   sessionID,
			text:        text,
		})
	}

	kind := resolveDisplay(opts.tui, opts.interactive, isTerminal(cmd.OutOrStdout()))
	wl := &runner.Runner{
		Exec:    exec,
		BaseDir: e.baseDir,
		LogDir:  runDir,
		Logger:  slog.Default(),
	}
	run := runner.RunFunc(wl.Run)
	if kind == displayOff {
		wl.Live = textW
		run = streamRuns(run, text)
	}
	sched := runner.NewScheduler(runner.SchedulerConfig{
		Run:         run,
		SettleDelay: opts.settle,
		OnUpdate: func(p runner.Progress) {
			slog.Debug("run update", "target", p.TargetID, "state", p.State)
		},
	})

	var prompter session.Prompter
	if opts.interactive {
		prompter = session.NewLinePrompter(cmd.InOrStdin(), textW)
	} else {
		prompter = session.NewScriptedPrompter(opts.answers()...)
	}

	rec := newHistoryRecorder(opts.noHistory, history.DefaultPath())
	defer rec.Close()

	var ctrl *session.Controller
	ctrl = session.New(session.Config{
		Registry:     e.registry,
		BaseDir:      e.baseDir,
		Prompter:     prompter,
		View:         text,
		Builder:      builder,
		Runner:       &modeDisplay{kind: kind, out: textW, color: color, sched: sched, cancel: stop},
		Logger:       slog.Default(),
		ID:           sessionID,
		Interactive:  opts.interactive,
		DefaultTasks: opts.tasks,
		OnModeComplete: func(_ target.Mode, results []runner.RunResult, _ reporter.Summary) {
			rec.RecordRuns(ctrl.Report(), results)
		},
	})

	out := ctrl.Run(ctx)
	rec.Finish(out.Report)

	if len(out.Report.Runs) > 0 {
		paths := writeArtifacts(out.Report, runDir, opts.metrics)
		text.PrintArtifacts(paths...)
	}
	if opts.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out.Report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	}

	switch {
	case out.Interrupted || interrupted():
		return ErrInterrupted
	case out.Err != nil:
		return out.Err
	case out.Phase == session.PhaseAborted:
		return fmt.Errorf("session aborted: %s", out.Reason)
	}
	return nil
}

// writeArtifacts writes report.json (and the metrics textfile when a path
// is set) and returns the paths written.
func writeArtifacts(report *reporter.SessionReport, runDir, metricsPath string) []string {
	var paths []string
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		slog.Warn("failed to create run dir", "error", err)
		return nil
	}

	reportPath := filepath.Join(runDir, "report.json")
	if err := reporter.WriteJSONReport(report, reportPath); err != nil {
		slog.Warn("failed to write report", "error", err)
	} else {
		paths = append(paths, reportPath)
	}

	if metricsPath != "" {
		if err := reporter.WriteMetricsTextfile(report, metricsPath); err != nil {
			slog.Warn("failed to write metrics", "error", err)
		} else {
			paths = append(paths, metricsPath)
		}
	}
	return paths
}
