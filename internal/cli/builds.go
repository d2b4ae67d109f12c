package cli

import (
	"context"
	"log/slog"

	"github.com/ppiankov/benchforge/internal/reporter"
	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/state"
	"github.com/ppiankov/benchforge/internal/target"
)

// buildStage wraps runner.Builder with console output, persistent build
// state and optional reuse of up-to-date builds.
type buildStage struct {
	builder     *runner.Builder
	tracker     *state.Tracker // nil disables tracking
	incremental bool
	text        *reporter.TextReporter
}

type buildStageConfig struct {
	exec        runner.Executor
	baseDir     string
	logDir      string
	parallel    int
	tracker     *state.Tracker
	incremental bool
	sessionID   string
	text        *reporter.TextReporter
}

func newBuildStage(cfg buildStageConfig) *buildStage {
	s := &buildStage{
		tracker:     cfg.tracker,
		incremental: cfg.incremental,
		text:        cfg.text,
	}
	s.builder = &runner.Builder{
		Exec:     cfg.exec,
		BaseDir:  cfg.baseDir,
		LogDir:   cfg.logDir,
		Parallel: cfg.parallel,
		Logger:   slog.Default(),
		OnBuild: func(ev runner.BuildEvent) {
			s.text.PrintBuildEvent(ev)
			s.track(ev, cfg.sessionID)
		},
	}
	return s
}

func (s *buildStage) track(ev runner.BuildEvent, sessionID string) {
	if s.tracker == nil {
		return
	}
	switch ev.Phase {
	case runner.BuildStarted:
		s.tracker.Started(s.builder.BaseDir, ev.Target, sessionID)
	case runner.BuildSucceeded:
		s.tracker.Succeeded(s.builder.BaseDir, ev.Target, ev.Duration)
	case runner.BuildFailed:
		s.tracker.Failed(s.builder.BaseDir, ev.Target, ev.Error, ev.Duration)
	}
}

// Build implements session.Builder. Reused targets count as built and keep
// their place in the input order.
func (s *buildStage) Build(ctx context.Context, targets []target.Target) runner.BuildReport {
	if !s.incremental || s.tracker == nil {
		return s.builder.Build(ctx, targets)
	}

	need, reused := state.FilterBuilds(targets, s.tracker, s.builder.BaseDir)
	byID := make(map[string]target.Target, len(targets))
	for _, t := range targets {
		byID[t.ID] = t
	}
	ok := make(map[string]bool, len(targets))
	for _, r := range reused {
		s.text.PrintBuildReused(byID[r.ID], r.Reason)
		ok[r.ID] = true
	}

	report := s.builder.Build(ctx, need)
	if len(reused) == 0 {
		return report
	}

	for _, t := range report.Built {
		ok[t.ID] = true
	}
	report.Built = report.Built[:0]
	for _, t := range targets {
		if ok[t.ID] {
			report.Built = append(report.Built, t)
		}
	}
	return report
}
