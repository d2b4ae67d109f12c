package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/benchforge/internal/target"
)

// BuildPhase marks a step in one target's build.
type BuildPhase int

const (
	BuildStarted BuildPhase = iota
	BuildSucceeded
	BuildFailed
	BuildNotRequired
)

func (p BuildPhase) String() string {
	switch p {
	case BuildStarted:
		return "started"
	case BuildSucceeded:
		return "succeeded"
	case BuildFailed:
		return "failed"
	case BuildNotRequired:
		return "not required"
	default:
		return "unknown"
	}
}

// BuildEvent is delivered to Builder.OnBuild as each build progresses.
type BuildEvent struct {
	Target   target.Target
	Phase    BuildPhase
	Duration time.Duration
	Error    string
}

// BuildFailure records a target whose build step did not succeed.
type BuildFailure struct {
	Target   target.Target `json:"target"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration_ns"`
}

// BuildReport partitions the input of Build. Built keeps input order and
// includes targets that need no build step; those are also listed in
// NoBuild.
type BuildReport struct {
	Built   []target.Target `json:"built"`
	Failed  []BuildFailure  `json:"failed,omitempty"`
	NoBuild []target.Target `json:"no_build,omitempty"`
}

// FailedIDs returns the ids of targets whose build failed.
func (r BuildReport) FailedIDs() []string {
	ids := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		ids[i] = f.Target.ID
	}
	return ids
}

// Builder runs the build step of compiled targets.
type Builder struct {
	Exec    Executor
	BaseDir string
	LogDir  string // build output goes to LogDir/<id>.log; empty disables logs
	// Parallel > 1 builds up to that many targets at once.
	Parallel int
	Logger   *slog.Logger
	OnBuild  func(BuildEvent)

	mu sync.Mutex
}

type buildOutcome struct {
	noBuild bool
	failure *BuildFailure
}

// Build runs each target's build command in its own directory. A failing
// build only removes that target. The input slice is not modified.
func (b *Builder) Build(ctx context.Context, targets []target.Target) BuildReport {
	outcomes := make([]buildOutcome, len(targets))

	if b.Parallel > 1 {
		g := new(errgroup.Group)
		g.SetLimit(b.Parallel)
		for i, t := range targets {
			g.Go(func() error {
				outcomes[i] = b.buildOne(ctx, t)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, t := range targets {
			outcomes[i] = b.buildOne(ctx, t)
		}
	}

	var report BuildReport
	for i, t := range targets {
		o := outcomes[i]
		switch {
		case o.failure != nil:
			report.Failed = append(report.Failed, *o.failure)
		case o.noBuild:
			report.NoBuild = append(report.NoBuild, t)
			report.Built = append(report.Built, t)
		default:
			report.Built = append(report.Built, t)
		}
	}
	return report
}

func (b *Builder) buildOne(ctx context.Context, t target.Target) buildOutcome {
	logger := b.logger().With("target", t.ID)

	if !t.HasBuild() {
		b.emit(BuildEvent{Target: t, Phase: BuildNotRequired})
		return buildOutcome{noBuild: true}
	}
	if err := ctx.Err(); err != nil {
		return buildOutcome{failure: &BuildFailure{Target: t, Error: "cancelled before build"}}
	}

	b.emit(BuildEvent{Target: t, Phase: BuildStarted})
	logger.Info("building", "command", t.Build)

	logW := newLogWriter(b.LogDir, t.ID+".log")
	defer closeLogWriter(logW)

	var stderr bytes.Buffer
	diag := newDiagnosisWriter(io.MultiWriter(logW, &stderr))
	start := time.Now()
	err := b.Exec.Exec(ctx, target.Dir(b.BaseDir, t), t.Build, logW, diag)
	dur := time.Since(start)

	if err != nil {
		msg := withHint(describeError(err, stderr.String()), diag.Hint())
		if errors.Is(err, context.Canceled) {
			msg = "build cancelled"
		}
		logger.Warn("build failed", "error", msg, "duration", dur)
		b.emit(BuildEvent{Target: t, Phase: BuildFailed, Duration: dur, Error: msg})
		return buildOutcome{failure: &BuildFailure{Target: t, Error: msg, Duration: dur}}
	}

	logger.Info("build succeeded", "duration", dur)
	b.emit(BuildEvent{Target: t, Phase: BuildSucceeded, Duration: dur})
	return buildOutcome{}
}

func (b *Builder) emit(ev BuildEvent) {
	if b.OnBuild == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.OnBuild(ev)
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
