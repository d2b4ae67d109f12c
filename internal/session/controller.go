// Package session drives one benchmark session from probing to the final
// summary as an explicit state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/benchforge/internal/reporter"
	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/target"
)

// ErrCancelled is returned when the session context is cancelled while the
// controller waits for input or between stages.
var ErrCancelled = errors.New("session cancelled")

// Abort reasons.
const (
	ReasonNoTargets   = "No target directories found!"
	ReasonNoSelection = "No targets selected!"
	ReasonAllFailed   = "All builds failed!"
	ReasonDeclined    = "declined"
)

// Prompts.
const (
	questionTargets = `Select targets (comma-separated numbers or ids, "all", "compiled"): `
	questionMode    = "Select benchmark mode (1-4): "
	questionTasks   = "Enter number of tasks (default: %d): "
	questionConfirm = "Proceed with benchmark? (y/N): "
)

// View renders session progress. *reporter.TextReporter implements it.
type View interface {
	UseTargets(ts []target.Target)
	PrintBanner()
	PrintSkipped(skips []target.Skip)
	PrintTargetMenu(available []target.Target)
	PrintModeMenu()
	PrintConfiguration(selected []target.Target, modes []target.Mode, taskCount int)
	Question(text string) string
	PrintBuildHeader()
	PrintBuildFailures(failed []runner.BuildFailure)
	PrintModeHeader(mode target.Mode)
	PrintSummary(sum reporter.Summary)
	PrintContinue()
	PrintDone()
	PrintDeclined()
	PrintInterrupted()
	PrintAborted(reason string)
	PrintError(err error)
}

// Builder runs the build stage. *runner.Builder implements it.
type Builder interface {
	Build(ctx context.Context, targets []target.Target) runner.BuildReport
}

// ModeRunner runs every target once for a mode. *runner.Scheduler
// implements it.
type ModeRunner interface {
	RunAll(ctx context.Context, targets []target.Target, mode target.Mode, n int) []runner.RunResult
}

// Config wires the controller's collaborators.
type Config struct {
	Registry *target.Registry
	BaseDir  string
	Prompter Prompter
	View     View
	// Builder may be nil, in which case every selected target is treated
	// as built.
	Builder Builder
	Runner  ModeRunner
	Logger  *slog.Logger
	// ID names the session; a random UUID is used when empty.
	ID string
	// Interactive waits for Enter between modes.
	Interactive bool
	// DefaultTasks answers an empty or non-numeric task count prompt;
	// target.DefaultTasks is used when zero.
	DefaultTasks int

	OnPhase         func(from, to Phase)
	OnBuildComplete func(report runner.BuildReport)
	OnModeComplete  func(mode target.Mode, results []runner.RunResult, sum reporter.Summary)
}

// Outcome is the result of a finished session.
type Outcome struct {
	Phase       Phase
	Reason      string
	Interrupted bool
	Report      *reporter.SessionReport
	Build       runner.BuildReport
	Err         error
}

// Controller runs a single session. It is not reusable.
type Controller struct {
	cfg    Config
	logger *slog.Logger

	report *reporter.SessionReport

	mu    sync.Mutex
	phase Phase
}

// New creates a controller in PhaseInit.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Controller{
		cfg:    cfg,
		logger: logger,
		report: &reporter.SessionReport{ID: id},
	}
}

// Report returns the session report. It is filled in as the session
// advances and is complete once Run returns.
func (c *Controller) Report() *reporter.SessionReport {
	return c.report
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) transition(to Phase) error {
	c.mu.Lock()
	from := c.phase
	if !CanTransition(from, to) {
		c.mu.Unlock()
		return fmt.Errorf("illegal phase transition %s -> %s", from, to)
	}
	c.phase = to
	c.mu.Unlock()

	c.logger.Debug("session phase", "from", from, "to", to)
	if c.cfg.OnPhase != nil {
		c.cfg.OnPhase(from, to)
	}
	return nil
}

// Run executes the session until it reaches a terminal phase. Errors and
// panics from collaborators are reported through the view and returned in
// Outcome.Err; Run itself never panics.
func (c *Controller) Run(ctx context.Context) (out Outcome) {
	out.Report = c.report
	out.Report.StartedAt = time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("session panic", "panic", r, "stack", string(debug.Stack()))
			out.Err = fmt.Errorf("session panic: %v", r)
		}
		if out.Err != nil && !out.Phase.Terminal() {
			c.cfg.View.PrintError(out.Err)
			c.finish(&out, PhaseAborted, out.Err.Error())
		}
		out.Report.EndedAt = time.Now()
		out.Report.Outcome = out.Phase.String()
		if c.cfg.Prompter != nil {
			_ = c.cfg.Prompter.Close()
		}
	}()

	out.Err = c.run(ctx, &out)
	if errors.Is(out.Err, ErrCancelled) {
		c.cfg.View.PrintInterrupted()
		out.Interrupted = true
		c.finish(&out, PhaseCancelled, "interrupted")
		out.Err = nil
	}
	return out
}

func (c *Controller) finish(out *Outcome, phase Phase, reason string) {
	if err := c.transition(phase); err != nil {
		c.logger.Warn("session finish", "error", err)
	}
	out.Phase = c.Phase()
	out.Reason = reason
}

func (c *Controller) run(ctx context.Context, out *Outcome) error {
	view := c.cfg.View
	report := out.Report

	view.PrintBanner()
	probe := target.Probe(c.logger, c.cfg.BaseDir, c.cfg.Registry)
	view.PrintSkipped(probe.Skipped)
	view.UseTargets(probe.Available)
	if len(probe.Available) == 0 {
		view.PrintAborted(ReasonNoTargets)
		c.finish(out, PhaseAborted, ReasonNoTargets)
		return nil
	}
	if err := c.transition(PhaseProbed); err != nil {
		return err
	}

	view.PrintTargetMenu(probe.Available)
	answer, err := c.ask(ctx, questionTargets)
	if err != nil {
		return err
	}
	selected := SelectTargets(answer, probe.Available)
	if len(selected) == 0 {
		view.PrintAborted(ReasonNoSelection)
		c.finish(out, PhaseAborted, ReasonNoSelection)
		return nil
	}
	report.Targets = selected
	if err := c.transition(PhaseTargetsSelected); err != nil {
		return err
	}

	view.PrintModeMenu()
	if answer, err = c.ask(ctx, questionMode); err != nil {
		return err
	}
	modes := SelectModes(answer)
	report.Modes = modes
	if err := c.transition(PhaseModesSelected); err != nil {
		return err
	}

	def := c.defaultTasks()
	if answer, err = c.ask(ctx, fmt.Sprintf(questionTasks, def)); err != nil {
		return err
	}
	n := target.ParseTaskCountOr(answer, def)
	report.TaskCount = n
	if err := c.transition(PhaseTaskCountSelected); err != nil {
		return err
	}

	view.PrintConfiguration(selected, modes, n)
	if answer, err = c.ask(ctx, questionConfirm); err != nil {
		return err
	}
	if !Confirmed(answer) {
		view.PrintDeclined()
		c.finish(out, PhaseCancelled, ReasonDeclined)
		return nil
	}
	if err := c.transition(PhaseConfirmed); err != nil {
		return err
	}

	built, err := c.build(ctx, out, selected)
	if err != nil {
		return err
	}
	if len(built) == 0 {
		view.PrintAborted(ReasonAllFailed)
		c.finish(out, PhaseAborted, ReasonAllFailed)
		return nil
	}
	if err := c.transition(PhaseBuilt); err != nil {
		return err
	}

	for i, mode := range modes {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		if err := c.transition(PhaseRunningMode); err != nil {
			return err
		}

		view.PrintModeHeader(mode)
		results := c.cfg.Runner.RunAll(ctx, built, mode, n)
		sum := report.AddMode(mode, results)
		view.PrintSummary(sum)
		if c.cfg.OnModeComplete != nil {
			c.cfg.OnModeComplete(mode, results, sum)
		}

		if ctx.Err() != nil {
			return ErrCancelled
		}
		if c.cfg.Interactive && i < len(modes)-1 {
			view.PrintContinue()
			if _, err := c.ask(ctx, ""); err != nil {
				return err
			}
		}
	}

	view.PrintDone()
	c.finish(out, PhaseDone, "")
	return nil
}

func (c *Controller) build(ctx context.Context, out *Outcome, selected []target.Target) ([]target.Target, error) {
	c.cfg.View.PrintBuildHeader()

	var br runner.BuildReport
	if c.cfg.Builder != nil {
		br = c.cfg.Builder.Build(ctx, selected)
		for _, t := range br.Built {
			if t.HasBuild() {
				out.Report.Built = append(out.Report.Built, t.ID)
			}
		}
	} else {
		br.Built = append([]target.Target(nil), selected...)
	}
	out.Build = br
	out.Report.BuildFailures = br.Failed

	if c.cfg.OnBuildComplete != nil {
		c.cfg.OnBuildComplete(br)
	}
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	c.cfg.View.PrintBuildFailures(br.Failed)
	return br.Built, nil
}

func (c *Controller) defaultTasks() int {
	if c.cfg.DefaultTasks <= 0 {
		return target.DefaultTasks
	}
	return target.ClampTaskCount(c.cfg.DefaultTasks)
}

// ask prompts and maps cancellation to ErrCancelled. Exhausted input reads
// as an empty answer so every prompt falls back to its default.
func (c *Controller) ask(ctx context.Context, question string) (string, error) {
	if ctx.Err() != nil {
		return "", ErrCancelled
	}
	if question != "" {
		question = c.cfg.View.Question(question)
	}
	answer, err := c.cfg.Prompter.Prompt(ctx, question)
	switch {
	case err == nil:
		return answer, nil
	case errors.Is(err, io.EOF):
		return "", nil
	case ctx.Err() != nil:
		return "", ErrCancelled
	default:
		return "", fmt.Errorf("read answer: %w", err)
	}
}
