package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/benchforge/internal/reporter"
	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/state"
	"github.com/ppiankov/benchforge/internal/target"
)

func newBuildCmd() *cobra.Command {
	var (
		parallel    int
		incremental bool
	)

	cmd := &cobra.Command{
		Use:   "build [ids...]",
		Short: "Build targets without running them",
		Long:  "Build runs the build step of the given targets, or of every available target when none are named.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("parallel") && e.settings.ParallelBuilds > 0 {
				parallel = e.settings.ParallelBuilds
			}

			probe := target.Probe(slog.Default(), e.baseDir, e.registry)
			targets, err := pickTargets(probe.Available, args)
			if err != nil {
				return err
			}

			sessionID := uuid.NewString()
			if err := state.Acquire(e.baseDir, sessionID, cmd.Name()); err != nil {
				return err
			}
			defer state.Release(e.baseDir)

			ctx, stop, interrupted := signalContext(cmd.Context())
			defer stop()

			text := reporter.NewTextReporter(cmd.OutOrStdout(), colorFor(cmd.OutOrStdout()))
			tracker := state.Load(state.DefaultPath())
			tracker.RecoverInterrupted()

			stage := newBuildStage(buildStageConfig{
				exec:        runner.NewShellExecutor(),
				baseDir:     e.baseDir,
				logDir:      filepath.Join(".benchforge", time.Now().Format("20060102-150405"), "build"),
				parallel:    parallel,
				tracker:     tracker,
				incremental: incremental,
				sessionID:   sessionID,
				text:        text,
			})

			text.PrintBuildHeader()
			report := stage.Build(ctx, targets)
			text.PrintBuildFailures(report.Failed)

			if interrupted() {
				return ErrInterrupted
			}
			if n := len(report.Failed); n > 0 {
				return fmt.Errorf("%d of %d builds failed", n, len(targets))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 1, "build up to this many targets at once")
	cmd.Flags().BoolVar(&incremental, "incremental", false, "skip targets whose sources have not changed since the last successful build")

	return cmd
}

// pickTargets returns the available targets named by ids, or all of them
// when ids is empty.
func pickTargets(available []target.Target, ids []string) ([]target.Target, error) {
	if len(ids) == 0 {
		if len(available) == 0 {
			return nil, fmt.Errorf("no target directories found")
		}
		return available, nil
	}

	byID := make(map[string]target.Target, len(available))
	for _, t := range available {
		byID[t.ID] = t
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("target %q is not registered or has no directory", id)
		}
		want[id] = true
	}

	var out []target.Target
	for _, t := range available {
		if want[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}
