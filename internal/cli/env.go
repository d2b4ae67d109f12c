package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/benchforge/internal/config"
	"github.com/ppiankov/benchforge/internal/target"
)

// ErrInterrupted is returned when a command was stopped by SIGINT or
// SIGTERM. Callers should map it to exit code 130.
var ErrInterrupted = errors.New("interrupted")

// env is the resolved configuration shared by every subcommand.
type env struct {
	settings *config.Settings
	registry *target.Registry
	baseDir  string
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	settings, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dir := targetsDir
	if !cmd.Flags().Changed("targets-dir") && settings.TargetsDir != "" {
		dir = settings.TargetsDir
	}
	home, _ := os.UserHomeDir()
	baseDir, err := config.ResolveDir(dir, home)
	if err != nil {
		return nil, fmt.Errorf("targets dir: %w", err)
	}

	reg, err := config.BuildRegistry(settings)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	slog.Debug("environment loaded", "config", configFile, "targets_dir", baseDir, "targets", reg.Len())
	return &env{settings: settings, registry: reg, baseDir: baseDir}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM. The
// returned stop func releases the signal handler; interrupted reports
// whether a signal arrived.
func signalContext(parent context.Context) (ctx context.Context, stop func(), interrupted func() bool) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	got := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			slog.Debug("signal received", "signal", sig)
			close(got)
			cancel()
		case <-ctx.Done():
		}
	}()

	stop = func() {
		signal.Stop(sigCh)
		cancel()
	}
	interrupted = func() bool {
		select {
		case <-got:
			return true
		default:
			return false
		}
	}
	return ctx, stop, interrupted
}
