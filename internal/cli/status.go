package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/benchforge/internal/reporter"
	"github.com/ppiankov/benchforge/internal/state"
)

func newStatusCmd() *cobra.Command {
	var (
		statePath string
		runDir    string
		reset     bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last recorded build of each target and the latest session",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker := state.Load(statePath)
			if reset {
				e, err := loadEnv(cmd)
				if err != nil {
					return err
				}
				n := tracker.Forget(e.baseDir)
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %d recorded builds under %s.\n", n, e.baseDir)
				return nil
			}
			printBuildState(cmd.OutOrStdout(), tracker.Entries(""))

			if runDir == "" {
				latest, err := findLatestRunDir(".benchforge")
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				if err != nil {
					return err
				}
				runDir = latest
			}
			report, err := reporter.ReadJSONReport(filepath.Join(runDir, "report.json"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			printSessionReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&statePath, "state", state.DefaultPath(), "path to the build state file")
	cmd.Flags().StringVar(&runDir, "run-dir", "", "session directory to summarize (auto-detects latest if omitted)")
	cmd.Flags().BoolVar(&reset, "reset", false, "forget the recorded builds of the targets dir")

	return cmd
}

func printBuildState(w io.Writer, entries []state.BuildEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No builds recorded.")
		return
	}

	for _, e := range entries {
		line := fmt.Sprintf("  %-12s  %-12s", e.TargetID, e.Status)
		if !e.FinishedAt.IsZero() {
			line += "  " + humanize.Time(e.FinishedAt)
		}
		if e.Duration > 0 {
			line += "  " + e.Duration.Round(time.Millisecond).String()
		}
		line += "  " + e.Dir
		if e.Error != "" {
			line += fmt.Sprintf("  (%s)", e.Error)
		}
		fmt.Fprintln(w, line)
	}
}

// findLatestRunDir returns the newest session directory under root that
// holds a report.json. Directory names are timestamps, so lexical order is
// chronological. A missing root or no reports yields fs.ErrNotExist.
func findLatestRunDir(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("read %s: %w", root, err)
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(candidate, "report.json")); err == nil {
			return candidate, nil
		}
	}
	return "", fs.ErrNotExist
}

func printSessionReport(w io.Writer, r *reporter.SessionReport) {
	fmt.Fprintf(w, "Latest session %s (%s, %s)\n", shortID(r.ID), r.Outcome, humanize.Time(r.StartedAt))

	ids := make([]string, len(r.Targets))
	for i, t := range r.Targets {
		ids[i] = t.ID
	}
	fmt.Fprintf(w, "  targets: %s  tasks: %d\n", strings.Join(ids, ", "), r.TaskCount)

	for _, m := range r.Runs {
		var line strings.Builder
		fmt.Fprintf(&line, "  %-8s", m.Mode)
		for _, p := range m.Summary.Ranked {
			fmt.Fprintf(&line, "  %d. %s %dms", p.Rank, p.Result.TargetID, p.Result.ElapsedMs)
		}
		if n := len(m.Summary.Failed); n > 0 {
			fmt.Fprintf(&line, "  (%d failed)", n)
		}
		fmt.Fprintln(w, line.String())
	}
}
