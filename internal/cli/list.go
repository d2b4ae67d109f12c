package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/benchforge/internal/state"
	"github.com/ppiankov/benchforge/internal/target"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered targets with availability and last build",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			probe := target.Probe(slog.Default(), e.baseDir, e.registry)
			tracker := state.Load(state.DefaultPath())
			printTargetList(cmd.OutOrStdout(), e.registry, probe, tracker, e.baseDir)
			return nil
		},
	}
}

func printTargetList(w io.Writer, reg *target.Registry, probe target.ProbeResult, tracker *state.Tracker, baseDir string) {
	available := make(map[string]bool, len(probe.Available))
	for _, t := range probe.Available {
		available[t.ID] = true
	}

	fmt.Fprintf(w, "%-10s  %-10s  %-9s  %-8s  %s\n", "ID", "NAME", "AVAILABLE", "COMPILED", "LAST BUILD")
	for _, t := range reg.List() {
		avail := "no"
		if available[t.ID] {
			avail = "yes"
		}
		compiled := "no"
		if t.Compiled {
			compiled = "yes"
		}
		fmt.Fprintf(w, "%-10s  %-10s  %-9s  %-8s  %s\n", t.ID, t.Name, avail, compiled, lastBuild(t, tracker.Lookup(baseDir, t)))
	}
}

func lastBuild(t target.Target, e *state.BuildEntry) string {
	switch {
	case !t.HasBuild():
		return "-"
	case e == nil:
		return "never"
	case e.FinishedAt.IsZero():
		return e.Status
	default:
		return fmt.Sprintf("%s %s", e.Status, humanize.Time(e.FinishedAt))
	}
}
