package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/benchforge/internal/history"
	"github.com/ppiankov/benchforge/internal/target"
)

func newHistoryCmd() *cobra.Command {
	var (
		targetID string
		mode     string
		limit    int
		best     bool
		sessions bool
		dbPath   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded benchmark runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := history.Filter{TargetID: targetID, Limit: limit}
			if mode != "" {
				m, err := target.ParseMode(mode)
				if err != nil {
					return err
				}
				f.Mode = m
			}

			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if sessions {
				list, err := store.Sessions(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("query history: %w", err)
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No recorded sessions.")
					return nil
				}
				printSessions(cmd.OutOrStdout(), list)
				return nil
			}

			var runs []history.Run
			if best {
				runs, err = store.Best(cmd.Context(), f)
			} else {
				runs, err = store.Recent(cmd.Context(), f)
			}
			if err != nil {
				return fmt.Errorf("query history: %w", err)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
				return nil
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetID, "target", "", "only show runs of this target")
	cmd.Flags().StringVar(&mode, "mode", "", "only show runs of this mode")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	cmd.Flags().BoolVar(&best, "best", false, "show the fastest successful run per target, mode and task count (honours --target, --mode and --limit)")
	cmd.Flags().BoolVar(&sessions, "sessions", false, "list sessions instead of runs")
	cmd.Flags().StringVar(&dbPath, "db", history.DefaultPath(), "path to the history database")

	return cmd
}

func printRuns(w io.Writer, runs []history.Run) {
	fmt.Fprintf(w, "%-14s  %-8s  %-10s  %-8s  %5s  %10s  %s\n", "WHEN", "SESSION", "TARGET", "MODE", "TASKS", "ELAPSED", "RESULT")
	for _, r := range runs {
		result := "ok"
		if !r.Success {
			result = "failed: " + r.Error
		}
		fmt.Fprintf(w, "%-14s  %-8s  %-10s  %-8s  %5d  %8dms  %s\n",
			humanize.Time(r.StartedAt), shortID(r.SessionID), r.TargetID, r.Mode, r.TaskCount, r.ElapsedMs, result)
	}
}

func printSessions(w io.Writer, sessions []history.Session) {
	fmt.Fprintf(w, "%-14s  %-8s  %-10s  %5s  %-18s  %s\n", "WHEN", "SESSION", "OUTCOME", "TASKS", "MODES", "TARGETS")
	for _, s := range sessions {
		modes := make([]string, len(s.Modes))
		for i, m := range s.Modes {
			modes[i] = string(m)
		}
		fmt.Fprintf(w, "%-14s  %-8s  %-10s  %5d  %-18s  %s\n",
			humanize.Time(s.StartedAt), shortID(s.ID), s.Outcome, s.TaskCount,
			strings.Join(modes, ","), strings.Join(s.Targets, ","))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
