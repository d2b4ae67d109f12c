package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/ppiankov/benchforge/internal/history"
	"github.com/ppiankov/benchforge/internal/reporter"
	"github.com/ppiankov/benchforge/internal/runner"
)

// historyRecorder writes a session and its runs to the history store.
// Store errors are logged and never fail the session.
type historyRecorder struct {
	store   *history.Store
	started bool
}

// newHistoryRecorder opens the store at path. A disabled or unavailable
// store yields a recorder that does nothing.
func newHistoryRecorder(disabled bool, path string) *historyRecorder {
	if disabled {
		return &historyRecorder{}
	}
	store, err := history.Open(path)
	if err != nil {
		slog.Warn("history disabled", "error", err)
		return &historyRecorder{}
	}
	return &historyRecorder{store: store}
}

// RecordRuns stores one mode's results, registering the session first.
// Results are stored even when the session context is already cancelled.
func (h *historyRecorder) RecordRuns(report *reporter.SessionReport, results []runner.RunResult) {
	if h.store == nil || len(results) == 0 {
		return
	}
	ctx := context.Background()
	if !h.started {
		if err := h.store.RecordSession(ctx, sessionRecord(report, "running")); err != nil {
			slog.Warn("history: record session", "error", err)
			return
		}
		h.started = true
	}
	if err := h.store.RecordRuns(ctx, report.ID, results); err != nil {
		slog.Warn("history: record runs", "error", err)
	}
}

// Finish stores the final outcome of a session that recorded runs.
func (h *historyRecorder) Finish(report *reporter.SessionReport) {
	if h.store == nil || !h.started {
		return
	}
	if err := h.store.RecordSession(context.Background(), sessionRecord(report, report.Outcome)); err != nil {
		slog.Warn("history: finish session", "error", err)
	}
}

func (h *historyRecorder) Close() {
	if h.store != nil {
		_ = h.store.Close()
	}
}

func sessionRecord(report *reporter.SessionReport, outcome string) history.Session {
	ids := make([]string, len(report.Targets))
	for i, t := range report.Targets {
		ids[i] = t.ID
	}
	ended := report.EndedAt
	if outcome == "running" {
		ended = time.Time{}
	}
	return history.Session{
		ID:        report.ID,
		StartedAt: report.StartedAt,
		EndedAt:   ended,
		TaskCount: report.TaskCount,
		Modes:     report.Modes,
		Targets:   ids,
		Outcome:   outcome,
	}
}
