package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/target"
)

// ModeReport holds the results of one mode run.
type ModeReport struct {
	Mode    target.Mode        `json:"mode"`
	Results []runner.RunResult `json:"results"`
	Summary Summary            `json:"summary"`
}

// SessionReport is the complete record of one benchmark session. Built
// lists targets whose build step succeeded or was reused, and stays empty
// when no build stage ran.
type SessionReport struct {
	ID            string                `json:"id"`
	StartedAt     time.Time             `json:"started_at"`
	EndedAt       time.Time             `json:"ended_at"`
	TaskCount     int                   `json:"task_count"`
	Targets       []target.Target       `json:"targets"`
	Modes         []target.Mode         `json:"modes"`
	BuildFailures []runner.BuildFailure `json:"build_failures,omitempty"`
	Built         []string              `json:"built,omitempty"`
	Runs          []ModeReport          `json:"runs"`
	Outcome       string                `json:"outcome"`
}

// AddMode appends a mode's results together with their summary.
func (s *SessionReport) AddMode(mode target.Mode, results []runner.RunResult) Summary {
	sum := Summarize(results)
	sum.Mode = mode
	s.Runs = append(s.Runs, ModeReport{Mode: mode, Results: results, Summary: sum})
	return sum
}

// WriteJSONReport writes the session report as JSON to the given path.
func WriteJSONReport(report *SessionReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// ReadJSONReport loads a report written by WriteJSONReport.
func ReadJSONReport(path string) (*SessionReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report SessionReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &report, nil
}
