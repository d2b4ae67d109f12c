package reporter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/target"
)

func catalog() []target.Target {
	return []target.Target{
		{ID: "cpp", Name: "C++", Command: "./benchmark", Build: "g++ ...", Compiled: true, Color: "white"},
		{ID: "go", Name: "Go", Command: "./go-benchmark", Build: "go build", Compiled: true, Color: "cyan"},
		{ID: "node", Name: "Node.js", Command: "node index.js", Color: "green"},
	}
}

func TestTextReporter_TargetMenu(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)
	r.PrintTargetMenu(catalog())

	out := buf.String()
	for _, want := range []string{"1. C++", "2. Go", "3. Node.js", "4. All targets", "5. Compiled targets only (C++, Go)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestTextReporter_ModeMenu(t *testing.T) {
	var buf bytes.Buffer
	NewTextReporter(&buf, false).PrintModeMenu()

	out := buf.String()
	if !strings.Contains(out, "1. CPU-bound") || !strings.Contains(out, "4. All modes") {
		t.Errorf("unexpected mode menu:\n%s", out)
	}
}

func TestTextReporter_Configuration(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)
	r.PrintConfiguration(catalog()[:2], []target.Mode{target.ModeCPU, target.ModeHeavyIO}, 25)

	out := buf.String()
	for _, want := range []string{"Targets: C++, Go", "Modes: CPU, HEAVY-IO", "Tasks: 25"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestTextReporter_BuildEvents(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)
	tg := catalog()[0]

	r.PrintBuildEvent(runner.BuildEvent{Target: tg, Phase: runner.BuildStarted})
	r.PrintBuildEvent(runner.BuildEvent{Target: tg, Phase: runner.BuildFailed, Error: "exit status 1: missing header"})
	r.PrintBuildEvent(runner.BuildEvent{Target: catalog()[2], Phase: runner.BuildNotRequired})

	out := buf.String()
	if !strings.Contains(out, "Building C++...") {
		t.Error("expected build start line")
	}
	if !strings.Contains(out, "C++ build failed: exit status 1: missing header") {
		t.Error("expected build failure with cause")
	}
	if !strings.Contains(out, "Node.js doesn't require building") {
		t.Error("expected no-build notice")
	}

	buf.Reset()
	r.PrintBuildReused(catalog()[1], "unchanged since build 2 hours ago")
	if !strings.Contains(buf.String(), "Go: unchanged since build 2 hours ago") {
		t.Errorf("expected reuse notice, got %q", buf.String())
	}
}

func TestTextReporter_RunLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)
	tg := catalog()[2]

	r.PrintRunStart(tg, target.ModeIO, 5)
	r.PrintRunResult(tg, runner.RunResult{TargetID: "node", Success: true, ElapsedMs: 321, Stderr: "deprecated api\n"})
	r.PrintRunResult(tg, runner.RunResult{TargetID: "node", Error: "exit status 2"})

	out := buf.String()
	for _, want := range []string{
		"Running Node.js IO benchmark (5 tasks)",
		"Command: node index.js io 5",
		"Warning: deprecated api",
		"Total execution time: 321ms",
		"Error running Node.js: exit status 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestTextReporter_Summary(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)
	r.UseTargets(catalog())

	sum := Summarize([]runner.RunResult{
		{TargetID: "node", Mode: target.ModeCPU, Success: true, ElapsedMs: 400},
		{TargetID: "cpp", Mode: target.ModeCPU, Success: true, ElapsedMs: 100},
		{TargetID: "go", Mode: target.ModeCPU, Error: "exit status 1"},
	})
	r.PrintSummary(sum)

	out := buf.String()
	for _, want := range []string{
		"CPU Benchmark Results Summary",
		"🥇 C++: 100ms",
		"🥈 Node.js: 400ms  (4.00x)",
		"Failed runs:",
		"Go: exit status 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
	if strings.Index(out, "C++") > strings.Index(out, "Node.js") {
		t.Error("fastest target must be listed first")
	}
}

func TestTextReporter_TerminalMessages(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)

	r.PrintDeclined()
	r.PrintInterrupted()
	r.PrintAborted("No target directories found!")
	r.PrintError(errors.New("disk full"))
	r.PrintDone()

	out := buf.String()
	for _, want := range []string{"Benchmark cancelled.", "interrupted by user", "No target directories found!", "Unexpected error: disk full", "All benchmarks completed!"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestTextReporter_NoColor(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)
	r.PrintBanner()
	r.PrintSkipped([]target.Skip{{Target: catalog()[0], Reason: "directory not found"}})

	if strings.Contains(buf.String(), "\033[") {
		t.Error("expected no ANSI codes with color=false")
	}
	if !strings.Contains(buf.String(), "C++ directory not found, skipping") {
		t.Errorf("unexpected skip notice: %s", buf.String())
	}
}

func TestWriteJSONReport(t *testing.T) {
	report := &SessionReport{
		ID:        "sess-1",
		StartedAt: time.Now(),
		TaskCount: 10,
		Targets:   catalog(),
		Modes:     []target.Mode{target.ModeCPU},
	}
	sum := report.AddMode(target.ModeCPU, []runner.RunResult{
		{TargetID: "go", Mode: target.ModeCPU, Success: true, ElapsedMs: 12},
	})
	if len(sum.Ranked) != 1 {
		t.Fatalf("AddMode summary = %+v", sum)
	}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteJSONReport(report, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"elapsed_ms": 12`) {
		t.Errorf("unexpected JSON:\n%s", data)
	}

	back, err := ReadJSONReport(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if back.ID != "sess-1" || len(back.Runs) != 1 || back.Runs[0].Summary.Ranked[0].Result.TargetID != "go" {
		t.Errorf("round trip mismatch: %+v", back)
	}
}
