package reporter

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/target"
)

func TestLiveReporter_Render(t *testing.T) {
	results := map[string]runner.Progress{
		"cpp":  {TargetID: "cpp", State: runner.StateCompleted, Result: &runner.RunResult{ElapsedMs: 1500}},
		"go":   {TargetID: "go", State: runner.StateRunning, StartedAt: time.Now().Add(-2 * time.Second)},
		"node": {TargetID: "node", State: runner.StatePending},
	}

	var buf bytes.Buffer
	lr := NewLiveReporter(&buf, false, target.ModeCPU, 10, catalog(), func() map[string]runner.Progress { return results })

	output := strings.Join(lr.Render(results), "\n")

	for _, want := range []string{"CPU", "C++", "1.50s", "running", "queued", "progress:", "1 done", "1 running", "1 queued"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestLiveReporter_Failed(t *testing.T) {
	results := map[string]runner.Progress{
		"cpp": {TargetID: "cpp", State: runner.StateFailed, Result: &runner.RunResult{Error: "exit status 139"}},
	}
	lr := NewLiveReporter(&bytes.Buffer{}, false, target.ModeIO, 1, catalog()[:1], func() map[string]runner.Progress { return results })

	output := strings.Join(lr.Render(results), "\n")
	if !strings.Contains(output, "FAILED") || !strings.Contains(output, "exit status 139") {
		t.Errorf("expected failure line:\n%s", output)
	}
}

func TestLiveReporter_SpinnerAdvances(t *testing.T) {
	results := map[string]runner.Progress{
		"go": {TargetID: "go", State: runner.StateRunning, StartedAt: time.Now()},
	}
	lr := NewLiveReporter(&bytes.Buffer{}, false, target.ModeCPU, 1, catalog()[1:2], func() map[string]runner.Progress { return results })

	line := func(lines []string) string {
		for _, l := range lines {
			if strings.Contains(l, "running") {
				return l
			}
		}
		return ""
	}
	run1 := line(lr.Render(results))
	lr.frame = 1
	run2 := line(lr.Render(results))

	if run1 == run2 {
		t.Error("expected spinner to change between frames")
	}
}

func TestLiveReporter_Overflow(t *testing.T) {
	var targets []target.Target
	for i := range 30 {
		targets = append(targets, target.Target{ID: fmt.Sprintf("t%02d", i), Name: fmt.Sprintf("T%02d", i), Command: "x"})
	}
	lr := NewLiveReporter(&bytes.Buffer{}, false, target.ModeCPU, 1, targets, func() map[string]runner.Progress { return nil })

	output := strings.Join(lr.Render(nil), "\n")
	if !strings.Contains(output, "10 more targets") {
		t.Errorf("expected overflow indicator:\n%s", output)
	}
	if !strings.Contains(output, "30 queued") {
		t.Errorf("expected every target counted:\n%s", output)
	}
}

func TestLiveReporter_StartStop(t *testing.T) {
	var buf bytes.Buffer
	lr := NewLiveReporter(&buf, false, target.ModeCPU, 1, catalog(), func() map[string]runner.Progress { return nil })
	lr.Start()
	time.Sleep(300 * time.Millisecond)
	lr.Stop()

	if !strings.Contains(buf.String(), "benchforge") {
		t.Error("expected at least one frame")
	}
}
