package reporter

import (
	"testing"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/target"
)

func ok(id string, ms int64) runner.RunResult {
	return runner.RunResult{TargetID: id, Mode: target.ModeCPU, Success: true, ElapsedMs: ms}
}

func fail(id, msg string) runner.RunResult {
	return runner.RunResult{TargetID: id, Mode: target.ModeCPU, Error: msg}
}

func TestSummarize_RanksByElapsed(t *testing.T) {
	sum := Summarize([]runner.RunResult{
		ok("python", 900),
		fail("ruby", "exit status 1"),
		ok("go", 120),
		ok("node", 300),
	})

	if sum.Mode != target.ModeCPU {
		t.Errorf("mode = %q", sum.Mode)
	}
	want := []string{"go", "node", "python"}
	if len(sum.Ranked) != len(want) {
		t.Fatalf("ranked = %d, want %d", len(sum.Ranked), len(want))
	}
	for i, id := range want {
		p := sum.Ranked[i]
		if p.Result.TargetID != id || p.Rank != i+1 {
			t.Errorf("ranked[%d] = %s rank %d, want %s rank %d", i, p.Result.TargetID, p.Rank, id, i+1)
		}
	}
	if sum.Ranked[0].Ratio != 1 {
		t.Errorf("winner ratio = %v", sum.Ranked[0].Ratio)
	}
	if sum.Ranked[2].Ratio != 7.5 {
		t.Errorf("python ratio = %v, want 7.5", sum.Ranked[2].Ratio)
	}
	if len(sum.Failed) != 1 || sum.Failed[0].TargetID != "ruby" {
		t.Errorf("failed = %+v", sum.Failed)
	}
}

func TestSummarize_TiesKeepInputOrder(t *testing.T) {
	sum := Summarize([]runner.RunResult{ok("b", 50), ok("a", 50), ok("c", 10)})

	got := []string{sum.Ranked[0].Result.TargetID, sum.Ranked[1].Result.TargetID, sum.Ranked[2].Result.TargetID}
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSummarize_NonDecreasing(t *testing.T) {
	sum := Summarize([]runner.RunResult{ok("a", 5), ok("b", 3), ok("c", 9), ok("d", 3), ok("e", 0)})
	for i := 1; i < len(sum.Ranked); i++ {
		if sum.Ranked[i].Result.ElapsedMs < sum.Ranked[i-1].Result.ElapsedMs {
			t.Fatalf("ranked not sorted at %d", i)
		}
	}
}

func TestSummarize_FailureAlwaysHasError(t *testing.T) {
	sum := Summarize([]runner.RunResult{fail("x", "")})
	if sum.Failed[0].Error == "" {
		t.Fatal("expected placeholder error")
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	if len(sum.Ranked) != 0 || len(sum.Failed) != 0 {
		t.Fatalf("expected empty summary, got %+v", sum)
	}
	if _, found := sum.Fastest(); found {
		t.Fatal("empty summary has no fastest")
	}
}

func TestMedal(t *testing.T) {
	if Medal(1) != "🥇" || Medal(2) != "🥈" || Medal(3) != "🥉" {
		t.Error("wrong podium medals")
	}
	if Medal(4) != "  " {
		t.Errorf("Medal(4) = %q", Medal(4))
	}
}

func TestFormatMs(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0ms"},
		{999, "999ms"},
		{1000, "1.00s"},
		{12345, "12.35s"},
	}
	for _, tt := range tests {
		if got := formatMs(tt.ms); got != tt.want {
			t.Errorf("formatMs(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
