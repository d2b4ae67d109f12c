package reporter

import (
	"fmt"
	"sort"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/target"
)

// Placement is one successful run in ranked order.
type Placement struct {
	Rank   int              `json:"rank"`
	Result runner.RunResult `json:"result"`
	// Ratio is elapsed time relative to the fastest run (1.0 for rank 1).
	Ratio float64 `json:"ratio"`
}

// Summary is the ranked view of one mode's results.
type Summary struct {
	Mode   target.Mode        `json:"mode"`
	Ranked []Placement        `json:"ranked"`
	Failed []runner.RunResult `json:"failed,omitempty"`
}

// Summarize splits results into successes ranked by elapsed time and
// failures in input order. Equal times keep their input order.
func Summarize(results []runner.RunResult) Summary {
	var sum Summary
	if len(results) > 0 {
		sum.Mode = results[0].Mode
	}

	var ok []runner.RunResult
	for _, r := range results {
		if r.Success {
			ok = append(ok, r)
			continue
		}
		if r.Error == "" {
			r.Error = "unknown error"
		}
		sum.Failed = append(sum.Failed, r)
	}

	sort.SliceStable(ok, func(i, j int) bool {
		return ok[i].ElapsedMs < ok[j].ElapsedMs
	})

	if len(ok) == 0 {
		return sum
	}
	base := max(ok[0].ElapsedMs, 1)
	sum.Ranked = make([]Placement, len(ok))
	for i, r := range ok {
		sum.Ranked[i] = Placement{
			Rank:   i + 1,
			Result: r,
			Ratio:  float64(max(r.ElapsedMs, 1)) / float64(base),
		}
	}
	return sum
}

// Fastest returns the winning placement, if any run succeeded.
func (s Summary) Fastest() (Placement, bool) {
	if len(s.Ranked) == 0 {
		return Placement{}, false
	}
	return s.Ranked[0], true
}

// Medal returns the podium marker for rank, or blank padding past third.
func Medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return "  "
	}
}

// formatMs renders a duration in milliseconds, switching to seconds from
// one second up.
func formatMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}
