package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/target"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func result(id string, mode target.Mode, ms int64, ok bool, at time.Time) runner.RunResult {
	r := runner.RunResult{TargetID: id, Mode: mode, TaskCount: 10, Success: ok, ElapsedMs: ms, StartedAt: at}
	if !ok {
		r.Error = "exit status 1"
	}
	return r
}

func seed(t *testing.T, s *Store, id string, at time.Time, results ...runner.RunResult) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.RecordSession(ctx, Session{
		ID:        id,
		StartedAt: at,
		TaskCount: 10,
		Modes:     []target.Mode{target.ModeCPU, target.ModeIO},
		Targets:   []string{"go", "node"},
	}))
	require.NoError(t, s.RecordRuns(ctx, id, results))
}

func TestStore_RecentNewestFirst(t *testing.T) {
	s := openTest(t)
	t0 := time.Now().Add(-time.Hour)

	seed(t, s, "s1", t0,
		result("go", target.ModeCPU, 100, true, t0),
		result("node", target.ModeCPU, 300, true, t0.Add(time.Second)),
	)
	seed(t, s, "s2", t0.Add(time.Minute),
		result("go", target.ModeIO, 80, false, t0.Add(time.Minute)),
	)

	runs, err := s.Recent(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "s2", runs[0].SessionID)
	assert.False(t, runs[0].Success)
	assert.Equal(t, "exit status 1", runs[0].Error)
	assert.Equal(t, "node", runs[1].TargetID)
	assert.Equal(t, t0.Add(time.Second).UnixMilli(), runs[1].StartedAt.UnixMilli())
}

func TestStore_RecentFilter(t *testing.T) {
	s := openTest(t)
	now := time.Now()
	seed(t, s, "s1", now,
		result("go", target.ModeCPU, 100, true, now),
		result("go", target.ModeIO, 200, true, now),
		result("node", target.ModeCPU, 300, true, now),
	)

	runs, err := s.Recent(context.Background(), Filter{TargetID: "go"})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = s.Recent(context.Background(), Filter{TargetID: "go", Mode: target.ModeIO})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(200), runs[0].ElapsedMs)

	runs, err = s.Recent(context.Background(), Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestStore_Best(t *testing.T) {
	s := openTest(t)
	now := time.Now()
	seed(t, s, "s1", now,
		result("go", target.ModeCPU, 120, true, now),
		result("node", target.ModeCPU, 50, false, now),
	)
	seed(t, s, "s2", now.Add(time.Minute),
		result("go", target.ModeCPU, 90, true, now.Add(time.Minute)),
		result("node", target.ModeCPU, 400, true, now.Add(time.Minute)),
	)

	best, err := s.Best(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, best, 2)

	assert.Equal(t, "go", best[0].TargetID)
	assert.Equal(t, int64(90), best[0].ElapsedMs)
	assert.Equal(t, "s2", best[0].SessionID)
	assert.Equal(t, "node", best[1].TargetID)
	assert.Equal(t, int64(400), best[1].ElapsedMs, "failed runs never count as best")
}

func TestStore_BestFiltered(t *testing.T) {
	s := openTest(t)
	now := time.Now()
	seed(t, s, "s1", now,
		result("go", target.ModeCPU, 120, true, now),
		result("go", target.ModeIO, 300, true, now),
		result("node", target.ModeCPU, 80, true, now),
		result("node", target.ModeIO, 500, true, now),
	)
	ctx := context.Background()

	byTarget, err := s.Best(ctx, Filter{TargetID: "go"})
	require.NoError(t, err)
	require.Len(t, byTarget, 2)
	for _, r := range byTarget {
		assert.Equal(t, "go", r.TargetID)
	}

	byMode, err := s.Best(ctx, Filter{Mode: target.ModeIO})
	require.NoError(t, err)
	require.Len(t, byMode, 2)
	assert.Equal(t, "go", byMode[0].TargetID, "fastest first within a mode")
	assert.Equal(t, target.ModeIO, byMode[1].Mode)

	both, err := s.Best(ctx, Filter{TargetID: "node", Mode: target.ModeCPU})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, int64(80), both[0].ElapsedMs)

	limited, err := s.Best(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_SessionOutcomeUpdate(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	start := time.Now().Add(-time.Minute)

	sess := Session{ID: "s1", StartedAt: start, TaskCount: 5, Modes: []target.Mode{target.ModeHeavyIO}, Targets: []string{"rust"}}
	require.NoError(t, s.RecordSession(ctx, sess))

	sess.EndedAt = time.Now()
	sess.Outcome = "done"
	require.NoError(t, s.RecordSession(ctx, sess))

	got, err := s.Sessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "done", got[0].Outcome)
	assert.Equal(t, []target.Mode{target.ModeHeavyIO}, got[0].Modes)
	assert.Equal(t, []string{"rust"}, got[0].Targets)
	assert.False(t, got[0].EndedAt.IsZero())
}

func TestStore_RunsNeedSession(t *testing.T) {
	s := openTest(t)
	err := s.RecordRuns(context.Background(), "missing", []runner.RunResult{result("go", target.ModeCPU, 1, true, time.Now())})
	assert.Error(t, err)
}

func TestStore_PersistsOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	seed(t, s, "s1", time.Now(), result("go", target.ModeCPU, 10, true, time.Now()))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	runs, err := s2.Recent(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
