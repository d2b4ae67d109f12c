package runner

import (
	"context"
	"sync"
	"time"

	"github.com/ppiankov/benchforge/internal/target"
)

// RunFunc executes one benchmark run. (*Runner).Run satisfies it.
type RunFunc func(ctx context.Context, t target.Target, mode target.Mode, n int) RunResult

// Progress is the scheduler's view of one target during a mode run.
type Progress struct {
	TargetID  string
	State     RunState
	StartedAt time.Time
	Result    *RunResult
}

// SchedulerConfig holds scheduler parameters.
type SchedulerConfig struct {
	Run RunFunc
	// SettleDelay is waited between consecutive runs, not before the first.
	SettleDelay time.Duration
	OnUpdate    func(p Progress) // called on state changes
}

// Scheduler runs targets one after another so that no two benchmarks
// compete for the machine.
type Scheduler struct {
	cfg   SchedulerConfig
	sleep func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	progress map[string]*Progress
}

// NewScheduler creates a sequential scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		sleep:    sleepCtx,
		progress: make(map[string]*Progress),
	}
}

// RunAll runs every target in order with the same mode and task count and
// returns one result per started run, in start order. Cancellation stops
// further runs from being started.
func (s *Scheduler) RunAll(ctx context.Context, targets []target.Target, mode target.Mode, n int) []RunResult {
	s.reset(targets)

	results := make([]RunResult, 0, len(targets))
	for i, t := range targets {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && s.cfg.SettleDelay > 0 {
			if err := s.sleep(ctx, s.cfg.SettleDelay); err != nil {
				break
			}
		}

		s.set(t.ID, func(p *Progress) {
			p.State = StateRunning
			p.StartedAt = time.Now()
		})

		res := s.cfg.Run(ctx, t, mode, n)
		results = append(results, res)

		s.set(t.ID, func(p *Progress) {
			p.State = StateCompleted
			if !res.Success {
				p.State = StateFailed
			}
			p.Result = &res
		})
	}
	return results
}

// Results returns a snapshot of every target's progress.
func (s *Scheduler) Results() map[string]Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]Progress, len(s.progress))
	for id, p := range s.progress {
		cp[id] = *p
	}
	return cp
}

func (s *Scheduler) reset(targets []target.Target) {
	s.mu.Lock()
	s.progress = make(map[string]*Progress, len(targets))
	for _, t := range targets {
		s.progress[t.ID] = &Progress{TargetID: t.ID, State: StatePending}
	}
	s.mu.Unlock()

	for _, t := range targets {
		s.notify(t.ID)
	}
}

func (s *Scheduler) set(id string, fn func(p *Progress)) {
	s.mu.Lock()
	p, ok := s.progress[id]
	if !ok {
		p = &Progress{TargetID: id}
		s.progress[id] = p
	}
	fn(p)
	s.mu.Unlock()
	s.notify(id)
}

func (s *Scheduler) notify(id string) {
	if s.cfg.OnUpdate == nil {
		return
	}
	s.mu.Lock()
	cpy := *s.progress[id]
	s.mu.Unlock()
	s.cfg.OnUpdate(cpy)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
