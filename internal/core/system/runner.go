package system

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick. Systems of the same
// phase keep their registration order. A tick that takes longer than the
// budget is counted and logged with the slowest system's phase.
type Runner struct {
	systems  []System
	sorted   bool
	ticks    uint64
	overruns uint64
	budget   time.Duration // <= 0 disables overrun tracking
	now      func() time.Time
	log      *zap.Logger
}

func NewRunner(budget time.Duration, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		systems: make([]System, 0, 8),
		budget:  budget,
		now:     time.Now,
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	if r.budget <= 0 {
		for _, s := range r.systems {
			s.Update(dt)
		}
		r.ticks++
		return
	}

	start := r.now()
	var slowest time.Duration
	slowPhase := PhaseInput
	for _, s := range r.systems {
		t0 := r.now()
		s.Update(dt)
		if d := r.now().Sub(t0); d > slowest {
			slowest, slowPhase = d, s.Phase()
		}
	}
	r.ticks++

	if took := r.now().Sub(start); took > r.budget {
		r.overruns++
		r.log.Warn("tick over budget",
			zap.Uint64("tick", r.ticks),
			zap.Duration("took", took),
			zap.Duration("budget", r.budget),
			zap.Stringer("slowest_phase", slowPhase),
			zap.Duration("slowest", slowest),
		)
	}
}

// Ticks returns the number of completed ticks.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Overruns returns how many ticks exceeded the budget.
func (r *Runner) Overruns() uint64 { return r.overruns }

func (r *Runner) ensureSorted() {
	if r.sorted {
		return
	}
	sort.SliceStable(r.systems, func(i, j int) bool {
		return r.systems[i].Phase() < r.systems[j].Phase()
	})
	r.sorted = true
}
