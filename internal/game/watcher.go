package game

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomz197/redlight/internal/clock"
)

// Watcher is the figure that alternates between watching the player and
// looking away on randomized holds until stopped.
type Watcher struct {
	clock  clock.Clock
	tuning Tuning
	turn   func(Phase)
	phase  atomic.Int32

	mu      sync.Mutex
	rng     *rand.Rand
	gen     uint64 // Bumped by Start and Stop; stale callbacks compare against it
	running bool
	timer   clock.Timer
}

// NewWatcher creates a watcher facing the player. turn is invoked on each
// phase change and may be nil.
func NewWatcher(c clock.Clock, t Tuning, rng *rand.Rand, turn func(Phase)) *Watcher {
	if turn == nil {
		turn = func(Phase) {}
	}
	w := &Watcher{
		clock:  c,
		tuning: t,
		turn:   turn,
		rng:    rng,
	}
	w.phase.Store(int32(FacingToward))
	return w
}

// Phase returns the current phase. Safe from any goroutine.
func (w *Watcher) Phase() Phase {
	return Phase(w.phase.Load())
}

// Running reports whether the cycle is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start begins the cycle with the figure facing the player. No-op if
// already running.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.gen++
	gen := w.gen
	w.mu.Unlock()

	w.enter(gen, FacingToward)
}

// Stop cancels the cycle. The phase keeps its last value.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// enter switches to p and arms the hold that leads to the opposite phase.
func (w *Watcher) enter(gen uint64, p Phase) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.phase.Store(int32(p))
	next := FacingAway
	if p == FacingAway {
		next = FacingToward
	}
	w.timer = w.clock.AfterFunc(w.holdLocked(p), func() {
		w.enter(gen, next)
	})
	w.mu.Unlock()

	w.turn(p)
}

func (w *Watcher) holdLocked(p Phase) time.Duration {
	lo, hi := w.tuning.UnsafeMin, w.tuning.UnsafeMax
	if p == FacingAway {
		lo, hi = w.tuning.SafeMin, w.tuning.SafeMax
	}
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(w.rng.Int63n(int64(hi-lo)))
}
