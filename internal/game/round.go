package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/tomz197/redlight/internal/clock"
)

// RoundOptions configures a round. Nil Clock, View and Rand get defaults
// and a zero Tuning means DefaultTuning. Any other Tuning is used as given
// and must pass Validate.
type RoundOptions struct {
	Tuning     Tuning
	Clock      clock.Clock
	View       View
	Rand       *rand.Rand
	Difficulty string
	// OnOver is called once, outside the round lock, when the round resolves.
	OnOver func(Result)
}

// Round drives one play session: countdown, running, and a single
// terminal outcome. Frame, KeyDown, KeyUp and timer callbacks are
// serialized by one lock, so each frame's decision is atomic with respect
// to the timers.
type Round struct {
	clock      clock.Clock
	tuning     Tuning
	view       View
	difficulty string
	onOver     func(Result)
	watcher    *Watcher
	player     *Player

	mu         sync.Mutex
	status     Status
	closed     bool
	startedAt  time.Time
	timer      clock.Timer
	result     Result
	done       chan struct{}
	doneClosed bool
}

// NewRound prepares a round in the Loading state and puts the view in its
// initial pose. It fails if the tuning is invalid.
func NewRound(opts RoundOptions) (*Round, error) {
	if opts.Clock == nil {
		opts.Clock = clock.System
	}
	if opts.View == nil {
		opts.View = nopView{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Tuning == (Tuning{}) {
		opts.Tuning = DefaultTuning()
	}
	if err := opts.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("new round: %w", err)
	}

	r := &Round{
		clock:      opts.Clock,
		tuning:     opts.Tuning,
		view:       opts.View,
		difficulty: opts.Difficulty,
		onOver:     opts.OnOver,
		status:     StatusLoading,
		done:       make(chan struct{}),
	}
	r.watcher = NewWatcher(opts.Clock, opts.Tuning, opts.Rand, opts.View.TurnFigure)
	r.player = NewPlayer(opts.Clock, opts.Tuning, r.watcher)

	r.view.MovePlayer(r.player.Position())
	r.view.SetProgress(1)
	r.view.ShowControls(ControlsInstructions)
	return r, nil
}

// Status returns the current round status.
func (r *Round) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Outcome returns the resolved outcome, OutcomeNone until Over.
func (r *Round) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result.Outcome
}

// Result returns the round summary and whether the round has resolved.
func (r *Round) Result() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.status == StatusOver
}

// Phase returns the figure's current phase.
func (r *Round) Phase() Phase {
	return r.watcher.Phase()
}

// Position returns the player's position.
func (r *Round) Position() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.player.Position()
}

// Done is closed when the round resolves or is closed.
func (r *Round) Done() <-chan struct{} {
	return r.done
}

// Remaining returns the time left on the round timer at now.
func (r *Round) Remaining(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remainingLocked(now)
}

func (r *Round) remainingLocked(now time.Time) time.Duration {
	switch r.status {
	case StatusLoading, StatusCountdown:
		return r.tuning.TimeLimit
	case StatusOver:
		return max(r.tuning.TimeLimit-r.result.Elapsed, 0)
	}
	return max(r.tuning.TimeLimit-now.Sub(r.startedAt), 0)
}

// Ready moves a loaded round into the countdown.
func (r *Round) Ready() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.status != StatusLoading {
		return
	}
	r.status = StatusCountdown
	r.countdownLocked(r.tuning.CountdownFrom)
}

// countdownLocked shows "Starting in n" for one step each. After the last
// step Running begins at once and "Go!!!" appears with it.
func (r *Round) countdownLocked(n int) {
	if n <= 0 {
		r.beginLocked()
		return
	}
	r.view.ShowText(fmt.Sprintf("Starting in %d", n))
	clock.Delay(r.clock, r.tuning.CountdownStep, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || r.status != StatusCountdown {
			return
		}
		r.countdownLocked(n - 1)
	})
}

func (r *Round) beginLocked() {
	r.status = StatusRunning
	r.startedAt = r.clock.Now()
	r.view.ShowText("Go!!!")
	r.view.SetProgress(1)
	r.watcher.Start()
	r.timer = r.clock.AfterFunc(r.tuning.TimeLimit, r.timeout)
}

// Frame runs one update. It returns false once the round is over or
// closed, telling the caller to stop driving updates.
func (r *Round) Frame(now time.Time) bool {
	r.mu.Lock()
	if r.closed || r.status == StatusOver {
		r.mu.Unlock()
		return false
	}
	if r.status != StatusRunning {
		r.mu.Unlock()
		return true
	}

	outcome := r.player.Update(now)
	r.view.MovePlayer(r.player.Position())
	r.view.SetProgress(float64(r.remainingLocked(now)) / float64(r.tuning.TimeLimit))
	if outcome == OutcomeNone {
		r.mu.Unlock()
		return true
	}
	res := r.resolveLocked(outcome, now)
	r.mu.Unlock()

	r.notify(res)
	return false
}

// KeyDown forwards a press of the advance key while running.
func (r *Round) KeyDown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.status != StatusRunning {
		return
	}
	r.player.Press()
}

// KeyUp forwards a release of the advance key while running.
func (r *Round) KeyUp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.status != StatusRunning {
		return
	}
	r.player.Release()
}

// timeout fires once when the time limit elapses. A round already
// resolved by the player is left alone.
func (r *Round) timeout() {
	r.mu.Lock()
	if r.closed || r.status != StatusRunning {
		r.mu.Unlock()
		return
	}
	res := r.resolveLocked(OutcomeTimeout, r.clock.Now())
	r.mu.Unlock()

	r.notify(res)
}

func (r *Round) resolveLocked(o Outcome, now time.Time) Result {
	r.status = StatusOver
	r.watcher.Stop()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.result = Result{
		Outcome:    o,
		Difficulty: r.difficulty,
		Elapsed:    min(now.Sub(r.startedAt), r.tuning.TimeLimit),
		Position:   r.player.Position(),
	}
	r.view.ShowText(o.Message())
	r.view.ShowControls(ControlsRestart)
	r.closeDoneLocked()
	return r.result
}

func (r *Round) notify(res Result) {
	if r.onOver != nil {
		r.onOver(res)
	}
}

// Close abandons the round. Background timers stop and later frames,
// countdown steps and key events are ignored. An unresolved round keeps
// OutcomeNone.
func (r *Round) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.watcher.Stop()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.closeDoneLocked()
}

func (r *Round) closeDoneLocked() {
	if !r.doneClosed {
		r.doneClosed = true
		close(r.done)
	}
}
