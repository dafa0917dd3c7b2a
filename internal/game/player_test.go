package game

import (
	"math"
	"testing"
	"time"

	"github.com/tomz197/redlight/internal/clock"
)

type fixedPhase Phase

func (f *fixedPhase) Phase() Phase { return Phase(*f) }

func newTestPlayer(p Phase) (*Player, *clock.Manual, *fixedPhase) {
	c := clock.NewManual(epoch)
	phase := fixedPhase(p)
	return NewPlayer(c, DefaultTuning(), &phase), c, &phase
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFinishThreshold(t *testing.T) {
	tuning := DefaultTuning()
	if got := tuning.FinishThreshold(); !approx(got, -3.6) {
		t.Fatalf("finish threshold = %v, want -3.6", got)
	}
}

func TestPlayerStartsAtRest(t *testing.T) {
	p, c, _ := newTestPlayer(FacingToward)
	if p.Position() != 4 {
		t.Fatalf("position = %v, want 4", p.Position())
	}
	if p.Velocity(c.Now()) != 0 {
		t.Fatalf("velocity = %v, want 0", p.Velocity(c.Now()))
	}
	if got := p.Update(c.Now()); got != OutcomeNone {
		t.Fatalf("standing still while watched = %v, want none", got)
	}
}

func TestPlayerMovesWhileSafe(t *testing.T) {
	p, c, _ := newTestPlayer(FacingAway)
	p.Press()
	for i := 0; i < 10; i++ {
		if got := p.Update(c.Now()); got != OutcomeNone {
			t.Fatalf("frame %d outcome = %v, want none", i, got)
		}
	}
	if !approx(p.Position(), 4-10*0.03) {
		t.Fatalf("position = %v, want %v", p.Position(), 4-10*0.03)
	}
}

func TestPlayerLosesWhenMovingWhileWatched(t *testing.T) {
	p, c, _ := newTestPlayer(FacingToward)
	p.Press()
	if got := p.Update(c.Now()); got != OutcomeLoss {
		t.Fatalf("outcome = %v, want loss", got)
	}
	if p.Position() != 4 {
		t.Fatalf("position moved on a losing frame: %v", p.Position())
	}
}

func TestPlayerLossBeatsWin(t *testing.T) {
	p, c, _ := newTestPlayer(FacingToward)
	p.position = -3.9
	p.Press()
	if got := p.Update(c.Now()); got != OutcomeLoss {
		t.Fatalf("outcome past finish while moving and watched = %v, want loss", got)
	}
}

func TestPlayerWinsPastThreshold(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		phase    Phase
		pressed  bool
		want     Outcome
	}{
		{"standing past line while watched", -3.61, FacingToward, false, OutcomeWin},
		{"running past line while safe", -3.61, FacingAway, true, OutcomeWin},
		{"far past line", -10, FacingToward, false, OutcomeWin},
		{"before line", -3.5, FacingAway, true, OutcomeNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, c, _ := newTestPlayer(tt.phase)
			p.position = tt.position
			if tt.pressed {
				p.Press()
			}
			if got := p.Update(c.Now()); got != tt.want {
				t.Fatalf("outcome = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlayerReleaseEasesOut(t *testing.T) {
	p, c, _ := newTestPlayer(FacingAway)
	p.Press()
	p.Release()

	if v := p.Velocity(c.Now()); !approx(v, 0.03) {
		t.Fatalf("velocity at release = %v, want 0.03", v)
	}
	c.Advance(50 * time.Millisecond)
	if v := p.Velocity(c.Now()); !approx(v, 0.03*0.25) {
		t.Fatalf("velocity halfway = %v, want %v", v, 0.03*0.25)
	}
	c.Advance(50 * time.Millisecond)
	if v := p.Velocity(c.Now()); v != 0 {
		t.Fatalf("velocity after ease = %v, want 0", v)
	}

	before := p.Position()
	p.Update(c.Now())
	if p.Position() != before {
		t.Fatalf("moved after ease finished: %v -> %v", before, p.Position())
	}
}

func TestPlayerLosesWhileEasingOut(t *testing.T) {
	p, c, phase := newTestPlayer(FacingAway)
	p.Press()
	p.Release()
	c.Advance(60 * time.Millisecond)
	*phase = fixedPhase(FacingToward)

	if got := p.Update(c.Now()); got != OutcomeLoss {
		t.Fatalf("outcome while still sliding = %v, want loss", got)
	}
}

func TestPlayerPressCancelsEase(t *testing.T) {
	p, c, _ := newTestPlayer(FacingAway)
	p.Press()
	p.Release()
	c.Advance(80 * time.Millisecond)
	p.Press()
	c.Advance(200 * time.Millisecond)
	if v := p.Velocity(c.Now()); !approx(v, 0.03) {
		t.Fatalf("velocity after re-press = %v, want 0.03", v)
	}
}
