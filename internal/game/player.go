package game

import (
	"time"

	"github.com/tomz197/redlight/internal/clock"
)

// Player is the runner on the track. It moves toward the negative end while
// its velocity is positive. Not safe for concurrent use; the round
// serializes access.
type Player struct {
	clock    clock.Clock
	tuning   Tuning
	phases   PhaseSource
	position float64

	// velocity is the current speed, or the speed at release while easing out.
	velocity   float64
	releasing  bool
	releasedAt time.Time
}

// NewPlayer places a player at the start of the track.
func NewPlayer(c clock.Clock, t Tuning, phases PhaseSource) *Player {
	return &Player{
		clock:    c,
		tuning:   t,
		phases:   phases,
		position: t.StartPosition,
	}
}

// Position returns the player's position on the track axis.
func (p *Player) Position() float64 {
	return p.position
}

// Press starts running at full speed.
func (p *Player) Press() {
	p.velocity = p.tuning.RunSpeed
	p.releasing = false
}

// Release eases the velocity to zero over the tuning's ReleaseEase.
func (p *Player) Release() {
	now := p.clock.Now()
	v := p.Velocity(now)
	if v == 0 {
		p.velocity = 0
		p.releasing = false
		return
	}
	p.velocity = v
	p.releasing = true
	p.releasedAt = now
}

// Velocity returns the speed at now. While easing out it follows a
// power1-out curve: v0 * (1-x)^2.
func (p *Player) Velocity(now time.Time) float64 {
	if !p.releasing {
		return p.velocity
	}
	if p.tuning.ReleaseEase <= 0 {
		return 0
	}
	x := float64(now.Sub(p.releasedAt)) / float64(p.tuning.ReleaseEase)
	if x >= 1 {
		return 0
	}
	if x < 0 {
		x = 0
	}
	r := 1 - x
	return p.velocity * r * r
}

// Update runs one frame. Moving while watched is checked before the finish
// line, so a loss wins a tie. The position only advances when the frame
// resolves nothing.
func (p *Player) Update(now time.Time) Outcome {
	v := p.Velocity(now)
	if v > 0 && !p.phases.Phase().Safe() {
		return OutcomeLoss
	}
	if p.position < p.tuning.FinishThreshold() {
		return OutcomeWin
	}
	p.position -= v
	if p.releasing && v == 0 {
		p.velocity = 0
		p.releasing = false
	}
	return OutcomeNone
}
