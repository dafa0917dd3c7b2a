// Package game implements the round logic: the watching figure, the
// runner and the controller that resolves each round exactly once.
package game

import "time"

// Status is the phase of a round. It only moves forward.
type Status int

const (
	StatusLoading   Status = iota // Scene not ready yet
	StatusCountdown               // "Starting in 3.." sequence
	StatusRunning                 // Player may move
	StatusOver                    // Terminal
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusCountdown:
		return "countdown"
	case StatusRunning:
		return "running"
	case StatusOver:
		return "over"
	default:
		return "unknown"
	}
}

// Phase is where the figure is looking.
type Phase int32

const (
	FacingToward Phase = iota // Watching the player, moving loses
	FacingAway                // Safe to move
)

func (p Phase) String() string {
	if p == FacingAway {
		return "away"
	}
	return "toward"
}

// Safe reports whether the player may move during p.
func (p Phase) Safe() bool {
	return p == FacingAway
}

// PhaseSource is read by the player on every frame.
type PhaseSource interface {
	Phase() Phase
}

// Outcome is how a round ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLoss
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Message is the text shown when a round ends with o.
func (o Outcome) Message() string {
	switch o {
	case OutcomeWin:
		return "You win!"
	case OutcomeLoss:
		return "You lose!"
	case OutcomeTimeout:
		return "You ran out of time!"
	default:
		return ""
	}
}

// Result summarizes a resolved round.
type Result struct {
	Outcome    Outcome
	Difficulty string
	Elapsed    time.Duration // From Running entry to resolution
	Position   float64
}
