package game

import (
	"errors"
	"fmt"
	"time"
)

// Tuning holds every knob of a round. DefaultTuning is the normal game.
type Tuning struct {
	StartPosition float64 // Track runs from StartPosition to -StartPosition
	FinishMargin  float64 // Finish threshold is -StartPosition + FinishMargin
	RunSpeed      float64 // Units advanced per frame while the key is down
	ReleaseEase   time.Duration
	TimeLimit     time.Duration
	CountdownStep time.Duration
	CountdownFrom int

	// Watch phase holds, drawn uniformly from [Min, Max).
	UnsafeMin time.Duration
	UnsafeMax time.Duration
	SafeMin   time.Duration
	SafeMax   time.Duration
}

// DefaultTuning returns the standard round parameters.
func DefaultTuning() Tuning {
	return Tuning{
		StartPosition: 4,
		FinishMargin:  0.4,
		RunSpeed:      0.03,
		ReleaseEase:   100 * time.Millisecond,
		TimeLimit:     10 * time.Second,
		CountdownStep: time.Second,
		CountdownFrom: 3,
		UnsafeMin:     1000 * time.Millisecond,
		UnsafeMax:     2000 * time.Millisecond,
		SafeMin:       750 * time.Millisecond,
		SafeMax:       1500 * time.Millisecond,
	}
}

// EndPosition is the far end of the track.
func (t Tuning) EndPosition() float64 {
	return -t.StartPosition
}

// FinishThreshold is the position below which the player has finished.
func (t Tuning) FinishThreshold() float64 {
	return t.EndPosition() + t.FinishMargin
}

var errInvalidTuning = errors.New("invalid tuning")

// Validate reports the first impossible setting.
func (t Tuning) Validate() error {
	switch {
	case t.StartPosition <= 0:
		return fmt.Errorf("%w: start position %v must be positive", errInvalidTuning, t.StartPosition)
	case t.FinishMargin < 0 || t.FinishMargin >= 2*t.StartPosition:
		return fmt.Errorf("%w: finish margin %v outside track", errInvalidTuning, t.FinishMargin)
	case t.RunSpeed <= 0:
		return fmt.Errorf("%w: run speed %v must be positive", errInvalidTuning, t.RunSpeed)
	case t.ReleaseEase < 0:
		return fmt.Errorf("%w: release ease %v is negative", errInvalidTuning, t.ReleaseEase)
	case t.TimeLimit <= 0:
		return fmt.Errorf("%w: time limit %v must be positive", errInvalidTuning, t.TimeLimit)
	case t.CountdownFrom < 0 || t.CountdownStep < 0:
		return fmt.Errorf("%w: countdown %d x %v", errInvalidTuning, t.CountdownFrom, t.CountdownStep)
	case t.UnsafeMin <= 0 || t.UnsafeMax <= t.UnsafeMin:
		return fmt.Errorf("%w: unsafe hold range [%v, %v)", errInvalidTuning, t.UnsafeMin, t.UnsafeMax)
	case t.SafeMin <= 0 || t.SafeMax <= t.SafeMin:
		return fmt.Errorf("%w: safe hold range [%v, %v)", errInvalidTuning, t.SafeMin, t.SafeMax)
	}
	return nil
}

// IsInvalid reports whether err came from Validate.
func IsInvalid(err error) bool {
	return errors.Is(err, errInvalidTuning)
}
