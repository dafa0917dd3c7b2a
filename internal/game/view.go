package game

// Controls selects which hint the view shows under the track.
type Controls int

const (
	ControlsInstructions Controls = iota
	ControlsRestart
)

// View renders round state. Implementations must be safe for concurrent
// use and must never call back into the round.
type View interface {
	// TurnFigure cues the figure's turn animation. Fire-and-forget.
	TurnFigure(p Phase)
	MovePlayer(x float64)
	// SetProgress sets the remaining-time indicator, 1 full and 0 empty.
	SetProgress(fraction float64)
	ShowText(s string)
	ShowControls(c Controls)
}

type nopView struct{}

func (nopView) TurnFigure(Phase)      {}
func (nopView) MovePlayer(float64)    {}
func (nopView) SetProgress(float64)   {}
func (nopView) ShowText(string)       {}
func (nopView) ShowControls(Controls) {}
