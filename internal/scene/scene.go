// Package scene is the terminal rendition of a round: the track, the
// runner, the watching figure and the status overlay.
package scene

import (
	"sync"
	"time"

	"github.com/tomz197/redlight/internal/game"
)

// Logical resolution the scene is drawn in. The canvas scales it to the
// terminal.
const (
	Width  = 120
	Height = 80 // Sub-pixels, so 40 terminal rows
)

// TurnDuration is how long the figure shows its turning pose.
const TurnDuration = 450 * time.Millisecond

const (
	trackLeft   = 10.0
	trackRight  = Width - 10.0
	trackTop    = 56.0
	trackBottom = 60.0
	runnerY     = 51.0
	runnerR     = 3.5
	figureX     = Width / 2
	headY       = 16.0
	headR       = 6.0
)

// Scene implements game.View. All methods are safe for concurrent use.
type Scene struct {
	extent float64 // Half-length of the track in world units
	now    func() time.Time

	mu       sync.Mutex
	phase    game.Phase
	turnedAt time.Time
	x        float64
	progress float64
	text     string
	controls game.Controls
}

// Compile-time check that Scene implements game.View.
var _ game.View = (*Scene)(nil)

// New creates a scene for a track from startPosition to -startPosition.
// now timestamps figure turns; nil uses time.Now.
func New(startPosition float64, now func() time.Time) *Scene {
	if now == nil {
		now = time.Now
	}
	return &Scene{
		extent:   startPosition,
		now:      now,
		phase:    game.FacingToward,
		x:        startPosition,
		progress: 1,
	}
}

// TurnFigure records the figure's new facing and starts the turn pose.
func (s *Scene) TurnFigure(p game.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
	s.turnedAt = s.now()
}

// MovePlayer moves the runner to world position x.
func (s *Scene) MovePlayer(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x = x
}

// SetProgress sets the remaining-time bar.
func (s *Scene) SetProgress(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = fraction
}

// ShowText sets the status line.
func (s *Scene) ShowText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

// ShowControls selects the hint line.
func (s *Scene) ShowControls(c game.Controls) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls = c
}

// Snapshot is the scene state captured for one frame.
type Snapshot struct {
	Phase    game.Phase
	Turning  bool
	X        float64
	Progress float64
	Text     string
	Controls game.Controls
}

// Snapshot captures the current state at now.
func (s *Scene) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Phase:    s.phase,
		Turning:  !s.turnedAt.IsZero() && now.Sub(s.turnedAt) < TurnDuration,
		X:        s.x,
		Progress: s.progress,
		Text:     s.text,
		Controls: s.controls,
	}
}

// ScreenX maps a world position onto the logical track.
func (s *Scene) ScreenX(x float64) float64 {
	span := 2*s.extent + 1
	return trackLeft + (x+s.extent+0.5)/span*(trackRight-trackLeft)
}
