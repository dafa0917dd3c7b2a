package scene

import (
	"strings"
	"time"

	"github.com/tomz197/redlight/internal/draw"
	"github.com/tomz197/redlight/internal/game"
)

const hintWidth = 68

var controlHints = map[game.Controls]string{
	game.ControlsInstructions: "Hold SPACE / W / Up to run. Freeze when it looks at you. Q quits.",
	game.ControlsRestart:      "R or SPACE: play again    1-9: difficulty    Q: quit",
}

// Draw paints the track, runner and figure onto the canvas.
func (s *Scene) Draw(c *draw.Canvas, now time.Time) {
	snap := s.Snapshot(now)

	// Track and its end posts.
	c.FillRect(s.ScreenX(-s.extent)-1, trackTop, s.ScreenX(s.extent)+1, trackBottom, draw.InkDim)
	for _, x := range []float64{-s.extent, s.extent} {
		sx := s.ScreenX(x)
		c.DrawLine(draw.Point{X: sx, Y: trackTop - 12}, draw.Point{X: sx, Y: trackBottom}, draw.InkYellow)
	}

	// Runner.
	c.FillCircle(s.ScreenX(snap.X), runnerY, runnerR, draw.InkCyan)

	// Figure: body, then head. Facing away shows the back of the head.
	c.FillRect(figureX-7, headY+headR+1, figureX+7, headY+headR+18, draw.InkRed)
	headInk := draw.InkYellow
	switch {
	case snap.Turning:
		headInk = draw.InkWhite
	case snap.Phase.Safe():
		headInk = draw.InkDim
	}
	c.FillCircle(figureX, headY, headR, headInk)
}

// DrawOverlay queues the text layer on cw. Call it after the canvas has
// been rendered into cw so the text lands on top.
func (s *Scene) DrawOverlay(c *draw.Canvas, cw *draw.ChunkWriter, now time.Time) {
	snap := s.Snapshot(now)
	termWidth := c.TerminalWidth()
	termHeight := c.TerminalHeight()
	centerX := termWidth / 2

	// Eyes only show while the figure is watching.
	if !snap.Phase.Safe() && !snap.Turning {
		col, row := c.LogicalToTerminal(figureX, headY)
		cw.WriteColored(col-2, row, draw.ColorBold+draw.ColorRed, "o o")
		c.MarkTextDirty(col-2, row, 3)
	}

	barWidth := min(termWidth-10, 60)
	if barWidth > 0 {
		color := draw.ColorGreen
		if snap.Progress < 0.3 {
			color = draw.ColorRed
		}
		bar := draw.ProgressBar(barWidth, snap.Progress)
		col := centerX - barWidth/2
		cw.WriteColored(col, 2, color, bar)
		c.MarkTextDirty(col, 2, barWidth)
	}

	if snap.Text != "" {
		text := padCenter(snap.Text, 24)
		col := centerX - len(text)/2
		cw.WriteColored(col, 4, draw.ColorBold, text)
		c.MarkTextDirty(col, 4, len(text))
	}

	hint := padCenter(controlHints[snap.Controls], hintWidth)
	col := centerX - len(hint)/2
	cw.WriteAt(col, termHeight, hint)
	c.MarkTextDirty(col, termHeight, len(hint))
}

// padCenter pads s with spaces to width so shorter texts overwrite longer
// ones left on screen.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
