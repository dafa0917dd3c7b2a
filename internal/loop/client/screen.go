package client

import (
	"fmt"
	"time"

	"github.com/tomz197/redlight/internal/draw"
	"github.com/tomz197/redlight/internal/game"
	"github.com/tomz197/redlight/internal/loop/config"
)

// panelWidth pads title and result lines so shorter text overwrites
// longer text from the previous frame.
const panelWidth = 44

// drawFrame draws the current frame.
func (c *Client) drawFrame(now time.Time) error {
	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()
	inRound := c.scene != nil &&
		(c.state.GameState == GameStatePlaying || c.state.GameState == GameStateResult)
	if inRound && !c.state.isInactive {
		c.scene.Draw(c.canvas, now)
	}

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)

	if inRound && !c.state.isInactive {
		c.scene.DrawOverlay(c.canvas, c.chunkWriter, now)
	}
	c.drawUI(now)

	return c.chunkWriter.Flush()
}

// drawUI draws the screen-specific text layer.
func (c *Client) drawUI(now time.Time) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY, now)
		return
	}

	switch c.state.GameState {
	case GameStateTitle:
		c.drawTitleScreen(centerX, centerY, now)
	case GameStatePlaying:
		c.drawPlayingHUD(termWidth, now)
	case GameStateResult:
		c.drawPlayingHUD(termWidth, now)
		c.drawResultPanel(centerX)
	}
}

// writePanelLine writes s centered and padded at row, marking the cells
// so the canvas repaints them later.
func (c *Client) writePanelLine(centerX, row int, color, s string) {
	line := fmt.Sprintf("%-*s", panelWidth, s)
	col := centerX - panelWidth/2
	if color == "" {
		c.chunkWriter.WriteAt(col, row, line)
	} else {
		c.chunkWriter.WriteColored(col, row, color, line)
	}
	c.canvas.MarkTextDirty(col, row, panelWidth)
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int, now time.Time) {
	cw := c.chunkWriter
	title := "INACTIVITY WARNING"
	cw.WriteCentered(centerX, centerY-2, title)

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %3d seconds.",
		int(config.InactivityDisconnectUser-now.Sub(c.lastInput).Seconds()),
	)
	cw.WriteCentered(centerX, centerY, msg)

	hint := "Press any key to continue"
	cw.WriteCentered(centerX, centerY+2, hint)
}

// drawTitleScreen draws the title, difficulty choice and leaderboard.
func (c *Client) drawTitleScreen(centerX, centerY int, now time.Time) {
	titleArt := []string{
		` ___ ___ ___    _    ___ ___ _  _ _____ `,
		`| _ \ __|   \  | |  |_ _/ __| || |_   _|`,
		`|   / _|| |) | | |__ | | (_ | __ | | |  `,
		`|_|_\___|___/  |____|___\___|_||_| |_|  `,
	}

	cw := c.chunkWriter
	titleWidth := len(titleArt[0])
	row := max(centerY-12, 1)
	for i, line := range titleArt {
		cw.WriteColored(centerX-titleWidth/2, row+i, draw.ColorBrightRed, line)
	}
	row += len(titleArt) + 1

	subtitle := "~ GREEN LIGHT: a reflex game over SSH ~"
	cw.WriteColored(centerX-len(subtitle)/2, row, draw.ColorGreen, subtitle)
	row += 2

	c.writePanelLine(centerX, row, draw.ColorBold, "Difficulty")
	row++
	selected := c.state.Difficulty
	for i, d := range c.difficulties.All() {
		marker := "  "
		color := ""
		if i == selected {
			marker = "> "
			color = draw.ColorYellow
		}
		line := fmt.Sprintf("%s%d  %-8s %4.0fs", marker, i+1, d.Name, d.Tuning.TimeLimit.Seconds())
		c.writePanelLine(centerX, row, color, line)
		row++
	}
	row++

	diff, _ := c.difficulties.At(selected)
	c.writePanelLine(centerX, row, draw.ColorBold, "Fastest runs: "+diff.Name)
	row++
	board := c.server.Leaderboard(diff.Key)
	for i := range config.LeaderboardSize {
		line := ""
		if i < len(board) {
			line = fmt.Sprintf("%2d. %-*s %6.2fs", i+1, config.MaxUsernameLength, truncate(board[i].Username), board[i].Elapsed.Seconds())
		} else if i == 0 {
			line = "    nobody has made it yet"
		}
		c.writePanelLine(centerX, row, "", line)
		row++
	}
	row++

	c.writePanelLine(centerX, row, draw.ColorDim, fmt.Sprintf("Players online: %d", c.server.Players()))
	row += 2

	prompt := ""
	if now.UnixMilli()/600%2 == 0 {
		prompt = ">>  Press SPACE to Start  <<"
	}
	c.writePanelLine(centerX, row, draw.ColorBold, centerIn(prompt))
	row++
	c.writePanelLine(centerX, row, draw.ColorDim, "1-9 picks difficulty, Q quits")
}

// drawPlayingHUD draws the difficulty and time left along the top row.
// Fields are fixed width so shrinking values leave no residue.
func (c *Client) drawPlayingHUD(termWidth int, now time.Time) {
	cw := c.chunkWriter
	diff, _ := c.difficulties.At(c.state.Difficulty)
	left := fmt.Sprintf("%-12s", diff.Name)
	cw.WriteAt(2, 1, left)
	c.canvas.MarkTextDirty(2, 1, len(left))

	right := fmt.Sprintf("Time: %5.1fs  Players: %-3d", c.round.Remaining(now).Seconds(), c.server.Players())
	col := termWidth - len(right)
	cw.WriteAt(col, 1, right)
	c.canvas.MarkTextDirty(col, 1, len(right))
}

// drawResultPanel summarizes the finished round under the status line.
func (c *Client) drawResultPanel(centerX int) {
	res := c.state.Result
	var line string
	switch res.Outcome {
	case game.OutcomeWin:
		line = fmt.Sprintf("Crossed the line in %.2fs", res.Elapsed.Seconds())
	case game.OutcomeLoss:
		line = fmt.Sprintf("Caught moving after %.2fs", res.Elapsed.Seconds())
	default:
		diff, _ := c.difficulties.At(c.state.Difficulty)
		t := diff.Tuning
		covered := (t.StartPosition - res.Position) / (t.StartPosition - t.FinishThreshold())
		line = fmt.Sprintf("Made it %.0f%% of the way", min(max(covered, 0), 1)*100)
	}
	c.writePanelLine(centerX, 6, "", centerIn(line))

	rank := ""
	if res.Outcome == game.OutcomeWin && c.state.Rank > 0 {
		rank = fmt.Sprintf("#%d on the leaderboard!", c.state.Rank)
	}
	c.writePanelLine(centerX, 7, draw.ColorYellow, centerIn(rank))
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	cw := c.chunkWriter
	title := "SERVER SHUTTING DOWN"
	cw.WriteCentered(centerX, centerY-3, title)

	msg1 := "The server is restarting for maintenance."
	cw.WriteCentered(centerX, centerY-1, msg1)

	msg2 := "Please reconnect in a moment."
	cw.WriteCentered(centerX, centerY, msg2)

	remaining := int(c.state.shutdownTimer) + 1
	countdown := fmt.Sprintf("Disconnecting in %2d seconds...", remaining)
	cw.WriteCentered(centerX, centerY+2, countdown)

	hint := "Press Q to disconnect now"
	cw.WriteCentered(centerX, centerY+4, hint)
}

// centerIn left-pads s so it sits centered in a panel line.
func centerIn(s string) string {
	if len(s) >= panelWidth {
		return s
	}
	return fmt.Sprintf("%*s", (panelWidth+len(s))/2, s)
}

func truncate(name string) string {
	r := []rune(name)
	if len(r) > config.MaxUsernameLength {
		return string(r[:config.MaxUsernameLength])
	}
	return name
}
