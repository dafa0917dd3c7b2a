package client

import (
	"bufio"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/redlight/internal/clock"
	"github.com/tomz197/redlight/internal/data"
	"github.com/tomz197/redlight/internal/draw"
	"github.com/tomz197/redlight/internal/game"
	"github.com/tomz197/redlight/internal/input"
	"github.com/tomz197/redlight/internal/loop/config"
	"github.com/tomz197/redlight/internal/loop/server"
	"github.com/tomz197/redlight/internal/scene"
)

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *ClientState
	difficulties *data.DifficultyTable
	clock        clock.Clock
	log          *zap.Logger
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	hold         input.Hold
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	frameTime    time.Duration

	round *game.Round
	scene *scene.Scene
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc      draw.TermSizeFunc
	Username          string
	Fingerprint       string
	Difficulties      *data.DifficultyTable
	DefaultDifficulty string
	Clock             clock.Clock // Drives rounds; nil uses the system clock
	Logger            *zap.Logger
	FrameRate         int
}

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	if opts.Clock == nil {
		opts.Clock = clock.System
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	frameTime := config.ClientTargetFrameTime
	if opts.FrameRate > 0 {
		frameTime = time.Second / time.Duration(opts.FrameRate)
	}

	handle := gs.RegisterClient(opts.Username, opts.Fingerprint)
	state := NewClientState(max(opts.Difficulties.Index(opts.DefaultDifficulty), 0))

	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, scene.Width, scene.Height)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	return &Client{
		server:       gs,
		handle:       handle,
		state:        state,
		difficulties: opts.Difficulties,
		clock:        opts.Clock,
		log:          opts.Logger.With(zap.Int("client", handle.ID), zap.String("user", opts.Username)),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    opts.Clock.Now(),
		username:     opts.Username,
		termSizeFunc: termSizeFunc,
		frameTime:    frameTime,
	}
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)
	defer c.server.UnregisterClient(c.handle.ID)
	defer c.endRound()

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart
		now := c.clock.Now()

		c.update(input.ReadInput(c.inputStream, frameStart), now)
		if !c.state.Running {
			break
		}
		c.updateScreen()
		if err := c.drawFrame(now); err != nil {
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < c.frameTime {
			time.Sleep(c.frameTime - elapsed)
		}
	}

	draw.ClearScreen(c.writer)
	c.log.Debug("client loop ended", zap.Int("rounds", c.state.Rounds))
	return nil
}

// update advances the client by one frame.
func (c *Client) update(in input.Input, now time.Time) {
	c.state.Input = in
	c.processActivity(now)
	if c.state.Input.Quit {
		c.state.Running = false
		return
	}
	c.processServerEvents()
	if !c.state.Running {
		return
	}

	switch c.state.GameState {
	case GameStateTitle:
		c.updateTitleState()
	case GameStatePlaying:
		c.updatePlayingState(now)
	case GameStateResult:
		c.updateResultState(now)
	case GameStateShutdown:
		c.updateShutdownState()
	}
}

// processActivity tracks inactivity. Any byte counts as activity.
func (c *Client) processActivity(now time.Time) {
	idle := now.Sub(c.lastInput).Seconds()
	switch {
	case c.state.Input.Any():
		c.lastInput = now
		c.state.isInactive = false
	case idle > config.InactivityDisconnectUser:
		c.log.Info("disconnecting inactive player")
		c.state.Running = false
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventResultRecorded:
				c.state.Rank = event.Rank
			case server.EventServerShutdown:
				c.endRound()
				c.state.GameState = GameStateShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(max(termWidth, 1), config.MaxTermWidth)
	renderHeight = min(max(termHeight, 1), config.MaxTermHeight)
	offsetCol = max((termWidth-renderWidth)/2, 0)
	offsetRow = max((termHeight-renderHeight)/2, 0)
	return
}

// updateTitleState handles difficulty selection and the start prompt.
func (c *Client) updateTitleState() {
	if n := c.state.Input.Number; n >= 1 && n <= c.difficulties.Count() {
		c.state.Difficulty = n - 1
	}
	if c.state.Input.Confirm {
		c.startRound()
	}
}

// updatePlayingState turns advance-key bytes into press and release edges
// and runs one round frame.
func (c *Client) updatePlayingState(now time.Time) {
	if c.hold.Observe(now, c.state.Input.Advance) == input.EdgeUp && c.state.advancing {
		c.round.KeyUp()
		c.state.advancing = false
	}
	// A key held through the countdown counts as pressed once running.
	if c.hold.Held() && !c.state.advancing && c.round.Status() == game.StatusRunning {
		c.round.KeyDown()
		c.state.advancing = true
	}

	if c.round.Frame(now) {
		return
	}
	if res, over := c.round.Result(); over {
		c.state.Result = res
		c.state.Rank = 0
		c.state.Rounds++
		c.state.resultAt = now
		c.state.GameState = GameStateResult
	}
}

// updateResultState waits for a restart while the final scene stays up.
// A number returns to the title with that difficulty selected.
func (c *Client) updateResultState(now time.Time) {
	c.hold.Observe(now, c.state.Input.Advance)
	settled := !c.hold.Held() && now.Sub(c.state.resultAt) >= config.ResultInputDelay
	if c.state.Input.Restart || (c.state.Input.Confirm && settled) {
		c.startRound()
		return
	}
	if n := c.state.Input.Number; n >= 1 && n <= c.difficulties.Count() {
		c.state.Difficulty = n - 1
		c.endRound()
		c.state.GameState = GameStateTitle
	}
}

// startRound starts a fresh round at the selected difficulty.
func (c *Client) startRound() {
	input.ResetKeyInput(c.inputStream)
	c.endRound()

	diff, _ := c.difficulties.At(c.state.Difficulty)
	view := scene.New(diff.Tuning.StartPosition, c.clock.Now)
	round, err := game.NewRound(game.RoundOptions{
		Tuning:     diff.Tuning,
		Clock:      c.clock,
		View:       view,
		Difficulty: diff.Key,
		OnOver: func(res game.Result) {
			c.server.SubmitResult(c.handle.ID, res)
		},
	})
	if err != nil {
		c.log.Error("start round", zap.Error(err), zap.String("difficulty", diff.Key))
		c.state.GameState = GameStateTitle
		return
	}
	c.scene = view
	c.round = round
	c.hold.Reset()
	c.state.advancing = false
	c.state.GameState = GameStatePlaying
	c.round.Ready()
	c.log.Debug("round started", zap.String("difficulty", diff.Key))
}

// endRound abandons the current round, if any.
func (c *Client) endRound() {
	if c.round != nil {
		c.round.Close()
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
