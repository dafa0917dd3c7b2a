package client

import (
	"time"

	"github.com/tomz197/redlight/internal/game"
	"github.com/tomz197/redlight/internal/input"
)

// GameState represents the current screen for a client.
type GameState int

const (
	GameStateTitle    GameState = iota // Difficulty selection and leaderboard
	GameStatePlaying                   // Round in countdown or running
	GameStateResult                    // Round over, restart prompt
	GameStateShutdown                  // Server is shutting down
)

// ClientState holds per-player state. Each client has its own instance,
// managed by the Client.
type ClientState struct {
	Input         input.Input
	GameState     GameState
	prevGameState GameState
	Difficulty    int           // Index into the difficulty table
	Result        game.Result   // Last resolved round
	Rank          int           // Leaderboard rank of the last result, 0 if unranked
	Rounds        int           // Rounds finished this session
	Running       bool          // Client loop running
	resultAt      time.Time     // When the result screen appeared
	advancing     bool          // KeyDown forwarded to the round without a KeyUp yet
	delta         time.Duration // Frame delta time
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state
	wasInactive   bool
}

// NewClientState creates a new initialized client state.
func NewClientState(difficulty int) *ClientState {
	return &ClientState{
		GameState:     GameStateTitle,
		prevGameState: -1,
		Difficulty:    difficulty,
		Running:       true,
	}
}
