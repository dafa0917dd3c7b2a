// Package config centralizes the session loop's fixed parameters.
package config

import "time"

// Render area limits. Larger terminals get a centered, bordered area.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Player
const (
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// ResultInputDelay is how long the result screen ignores SPACE and Enter,
// so a key still held from the round does not skip it.
const ResultInputDelay = 500 * time.Millisecond

// Server
const (
	ServerTickTime    = 50 * time.Millisecond // Result and registration processing interval
	LeaderboardSize   = 10
	StoreWriteTimeout = 3 * time.Second
	ResultQueueSize   = 64
)
