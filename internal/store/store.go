// Package store persists finished rounds and answers leaderboard queries.
package store

import (
	"context"
	"time"

	"github.com/tomz197/redlight/internal/game"
)

// Result is one finished round as recorded.
type Result struct {
	Username    string
	Fingerprint string // Public key fingerprint, empty for anonymous players
	Difficulty  string
	Outcome     game.Outcome
	Elapsed     time.Duration
	FinishedAt  time.Time
}

// Entry is one leaderboard line: a player's best winning time.
type Entry struct {
	Player     string // PlayerKey of the entry's owner
	Username   string
	Elapsed    time.Duration
	FinishedAt time.Time
}

// Store records results. Only wins reach the leaderboard.
type Store interface {
	Record(ctx context.Context, r Result) error
	// Top returns up to n entries for difficulty, fastest first. Each
	// player appears at most once.
	Top(ctx context.Context, difficulty string, n int) ([]Entry, error)
	Close()
}

// PlayerKey identifies a player on the leaderboard: by key fingerprint
// when there is one, else by username.
func PlayerKey(username, fingerprint string) string {
	if fingerprint != "" {
		return "key:" + fingerprint
	}
	return "name:" + username
}

func playerKey(r Result) string {
	return PlayerKey(r.Username, r.Fingerprint)
}
