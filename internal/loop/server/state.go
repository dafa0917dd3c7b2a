package server

import (
	"context"
	"maps"

	"go.uber.org/zap"

	"github.com/tomz197/redlight/internal/store"
)

// Snapshot is an immutable view of the server state for rendering.
type Snapshot struct {
	Players int
	Boards  map[string][]store.Entry // Leaderboards by difficulty key
}

// refreshBoard reloads one leaderboard into the pending boards and
// returns it. Errors keep the previous board.
func (s *Server) refreshBoard(ctx context.Context, difficulty string) []store.Entry {
	board, err := s.store.Top(ctx, difficulty, s.boardSize)
	if err != nil {
		s.log.Error("load leaderboard", zap.Error(err), zap.String("difficulty", difficulty))
		return s.snapshot.Load().Boards[difficulty]
	}

	cur := s.snapshot.Load()
	boards := maps.Clone(cur.Boards)
	boards[difficulty] = board
	s.snapshot.Store(&Snapshot{Players: cur.Players, Boards: boards})
	return board
}

// publish stores a snapshot with the current player count.
func (s *Server) publish() {
	cur := s.snapshot.Load()
	s.snapshot.Store(&Snapshot{
		Players: s.connected(),
		Boards:  cur.Boards,
	})
}
