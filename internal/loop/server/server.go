package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/redlight/internal/game"
	"github.com/tomz197/redlight/internal/loop/config"
	"github.com/tomz197/redlight/internal/store"
)

// GameServer is the interface clients use to communicate with the game server.
// Decouples the Client from the concrete Server implementation, enabling
// testing.
type GameServer interface {
	RegisterClient(username, fingerprint string) *ClientHandle
	UnregisterClient(clientID int)
	SubmitResult(clientID int, res game.Result)
	Leaderboard(difficulty string) []store.Entry
	Players() int
}

// Server tracks connected players and owns the result store. Rounds run
// inside each client; the server only records what they report.
type Server struct {
	store        store.Store
	log          *zap.Logger
	difficulties []string
	boardSize    int
	now          func() time.Time

	snapshot     atomic.Pointer[Snapshot]
	clients      map[int]*ClientHandle
	nextClientID int
	resultCh     chan submittedResult
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID          int
	Username    string // Display name for this client
	Fingerprint string // Public key fingerprint, empty when unknown
	EventsCh    chan ClientEvent
	Rounds      int // Results submitted so far
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type ClientEventType
	Rank int // For result events, 1-based leaderboard rank or 0
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventResultRecorded ClientEventType = iota
	EventServerShutdown
)

type submittedResult struct {
	clientID int
	result   game.Result
}

// Options configures a Server.
type Options struct {
	Store           store.Store
	Logger          *zap.Logger
	Difficulties    []string // Leaderboards kept warm in the snapshot
	LeaderboardSize int
	Now             func() time.Time
}

// NewServer creates a new game server.
func NewServer(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.LeaderboardSize <= 0 {
		opts.LeaderboardSize = config.LeaderboardSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		store:        opts.Store,
		log:          opts.Logger,
		difficulties: opts.Difficulties,
		boardSize:    opts.LeaderboardSize,
		now:          opts.Now,
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		resultCh:     make(chan submittedResult, config.ResultQueueSize),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
	}
	s.snapshot.Store(&Snapshot{Boards: map[string][]store.Entry{}})
	return s
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	for _, d := range s.difficulties {
		s.refreshBoard(ctx, d)
	}
	s.publish()

	ticker := time.NewTicker(config.ServerTickTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.drainResults()
			return
		case sr := <-s.resultCh:
			s.recordResult(ctx, sr)
			s.publish()
		case <-ticker.C:
			if s.processRegistrations() {
				s.publish()
			}
		}
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	n := len(s.clients)
	s.mu.RUnlock()
	s.log.Info("shutdown broadcast", zap.Int("clients", n))

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			s.log.Warn("shutdown timeout reached", zap.Int("clients", s.connected()))
			return
		case <-ticker.C:
			if s.connected() == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client and returns its handle.
func (s *Server) RegisterClient(username, fingerprint string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	handle := &ClientHandle{
		ID:          id,
		Username:    username,
		Fingerprint: fingerprint,
		EventsCh:    make(chan ClientEvent, 16),
	}
	s.clients[id] = handle
	s.mu.Unlock()

	select {
	case s.registerCh <- handle:
	default:
	}
	return handle
}

// UnregisterClient removes a client from the server. When the loop is
// not draining (e.g. after it stopped) the client is removed directly.
func (s *Server) UnregisterClient(clientID int) {
	select {
	case s.unregisterCh <- clientID:
	default:
		s.removeClient(clientID)
	}
}

// SubmitResult queues a finished round for recording. A full queue drops
// the result.
func (s *Server) SubmitResult(clientID int, res game.Result) {
	select {
	case s.resultCh <- submittedResult{clientID: clientID, result: res}:
	default:
		s.log.Warn("result queue full, dropping result", zap.Int("client", clientID))
	}
}

// Leaderboard returns the cached leaderboard for difficulty.
func (s *Server) Leaderboard(difficulty string) []store.Entry {
	return s.snapshot.Load().Boards[difficulty]
}

// Players returns the number of connected players.
func (s *Server) Players() int {
	return s.snapshot.Load().Players
}

func (s *Server) connected() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// processRegistrations handles pending client registrations/unregistrations.
// It reports whether anything changed.
func (s *Server) processRegistrations() bool {
	changed := false
	for {
		select {
		case handle := <-s.registerCh:
			s.log.Info("player joined", zap.Int("client", handle.ID), zap.String("user", handle.Username))
			changed = true
		case clientID := <-s.unregisterCh:
			s.removeClient(clientID)
			changed = true
		default:
			return changed
		}
	}
}

func (s *Server) removeClient(clientID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handle, ok := s.clients[clientID]
	if !ok {
		return
	}
	close(handle.EventsCh)
	delete(s.clients, clientID)
	s.log.Info("player left",
		zap.Int("client", clientID),
		zap.String("user", handle.Username),
		zap.Int("rounds", handle.Rounds))
}

// recordResult writes one result to the store and refreshes its board.
func (s *Server) recordResult(ctx context.Context, sr submittedResult) {
	s.mu.Lock()
	handle, ok := s.clients[sr.clientID]
	if ok {
		handle.Rounds++
	}
	s.mu.Unlock()
	if !ok {
		s.log.Debug("result from unknown client", zap.Int("client", sr.clientID))
		return
	}

	rec := store.Result{
		Username:    handle.Username,
		Fingerprint: handle.Fingerprint,
		Difficulty:  sr.result.Difficulty,
		Outcome:     sr.result.Outcome,
		Elapsed:     sr.result.Elapsed,
		FinishedAt:  s.now(),
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.StoreWriteTimeout)
	defer cancel()
	if err := s.store.Record(writeCtx, rec); err != nil {
		s.log.Error("record result", zap.Error(err), zap.Int("client", sr.clientID))
		return
	}
	s.log.Info("round finished",
		zap.String("user", handle.Username),
		zap.String("difficulty", rec.Difficulty),
		zap.Stringer("outcome", rec.Outcome),
		zap.Duration("elapsed", rec.Elapsed))

	if rec.Outcome != game.OutcomeWin {
		return
	}
	board := s.refreshBoard(writeCtx, rec.Difficulty)
	rank := rankOf(board, store.PlayerKey(handle.Username, handle.Fingerprint), rec.Elapsed)

	s.mu.RLock()
	if _, still := s.clients[sr.clientID]; still {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventResultRecorded, Rank: rank}:
		default:
		}
	}
	s.mu.RUnlock()
}

// rankOf returns the 1-based position of player's entry on board when
// that entry is the run that took elapsed, else 0. Stores may keep less
// than nanosecond precision, so times within a millisecond match.
func rankOf(board []store.Entry, player string, elapsed time.Duration) int {
	for i, e := range board {
		if e.Player != player {
			continue
		}
		if d := e.Elapsed - elapsed; d > -time.Millisecond && d < time.Millisecond {
			return i + 1
		}
		return 0
	}
	return 0
}

// drainResults records results still queued when the server stops.
func (s *Server) drainResults() {
	ctx := context.Background()
	for {
		select {
		case sr := <-s.resultCh:
			s.recordResult(ctx, sr)
		default:
			return
		}
	}
}
