package server

import (
	"context"
	"testing"
	"time"

	"github.com/tomz197/redlight/internal/game"
	"github.com/tomz197/redlight/internal/store"
)

func startServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	s := NewServer(Options{Store: st, Difficulties: []string{"normal", "hard"}, LeaderboardSize: 3})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	s := startServer(t, store.NewMemory())

	a := s.RegisterClient("ann", "SHA256:a")
	b := s.RegisterClient("bob", "")
	if a.ID == b.ID {
		t.Fatal("client IDs collide")
	}
	eventually(t, "two players", func() bool { return s.Players() == 2 })

	s.UnregisterClient(a.ID)
	eventually(t, "one player", func() bool { return s.Players() == 1 })
	if _, ok := <-a.EventsCh; ok {
		t.Fatal("events channel still open after unregister")
	}
}

func TestSubmitResultUpdatesLeaderboard(t *testing.T) {
	st := store.NewMemory()
	s := startServer(t, st)
	h := s.RegisterClient("ann", "SHA256:a")

	s.SubmitResult(h.ID, game.Result{Outcome: game.OutcomeLoss, Difficulty: "normal", Elapsed: time.Second})
	s.SubmitResult(h.ID, game.Result{Outcome: game.OutcomeWin, Difficulty: "normal", Elapsed: 4 * time.Second})

	eventually(t, "leaderboard entry", func() bool { return len(s.Leaderboard("normal")) == 1 })
	board := s.Leaderboard("normal")
	if board[0].Username != "ann" || board[0].Elapsed != 4*time.Second {
		t.Fatalf("board = %+v", board)
	}
	if len(s.Leaderboard("hard")) != 0 {
		t.Fatal("hard board should be empty")
	}
	if st.Count() != 2 {
		t.Fatalf("store recorded %d results, want 2", st.Count())
	}

	select {
	case ev := <-h.EventsCh:
		if ev.Type != EventResultRecorded || ev.Rank != 1 {
			t.Fatalf("event = %+v, want rank 1", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result event")
	}
}

func TestLeaderboardLoadedAtStart(t *testing.T) {
	st := store.NewMemory()
	st.Record(context.Background(), store.Result{
		Username: "old", Difficulty: "hard", Outcome: game.OutcomeWin, Elapsed: 3 * time.Second,
	})
	s := startServer(t, st)
	eventually(t, "warm leaderboard", func() bool { return len(s.Leaderboard("hard")) == 1 })
}

func TestShutdownNotifiesClients(t *testing.T) {
	s := startServer(t, store.NewMemory())
	h := s.RegisterClient("ann", "")

	go func() {
		ev := <-h.EventsCh
		if ev.Type == EventServerShutdown {
			s.UnregisterClient(h.ID)
		}
	}()

	start := time.Now()
	s.Shutdown(5 * time.Second)
	if time.Since(start) >= 5*time.Second {
		t.Fatal("Shutdown waited for the full timeout")
	}
}

// msStore keeps elapsed times at millisecond precision, like Postgres.
type msStore struct {
	*store.Memory
}

func (m msStore) Record(ctx context.Context, r store.Result) error {
	r.Elapsed = r.Elapsed.Truncate(time.Millisecond)
	return m.Memory.Record(ctx, r)
}

func TestRankWithMillisecondStore(t *testing.T) {
	s := startServer(t, msStore{store.NewMemory()})
	h := s.RegisterClient("ann", "SHA256:a")

	s.SubmitResult(h.ID, game.Result{Outcome: game.OutcomeWin, Difficulty: "normal", Elapsed: 4123456789 * time.Nanosecond})

	select {
	case ev := <-h.EventsCh:
		if ev.Type != EventResultRecorded || ev.Rank != 1 {
			t.Fatalf("event = %+v, want rank 1", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result event")
	}
}

func TestRankOf(t *testing.T) {
	board := []store.Entry{
		{Player: "key:a", Username: "ann", Elapsed: 3 * time.Second},
		{Player: "key:b", Username: "ann", Elapsed: 4123 * time.Millisecond},
	}
	tests := []struct {
		name    string
		player  string
		elapsed time.Duration
		want    int
	}{
		{"same name, other key", "key:b", 4123456789 * time.Nanosecond, 2},
		{"first place", "key:a", 3 * time.Second, 1},
		{"slower than personal best", "key:a", 5 * time.Second, 0},
		{"not on board", "key:c", 3 * time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rankOf(board, tt.player, tt.elapsed); got != tt.want {
				t.Fatalf("rankOf = %d, want %d", got, tt.want)
			}
		})
	}
}
