package store

import (
	"context"
	"testing"
	"time"

	"github.com/tomz197/redlight/internal/game"
)

func TestMemoryTop(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	record := func(name, fp, diff string, o game.Outcome, elapsed time.Duration, at int) {
		t.Helper()
		err := m.Record(ctx, Result{
			Username:    name,
			Fingerprint: fp,
			Difficulty:  diff,
			Outcome:     o,
			Elapsed:     elapsed,
			FinishedAt:  base.Add(time.Duration(at) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	record("ann", "SHA256:a", "normal", game.OutcomeWin, 6*time.Second, 0)
	record("ann", "SHA256:a", "normal", game.OutcomeWin, 5*time.Second, 1) // Personal best
	record("bob", "SHA256:b", "normal", game.OutcomeWin, 5*time.Second, 2) // Ties ann, later
	record("cat", "", "normal", game.OutcomeWin, 7*time.Second, 3)
	record("dan", "", "normal", game.OutcomeLoss, 1*time.Second, 4)    // Losses never rank
	record("eve", "", "hard", game.OutcomeWin, 1*time.Second, 5)       // Other difficulty
	record("fay", "", "normal", game.OutcomeTimeout, 10*time.Second, 6) // Timeouts never rank

	if m.Count() != 7 {
		t.Fatalf("Count = %d, want 7", m.Count())
	}

	top, err := m.Top(ctx, "normal", 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		name    string
		elapsed time.Duration
	}{
		{"ann", 5 * time.Second},
		{"bob", 5 * time.Second},
		{"cat", 7 * time.Second},
	}
	if len(top) != len(want) {
		t.Fatalf("Top = %+v, want %d entries", top, len(want))
	}
	for i, w := range want {
		if top[i].Username != w.name || top[i].Elapsed != w.elapsed || top[i].Player == "" {
			t.Errorf("Top[%d] = %s %v, want %s %v", i, top[i].Username, top[i].Elapsed, w.name, w.elapsed)
		}
	}

	limited, _ := m.Top(ctx, "normal", 2)
	if len(limited) != 2 {
		t.Fatalf("Top(2) returned %d entries", len(limited))
	}
	if none, _ := m.Top(ctx, "easy", 5); len(none) != 0 {
		t.Fatalf("Top(easy) = %+v, want empty", none)
	}
}

func TestPlayerKeyPrefersFingerprint(t *testing.T) {
	a := playerKey(Result{Username: "ann", Fingerprint: "SHA256:x"})
	b := playerKey(Result{Username: "bob", Fingerprint: "SHA256:x"})
	if a != b {
		t.Fatal("same key, different names should collapse")
	}
	if playerKey(Result{Username: "ann"}) == playerKey(Result{Username: "bob"}) {
		t.Fatal("anonymous players collapsed")
	}
}
