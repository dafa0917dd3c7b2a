package store

import (
	"context"
	"slices"
	"sync"

	"github.com/tomz197/redlight/internal/game"
)

// Memory keeps results in process memory.
type Memory struct {
	mu      sync.Mutex
	results []Result
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func (m *Memory) Top(_ context.Context, difficulty string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	m.mu.Lock()
	best := make(map[string]Result)
	for _, r := range m.results {
		if r.Outcome != game.OutcomeWin || r.Difficulty != difficulty {
			continue
		}
		k := playerKey(r)
		if cur, ok := best[k]; !ok || faster(r, cur) {
			best[k] = r
		}
	}
	m.mu.Unlock()

	wins := make([]Result, 0, len(best))
	for _, r := range best {
		wins = append(wins, r)
	}
	slices.SortFunc(wins, func(a, b Result) int {
		switch {
		case faster(a, b):
			return -1
		case faster(b, a):
			return 1
		}
		return 0
	})

	entries := make([]Entry, 0, min(n, len(wins)))
	for _, r := range wins[:min(n, len(wins))] {
		entries = append(entries, Entry{Player: playerKey(r), Username: r.Username, Elapsed: r.Elapsed, FinishedAt: r.FinishedAt})
	}
	return entries, nil
}

// Count returns the number of recorded results.
func (m *Memory) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

func (m *Memory) Close() {}

// faster orders by elapsed time, then by who finished first.
func faster(a, b Result) bool {
	if a.Elapsed != b.Elapsed {
		return a.Elapsed < b.Elapsed
	}
	return a.FinishedAt.Before(b.FinishedAt)
}
