package input

import (
	"bufio"
	"io"
	"strings"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// readAll waits for the reader goroutine to deliver bytes, then reads.
func readAll(t *testing.T, s *Stream, now time.Time, want int) Input {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		if len(s.ch) >= want || time.Now().After(deadline) {
			return ReadInput(s, now)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestReadInputKeys(t *testing.T) {
	tests := []struct {
		name  string
		bytes string
		check func(Input) bool
	}{
		{"space advances and confirms", " ", func(in Input) bool { return in.Advance && in.Confirm }},
		{"w advances", "w", func(in Input) bool { return in.Advance && !in.Confirm }},
		{"up arrow advances", "\x1b[A", func(in Input) bool { return in.Advance }},
		{"left arrow is ignored", "\x1b[D", func(in Input) bool { return !in.Advance && !in.Quit }},
		{"enter confirms", "\r", func(in Input) bool { return in.Confirm && !in.Advance }},
		{"r restarts", "r", func(in Input) bool { return in.Restart }},
		{"digit selects", "2", func(in Input) bool { return in.Number == 2 }},
		{"q quits", "q", func(in Input) bool { return in.Quit }},
		{"ctrl+c quits", "\x03", func(in Input) bool { return in.Quit }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr, pw := io.Pipe()
			defer pw.Close()
			s := StartStream(bufio.NewReader(pr))
			go pw.Write([]byte(tt.bytes))
			in := readAll(t, s, epoch, len(tt.bytes))
			if !tt.check(in) {
				t.Fatalf("input %+v failed check", in)
			}
		})
	}
}

func TestReadInputClosedStreamQuits(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("")))
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if ReadInput(s, epoch).Quit {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("closed stream never reported quit")
}

func TestKeyStateExpires(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s := StartStream(bufio.NewReader(pr))
	go pw.Write([]byte("r"))
	if !readAll(t, s, epoch, 1).Restart {
		t.Fatal("restart not reported")
	}
	if ReadInput(s, epoch.Add(keyHoldDuration)).Restart {
		t.Fatal("restart still held after hold duration")
	}
}

func TestHoldEdges(t *testing.T) {
	var h Hold
	at := func(ms int) time.Time { return epoch.Add(time.Duration(ms) * time.Millisecond) }

	if e := h.Observe(at(0), true); e != EdgeDown {
		t.Fatalf("first press = %v, want down", e)
	}
	// Still inside the initial repeat delay.
	if e := h.Observe(at(200), false); e != EdgeNone || !h.Held() {
		t.Fatalf("quiet before repeat delay = %v held=%v", e, h.Held())
	}
	// Autorepeat starts.
	if e := h.Observe(at(240), true); e != EdgeNone {
		t.Fatalf("repeat = %v, want none", e)
	}
	if e := h.Observe(at(280), true); e != EdgeNone {
		t.Fatalf("repeat = %v, want none", e)
	}
	if e := h.Observe(at(330), false); e != EdgeNone {
		t.Fatalf("gap inside repeat window = %v, want none", e)
	}
	if e := h.Observe(at(350), false); e != EdgeUp {
		t.Fatalf("gap past repeat window = %v, want up", e)
	}
	if e := h.Observe(at(400), false); e != EdgeNone {
		t.Fatalf("after release = %v, want none", e)
	}
}

func TestHoldTapReleasesAfterInitialDelay(t *testing.T) {
	var h Hold
	h.Observe(epoch, true)
	if e := h.Observe(epoch.Add(InitialRepeatDelay), false); e != EdgeNone {
		t.Fatalf("at delay boundary = %v, want none", e)
	}
	if e := h.Observe(epoch.Add(InitialRepeatDelay+time.Millisecond), false); e != EdgeUp {
		t.Fatalf("past delay = %v, want up", e)
	}
	h.Observe(epoch.Add(time.Second), true)
	h.Reset()
	if h.Held() {
		t.Fatal("held after Reset")
	}
}
