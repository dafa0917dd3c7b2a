// Package input turns raw terminal bytes into per-frame key state.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a non-advance key counts as pressed after
// its last byte.
const keyHoldDuration = 30 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	Quit    bool
	Advance bool // A byte of the advance key arrived this frame
	Restart bool
	Confirm bool // Space or Enter
	Number  int  // Digit pressed recently, -1 if none
	Pressed []byte
}

// Any reports whether any byte arrived this frame.
func (i Input) Any() bool {
	return len(i.Pressed) > 0
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	quit      time.Time
	restart   time.Time
	confirm   time.Time
	number    time.Time
	numberVal int
}

// Stream delivers input bytes via a channel and tracks key state.
type Stream struct {
	ch    chan byte
	state keyState
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch:    make(chan byte, 128),
		state: keyState{numberVal: -1},
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking).
// A closed stream reads as Quit.
func ReadInput(s *Stream, now time.Time) Input {
	var buf []byte
	closed := false

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	advance := false
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if buf[i+2] == 'A' { // Up arrow
				advance = true
			}
			i += 2
			continue
		}

		if isAdvanceKey(b) {
			advance = true
		}
		applyByteToState(&s.state, b, now)
	}

	input := Input{
		Quit:    closed || now.Sub(s.state.quit) < keyHoldDuration,
		Advance: advance,
		Restart: now.Sub(s.state.restart) < keyHoldDuration,
		Confirm: now.Sub(s.state.confirm) < keyHoldDuration,
		Number:  -1,
		Pressed: buf,
	}
	if now.Sub(s.state.number) < keyHoldDuration {
		input.Number = s.state.numberVal
	}
	return input
}

// ResetKeyInput forgets recently pressed keys so a key that started a
// screen transition does not also act on the next screen.
func ResetKeyInput(s *Stream) {
	s.state = keyState{numberVal: -1}
}

func isAdvanceKey(b byte) bool {
	switch b {
	case ' ', 'w', 'W', 'k', 'K':
		return true
	}
	return false
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x03': // Ctrl+C arrives as a byte in raw mode
		state.quit = now
	case 'r', 'R':
		state.restart = now
	case ' ', '\n', '\r':
		state.confirm = now
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		state.number = now
		state.numberVal = int(b - '0')
	}
}
