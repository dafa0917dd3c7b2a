package input

import "time"

// Terminals only send bytes on press and autorepeat, never on release.
// Hold infers the release from the repeat stream going quiet.
const (
	InitialRepeatDelay = 250 * time.Millisecond // Before autorepeat kicks in
	RepeatWindow       = 60 * time.Millisecond  // Between autorepeat bytes
)

// Edge is a key transition reported by Hold.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeDown
	EdgeUp
)

// Hold tracks one key's held state.
type Hold struct {
	held      bool
	repeating bool
	last      time.Time
}

// Held reports whether the key is currently considered down.
func (h *Hold) Held() bool {
	return h.held
}

// Observe feeds one frame. seen reports whether the key's byte arrived
// this frame.
func (h *Hold) Observe(now time.Time, seen bool) Edge {
	if seen {
		if !h.held {
			h.held = true
			h.repeating = false
			h.last = now
			return EdgeDown
		}
		h.repeating = true
		h.last = now
		return EdgeNone
	}
	if !h.held {
		return EdgeNone
	}
	window := RepeatWindow
	if !h.repeating {
		window = InitialRepeatDelay
	}
	if now.Sub(h.last) > window {
		h.held = false
		h.repeating = false
		return EdgeUp
	}
	return EdgeNone
}

// Reset releases the key without reporting an edge.
func (h *Hold) Reset() {
	*h = Hold{}
}
