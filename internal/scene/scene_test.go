package scene

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/redlight/internal/draw"
	"github.com/tomz197/redlight/internal/game"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScreenXMapsTrackEnds(t *testing.T) {
	s := New(4, nil)
	if got := s.ScreenX(-4.5); got != trackLeft {
		t.Fatalf("ScreenX(-4.5) = %v, want %v", got, trackLeft)
	}
	if got := s.ScreenX(4.5); got != trackRight {
		t.Fatalf("ScreenX(4.5) = %v, want %v", got, trackRight)
	}
	if s.ScreenX(4) <= s.ScreenX(-3.6) {
		t.Fatal("start is not right of the finish")
	}
}

func TestSnapshotTracksTurns(t *testing.T) {
	now := epoch
	s := New(4, func() time.Time { return now })

	snap := s.Snapshot(now)
	if snap.Phase != game.FacingToward || snap.Turning {
		t.Fatalf("initial snapshot = %+v", snap)
	}

	s.TurnFigure(game.FacingAway)
	if snap := s.Snapshot(now.Add(100 * time.Millisecond)); !snap.Turning || snap.Phase != game.FacingAway {
		t.Fatalf("snapshot during turn = %+v", snap)
	}
	if snap := s.Snapshot(now.Add(TurnDuration)); snap.Turning {
		t.Fatal("still turning after TurnDuration")
	}
}

func TestDrawShowsTextAndHint(t *testing.T) {
	s := New(4, func() time.Time { return epoch })
	s.ShowText("Go!!!")
	s.ShowControls(game.ControlsRestart)

	var out bytes.Buffer
	c := draw.NewScaledCanvas(120, 40, Width, Height)
	cw := draw.NewChunkWriter(&out, 0, 0)
	now := epoch.Add(time.Second)
	s.Draw(c, now)
	c.Render(cw)
	s.DrawOverlay(c, cw, now)
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Go!!!", "play again", "o o"} {
		if !strings.Contains(got, want) {
			t.Fatalf("frame missing %q", want)
		}
	}
}
