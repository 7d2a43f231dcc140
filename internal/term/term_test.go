package term

import (
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestDrawHalfBlocks(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	defer s.Fini()
	s.SetSize(10, 5)

	palette := []color.RGBA{
		{A: 255},
		{R: 200, G: 10, B: 10, A: 255},
		{R: 10, G: 10, B: 200, A: 255},
	}
	v := NewView(3, 3, palette)
	cells := []uint8{
		1, 0, 0,
		2, 0, 0,
		0, 1, 0,
	}
	v.Draw(s, cells)

	red := tcell.NewRGBColor(200, 10, 10)
	blue := tcell.NewRGBColor(10, 10, 200)

	r, _, style, _ := s.GetContent(0, 0)
	if r != halfBlock {
		t.Fatalf("rune at (0,0) = %q", r)
	}
	if want := tcell.StyleDefault.Foreground(red).Background(blue); style != want {
		t.Fatalf("style at (0,0) = %v, want %v", style, want)
	}
	_, _, style, _ = s.GetContent(1, 1)
	if want := tcell.StyleDefault.Foreground(red).Background(tcell.ColorBlack); style != want {
		t.Fatal("odd last row should have a black lower half")
	}
	if v.Rows() != 2 {
		t.Fatalf("Rows() = %d", v.Rows())
	}
}

func TestCellMapping(t *testing.T) {
	v := NewView(4, 5, nil)
	if x, y, ok := v.Cell(3, 2); !ok || x != 3 || y != 4 {
		t.Fatalf("Cell(3,2) = %d,%d,%v", x, y, ok)
	}
	if _, _, ok := v.Cell(4, 0); ok {
		t.Fatal("column past the grid must be rejected")
	}
	if _, _, ok := v.Cell(0, 3); ok {
		t.Fatal("row past the grid must be rejected")
	}
}

func TestKeyAction(t *testing.T) {
	cases := []struct {
		key  tcell.Key
		r    rune
		act  Action
		slot int
	}{
		{tcell.KeyEscape, 0, ActionQuit, 0},
		{tcell.KeyRune, 'd', ActionDrain, 0},
		{tcell.KeyRune, '3', ActionMaterial, 2},
		{tcell.KeyRune, ']', ActionBrushUp, 0},
		{tcell.KeyRune, 'x', ActionNone, 0},
		{tcell.KeyTab, 0, ActionNone, 0},
	}
	for _, tc := range cases {
		act, slot := KeyAction(tc.key, tc.r)
		if act != tc.act || slot != tc.slot {
			t.Fatalf("KeyAction(%v, %q) = %v,%d want %v,%d", tc.key, tc.r, act, slot, tc.act, tc.slot)
		}
	}
}

func TestPumpStopsWhenReaderLeaves(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	defer s.Fini()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		Pump(s, events, done)
		close(finished)
	}()
	if err := s.PostEvent(tcell.NewEventInterrupt(nil)); err != nil {
		t.Fatalf("PostEvent() = %v", err)
	}
	close(done)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("pump still blocked on an unread event")
	}
}

func TestPumpClosesOnFini(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	events := make(chan tcell.Event, 1)
	go Pump(s, events, make(chan struct{}))
	s.Fini()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("no events were posted")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events not closed after Fini")
	}
}
