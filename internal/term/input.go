package term

import "github.com/gdamore/tcell/v2"

// Action is a front-end command decoded from a key press.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionPause
	ActionStep
	ActionReset
	ActionReseed
	ActionDrain
	ActionBrushDown
	ActionBrushUp
	ActionMaterial
)

// KeyAction decodes a key press. For ActionMaterial, slot is the zero-based
// material index selected by the digit keys.
func KeyAction(key tcell.Key, r rune) (act Action, slot int) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit, 0
	case tcell.KeyRune:
	default:
		return ActionNone, 0
	}
	switch {
	case r == 'q' || r == 'Q':
		return ActionQuit, 0
	case r == ' ':
		return ActionPause, 0
	case r == 'n' || r == 'N':
		return ActionStep, 0
	case r == 'r' || r == 'R':
		return ActionReset, 0
	case r == 's' || r == 'S':
		return ActionReseed, 0
	case r == 'd' || r == 'D':
		return ActionDrain, 0
	case r == '[':
		return ActionBrushDown, 0
	case r == ']':
		return ActionBrushUp, 0
	case r >= '1' && r <= '9':
		return ActionMaterial, int(r - '1')
	}
	return ActionNone, 0
}

// Pump forwards screen events to events. It closes events once the screen is
// finalised, and returns early without closing it when done is closed.
func Pump(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}
