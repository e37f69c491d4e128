package evdev

import "github.com/Alia5/flightstick/device"

// Keyboard codes used by the hotkeys.
const (
	keyBackslash uint16 = 43
	keyLeftAlt   uint16 = 56
	keyP         uint16 = 25
	key102nd     uint16 = 86
	keyRightAlt  uint16 = 100
	keyLeftMeta  uint16 = 125
	keyRightMeta uint16 = 126
)

// Action is what a hotkey asks for.
type Action int

const (
	ActionNone Action = iota
	// ActionExit is Alt+P.
	ActionExit
	// ActionRecenter is Alt or Meta with the '<' key or backslash.
	ActionRecenter
)

func (a Action) String() string {
	switch a {
	case ActionExit:
		return "exit"
	case ActionRecenter:
		return "recenter"
	}
	return "none"
}

// Hotkeys tracks modifier state across key events.
type Hotkeys struct {
	alt  int
	meta int
	held map[uint16]bool
}

// NewHotkeys returns a tracker with nothing held.
func NewHotkeys() *Hotkeys {
	return &Hotkeys{held: make(map[uint16]bool)}
}

// Feed updates the state with ev and returns the action triggered by it.
// Actions fire on key press, not on autorepeat.
func (h *Hotkeys) Feed(ev device.Event) Action {
	if ev.Type != device.EvKey {
		return ActionNone
	}
	pressed := ev.Value == 1
	released := ev.Value == 0
	if !pressed && !released {
		return ActionNone
	}
	if h.held[ev.Code] == pressed {
		return ActionNone
	}
	h.held[ev.Code] = pressed

	delta := 1
	if released {
		delta = -1
	}
	switch ev.Code {
	case keyLeftAlt, keyRightAlt:
		h.alt += delta
		return ActionNone
	case keyLeftMeta, keyRightMeta:
		h.meta += delta
		return ActionNone
	}
	if !pressed {
		return ActionNone
	}

	switch ev.Code {
	case keyP:
		if h.alt > 0 {
			return ActionExit
		}
	case key102nd, keyBackslash:
		if h.alt > 0 || h.meta > 0 {
			return ActionRecenter
		}
	}
	return ActionNone
}
