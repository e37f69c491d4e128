package evdev_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/device/evdev"
)

func key(code uint16, value int32) device.Event {
	return device.Event{Type: device.EvKey, Code: code, Value: value}
}

const (
	keyP         = 25
	keyLeftAlt   = 56
	keyRightAlt  = 100
	keyLeftMeta  = 125
	key102nd     = 86
	keyBackslash = 43
)

func TestHotkeys(t *testing.T) {
	tests := []struct {
		name   string
		events []device.Event
		want   []evdev.Action
	}{
		{
			name:   "alt+p exits",
			events: []device.Event{key(keyLeftAlt, 1), key(keyP, 1)},
			want:   []evdev.Action{evdev.ActionNone, evdev.ActionExit},
		},
		{
			name:   "p alone does nothing",
			events: []device.Event{key(keyP, 1), key(keyP, 0)},
			want:   []evdev.Action{evdev.ActionNone, evdev.ActionNone},
		},
		{
			name:   "right alt + less-than recenters",
			events: []device.Event{key(keyRightAlt, 1), key(key102nd, 1)},
			want:   []evdev.Action{evdev.ActionNone, evdev.ActionRecenter},
		},
		{
			name:   "meta + backslash recenters",
			events: []device.Event{key(keyLeftMeta, 1), key(keyBackslash, 1)},
			want:   []evdev.Action{evdev.ActionNone, evdev.ActionRecenter},
		},
		{
			name:   "meta + p does not exit",
			events: []device.Event{key(keyLeftMeta, 1), key(keyP, 1)},
			want:   []evdev.Action{evdev.ActionNone, evdev.ActionNone},
		},
		{
			name:   "released alt no longer counts",
			events: []device.Event{key(keyLeftAlt, 1), key(keyLeftAlt, 0), key(keyP, 1)},
			want:   []evdev.Action{evdev.ActionNone, evdev.ActionNone, evdev.ActionNone},
		},
		{
			name:   "autorepeat does not refire",
			events: []device.Event{key(keyLeftAlt, 1), key(key102nd, 1), key(key102nd, 2), key(key102nd, 2)},
			want:   []evdev.Action{evdev.ActionNone, evdev.ActionRecenter, evdev.ActionNone, evdev.ActionNone},
		},
		{
			name:   "both alts, one released",
			events: []device.Event{key(keyLeftAlt, 1), key(keyRightAlt, 1), key(keyLeftAlt, 0), key(keyP, 1)},
			want:   []evdev.Action{evdev.ActionNone, evdev.ActionNone, evdev.ActionNone, evdev.ActionExit},
		},
		{
			name:   "non key events ignored",
			events: []device.Event{key(keyLeftAlt, 1), {Type: device.EvRel, Code: device.RelX, Value: 25}},
			want:   []evdev.Action{evdev.ActionNone, evdev.ActionNone},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := evdev.NewHotkeys()
			got := make([]evdev.Action, 0, len(tt.events))
			for _, ev := range tt.events {
				got = append(got, h.Feed(ev))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "exit", evdev.ActionExit.String())
	assert.Equal(t, "recenter", evdev.ActionRecenter.String())
	assert.Equal(t, "none", evdev.ActionNone.String())
}
