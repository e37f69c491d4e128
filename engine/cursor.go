package engine

import (
	"math"

	"github.com/Alia5/flightstick/device"
)

// cursor is the worker-owned virtual pointer and accumulator state. It is
// recreated on every start.
type cursor struct {
	x, y          float64
	width, height float64

	throttle float64
	rudder   float64
	buttons  [device.NumButtons]bool

	throttleStep float64
	rudderStep   float64
}

func newCursor(width, height, throttleStep, rudderStep float64) *cursor {
	return &cursor{
		x:            width / 2,
		y:            height / 2,
		width:        width,
		height:       height,
		throttleStep: throttleStep,
		rudderStep:   rudderStep,
	}
}

// recenter moves the cursor to the screen center and zeroes the rudder.
// Throttle is kept.
func (c *cursor) recenter() {
	c.x = c.width / 2
	c.y = c.height / 2
	c.rudder = 0
}

// offset is the cursor position relative to the screen center.
func (c *cursor) offset() (dx, dy float64) {
	return c.x - c.width/2, c.y - c.height/2
}

func (c *cursor) apply(ev device.Event) {
	switch ev.Type {
	case device.EvRel:
		v := float64(ev.Value)
		switch ev.Code {
		case device.RelX:
			c.x = clamp(c.x+v, 0, c.width)
		case device.RelY:
			c.y = clamp(c.y+v, 0, c.height)
		case device.RelWheel:
			c.throttle = clamp(c.throttle+v*c.throttleStep, -1, 1)
		case device.RelHWheel:
			c.rudder = clamp(c.rudder+v*c.rudderStep, -1, 1)
		}
	case device.EvKey:
		if b, ok := device.ButtonForKey(ev.Code); ok {
			c.buttons[b] = ev.Value > 0
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
