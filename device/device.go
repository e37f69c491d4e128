// Package device defines the contracts between the engine and the host input
// subsystem: the input-capture side that yields pointer events and the
// output side that accepts joystick frames.
package device

import (
	"errors"
	"math"
)

// Event types and codes, numerically identical to the Linux input event
// codes so capture backends can pass them through unchanged.
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvRel uint16 = 0x02
	EvAbs uint16 = 0x03

	RelX      uint16 = 0x00
	RelY      uint16 = 0x01
	RelHWheel uint16 = 0x06
	RelWheel  uint16 = 0x08

	BtnLeft   uint16 = 0x110
	BtnRight  uint16 = 0x111
	BtnMiddle uint16 = 0x112
	BtnSide   uint16 = 0x113
	BtnExtra  uint16 = 0x114
)

// Event is a single relative-motion or key event from the capture device.
// Value is a signed delta for EvRel and a level (0 released, >0 pressed or
// repeating) for EvKey.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// ErrCaptureLost is returned by Capture.ReadEvents once the underlying device
// has gone away. It is not recoverable.
var ErrCaptureLost = errors.New("capture device lost")

// Capture is the input-capture collaborator.
type Capture interface {
	// ReadEvents returns every event queued since the last call without
	// blocking. An empty result means nothing is pending.
	ReadEvents() ([]Event, error)
	// Close releases the exclusive grab and the device handle.
	Close() error
}

// Output is the output-device collaborator.
type Output interface {
	// Emit writes one complete frame followed by a synchronization marker.
	Emit(f Frame) error
	// Close destroys the virtual device.
	Close() error
}

// Axis indexes the analog channels of a Frame.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisThrottle
	AxisRudder
	AxisHeadYaw
	AxisHeadPitch
	NumAxes
)

var axisNames = [NumAxes]string{"x", "y", "throttle", "rudder", "headYaw", "headPitch"}

func (a Axis) String() string {
	if a < 0 || a >= NumAxes {
		return "unknown"
	}
	return axisNames[a]
}

// Button indexes the binary channels of a Frame.
type Button int

const (
	ButtonTrigger Button = iota
	ButtonThumb
	ButtonTop
	ButtonTop2
	ButtonPinkie
	NumButtons
)

var buttonNames = [NumButtons]string{"trigger", "thumb", "top", "top2", "pinkie"}

func (b Button) String() string {
	if b < 0 || b >= NumButtons {
		return "unknown"
	}
	return buttonNames[b]
}

// ButtonForKey maps a pointer button code to its joystick button.
func ButtonForKey(code uint16) (Button, bool) {
	switch code {
	case BtnLeft:
		return ButtonTrigger, true
	case BtnRight:
		return ButtonThumb, true
	case BtnMiddle:
		return ButtonTop, true
	case BtnSide:
		return ButtonTop2, true
	case BtnExtra:
		return ButtonPinkie, true
	}
	return 0, false
}

// AxisMax is the largest raw analog value; the range is symmetric.
const AxisMax = 32767

// Frame is one output report: six normalized analog channels in [-1, 1] and
// five buttons.
type Frame struct {
	Axes    [NumAxes]float64
	Buttons [NumButtons]bool
}

// Raw converts every analog channel with ToRaw.
func (f Frame) Raw() [NumAxes]int32 {
	var raw [NumAxes]int32
	for i, v := range f.Axes {
		raw[i] = ToRaw(v)
	}
	return raw
}

// ButtonBits packs the buttons into a bitfield, ButtonTrigger in bit 0.
func (f Frame) ButtonBits() uint8 {
	var bits uint8
	for i, pressed := range f.Buttons {
		if pressed {
			bits |= 1 << i
		}
	}
	return bits
}

// ToRaw converts a normalized value to the raw analog range as
// round(v*32767). Values outside [-1, 1] are clamped; NaN maps to 0.
func ToRaw(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-1, math.Min(1, v))
	return int32(math.Round(v * AxisMax))
}
