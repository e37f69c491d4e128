package flightstick

import (
	"io"

	"github.com/Alia5/flightstick/device"
)

// ReportSize is the length of an input report in bytes.
const ReportSize = 13

// InputState represents the joystick state used to build a report.
type InputState struct {
	// Button bitfield: bit 0=Trigger, 1=Thumb, 2=Top, 3=Top2, 4=Pinkie
	Buttons uint8
	// Stick axes
	X, Y int16
	// Throttle (Z) and rudder (Rz)
	Z, Rz int16
	// Head yaw (Rx) and pitch (Ry)
	Rx, Ry int16
}

var _ device.ReportBuilder = (*InputState)(nil)

// FromFrame converts an engine frame into an input state.
func FromFrame(f device.Frame) InputState {
	raw := f.Raw()
	return InputState{
		Buttons: f.ButtonBits(),
		X:       int16(raw[device.AxisX]),
		Y:       int16(raw[device.AxisY]),
		Z:       int16(raw[device.AxisThrottle]),
		Rz:      int16(raw[device.AxisRudder]),
		Rx:      int16(raw[device.AxisHeadYaw]),
		Ry:      int16(raw[device.AxisHeadPitch]),
	}
}

// BuildReport encodes an InputState into the 13-byte HID joystick report.
//
// Report layout (13 bytes):
//
//	Byte 0: Button bitfield (bit 0=Trigger .. bit 4=Pinkie, bits 5-7=padding)
//	Bytes 1-2: X (int16 little-endian, -32767 to +32767)
//	Bytes 3-4: Y
//	Bytes 5-6: Z (throttle)
//	Bytes 7-8: Rz (rudder)
//	Bytes 9-10: Rx (head yaw)
//	Bytes 11-12: Ry (head pitch)
func (s *InputState) BuildReport() []byte {
	b, _ := s.MarshalBinary()
	b[0] &= 0x1F
	return b
}

// MarshalBinary encodes InputState to 13 bytes.
func (s *InputState) MarshalBinary() ([]byte, error) {
	b := make([]byte, ReportSize)
	b[0] = s.Buttons
	putInt16(b[1:], s.X)
	putInt16(b[3:], s.Y)
	putInt16(b[5:], s.Z)
	putInt16(b[7:], s.Rz)
	putInt16(b[9:], s.Rx)
	putInt16(b[11:], s.Ry)
	return b, nil
}

// UnmarshalBinary decodes 13 bytes into InputState.
func (s *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < ReportSize {
		return io.ErrUnexpectedEOF
	}
	s.Buttons = data[0]
	s.X = getInt16(data[1:])
	s.Y = getInt16(data[3:])
	s.Z = getInt16(data[5:])
	s.Rz = getInt16(data[7:])
	s.Rx = getInt16(data[9:])
	s.Ry = getInt16(data[11:])
	return nil
}

func putInt16(b []byte, v int16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func getInt16(b []byte) int16 {
	return int16(b[0]) | int16(b[1])<<8
}
