// Package uinput implements the output device as a Linux uinput joystick.
package uinput

import "github.com/Alia5/flightstick/device"

// Linux absolute axis and joystick button codes.
const (
	absX  uint16 = 0x00
	absY  uint16 = 0x01
	absZ  uint16 = 0x02
	absRx uint16 = 0x03
	absRy uint16 = 0x04
	absRz uint16 = 0x05

	btnTrigger uint16 = 0x120
	btnThumb   uint16 = 0x121
	btnTop     uint16 = 0x123
	btnTop2    uint16 = 0x124
	btnPinkie  uint16 = 0x125

	synReport uint16 = 0x00
)

// axisCodes maps frame axes to ABS codes.
var axisCodes = [device.NumAxes]uint16{
	device.AxisX:         absX,
	device.AxisY:         absY,
	device.AxisThrottle:  absZ,
	device.AxisRudder:    absRz,
	device.AxisHeadYaw:   absRx,
	device.AxisHeadPitch: absRy,
}

// buttonCodes maps frame buttons to key codes.
var buttonCodes = [device.NumButtons]uint16{
	device.ButtonTrigger: btnTrigger,
	device.ButtonThumb:   btnThumb,
	device.ButtonTop:     btnTop,
	device.ButtonTop2:    btnTop2,
	device.ButtonPinkie:  btnPinkie,
}

// frameEvents expands a frame into the events written for it: six ABS
// values, five key levels and a terminating SYN_REPORT.
func frameEvents(f device.Frame) []device.Event {
	evs := make([]device.Event, 0, int(device.NumAxes)+int(device.NumButtons)+1)
	raw := f.Raw()
	for i, v := range raw {
		evs = append(evs, device.Event{Type: device.EvAbs, Code: axisCodes[i], Value: v})
	}
	for i, pressed := range f.Buttons {
		var v int32
		if pressed {
			v = 1
		}
		evs = append(evs, device.Event{Type: device.EvKey, Code: buttonCodes[i], Value: v})
	}
	return append(evs, device.Event{Type: device.EvSyn, Code: synReport})
}
