// Package flightstick describes the HID flight stick presented by the
// virtual output devices: its report descriptor, report layout and identity.
package flightstick

import "github.com/Alia5/flightstick/device"

// ReportDescriptor is the HID report descriptor for a 5-button joystick with
// six 16-bit absolute axes. Reports carry no report ID.
var ReportDescriptor = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop)
	0x09, 0x04, // Usage (Joystick)
	0xA1, 0x01, // Collection (Application)
	0x05, 0x09, //   Usage Page (Button)
	0x19, 0x01, //   Usage Minimum (Button 1)
	0x29, 0x05, //   Usage Maximum (Button 5)
	0x15, 0x00, //   Logical Minimum (0)
	0x25, 0x01, //   Logical Maximum (1)
	0x95, 0x05, //   Report Count (5)
	0x75, 0x01, //   Report Size (1)
	0x81, 0x02, //   Input (Data, Variable, Absolute)
	0x95, 0x01, //   Report Count (1)
	0x75, 0x03, //   Report Size (3)
	0x81, 0x01, //   Input - padding
	0x05, 0x01, //   Usage Page (Generic Desktop)
	0x09, 0x30, //   Usage (X)
	0x09, 0x31, //   Usage (Y)
	0x09, 0x32, //   Usage (Z)
	0x09, 0x35, //   Usage (Rz)
	0x09, 0x33, //   Usage (Rx)
	0x09, 0x34, //   Usage (Ry)
	0x16, 0x01, 0x80, // Logical Minimum (-32767)
	0x26, 0xFF, 0x7F, // Logical Maximum (32767)
	0x75, 0x10, //   Report Size (16)
	0x95, 0x06, //   Report Count (6)
	0x81, 0x02, //   Input (Data, Variable, Absolute)
	0xC0, // End Collection
}

// Identity returns the default identity with the overrides in o applied.
func Identity(o *device.CreateOptions) device.Identity {
	return o.Apply(device.DefaultIdentity())
}
