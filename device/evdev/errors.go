package evdev

import "errors"

// ErrNoPointer is returned when discovery finds no usable pointer device.
var ErrNoPointer = errors.New("no pointer device found")
