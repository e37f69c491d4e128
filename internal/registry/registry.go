// Package registry links every output backend into the binary.
package registry

import (
	_ "github.com/Alia5/flightstick/device/uhid"   // Register uhid output backend
	_ "github.com/Alia5/flightstick/device/uinput" // Register uinput output backend
)
