package handler

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/device/evdev"
	"github.com/Alia5/flightstick/internal/server/api"
)

// ScanFunc enumerates input devices.
type ScanFunc func() ([]evdev.DeviceInfo, error)

// DevicesList returns a handler listing usable input devices, pointers
// ranked best first followed by keyboards.
func DevicesList(scan ScanFunc) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		devs, err := scan()
		if err != nil {
			return api.ErrInternal(fmt.Sprintf("scan input devices: %v", err))
		}
		return respond(res, ListInputDevices(devs))
	}
}

// ListInputDevices orders devs the way discovery sees them: pointers ranked
// best first, then keyboards that are not pointers.
func ListInputDevices(devs []evdev.DeviceInfo) apitypes.DevicesListResponse {
	out := apitypes.DevicesListResponse{Devices: []apitypes.InputDevice{}}
	for _, c := range evdev.RankPointers(devs) {
		out.Devices = append(out.Devices, inputDevice(c.DeviceInfo, c.Score))
	}
	for _, d := range devs {
		if d.IsKeyboard() && !d.IsPointer() && !d.Ignored() {
			out.Devices = append(out.Devices, inputDevice(d, 0))
		}
	}
	return out
}

func inputDevice(d evdev.DeviceInfo, score int) apitypes.InputDevice {
	return apitypes.InputDevice{
		Path:     d.Path,
		Name:     d.Name,
		Phys:     d.Phys,
		Vid:      fmt.Sprintf("0x%04x", d.Vendor),
		Pid:      fmt.Sprintf("0x%04x", d.Product),
		Pointer:  d.IsPointer(),
		Keyboard: d.IsKeyboard(),
		Score:    score,
	}
}
