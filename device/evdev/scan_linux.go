//go:build linux

package evdev

import (
	"fmt"
	"log/slog"
	"slices"

	evdev "github.com/gvalkov/golang-evdev"
)

// DefaultGlob matches the evdev nodes scanned by discovery.
const DefaultGlob = "/dev/input/event*"

// Scan lists the input nodes readable by this process.
func Scan(logger *slog.Logger) ([]DeviceInfo, error) {
	devs, err := evdev.ListInputDevices(DefaultGlob)
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	infos := make([]DeviceInfo, 0, len(devs))
	for _, d := range devs {
		infos = append(infos, info(d))
		if err := d.File.Close(); err != nil {
			logger.Debug("close input device", "path", d.Fn, "error", err)
		}
	}
	return infos, nil
}

func info(d *evdev.InputDevice) DeviceInfo {
	caps := d.CapabilitiesFlat
	return DeviceInfo{
		Path:       d.Fn,
		Name:       d.Name,
		Phys:       d.Phys,
		Vendor:     d.Vendor,
		Product:    d.Product,
		HasRelX:    slices.Contains(caps[evdev.EV_REL], evdev.REL_X),
		HasBtnLeft: slices.Contains(caps[evdev.EV_KEY], evdev.BTN_LEFT),
		HasKeyP:    slices.Contains(caps[evdev.EV_KEY], evdev.KEY_P),
	}
}

// FindPointer returns the best pointer candidate.
func FindPointer(logger *slog.Logger) (Candidate, error) {
	devs, err := Scan(logger)
	if err != nil {
		return Candidate{}, err
	}
	ranked := RankPointers(devs)
	if len(ranked) == 0 {
		return Candidate{}, ErrNoPointer
	}
	best := ranked[0]
	logger.Info("Selected pointer device", "path", best.Path, "name", best.Name, "score", best.Score)
	return best, nil
}

// FindKeyboard returns the hotkey source path, falling back to pointerPath.
func FindKeyboard(pointerPath string, logger *slog.Logger) string {
	devs, err := Scan(logger)
	if err != nil {
		logger.Warn("keyboard scan failed, using pointer for hotkeys", "error", err)
		return pointerPath
	}
	return SelectKeyboard(devs, pointerPath)
}
