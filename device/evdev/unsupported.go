//go:build !linux

package evdev

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Alia5/flightstick/device"
)

// ErrUnsupported is returned on platforms without evdev.
var ErrUnsupported = errors.New("evdev is only available on linux")

// DefaultGlob matches the evdev nodes on linux.
const DefaultGlob = "/dev/input/event*"

// Capture is unavailable on this platform.
type Capture struct{}

func OpenCapture(path string, logger *slog.Logger) (*Capture, error) {
	return nil, ErrUnsupported
}

func (c *Capture) ReadEvents() ([]device.Event, error) { return nil, ErrUnsupported }
func (c *Capture) Name() string                          { return "" }
func (c *Capture) Close() error                          { return nil }

func Scan(logger *slog.Logger) ([]DeviceInfo, error) { return nil, ErrUnsupported }

func FindPointer(logger *slog.Logger) (Candidate, error) { return Candidate{}, ErrUnsupported }

func FindKeyboard(pointerPath string, logger *slog.Logger) string { return pointerPath }

func WatchHotkeys(ctx context.Context, path string, fn func(Action), logger *slog.Logger) error {
	return ErrUnsupported
}
