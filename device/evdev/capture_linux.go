//go:build linux

package evdev

import (
	"errors"
	"fmt"
	"log/slog"
	"syscall"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/Alia5/flightstick/device"
)

// Capture is an exclusively grabbed pointer device.
type Capture struct {
	dev    *evdev.InputDevice
	pump   *pump
	logger *slog.Logger
}

// OpenCapture opens path and grabs it so its events reach no other consumer
// until Close.
func OpenCapture(path string, logger *slog.Logger) (*Capture, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := dev.Grab(); err != nil {
		_ = dev.File.Close()
		return nil, fmt.Errorf("grab %s: %w", path, err)
	}
	logger.Info("Captured pointer device", "path", path, "name", dev.Name)

	c := &Capture{dev: dev, logger: logger}
	c.pump = newPump(func() ([]device.Event, error) {
		return readEvents(dev, true)
	})
	return c, nil
}

// ReadEvents implements device.Capture.
func (c *Capture) ReadEvents() ([]device.Event, error) {
	return c.pump.drain()
}

// Name is the kernel name of the captured device.
func (c *Capture) Name() string {
	return c.dev.Name
}

// Close releases the grab and closes the node.
func (c *Capture) Close() error {
	c.pump.stop()
	if err := c.dev.Release(); err != nil {
		c.logger.Debug("release grab", "path", c.dev.Fn, "error", err)
	}
	return c.dev.File.Close()
}

// readEvents performs one blocking read. With pointerOnly set only relative
// motion and key events are returned.
func readEvents(dev *evdev.InputDevice, pointerOnly bool) ([]device.Event, error) {
	evs, err := dev.Read()
	if err != nil {
		if errors.Is(err, syscall.ENODEV) {
			return nil, fmt.Errorf("%w: %s", device.ErrCaptureLost, dev.Fn)
		}
		return nil, err
	}
	out := make([]device.Event, 0, len(evs))
	for _, ev := range evs {
		if pointerOnly && ev.Type != evdev.EV_REL && ev.Type != evdev.EV_KEY {
			continue
		}
		out = append(out, device.Event{Type: ev.Type, Code: ev.Code, Value: ev.Value})
	}
	return out, nil
}
