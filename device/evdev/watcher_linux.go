//go:build linux

package evdev

import (
	"context"
	"fmt"
	"log/slog"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/Alia5/flightstick/device"
)

// WatchHotkeys reads path without grabbing it and calls fn for every hotkey
// action until ctx is done or the device goes away.
func WatchHotkeys(ctx context.Context, path string, fn func(Action), logger *slog.Logger) error {
	dev, err := evdev.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	logger.Info("Watching hotkeys", "path", path, "name", dev.Name)

	p := newPump(func() ([]device.Event, error) {
		return readEvents(dev, false)
	})
	go func() {
		<-ctx.Done()
		p.stop()
		_ = dev.File.Close()
	}()

	hk := NewHotkeys()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-p.events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return p.lostErr()
			}
			if a := hk.Feed(ev); a != ActionNone {
				logger.Debug("Hotkey", "action", a)
				fn(a)
			}
		}
	}
}
