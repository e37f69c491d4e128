package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/flightstick/device"
)

// FrameLogger dumps output frames, one line per frame whose raw values
// differ from the previous one. A nil writer discards everything.
type FrameLogger struct {
	w  io.Writer
	mu sync.Mutex

	seen bool
	last [device.NumAxes]int32
	bits uint8
}

// NewFrameLogger creates a FrameLogger writing to w.
func NewFrameLogger(w io.Writer) *FrameLogger {
	return &FrameLogger{w: w}
}

// LogFrame records f if it changed.
func (l *FrameLogger) LogFrame(f device.Frame) {
	if l.w == nil {
		return
	}
	raw, bits := f.Raw(), f.ButtonBits()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen && raw == l.last && bits == l.bits {
		return
	}
	l.last, l.bits, l.seen = raw, bits, true

	line := fmt.Sprintf("%s x=%d y=%d throttle=%d rudder=%d head=%d,%d buttons=0x%02x\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		raw[device.AxisX], raw[device.AxisY],
		raw[device.AxisThrottle], raw[device.AxisRudder],
		raw[device.AxisHeadYaw], raw[device.AxisHeadPitch],
		bits)
	_, _ = l.w.Write([]byte(line))
}

// SlogFrames logs changed frames at LevelTrace on logger.
type SlogFrames struct {
	logger *slog.Logger
	mu     sync.Mutex
	last   [device.NumAxes]int32
	bits   uint8
	seen   bool
}

// NewSlogFrames returns nil when logger has trace disabled, so callers can
// skip frame logging entirely.
func NewSlogFrames(logger *slog.Logger) *SlogFrames {
	if !logger.Enabled(context.Background(), LevelTrace) {
		return nil
	}
	return &SlogFrames{logger: logger}
}

func (s *SlogFrames) LogFrame(f device.Frame) {
	raw, bits := f.Raw(), f.ButtonBits()
	s.mu.Lock()
	changed := !s.seen || raw != s.last || bits != s.bits
	s.last, s.bits, s.seen = raw, bits, true
	s.mu.Unlock()
	if !changed {
		return
	}
	s.logger.Log(context.Background(), LevelTrace, "Frame",
		"x", raw[device.AxisX], "y", raw[device.AxisY],
		"throttle", raw[device.AxisThrottle], "rudder", raw[device.AxisRudder],
		"headYaw", raw[device.AxisHeadYaw], "headPitch", raw[device.AxisHeadPitch],
		"buttons", bits)
}

// MultiFrames fans a frame out to several sinks.
type MultiFrames []interface{ LogFrame(device.Frame) }

func (m MultiFrames) LogFrame(f device.Frame) {
	for _, s := range m {
		s.LogFrame(f)
	}
}
