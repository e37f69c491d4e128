package log_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/internal/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", log.LevelTrace},
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, log.ParseLevel(tt.in))
		})
	}
}

func TestConsoleHandler_SplitsErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(log.NewConsoleHandler(&stdout, &stderr, log.LevelTrace))

	logger.Log(context.Background(), log.LevelTrace, "tracing")
	logger.Info("hello", "k", 1)
	logger.Error("boom")

	assert.Contains(t, stdout.String(), "level=TRACE msg=tracing")
	assert.Contains(t, stdout.String(), "msg=hello k=1")
	assert.NotContains(t, stdout.String(), "boom")
	assert.Contains(t, stderr.String(), "msg=boom")
	assert.NotContains(t, stderr.String(), "hello")
}

func TestConsoleHandler_Level(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(log.NewConsoleHandler(&stdout, &stderr, slog.LevelWarn)).With("component", "engine")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "msg=shown component=engine")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flightstick.log")
	logger, closers, err := log.SetupLogger("debug", path)
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Debug("to file")
	for _, c := range closers {
		require.NoError(t, c.Close())
	}

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "msg=\"to file\"")
}

func TestSetupLogger_BadFile(t *testing.T) {
	_, _, err := log.SetupLogger("info", filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}

func frame(x float64, trigger bool) device.Frame {
	var f device.Frame
	f.Axes[device.AxisX] = x
	f.Buttons[device.ButtonTrigger] = trigger
	return f
}

func TestFrameLogger(t *testing.T) {
	var buf bytes.Buffer
	fl := log.NewFrameLogger(&buf)

	fl.LogFrame(frame(0.5, false))
	fl.LogFrame(frame(0.5, false))
	fl.LogFrame(frame(0.5, true))
	fl.LogFrame(frame(-1, true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "x=16384 y=0 throttle=0 rudder=0 head=0,0 buttons=0x00")
	assert.Contains(t, lines[1], "buttons=0x01")
	assert.Contains(t, lines[2], "x=-32767")
}

func TestFrameLogger_NilWriter(t *testing.T) {
	assert.NotPanics(t, func() { log.NewFrameLogger(nil).LogFrame(frame(1, true)) })
}

func TestSlogFrames(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Nil(t, log.NewSlogFrames(slog.New(log.NewConsoleHandler(&stdout, &stderr, slog.LevelDebug))))

	sf := log.NewSlogFrames(slog.New(log.NewConsoleHandler(&stdout, &stderr, log.LevelTrace)))
	require.NotNil(t, sf)

	var buf bytes.Buffer
	sinks := log.MultiFrames{sf, log.NewFrameLogger(&buf)}
	sinks.LogFrame(frame(0.25, false))
	sinks.LogFrame(frame(0.25, false))

	assert.Equal(t, 1, strings.Count(stdout.String(), "msg=Frame"))
	assert.Contains(t, stdout.String(), "x=8192")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
