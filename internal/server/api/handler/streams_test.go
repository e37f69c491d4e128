package handler_test

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/engine"
	"github.com/Alia5/flightstick/internal/server/api"
	"github.com/Alia5/flightstick/internal/server/api/handler"
	th "github.com/Alia5/flightstick/internal/testing"
	"github.com/Alia5/flightstick/tracker"
)

type staticHUD engine.HUD

func (s staticHUD) HUD() engine.HUD { return engine.HUD(s) }

type recordSink struct {
	mu      sync.Mutex
	updates [][2]float64
}

func (s *recordSink) UpdateTracker(yaw, pitch float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, [2]float64{yaw, pitch})
}

func (s *recordSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *recordSink) last() [2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates[len(s.updates)-1]
}

func dialStream(t *testing.T, addr, path string) net.Conn {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	_, err = fmt.Fprintf(c, "%s\x00", path)
	require.NoError(t, err)
	return c
}

func TestHUDStream(t *testing.T) {
	src := staticHUD{Telemetry: engine.Telemetry{X: 0.5, Throttle: -1, Snapped: true}, HeadYaw: 0.25, Running: true}
	addr := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.RegisterStream("engine/hud/stream", handler.HUDStream(src, 5*time.Millisecond))
	})

	c := dialStream(t, addr, "engine/hud/stream")
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	r := bufio.NewReader(c)
	for range 3 {
		line, err := r.ReadBytes('\n')
		require.NoError(t, err)
		var got apitypes.HUD
		require.NoError(t, json.Unmarshal(line, &got))
		assert.Equal(t, apitypes.HUD{X: 0.5, Throttle: -1, Snapped: true, HeadYaw: 0.25, Running: true}, got)
	}
}

func sample(x, y float64) []byte {
	b := make([]byte, apitypes.TrackerSampleSize)
	binary.LittleEndian.PutUint64(b[0:8], math.Float64bits(x))
	binary.LittleEndian.PutUint64(b[8:16], math.Float64bits(y))
	return b
}

func TestTrackerStream(t *testing.T) {
	cfg := tracker.DefaultConfig()
	cfg.Deadzone = 0
	cfg.SnapAxis = 0
	cfg.SnapOuter = 0
	cfg.CenterDrag = 0
	proc := tracker.NewProcessor(cfg)
	sink := &recordSink{}
	addr := th.StartAPIServer(t, api.ServerConfig{}, func(r *api.Router) {
		r.RegisterStream("tracker/stream", handler.TrackerStream(proc, sink))
	})

	c := dialStream(t, addr, "tracker/stream")

	// The first sample becomes the reference.
	_, err := c.Write(sample(0.2, 0.1))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return sink.len() == 1 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, [2]float64{0, 0}, sink.last())

	// Non-finite samples are dropped, the stream stays open.
	_, err = c.Write(sample(math.NaN(), 0))
	require.NoError(t, err)

	// Split writes still form one sample.
	s := sample(0.3, 0.1)
	_, err = c.Write(s[:5])
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = c.Write(s[5:])
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sink.len() == 2 }, 2*time.Second, time.Millisecond)
	yaw, pitch := sink.last()[0], sink.last()[1]
	assert.Greater(t, yaw, 0.0)
	assert.LessOrEqual(t, yaw, 1.0)
	assert.Zero(t, pitch)
}
