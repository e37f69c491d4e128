package engine

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/physics"
)

type queueCapture struct {
	events []device.Event
	err    error
}

func (c *queueCapture) ReadEvents() ([]device.Event, error) {
	evs := c.events
	c.events = nil
	return evs, c.err
}

func (c *queueCapture) Close() error { return nil }

type recordOutput struct {
	frames []device.Frame
	err    error
}

func (o *recordOutput) Emit(f device.Frame) error {
	o.frames = append(o.frames, f)
	return o.err
}

func (o *recordOutput) Close() error { return nil }

func (o *recordOutput) last() device.Frame {
	return o.frames[len(o.frames)-1]
}

func newTestWorker(width, height float64) (*worker, *queueCapture, *recordOutput) {
	c := &queueCapture{}
	o := &recordOutput{}
	w := &worker{
		state:   newSharedState(),
		capture: c,
		output:  o,
		cursor:  newCursor(width, height, DefaultThrottleStep, DefaultRudderStep),
		logger:  slog.Default(),
	}
	return w, c, o
}

func rel(code uint16, v int32) device.Event {
	return device.Event{Type: device.EvRel, Code: code, Value: v}
}

func key(code uint16, v int32) device.Event {
	return device.Event{Type: device.EvKey, Code: code, Value: v}
}

func TestCycle_Recenter(t *testing.T) {
	w, c, _ := newTestWorker(1000, 800)
	c.events = []device.Event{
		rel(device.RelX, 120),
		rel(device.RelY, -75),
		rel(device.RelWheel, 4),
		rel(device.RelHWheel, -2),
	}
	require.NoError(t, w.cycle())
	assert.Equal(t, 620.0, w.cursor.x)
	assert.Equal(t, 325.0, w.cursor.y)
	assert.InDelta(t, 0.2, w.cursor.throttle, 1e-12)
	assert.InDelta(t, -0.4, w.cursor.rudder, 1e-12)

	w.state.requestRecenter()
	require.NoError(t, w.cycle())
	assert.Equal(t, 500.0, w.cursor.x)
	assert.Equal(t, 400.0, w.cursor.y)
	assert.Equal(t, 0.0, w.cursor.rudder)
	assert.InDelta(t, 0.2, w.cursor.throttle, 1e-12)
}

func TestCycle_RecenterBeforeInput(t *testing.T) {
	w, c, _ := newTestWorker(1000, 800)
	w.cursor.x, w.cursor.y = 10, 10
	c.events = []device.Event{rel(device.RelX, 30)}
	w.state.requestRecenter()

	require.NoError(t, w.cycle())
	assert.Equal(t, 530.0, w.cursor.x, "events drained after recenter apply to the centered cursor")
}

func TestCycle_Clamping(t *testing.T) {
	w, c, _ := newTestWorker(1000, 800)
	c.events = []device.Event{
		rel(device.RelX, 5000),
		rel(device.RelY, -5000),
		rel(device.RelWheel, 100),
		rel(device.RelHWheel, -100),
	}
	require.NoError(t, w.cycle())
	assert.Equal(t, 1000.0, w.cursor.x)
	assert.Equal(t, 0.0, w.cursor.y)
	assert.Equal(t, 1.0, w.cursor.throttle)
	assert.Equal(t, -1.0, w.cursor.rudder)
}

func TestCycle_Buttons(t *testing.T) {
	w, c, o := newTestWorker(1000, 800)
	c.events = []device.Event{
		key(device.BtnLeft, 1),
		key(device.BtnMiddle, 1),
		key(device.BtnExtra, 2),
		key(0x1e, 1),
	}
	require.NoError(t, w.cycle())
	assert.Equal(t, [device.NumButtons]bool{true, false, true, false, true}, o.last().Buttons)

	c.events = []device.Event{key(device.BtnLeft, 0)}
	require.NoError(t, w.cycle())
	assert.Equal(t, [device.NumButtons]bool{false, false, true, false, true}, o.last().Buttons)
}

func TestCycle_MapsOffset(t *testing.T) {
	tests := []struct {
		name     string
		dx, dy   int32
		wantX    float64
		wantY    float64
		deadzone bool
	}{
		{name: "half deflection", dx: 150, wantX: 0.5},
		{name: "deadzone", dx: 10, dy: 10, deadzone: true},
		{name: "full down", dy: 400, wantY: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c, o := newTestWorker(1000, 800)
			w.state.setConfig(physics.Config{Radius: 300, Curve: 1, Deadzone: 0.05, SnapAxis: 0.1, SnapThreshold: 0.05})
			c.events = []device.Event{rel(device.RelX, tt.dx), rel(device.RelY, tt.dy)}
			require.NoError(t, w.cycle())

			f := o.last()
			assert.InDelta(t, tt.wantX, f.Axes[device.AxisX], 1e-12)
			assert.InDelta(t, tt.wantY, f.Axes[device.AxisY], 1e-12)

			tel, _, _ := w.state.read()
			assert.Equal(t, tt.deadzone, tel.InDeadzone)
			assert.InDelta(t, tt.wantX, tel.X, 1e-12)
		})
	}
}

func TestCycle_HeadAxesAndAccumulators(t *testing.T) {
	w, c, o := newTestWorker(1000, 800)
	w.state.setHead(0.25, -0.75)
	c.events = []device.Event{rel(device.RelWheel, 10), rel(device.RelHWheel, 1)}
	require.NoError(t, w.cycle())

	f := o.last()
	assert.InDelta(t, 0.5, f.Axes[device.AxisThrottle], 1e-12)
	assert.InDelta(t, 0.2, f.Axes[device.AxisRudder], 1e-12)
	assert.Equal(t, 0.25, f.Axes[device.AxisHeadYaw])
	assert.Equal(t, -0.75, f.Axes[device.AxisHeadPitch])

	tel, _, _ := w.state.read()
	assert.InDelta(t, 0.5, tel.Throttle, 1e-12)
	assert.InDelta(t, 0.2, tel.Rudder, 1e-12)
}

func TestCycle_ExitRequestConsumedOnce(t *testing.T) {
	w, _, o := newTestWorker(1000, 800)
	w.state.requestExit()
	assert.ErrorIs(t, w.cycle(), errExitRequested)
	assert.Empty(t, o.frames, "no frame is emitted on the exit cycle")

	require.NoError(t, w.cycle())
	assert.Len(t, o.frames, 1)
}

func TestCycle_EmitFailureIsTransient(t *testing.T) {
	w, _, o := newTestWorker(1000, 800)
	o.err = errors.New("device busy")
	for range 3 {
		require.NoError(t, w.cycle())
	}
	assert.Len(t, o.frames, 3)
}

func TestCycle_CaptureLost(t *testing.T) {
	w, c, o := newTestWorker(1000, 800)
	c.events = []device.Event{rel(device.RelX, 10)}
	c.err = device.ErrCaptureLost

	assert.ErrorIs(t, w.cycle(), device.ErrCaptureLost)
	assert.Equal(t, 510.0, w.cursor.x)
	assert.Empty(t, o.frames)
}

type countingSink struct{ n int }

func (s *countingSink) LogFrame(device.Frame) { s.n++ }

func TestCycle_FrameSink(t *testing.T) {
	w, _, _ := newTestWorker(1000, 800)
	sink := &countingSink{}
	w.frames = sink
	require.NoError(t, w.cycle())
	require.NoError(t, w.cycle())
	assert.Equal(t, 2, sink.n)
}

func TestTryPublishSkipsWhenContended(t *testing.T) {
	s := newSharedState()
	s.mu.RLock()
	ok := s.tryPublish(Telemetry{X: 1})
	s.mu.RUnlock()
	assert.False(t, ok)

	tel, _, _ := s.read()
	assert.Equal(t, 0.0, tel.X)

	assert.True(t, s.tryPublish(Telemetry{X: 1}))
	tel, _, _ = s.read()
	assert.Equal(t, 1.0, tel.X)
}

func TestConsumeRequests(t *testing.T) {
	s := newSharedState()
	r, e := s.consumeRequests()
	assert.False(t, r)
	assert.False(t, e)

	s.requestRecenter()
	s.requestRecenter()
	s.requestExit()
	r, e = s.consumeRequests()
	assert.True(t, r)
	assert.True(t, e)

	r, e = s.consumeRequests()
	assert.False(t, r)
	assert.False(t, e)
}
