package uinput

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/flightstick/device"
)

func TestFrameEvents(t *testing.T) {
	var f device.Frame
	f.Axes = [device.NumAxes]float64{0.5, -1, 0.25, 0, 1, -0.5}
	f.Buttons[device.ButtonTrigger] = true
	f.Buttons[device.ButtonPinkie] = true

	evs := frameEvents(f)
	require.Len(t, evs, 12)

	want := []device.Event{
		{Type: device.EvAbs, Code: absX, Value: 16384},
		{Type: device.EvAbs, Code: absY, Value: -32767},
		{Type: device.EvAbs, Code: absZ, Value: 8192},
		{Type: device.EvAbs, Code: absRz, Value: 0},
		{Type: device.EvAbs, Code: absRx, Value: 32767},
		{Type: device.EvAbs, Code: absRy, Value: -16384},
		{Type: device.EvKey, Code: btnTrigger, Value: 1},
		{Type: device.EvKey, Code: btnThumb, Value: 0},
		{Type: device.EvKey, Code: btnTop, Value: 0},
		{Type: device.EvKey, Code: btnTop2, Value: 0},
		{Type: device.EvKey, Code: btnPinkie, Value: 1},
		{Type: device.EvSyn, Code: synReport, Value: 0},
	}
	assert.Equal(t, want, evs)
}

func TestFrameEventsStayInRange(t *testing.T) {
	var f device.Frame
	for i := range f.Axes {
		f.Axes[i] = 4
	}
	for _, ev := range frameEvents(f) {
		if ev.Type == device.EvAbs {
			assert.LessOrEqual(t, ev.Value, int32(device.AxisMax))
			assert.GreaterOrEqual(t, ev.Value, int32(-device.AxisMax))
		}
	}
}
