package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/flightstick/apitypes"
)

func TestPrintDevices(t *testing.T) {
	list := &apitypes.DevicesListResponse{Devices: []apitypes.InputDevice{
		{Path: "/dev/input/event7", Name: "Logitech G Pro", Vid: "0x046d", Pid: "0xc08b", Pointer: true, Score: 120},
		{Path: "/dev/input/event1", Name: "AT Translated Set 2 keyboard", Vid: "0x0001", Pid: "0x0001", Keyboard: true},
	}}

	tests := []struct {
		name  string
		list  *apitypes.DevicesListResponse
		lines []string
	}{
		{
			name: "table",
			list: list,
			lines: []string{
				"PATH               KIND      SCORE  VID:PID        NAME",
				"/dev/input/event7  pointer   120    0x046d:0xc08b  Logitech G Pro",
				"/dev/input/event1  keyboard  0      0x0001:0x0001  AT Translated Set 2 keyboard",
			},
		},
		{
			name:  "empty",
			list:  &apitypes.DevicesListResponse{},
			lines: []string{"no input devices found"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printDevices(&buf, tt.list, false))
			assert.Equal(t, tt.lines, strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"))
		})
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printDevices(&buf, list, true))
		var got apitypes.DevicesListResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, *list, got)
	})
}

func TestCtlConfigApply(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	base := apitypes.Config{Radius: 320, Curve: 2, Deadzone: 0.05, SnapAxis: 0.25, SnapThreshold: 0.08, Outer: 60}

	tests := []struct {
		name        string
		flags       CtlConfig
		want        apitypes.Config
		wantChanged bool
	}{
		{name: "nothing set", want: base},
		{
			name:        "partial",
			flags:       CtlConfig{Radius: f(400), Deadzone: f(0)},
			want:        apitypes.Config{Radius: 400, Curve: 2, Deadzone: 0, SnapAxis: 0.25, SnapThreshold: 0.08, Outer: 60},
			wantChanged: true,
		},
		{
			name:        "all",
			flags:       CtlConfig{Radius: f(1), Curve: f(1), Deadzone: f(0.1), SnapAxis: f(0), SnapThreshold: f(0), Outer: f(0)},
			want:        apitypes.Config{Radius: 1, Curve: 1, Deadzone: 0.1},
			wantChanged: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			assert.Equal(t, tt.wantChanged, tt.flags.apply(&cfg))
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, apitypes.Status{Running: true, Device: "/dev/input/event7", Output: "uinput"}))
	assert.Equal(t, "{\n  \"running\": true,\n  \"device\": \"/dev/input/event7\",\n  \"output\": \"uinput\"\n}\n", buf.String())
}
