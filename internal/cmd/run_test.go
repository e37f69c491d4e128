package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/device/evdev"
	"github.com/Alia5/flightstick/engine"
	"github.com/Alia5/flightstick/internal/server/api"
	th "github.com/Alia5/flightstick/internal/testing"
	"github.com/Alia5/flightstick/physics"
	"github.com/Alia5/flightstick/tracker"
)

func testRun() *Run {
	return &Run{
		Output:       "fake",
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		Period:       200 * time.Microsecond,
		ThrottleStep: 0.05,
		RudderStep:   0.2,
		NoHotkeys:    true,
		Stick:        StickConfig{Radius: 320, Curve: 2, Deadzone: 0.05, SnapAxis: 0.25, SnapThreshold: 0.08, Outer: 60},
		Tracker:      TrackerConfig{DegreesPerUnit: 90, Config: tracker.DefaultConfig()},
	}
}

func fakeBackends(devs *th.Devices) *backends {
	return &backends{
		openCapture:  devs.OpenCapture,
		createOutput: devs.CreateOutput,
		findPointer:  func() (string, error) { return "/dev/input/event7", nil },
		findKeyboard: func(pointer string) string { return "/dev/input/event1" },
		scan: func() ([]evdev.DeviceInfo, error) {
			return []evdev.DeviceInfo{{Path: "/dev/input/event7", Name: "Logitech G Pro", HasRelX: true, HasBtnLeft: true}}, nil
		},
		watchHotkeys: func(ctx context.Context, path string, fn func(evdev.Action)) error {
			<-ctx.Done()
			return nil
		},
	}
}

func waitFrames(t *testing.T, out *th.FakeOutput) {
	t.Helper()
	assert.Eventually(t, func() bool { return out.Count() > 5 }, 2*time.Second, time.Millisecond)
}

func TestRun_ExitHotkey(t *testing.T) {
	devs := th.NewDevices()
	b := fakeBackends(devs)
	watched := make(chan string, 1)
	b.watchHotkeys = func(ctx context.Context, path string, fn func(evdev.Action)) error {
		watched <- path
		waitFrames(t, devs.Output)
		fn(evdev.ActionRecenter)
		fn(evdev.ActionExit)
		<-ctx.Done()
		return nil
	}
	r := testRun()
	r.NoHotkeys = false

	err := r.start(context.Background(), slog.Default(), nil, b)
	assert.NoError(t, err)
	assert.Equal(t, "/dev/input/event1", <-watched)
	assert.Equal(t, "/dev/input/event7", devs.Path)
	assert.True(t, devs.Capture.Closed())
	assert.True(t, devs.Output.Closed())
}

func TestRun_CaptureLost(t *testing.T) {
	devs := th.NewDevices()
	r := testRun()
	r.Device = "/dev/input/event3"

	go func() {
		waitFrames(t, devs.Output)
		devs.Capture.Fail(device.ErrCaptureLost)
	}()
	err := r.start(context.Background(), slog.Default(), nil, fakeBackends(devs))
	assert.ErrorIs(t, err, device.ErrCaptureLost)
	assert.ErrorContains(t, err, "engine stopped")
	assert.Equal(t, "/dev/input/event3", devs.Path)
}

func TestRun_ContextCancel(t *testing.T) {
	devs := th.NewDevices()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitFrames(t, devs.Output)
		cancel()
	}()
	err := testRun().start(ctx, slog.Default(), nil, fakeBackends(devs))
	assert.NoError(t, err)
	assert.True(t, devs.Output.Closed())
}

func TestRun_StartupErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Run, b *backends)
		wantErr string
		wantIs  error
	}{
		{
			name: "no pointer found",
			mutate: func(r *Run, b *backends) {
				b.findPointer = func() (string, error) { return "", evdev.ErrNoPointer }
			},
			wantErr: "find pointer",
			wantIs:  evdev.ErrNoPointer,
		},
		{
			name:    "capture open fails",
			mutate:  func(r *Run, b *backends) { r.Device = "missing" },
			wantErr: "open capture missing",
			wantIs:  th.ErrNoSuchDevice,
		},
		{
			name:   "invalid stick config",
			mutate: func(r *Run, b *backends) { r.Stick.Radius = 0 },
			wantIs: physics.ErrInvalidConfig,
		},
		{
			name:   "invalid tracker config",
			mutate: func(r *Run, b *backends) { r.Tracker.Deadzone = 1 },
			wantIs: tracker.ErrInvalidConfig,
		},
		{
			name:   "invalid screen",
			mutate: func(r *Run, b *backends) { r.ScreenWidth = 0 },
			wantIs: engine.ErrInvalidScreen,
		},
		{
			name: "output fails",
			mutate: func(r *Run, b *backends) {
				b.createOutput = func() (device.Output, error) { return nil, errors.New("no uinput") }
			},
			wantErr: "create output: no uinput",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRun()
			b := fakeBackends(th.NewDevices())
			tt.mutate(r, b)
			err := r.start(context.Background(), slog.Default(), nil, b)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			}
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestRun_UnknownOutput(t *testing.T) {
	r := testRun()
	r.Output = "does-not-exist"
	_, err := r.linuxBackends(slog.Default())
	assert.ErrorContains(t, err, `unknown output "does-not-exist"`)
}

func TestRun_API(t *testing.T) {
	e, _ := th.NewEngine(t)
	proc := tracker.NewProcessor(tracker.DefaultConfig())
	var recentered atomic.Int32
	r := testRun()
	r.ApiServerConfig = api.ServerConfig{Addr: "127.0.0.1:0", StreamInterval: 10 * time.Millisecond}

	srv, err := r.startAPI(e, proc, func() { recentered.Add(1) }, fakeBackends(th.NewDevices()), slog.Default())
	require.NoError(t, err)
	defer srv.Close()
	addr := srv.Addr().String()

	assert.Equal(t, `{"server":"flightstick","version":"dev"}`, th.ExecCmd(t, addr, "ping"))
	assert.Equal(t, `{"running":false,"device":"","output":"fake"}`, th.ExecCmd(t, addr, "engine/status"))
	assert.Equal(t, `{"running":true,"device":"/dev/input/event7","output":"fake"}`,
		th.ExecCmd(t, addr, `engine/start {"screenWidth":800,"screenHeight":600}`))
	assert.Equal(t, `{}`, th.ExecCmd(t, addr, "engine/recenter"))
	assert.EqualValues(t, 1, recentered.Load())
	assert.True(t, strings.HasPrefix(th.ExecCmd(t, addr, "devices/list"), `{"devices":[{"path":"/dev/input/event7"`))
	assert.Equal(t, `{"running":false,"device":"/dev/input/event7","output":"fake"}`, th.ExecCmd(t, addr, "engine/stop"))
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:3243", true},
		{"localhost:3243", true},
		{"[::1]:3243", true},
		{":3243", false},
		{"0.0.0.0:3243", false},
		{"192.168.1.10:3243", false},
		{"bogus", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, isLoopback(tt.addr))
		})
	}
}

func TestLoadOrCreatePassword(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	first, err := loadOrCreatePassword(slog.Default())
	require.NoError(t, err)
	assert.Len(t, first, 16)

	second, err := loadOrCreatePassword(slog.Default())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStartAPI_GeneratesPasswordForPublicAddr(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	e, _ := th.NewEngine(t)
	r := testRun()
	r.ApiServerConfig = api.ServerConfig{Addr: "0.0.0.0:0"}
	srv, err := r.startAPI(e, tracker.NewProcessor(tracker.DefaultConfig()), func() {}, fakeBackends(th.NewDevices()), slog.Default())
	require.NoError(t, err)
	defer srv.Close()

	_, port, err := net.SplitHostPort(srv.Addr().String())
	require.NoError(t, err)
	assert.Contains(t, th.ExecCmd(t, "127.0.0.1:"+port, "ping"), "authentication required")
}

func TestIdentityOptions(t *testing.T) {
	u16 := func(v uint16) *uint16 { return &v }
	str := func(s string) *string { return &s }
	tests := []struct {
		name    string
		cfg     IdentityConfig
		want    *device.CreateOptions
		wantErr string
	}{
		{name: "defaults", want: &device.CreateOptions{}},
		{
			name: "hex and decimal",
			cfg:  IdentityConfig{Name: "My Stick", Vid: "0x044f", Pid: "45322"},
			want: &device.CreateOptions{Name: str("My Stick"), IdVendor: u16(0x044f), IdProduct: u16(0xb10a)},
		},
		{name: "bad vid", cfg: IdentityConfig{Vid: "zz"}, wantErr: `invalid vid "zz"`},
		{name: "pid overflow", cfg: IdentityConfig{Pid: "0x10000"}, wantErr: "invalid pid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.options()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
