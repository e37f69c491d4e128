package apiclient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Alia5/flightstick/apiclient"
	"github.com/Alia5/flightstick/apitypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient constructs a client backed by a simple in-memory responder.
// responses maps full, already-filled paths (after path param substitution) to raw JSON payloads.
// If err is non-nil, every request returns that error, simulating dial failures.
// Every payload sent is recorded in sent by path.
func testClient(responses map[string]string, err error) (*apiclient.Client, map[string]any) {
	sent := map[string]any{}
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, payload any, _ map[string]string) (string, error) {
		if err != nil {
			return "", err
		}
		sent[path] = payload
		if out, ok := responses[path]; ok {
			return out, nil
		}
		return "", nil
	})), sent
}

func TestHighLevelClient(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(responses map[string]string) (err error)
		call       func(c *apiclient.Client) (any, error)
		wantErr    string
		assertFunc func(t *testing.T, got any, sent map[string]any)
	}{
		{
			name: "ping",
			setup: func(responses map[string]string) error {
				responses["ping"] = `{"server":"flightstick","version":"1.2.3"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.Ping() },
			assertFunc: func(t *testing.T, got any, _ map[string]any) {
				assert.Equal(t, &apitypes.PingResponse{Server: "flightstick", Version: "1.2.3"}, got)
			},
		},
		{
			name: "engine start sends request",
			setup: func(responses map[string]string) error {
				responses["engine/start"] = `{"running":true,"device":"/dev/input/event4","output":"uinput"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) {
				return c.EngineStart(apitypes.StartRequest{ScreenWidth: 1920, ScreenHeight: 1080})
			},
			assertFunc: func(t *testing.T, got any, sent map[string]any) {
				assert.Equal(t, &apitypes.Status{Running: true, Device: "/dev/input/event4", Output: "uinput"}, got)
				assert.Equal(t, apitypes.StartRequest{ScreenWidth: 1920, ScreenHeight: 1080}, sent["engine/start"])
			},
		},
		{
			name: "engine start conflict",
			setup: func(responses map[string]string) error {
				responses["engine/start"] = `{"status":409,"title":"Conflict","detail":"engine already running"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) {
				return c.EngineStart(apitypes.StartRequest{ScreenWidth: 1, ScreenHeight: 1})
			},
			wantErr: "409 Conflict: engine already running",
		},
		{
			name: "engine stop",
			setup: func(responses map[string]string) error {
				responses["engine/stop"] = `{"running":false,"device":"/dev/input/event4","output":"uinput"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.EngineStop() },
			assertFunc: func(t *testing.T, got any, sent map[string]any) {
				assert.False(t, got.(*apitypes.Status).Running)
				assert.Nil(t, sent["engine/stop"])
			},
		},
		{
			name: "engine status",
			setup: func(responses map[string]string) error {
				responses["engine/status"] = `{"running":true,"device":"/dev/input/event4","output":"uhid"}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.EngineStatus() },
			assertFunc: func(t *testing.T, got any, _ map[string]any) {
				assert.Equal(t, "uhid", got.(*apitypes.Status).Output)
			},
		},
		{
			name: "set config field",
			setup: func(responses map[string]string) error {
				responses["engine/config/{field}"] = `{"field":"snapAxis","value":0.3}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.SetConfigField("snapAxis", 0.3) },
			assertFunc: func(t *testing.T, got any, sent map[string]any) {
				assert.Equal(t, &apitypes.ConfigField{Field: "snapAxis", Value: 0.3}, got)
				assert.Equal(t, 0.3, sent["engine/config/{field}"])
			},
		},
		{
			name: "get config sends no payload",
			setup: func(responses map[string]string) error {
				responses["engine/config"] = `{"radius":300,"curve":1,"deadzone":0.05,"snapAxis":0.1,"snapThreshold":0.05,"outer":0}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.EngineConfig() },
			assertFunc: func(t *testing.T, got any, sent map[string]any) {
				assert.Equal(t, 300.0, got.(*apitypes.Config).Radius)
				assert.Contains(t, sent, "engine/config")
				assert.Nil(t, sent["engine/config"])
			},
		},
		{
			name: "set config",
			setup: func(responses map[string]string) error {
				responses["engine/config"] = `{"radius":200,"curve":2,"deadzone":0.1,"snapAxis":0,"snapThreshold":0,"outer":20}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) {
				return c.SetEngineConfig(apitypes.Config{Radius: 200, Curve: 2, Deadzone: 0.1, Outer: 20})
			},
			assertFunc: func(t *testing.T, got any, sent map[string]any) {
				assert.Equal(t, 2.0, got.(*apitypes.Config).Curve)
				assert.Equal(t, apitypes.Config{Radius: 200, Curve: 2, Deadzone: 0.1, Outer: 20}, sent["engine/config"])
			},
		},
		{
			name: "set config rejected",
			setup: func(responses map[string]string) error {
				responses["engine/config"] = `{"status":400,"title":"Bad Request","detail":"invalid config: radius must be positive"}`
				return nil
			},
			call:    func(c *apiclient.Client) (any, error) { return c.SetEngineConfig(apitypes.Config{}) },
			wantErr: "radius must be positive",
		},
		{
			name:  "recenter",
			setup: func(responses map[string]string) error { responses["engine/recenter"] = `{}`; return nil },
			call:  func(c *apiclient.Client) (any, error) { return nil, c.Recenter() },
		},
		{
			name: "exit when stopped",
			setup: func(responses map[string]string) error {
				responses["engine/exit"] = `{"status":409,"title":"Conflict","detail":"engine is not running"}`
				return nil
			},
			call:    func(c *apiclient.Client) (any, error) { return nil, c.Exit() },
			wantErr: "engine is not running",
		},
		{
			name:  "update tracker",
			setup: func(responses map[string]string) error { responses["engine/tracker"] = `{}`; return nil },
			call:  func(c *apiclient.Client) (any, error) { return nil, c.UpdateTracker(0.25, -0.5) },
			assertFunc: func(t *testing.T, _ any, sent map[string]any) {
				assert.Equal(t, apitypes.TrackerUpdate{Yaw: 0.25, Pitch: -0.5}, sent["engine/tracker"])
			},
		},
		{
			name: "hud",
			setup: func(responses map[string]string) error {
				responses["engine/hud"] = `{"x":0.5,"y":-0.25,"throttle":1,"rudder":0,"headYaw":0,"headPitch":0,"snapped":true,"inDeadzone":false,"running":true}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.HUD() },
			assertFunc: func(t *testing.T, got any, _ map[string]any) {
				hud := got.(*apitypes.HUD)
				assert.Equal(t, 0.5, hud.X)
				assert.True(t, hud.Snapped)
				assert.True(t, hud.Running)
			},
		},
		{
			name: "devices list",
			setup: func(responses map[string]string) error {
				responses["devices/list"] = `{"devices":[{"path":"/dev/input/event3","name":"Mouse","phys":"","vid":"0x046d","pid":"0xc08b","pointer":true,"keyboard":false,"score":10}]}`
				return nil
			},
			call: func(c *apiclient.Client) (any, error) { return c.DevicesList() },
			assertFunc: func(t *testing.T, got any, _ map[string]any) {
				resp := got.(*apitypes.DevicesListResponse)
				require.Len(t, resp.Devices, 1)
				assert.Equal(t, "0xc08b", resp.Devices[0].Pid)
			},
		},
		{
			name:  "devices list empty",
			setup: func(responses map[string]string) error { responses["devices/list"] = `{"devices":[]}`; return nil },
			call:  func(c *apiclient.Client) (any, error) { return c.DevicesList() },
			assertFunc: func(t *testing.T, got any, _ map[string]any) {
				assert.Len(t, got.(*apitypes.DevicesListResponse).Devices, 0)
			},
		},
		{
			name:    "transport failure",
			setup:   func(responses map[string]string) error { return errors.New("dial fail") },
			call:    func(c *apiclient.Client) (any, error) { return c.EngineStatus() },
			wantErr: "dial fail",
		},
		{
			name:    "blank response error",
			setup:   func(responses map[string]string) error { return nil },
			call:    func(c *apiclient.Client) (any, error) { return c.EngineStatus() },
			wantErr: "empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string]string{}
			errInject := error(nil)
			if tt.setup != nil {
				if e := tt.setup(responses); e != nil {
					errInject = e
				}
			}
			c, sent := testClient(responses, errInject)
			got, err := tt.call(c)
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
			if tt.assertFunc != nil {
				tt.assertFunc(t, got, sent)
			}
		})
	}
}

func TestApiErrorIsTyped(t *testing.T) {
	c, _ := testClient(map[string]string{
		"engine/start": `{"status":404,"title":"Not Found","detail":"no pointer device found"}`,
	}, nil)
	_, err := c.EngineStart(apitypes.StartRequest{ScreenWidth: 1, ScreenHeight: 1})
	var apiErr *apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestContextCancellation(t *testing.T) {
	c := apiclient.WithTransport(apiclient.NewTransport("127.0.0.1:9")) // address irrelevant due to early cancel
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.EngineStatusCtx(ctx)
	assert.Error(t, err)
}

func TestStrictJSONDecode(t *testing.T) {
	c, _ := testClient(map[string]string{
		"engine/status": `{"running":true,"device":"","output":"uinput","extra":true}`, // extra field should cause decode error
	}, nil)
	_, err := c.EngineStatus()
	assert.ErrorContains(t, err, "decode:")
}
