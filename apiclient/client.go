package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Alia5/flightstick/apitypes"
)

// Route paths served by the flightstick API.
const (
	PathPing           = "ping"
	PathEngineStart    = "engine/start"
	PathEngineStop     = "engine/stop"
	PathEngineStatus   = "engine/status"
	PathEngineConfig   = "engine/config"
	PathConfigField    = "engine/config/{field}"
	PathEngineRecenter = "engine/recenter"
	PathEngineExit     = "engine/exit"
	PathEngineTracker  = "engine/tracker"
	PathEngineHUD      = "engine/hud"
	PathHUDStream      = "engine/hud/stream"
	PathTrackerStream  = "tracker/stream"
	PathDevicesList    = "devices/list"
)

// Client provides a high-level interface to the flightstick API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	return call[apitypes.PingResponse](ctx, c, PathPing, nil)
}

// EngineStart starts the engine on req.Device, or on the best discovered
// pointer when req.Device is empty.
func (c *Client) EngineStart(req apitypes.StartRequest) (*apitypes.Status, error) {
	return c.EngineStartCtx(context.Background(), req)
}

func (c *Client) EngineStartCtx(ctx context.Context, req apitypes.StartRequest) (*apitypes.Status, error) {
	return call[apitypes.Status](ctx, c, PathEngineStart, req)
}

// EngineStop stops the engine. Stopping a stopped engine is not an error.
func (c *Client) EngineStop() (*apitypes.Status, error) {
	return c.EngineStopCtx(context.Background())
}

func (c *Client) EngineStopCtx(ctx context.Context) (*apitypes.Status, error) {
	return call[apitypes.Status](ctx, c, PathEngineStop, nil)
}

// EngineStatus reports whether the engine runs and on which devices.
func (c *Client) EngineStatus() (*apitypes.Status, error) {
	return c.EngineStatusCtx(context.Background())
}

func (c *Client) EngineStatusCtx(ctx context.Context) (*apitypes.Status, error) {
	return call[apitypes.Status](ctx, c, PathEngineStatus, nil)
}

// EngineConfig returns the active stick tuning.
func (c *Client) EngineConfig() (*apitypes.Config, error) {
	return c.EngineConfigCtx(context.Background())
}

func (c *Client) EngineConfigCtx(ctx context.Context) (*apitypes.Config, error) {
	return call[apitypes.Config](ctx, c, PathEngineConfig, nil)
}

// SetEngineConfig replaces the stick tuning and returns what is now active.
func (c *Client) SetEngineConfig(cfg apitypes.Config) (*apitypes.Config, error) {
	return c.SetEngineConfigCtx(context.Background(), cfg)
}

func (c *Client) SetEngineConfigCtx(ctx context.Context, cfg apitypes.Config) (*apitypes.Config, error) {
	return call[apitypes.Config](ctx, c, PathEngineConfig, cfg)
}

// ConfigField reads one stick tuning value, e.g. "radius" or "snapAxis".
func (c *Client) ConfigField(field string) (*apitypes.ConfigField, error) {
	return c.ConfigFieldCtx(context.Background(), field)
}

func (c *Client) ConfigFieldCtx(ctx context.Context, field string) (*apitypes.ConfigField, error) {
	return callParams[apitypes.ConfigField](ctx, c, PathConfigField, nil, map[string]string{"field": field})
}

// SetConfigField changes one stick tuning value and returns what is now active.
func (c *Client) SetConfigField(field string, value float64) (*apitypes.ConfigField, error) {
	return c.SetConfigFieldCtx(context.Background(), field, value)
}

func (c *Client) SetConfigFieldCtx(ctx context.Context, field string, value float64) (*apitypes.ConfigField, error) {
	return callParams[apitypes.ConfigField](ctx, c, PathConfigField, value, map[string]string{"field": field})
}

// Recenter moves the virtual cursor back to the screen center.
func (c *Client) Recenter() error {
	return c.RecenterCtx(context.Background())
}

func (c *Client) RecenterCtx(ctx context.Context) error {
	_, err := call[apitypes.Ack](ctx, c, PathEngineRecenter, nil)
	return err
}

// Exit asks the running engine to stop on its next cycle.
func (c *Client) Exit() error {
	return c.ExitCtx(context.Background())
}

func (c *Client) ExitCtx(ctx context.Context) error {
	_, err := call[apitypes.Ack](ctx, c, PathEngineExit, nil)
	return err
}

// UpdateTracker sets the head axes directly, bypassing server-side filtering.
func (c *Client) UpdateTracker(yaw, pitch float64) error {
	return c.UpdateTrackerCtx(context.Background(), yaw, pitch)
}

func (c *Client) UpdateTrackerCtx(ctx context.Context, yaw, pitch float64) error {
	_, err := call[apitypes.Ack](ctx, c, PathEngineTracker, apitypes.TrackerUpdate{Yaw: yaw, Pitch: pitch})
	return err
}

// HUD returns one telemetry snapshot.
func (c *Client) HUD() (*apitypes.HUD, error) {
	return c.HUDCtx(context.Background())
}

func (c *Client) HUDCtx(ctx context.Context) (*apitypes.HUD, error) {
	return call[apitypes.HUD](ctx, c, PathEngineHUD, nil)
}

// DevicesList lists pointer and keyboard input devices, best pointer first.
func (c *Client) DevicesList() (*apitypes.DevicesListResponse, error) {
	return c.DevicesListCtx(context.Background())
}

func (c *Client) DevicesListCtx(ctx context.Context) (*apitypes.DevicesListResponse, error) {
	return call[apitypes.DevicesListResponse](ctx, c, PathDevicesList, nil)
}

func call[T any](ctx context.Context, c *Client, path string, payload any) (*T, error) {
	return callParams[T](ctx, c, path, payload, nil)
}

func callParams[T any](ctx context.Context, c *Client, path string, payload any, params map[string]string) (*T, error) {
	raw, err := c.transport.DoCtx(ctx, path, payload, params)
	if err != nil {
		return nil, err
	}
	return parse[T](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
