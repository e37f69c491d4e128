// Package handler implements the control API routes.
package handler

import (
	"encoding/json"
	"fmt"

	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/engine"
	"github.com/Alia5/flightstick/internal/server/api"
	"github.com/Alia5/flightstick/physics"
)

// Engine is the engine surface driven by the handlers.
type Engine interface {
	Start(capturePath string, screenWidth, screenHeight float64) error
	Stop()
	IsRunning() bool
	Device() string
	UpdateConfig(c physics.Config) error
	Config() physics.Config
	UpdateTracker(yaw, pitch float64)
	Recenter()
	RequestExit()
	HUD() engine.HUD
}

var _ Engine = (*engine.Engine)(nil)

func status(e Engine, output string) apitypes.Status {
	return apitypes.Status{Running: e.IsRunning(), Device: e.Device(), Output: output}
}

func toAPIConfig(c physics.Config) apitypes.Config {
	return apitypes.Config{
		Radius:        c.Radius,
		Curve:         c.Curve,
		Deadzone:      c.Deadzone,
		SnapAxis:      c.SnapAxis,
		SnapThreshold: c.SnapThreshold,
		Outer:         c.Outer,
	}
}

func fromAPIConfig(c apitypes.Config) physics.Config {
	return physics.Config{
		Radius:        c.Radius,
		Curve:         c.Curve,
		Deadzone:      c.Deadzone,
		SnapAxis:      c.SnapAxis,
		SnapThreshold: c.SnapThreshold,
		Outer:         c.Outer,
	}
}

// ToAPIHUD converts an engine snapshot to its wire form.
func ToAPIHUD(h engine.HUD) apitypes.HUD {
	return apitypes.HUD{
		X:          h.X,
		Y:          h.Y,
		Throttle:   h.Throttle,
		Rudder:     h.Rudder,
		HeadYaw:    h.HeadYaw,
		HeadPitch:  h.HeadPitch,
		Snapped:    h.Snapped,
		InDeadzone: h.InDeadzone,
		Running:    h.Running,
	}
}

func respond(res *api.Response, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res.JSON = string(b)
	return nil
}

func decode(payload string, v any) error {
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return api.ErrBadRequest(fmt.Sprintf("invalid JSON payload: %v", err))
	}
	return nil
}
