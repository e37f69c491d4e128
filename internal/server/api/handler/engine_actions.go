package handler

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/internal/server/api"
)

// Recenterer is anything holding a neutral reference that can be reset.
type Recenterer interface {
	Recenter()
}

// EngineRecenter returns a handler recentering every target, typically the
// engine and the head tracker.
func EngineRecenter(targets ...Recenterer) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		for _, t := range targets {
			t.Recenter()
		}
		return respond(res, apitypes.Ack{})
	}
}

// EngineExit returns a handler asking the worker to stop on its next cycle.
func EngineExit(e Engine) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if !e.IsRunning() {
			return api.ErrConflict("engine is not running")
		}
		e.RequestExit()
		return respond(res, apitypes.Ack{})
	}
}

// EngineTracker returns a handler setting the head axes directly.
func EngineTracker(e Engine) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return api.ErrBadRequest("missing payload")
		}
		var u apitypes.TrackerUpdate
		if err := decode(req.Payload, &u); err != nil {
			return err
		}
		if !finite(u.Yaw) || !finite(u.Pitch) {
			return api.ErrBadRequest(fmt.Sprintf("head axes must be finite, got yaw=%v pitch=%v", u.Yaw, u.Pitch))
		}
		e.UpdateTracker(u.Yaw, u.Pitch)
		return respond(res, apitypes.Ack{})
	}
}

// EngineHUD returns a handler reporting the latest telemetry.
func EngineHUD(e Engine) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return respond(res, ToAPIHUD(e.HUD()))
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
