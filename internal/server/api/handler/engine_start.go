package handler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/device/evdev"
	"github.com/Alia5/flightstick/engine"
	"github.com/Alia5/flightstick/internal/server/api"
)

// DiscoverFunc returns the capture path used when a start request names none.
type DiscoverFunc func() (string, error)

// EngineStart returns a handler starting the engine on the requested or
// discovered pointer device.
func EngineStart(e Engine, output string, discover DiscoverFunc) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if req.Payload == "" {
			return api.ErrBadRequest("missing payload")
		}
		var start apitypes.StartRequest
		if err := decode(req.Payload, &start); err != nil {
			return err
		}

		path := start.Device
		if path == "" {
			if discover == nil {
				return api.ErrBadRequest("missing device")
			}
			p, err := discover()
			if err != nil {
				if errors.Is(err, evdev.ErrNoPointer) {
					return api.ErrNotFound(err.Error())
				}
				return api.ErrInternal(fmt.Sprintf("device discovery: %v", err))
			}
			path = p
		}

		err := e.Start(path, start.ScreenWidth, start.ScreenHeight)
		switch {
		case err == nil:
		case errors.Is(err, engine.ErrAlreadyRunning):
			return api.ErrConflict(err.Error())
		case errors.Is(err, engine.ErrInvalidScreen):
			return api.ErrBadRequest(err.Error())
		default:
			return api.ErrInternal(err.Error())
		}
		logger.Info("Engine started via API", "device", path, "output", output)
		return respond(res, status(e, output))
	}
}
