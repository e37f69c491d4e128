package handler

import (
	"log/slog"

	"github.com/Alia5/flightstick/internal/server/api"
)

// EngineStop returns a handler stopping the engine. Stopping an idle engine is
// not an error.
func EngineStop(e Engine, output string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		e.Stop()
		return respond(res, status(e, output))
	}
}

// EngineStatus returns a handler reporting whether the engine runs and on
// which devices.
func EngineStatus(e Engine, output string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return respond(res, status(e, output))
	}
}
