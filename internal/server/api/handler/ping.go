package handler

import (
	"log/slog"

	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/internal/server/api"
)

// ServerName identifies this API in ping responses.
const ServerName = "flightstick"

// Ping returns a handler reporting server identity and version.
func Ping(version string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return respond(res, apitypes.PingResponse{Server: ServerName, Version: version})
	}
}
