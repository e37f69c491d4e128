package handler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/flightstick/apitypes"
	"github.com/Alia5/flightstick/internal/server/api"
)

// EngineConfig returns a handler reading or updating the stick tuning. An
// empty payload reads; fields missing from the payload keep their value.
func EngineConfig(e Engine) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if strings.TrimSpace(req.Payload) == "" {
			return respond(res, toAPIConfig(e.Config()))
		}
		cfg := toAPIConfig(e.Config())
		if err := decode(req.Payload, &cfg); err != nil {
			return err
		}
		if err := e.UpdateConfig(fromAPIConfig(cfg)); err != nil {
			return api.ErrBadRequest(err.Error())
		}
		logger.Debug("Engine config updated", "config", cfg)
		return respond(res, toAPIConfig(e.Config()))
	}
}

// configFields maps lower-cased route names to Config fields and their wire
// names.
var configFields = map[string]struct {
	name string
	ptr  func(c *apitypes.Config) *float64
}{
	"radius":        {"radius", func(c *apitypes.Config) *float64 { return &c.Radius }},
	"curve":         {"curve", func(c *apitypes.Config) *float64 { return &c.Curve }},
	"deadzone":      {"deadzone", func(c *apitypes.Config) *float64 { return &c.Deadzone }},
	"snapaxis":      {"snapAxis", func(c *apitypes.Config) *float64 { return &c.SnapAxis }},
	"snapthreshold": {"snapThreshold", func(c *apitypes.Config) *float64 { return &c.SnapThreshold }},
	"outer":         {"outer", func(c *apitypes.Config) *float64 { return &c.Outer }},
}

// EngineConfigField returns a handler for "engine/config/{field}". An empty
// payload reads the field; a JSON number sets it.
func EngineConfigField(e Engine) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		f, ok := configFields[strings.ToLower(req.Params["field"])]
		if !ok {
			return api.ErrNotFound(fmt.Sprintf("unknown config field %q", req.Params["field"]))
		}
		cfg := toAPIConfig(e.Config())
		if strings.TrimSpace(req.Payload) != "" {
			var v float64
			if err := decode(req.Payload, &v); err != nil {
				return err
			}
			*f.ptr(&cfg) = v
			if err := e.UpdateConfig(fromAPIConfig(cfg)); err != nil {
				return api.ErrBadRequest(err.Error())
			}
			logger.Debug("Engine config field updated", "field", f.name, "value", v)
			cfg = toAPIConfig(e.Config())
		}
		return respond(res, apitypes.ConfigField{Field: f.name, Value: *f.ptr(&cfg)})
	}
}
