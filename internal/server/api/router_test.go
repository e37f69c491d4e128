package api_test

import (
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/flightstick/internal/server/api"
)

func TestRouter_Match(t *testing.T) {
	r := api.NewRouter()
	noop := func(req *api.Request, res *api.Response, logger *slog.Logger) error { return nil }
	r.Register("engine/status", noop)
	r.Register("engine/config/{field}", noop)
	r.RegisterStream("engine/hud/stream", func(conn net.Conn, req *api.Request, logger *slog.Logger) error { return nil })

	tests := []struct {
		name       string
		path       string
		wantMatch  bool
		wantStream bool
		wantParams map[string]string
	}{
		{name: "static", path: "engine/status", wantMatch: true, wantParams: map[string]string{}},
		{name: "upper case", path: "ENGINE/Status", wantMatch: true, wantParams: map[string]string{}},
		{name: "param", path: "engine/config/Radius", wantMatch: true, wantParams: map[string]string{"field": "radius"}},
		{name: "length mismatch", path: "engine/status/extra"},
		{name: "stream only", path: "engine/hud/stream", wantStream: true},
		{name: "unknown", path: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, params := r.Match(tt.path)
			assert.Equal(t, tt.wantMatch, h != nil)
			if tt.wantMatch {
				assert.Equal(t, tt.wantParams, params)
			}
			sh, _ := r.MatchStream(tt.path)
			assert.Equal(t, tt.wantStream, sh != nil)
		})
	}
}
