package api

import "time"

// ServerConfig represents the control API configuration.
type ServerConfig struct {
	Addr              string        `help:"Control API listen address (empty disables the API)" default:"127.0.0.1:3243" env:"FLIGHTSTICK_API_ADDR"`
	Password          string        `help:"Require clients to authenticate with this password and encrypt the session" env:"FLIGHTSTICK_API_PASSWORD"`
	StreamInterval    time.Duration `help:"Interval between pushed telemetry lines on engine/hud/stream" default:"50ms" env:"FLIGHTSTICK_API_STREAM_INTERVAL"`
	ConnectionTimeout time.Duration `kong:"-"`
}
