// Package config defines the root command line of the flightstick binary.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/flightstick/internal/cmd"
	"github.com/Alia5/flightstick/internal/log"
)

// CLI is the root kong model. Values come from flags, then environment
// variables, then the first config file found.
type CLI struct {
	Config  string           `help:"Config file (JSON, YAML or TOML by extension)" type:"path" env:"FLIGHTSTICK_CONFIG"`
	Log     log.Config       `embed:"" prefix:"log."`
	Version kong.VersionFlag `help:"Print version and exit"`

	Run       cmd.Run           `cmd:"" help:"Grab the pointer and drive the virtual joystick"`
	HUD       cmd.HUD           `cmd:"" name:"hud" help:"Show the HUD of a running instance"`
	Devices   cmd.Devices       `cmd:"" help:"List input devices considered for capture"`
	Ctl       cmd.Ctl           `cmd:"" help:"Control a running instance"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
	Install   cmd.Install       `cmd:"" help:"Install flightstick as a systemd service"`
	Uninstall cmd.Uninstall     `cmd:"" help:"Remove the systemd service"`
}
