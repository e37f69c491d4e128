package cmd

import (
	"fmt"
	"strconv"

	"github.com/Alia5/flightstick/device"
	"github.com/Alia5/flightstick/physics"
)

// StickConfig seeds the engine's stick tuning at startup. Runtime changes
// through the API are not written back.
type StickConfig struct {
	Radius        float64 `help:"Cursor distance in pixels for full deflection" default:"320" env:"FLIGHTSTICK_STICK_RADIUS"`
	Curve         float64 `help:"Response curve exponent (1 is linear)" default:"2.0" env:"FLIGHTSTICK_STICK_CURVE"`
	Deadzone      float64 `help:"Normalized center deadzone" default:"0.05" env:"FLIGHTSTICK_STICK_DEADZONE"`
	SnapAxis      float64 `help:"Zero the minor axis below this fraction of the major one" default:"0.25" env:"FLIGHTSTICK_STICK_SNAP_AXIS"`
	SnapThreshold float64 `help:"Zero any axis below this normalized value" default:"0.08" env:"FLIGHTSTICK_STICK_SNAP_THRESHOLD"`
	Outer         float64 `help:"Extra travel in pixels beyond the radius before clamping" default:"60" env:"FLIGHTSTICK_STICK_OUTER"`
}

func (s StickConfig) physics() physics.Config {
	return physics.Config{
		Radius:        s.Radius,
		Curve:         s.Curve,
		Deadzone:      s.Deadzone,
		SnapAxis:      s.SnapAxis,
		SnapThreshold: s.SnapThreshold,
		Outer:         s.Outer,
	}
}

// IdentityConfig overrides what the virtual joystick reports to the host.
type IdentityConfig struct {
	Name string `help:"Virtual device name (backend default if empty)" env:"FLIGHTSTICK_DEVICE_NAME"`
	Vid  string `help:"Vendor ID, e.g. 0x044f (backend default if empty)" env:"FLIGHTSTICK_DEVICE_VID"`
	Pid  string `help:"Product ID, e.g. 0xb10a (backend default if empty)" env:"FLIGHTSTICK_DEVICE_PID"`
}

func (c IdentityConfig) options() (*device.CreateOptions, error) {
	o := &device.CreateOptions{}
	if c.Name != "" {
		name := c.Name
		o.Name = &name
	}
	var err error
	if o.IdVendor, err = parseID("vid", c.Vid); err != nil {
		return nil, err
	}
	if o.IdProduct, err = parseID("pid", c.Pid); err != nil {
		return nil, err
	}
	return o, nil
}

func parseID(field, s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	id := uint16(v)
	return &id, nil
}
