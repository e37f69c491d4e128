package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Alia5/flightstick/apitypes"
)

// Ctl groups one-shot control API commands against a running instance.
type Ctl struct {
	Client   ClientConfig `embed:"" prefix:"api."`
	Status   CtlStatus    `cmd:"" help:"Show engine status"`
	Start    CtlStart     `cmd:"" help:"Start the engine"`
	Stop     CtlStop      `cmd:"" help:"Stop the engine"`
	Recenter CtlRecenter  `cmd:"" help:"Recenter the virtual cursor"`
	Exit     CtlExit      `cmd:"" help:"Ask the engine to exit"`
	Config   CtlConfig    `cmd:"" help:"Show or change the stick tuning"`
	Get      CtlGet       `cmd:"" help:"Print one stick tuning value"`
	Set      CtlSet       `cmd:"" help:"Change one stick tuning value"`
}

type CtlStatus struct{}

func (c *CtlStatus) Run(ctl *Ctl) error {
	st, err := ctl.Client.client().EngineStatus()
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, st)
}

type CtlStart struct {
	Device       string  `arg:"" optional:"" help:"Pointer device (best discovered pointer if empty)"`
	ScreenWidth  float64 `help:"Virtual screen width in pixels" default:"1920"`
	ScreenHeight float64 `help:"Virtual screen height in pixels" default:"1080"`
}

func (c *CtlStart) Run(ctl *Ctl) error {
	st, err := ctl.Client.client().EngineStart(apitypes.StartRequest{
		Device:       c.Device,
		ScreenWidth:  c.ScreenWidth,
		ScreenHeight: c.ScreenHeight,
	})
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, st)
}

type CtlStop struct{}

func (c *CtlStop) Run(ctl *Ctl) error {
	st, err := ctl.Client.client().EngineStop()
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, st)
}

type CtlRecenter struct{}

func (c *CtlRecenter) Run(ctl *Ctl) error { return ctl.Client.client().Recenter() }

type CtlExit struct{}

func (c *CtlExit) Run(ctl *Ctl) error { return ctl.Client.client().Exit() }

// CtlConfig prints the active tuning, or replaces the given fields when any
// flag is set.
type CtlConfig struct {
	Radius        *float64 `help:"Cursor distance in pixels for full deflection"`
	Curve         *float64 `help:"Response curve exponent"`
	Deadzone      *float64 `help:"Normalized center deadzone"`
	SnapAxis      *float64 `help:"Minor axis snap ratio"`
	SnapThreshold *float64 `help:"Per-axis snap threshold"`
	Outer         *float64 `help:"Extra travel beyond the radius"`
}

func (c *CtlConfig) Run(ctl *Ctl) error {
	client := ctl.Client.client()
	cfg, err := client.EngineConfig()
	if err != nil {
		return err
	}
	if c.apply(cfg) {
		if cfg, err = client.SetEngineConfig(*cfg); err != nil {
			return err
		}
	}
	return printJSON(os.Stdout, cfg)
}

// apply copies the set flags into cfg and reports whether any was set.
func (c *CtlConfig) apply(cfg *apitypes.Config) bool {
	changed := false
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
			changed = true
		}
	}
	set(&cfg.Radius, c.Radius)
	set(&cfg.Curve, c.Curve)
	set(&cfg.Deadzone, c.Deadzone)
	set(&cfg.SnapAxis, c.SnapAxis)
	set(&cfg.SnapThreshold, c.SnapThreshold)
	set(&cfg.Outer, c.Outer)
	return changed
}

type CtlGet struct {
	Field string `arg:"" help:"Tuning field (radius, curve, deadzone, snapAxis, snapThreshold, outer)"`
}

func (c *CtlGet) Run(ctl *Ctl) error {
	f, err := ctl.Client.client().ConfigField(c.Field)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, f)
}

type CtlSet struct {
	Field string  `arg:"" help:"Tuning field (radius, curve, deadzone, snapAxis, snapThreshold, outer)"`
	Value float64 `arg:"" help:"New value"`
}

func (c *CtlSet) Run(ctl *Ctl) error {
	f, err := ctl.Client.client().SetConfigField(c.Field, c.Value)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, f)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
