// Package physics converts a 2D cursor offset into normalized stick output.
//
// The mapping runs in three stages: hard clamp at radius+outer and
// normalization by radius, axis snapping, then a radial deadzone followed by a
// per-axis response curve. Map assumes a validated Config; call
// Config.Validate at the boundary where configuration enters the system.
package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned (wrapped) by Config.Validate.
var ErrInvalidConfig = errors.New("invalid stick configuration")

// Config holds the tuning values of the radial mapper.
type Config struct {
	// Radius is the cursor distance that maps to full deflection.
	Radius float64 `json:"radius"`
	// Curve is the response exponent; 1 is linear.
	Curve float64 `json:"curve"`
	// Deadzone is the normalized magnitude below which output is zero.
	Deadzone float64 `json:"deadzone"`
	// SnapAxis zeroes the minor axis when it is smaller than major*SnapAxis.
	SnapAxis float64 `json:"snapAxis"`
	// SnapThreshold zeroes any axis whose normalized value is below it.
	SnapThreshold float64 `json:"snapThreshold"`
	// Outer is the extra travel beyond Radius before the hard clamp.
	Outer float64 `json:"outer"`
}

// DefaultConfig returns the stick tuning the engine starts with.
func DefaultConfig() Config {
	return Config{
		Radius:        300,
		Curve:         1,
		Deadzone:      0.05,
		SnapAxis:      0.1,
		SnapThreshold: 0.05,
		Outer:         0,
	}
}

// Validate reports whether c can be fed to Map.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"radius", c.Radius},
		{"curve", c.Curve},
		{"deadzone", c.Deadzone},
		{"snapAxis", c.SnapAxis},
		{"snapThreshold", c.SnapThreshold},
		{"outer", c.Outer},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidConfig, f.name)
		}
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: radius must be > 0, got %v", ErrInvalidConfig, c.Radius)
	}
	if c.Curve <= 0 {
		return fmt.Errorf("%w: curve must be > 0, got %v", ErrInvalidConfig, c.Curve)
	}
	if c.Deadzone < 0 {
		return fmt.Errorf("%w: deadzone must be >= 0, got %v", ErrInvalidConfig, c.Deadzone)
	}
	if c.SnapAxis < 0 {
		return fmt.Errorf("%w: snapAxis must be >= 0, got %v", ErrInvalidConfig, c.SnapAxis)
	}
	if c.SnapThreshold < 0 {
		return fmt.Errorf("%w: snapThreshold must be >= 0, got %v", ErrInvalidConfig, c.SnapThreshold)
	}
	if c.Outer < 0 {
		return fmt.Errorf("%w: outer must be >= 0, got %v", ErrInvalidConfig, c.Outer)
	}
	return nil
}

// Result is the output of Map.
type Result struct {
	X, Y       float64
	InDeadzone bool
	Snapped    bool
}

// Map converts the offset (dx, dy) from the stick center into stick output.
// X and Y of the result are always within [-1, 1].
func Map(dx, dy float64, c Config) Result {
	hard := c.Radius + c.Outer
	rx := clampMagnitude(dx, hard) / c.Radius
	ry := clampMagnitude(dy, hard) / c.Radius

	var res Result
	sx, sy := rx, ry
	if math.Abs(rx) < c.SnapThreshold {
		sx = 0
		res.Snapped = true
	}
	if math.Abs(ry) < c.SnapThreshold {
		sy = 0
		res.Snapped = true
	}
	if math.Abs(rx) < math.Abs(ry)*c.SnapAxis {
		sx = 0
		res.Snapped = true
	} else if math.Abs(ry) < math.Abs(rx)*c.SnapAxis {
		sy = 0
		res.Snapped = true
	}

	if math.Hypot(sx, sy) < c.Deadzone {
		res.InDeadzone = true
		return res
	}
	res.X = clamp(curve(sx, c.Curve), -1, 1)
	res.Y = clamp(curve(sy, c.Curve), -1, 1)
	return res
}

func curve(r, exp float64) float64 {
	if r == 0 {
		return 0
	}
	return math.Copysign(math.Pow(math.Min(math.Abs(r), 1), exp), r)
}

func clampMagnitude(v, limit float64) float64 {
	return math.Copysign(math.Min(math.Abs(v), limit), v)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
