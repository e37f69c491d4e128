// Package tracker turns raw head-pose samples into the engine's head axes.
//
// A sample goes through sensitivity scaling, a One-Euro filter per axis and
// radial shaping (deadzone, axis snap, outer snap). The reference pose is
// taken from the first sample after a recenter and drifts slowly toward the
// current pose while the head stays near it.
package tracker

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Alia5/flightstick/filter"
)

// Filter parameters of the per-axis One-Euro filters; Config.Beta overrides
// the speed coefficient.
const (
	FilterMinCutoff = 0.05
	FilterDCutoff   = 1.0
)

// dragRadius is the distance from the reference within which center drag
// applies.
const dragRadius = 0.15

// Config holds the head-tracking tuning.
type Config struct {
	// SensX and SensY scale the raw offset from the reference.
	SensX float64 `json:"sensX" help:"Yaw sensitivity" default:"7.0"`
	SensY float64 `json:"sensY" help:"Pitch sensitivity" default:"5.0"`
	// Beta is the One-Euro speed coefficient ("smoothing").
	Beta float64 `json:"beta" help:"Filter speed coefficient; higher means less lag" default:"0.5"`
	// Deadzone is the shaped-output deadzone radius.
	Deadzone float64 `json:"deadzone" help:"Head deadzone radius" default:"0.02"`
	// SnapAxis zeroes the minor axis when it is below major*SnapAxis.
	SnapAxis float64 `json:"snapAxis" help:"Head axis snap ratio" default:"0.25"`
	// SnapOuter snaps magnitudes above 1-SnapOuter to full deflection.
	SnapOuter float64 `json:"snapOuter" help:"Snap to full deflection within this distance of the edge" default:"0.10"`
	// CenterDrag is the per-sample fraction the reference moves toward the pose.
	CenterDrag float64 `json:"centerDrag" help:"Reference drift per sample while near center" default:"0.005"`
}

// ErrInvalidConfig is returned (wrapped) by Config.Validate.
var ErrInvalidConfig = errors.New("invalid tracker configuration")

// Validate reports whether c keeps the shaped axes finite and in [-1, 1].
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"sensX", c.SensX},
		{"sensY", c.SensY},
		{"beta", c.Beta},
		{"deadzone", c.Deadzone},
		{"snapAxis", c.SnapAxis},
		{"snapOuter", c.SnapOuter},
		{"centerDrag", c.CenterDrag},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidConfig, f.name)
		}
	}
	if c.Beta < 0 {
		return fmt.Errorf("%w: beta must be >= 0, got %v", ErrInvalidConfig, c.Beta)
	}
	if c.Deadzone < 0 || c.Deadzone >= 1 {
		return fmt.Errorf("%w: deadzone must be in [0, 1), got %v", ErrInvalidConfig, c.Deadzone)
	}
	if c.SnapAxis < 0 {
		return fmt.Errorf("%w: snapAxis must be >= 0, got %v", ErrInvalidConfig, c.SnapAxis)
	}
	if c.SnapOuter < 0 || c.SnapOuter > 1 {
		return fmt.Errorf("%w: snapOuter must be in [0, 1], got %v", ErrInvalidConfig, c.SnapOuter)
	}
	if c.CenterDrag < 0 || c.CenterDrag > 1 {
		return fmt.Errorf("%w: centerDrag must be in [0, 1], got %v", ErrInvalidConfig, c.CenterDrag)
	}
	return nil
}

// DefaultConfig returns the tracker defaults.
func DefaultConfig() Config {
	return Config{
		SensX:      7.0,
		SensY:      5.0,
		Beta:       0.5,
		Deadzone:   0.02,
		SnapAxis:   0.25,
		SnapOuter:  0.10,
		CenterDrag: 0.005,
	}
}

// Processor is safe for concurrent use.
type Processor struct {
	mu sync.Mutex

	cfg         Config
	yawFilter   *filter.OneEuro
	pitchFilter *filter.OneEuro

	refX, refY    float64
	needsRecenter bool

	epoch time.Time
}

// NewProcessor returns a processor that takes its reference from the first
// sample. cfg is expected to be validated.
func NewProcessor(cfg Config) *Processor {
	return &Processor{
		cfg:           cfg,
		yawFilter:     filter.NewOneEuro(FilterMinCutoff, cfg.Beta, FilterDCutoff),
		pitchFilter:   filter.NewOneEuro(FilterMinCutoff, cfg.Beta, FilterDCutoff),
		needsRecenter: true,
		epoch:         time.Now(),
	}
}

// SetConfig validates cfg and replaces the tuning. The filters keep their
// history.
func (p *Processor) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
	p.yawFilter.SetBeta(cfg.Beta)
	p.pitchFilter.SetBeta(cfg.Beta)
	return nil
}

// Config returns the current tuning.
func (p *Processor) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Recenter makes the next sample the new reference.
func (p *Processor) Recenter() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.needsRecenter = true
}

// Process feeds the raw pose (x, y) sampled at t seconds and returns the
// shaped head axes in [-1, 1].
func (p *Processor) Process(t, x, y float64) (yaw, pitch float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.needsRecenter {
		p.refX, p.refY = x, y
		p.needsRecenter = false
	} else if math.Hypot(x-p.refX, y-p.refY) < dragRadius {
		p.refX += (x - p.refX) * p.cfg.CenterDrag
		p.refY += (y - p.refY) * p.cfg.CenterDrag
	}

	fx := p.yawFilter.Filter(t, (x-p.refX)*p.cfg.SensX)
	fy := p.pitchFilter.Filter(t, (y-p.refY)*p.cfg.SensY)
	return Shape(fx, fy, p.cfg)
}

// Feed is Process timestamped with the time since the processor was created.
// Every live source shares this clock so the filters see increasing time.
func (p *Processor) Feed(x, y float64) (yaw, pitch float64) {
	return p.Process(time.Since(p.epoch).Seconds(), x, y)
}

// Shape applies the radial head-axis shaping to filtered values.
func Shape(x, y float64, cfg Config) (float64, float64) {
	mag := math.Hypot(x, y)
	if mag < 1e-4 || mag < cfg.Deadzone {
		return 0, 0
	}
	smooth := (mag - cfg.Deadzone) / (1 - cfg.Deadzone)

	ox, oy := x, y
	if math.Abs(y) < math.Abs(x)*cfg.SnapAxis {
		oy = 0
	} else if math.Abs(x) < math.Abs(y)*cfg.SnapAxis {
		ox = 0
	}
	cur := math.Hypot(ox, oy)
	if cur <= 1e-4 {
		return 0, 0
	}

	final := math.Min(smooth, 1)
	if final > 1-cfg.SnapOuter {
		final = 1
	}
	return ox / cur * final, oy / cur * final
}
