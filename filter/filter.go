// Package filter implements the adaptive low-pass filter used to smooth
// head-tracking samples.
package filter

import "math"

// OneEuro is a One-Euro filter: a first-order low-pass whose cutoff rises with
// the estimated speed of the signal. Slow motion is smoothed heavily, fast
// motion passes with little lag.
//
// A OneEuro is not safe for concurrent use.
type OneEuro struct {
	minCutoff float64
	beta      float64
	dCutoff   float64

	initialized bool
	xPrev       float64
	dxPrev      float64
	tPrev       float64
}

// NewOneEuro returns a filter with the given baseline cutoff, speed coefficient
// and derivative cutoff (all in Hz except beta).
func NewOneEuro(minCutoff, beta, dCutoff float64) *OneEuro {
	return &OneEuro{
		minCutoff: minCutoff,
		beta:      beta,
		dCutoff:   dCutoff,
	}
}

// SetBeta changes the speed coefficient. It takes effect on the next sample.
func (f *OneEuro) SetBeta(beta float64) {
	f.beta = beta
}

// Beta returns the current speed coefficient.
func (f *OneEuro) Beta() float64 {
	return f.beta
}

// Filter feeds sample x taken at time t (seconds) and returns the smoothed
// value. The first sample is returned unchanged. A sample whose timestamp does
// not advance returns the previous output and leaves the state untouched.
func (f *OneEuro) Filter(t, x float64) float64 {
	if !f.initialized {
		f.initialized = true
		f.xPrev = x
		f.tPrev = t
		return x
	}
	dt := t - f.tPrev
	if dt <= 0 {
		return f.xPrev
	}

	aD := alpha(f.dCutoff, dt)
	dx := (x - f.xPrev) / dt
	dxHat := aD*dx + (1-aD)*f.dxPrev

	cutoff := f.minCutoff + f.beta*math.Abs(dxHat)
	a := alpha(cutoff, dt)
	xHat := a*x + (1-a)*f.xPrev

	f.xPrev = xHat
	f.dxPrev = dxHat
	f.tPrev = t
	return xHat
}

// Reset drops all history; the next sample passes through unchanged.
func (f *OneEuro) Reset() {
	f.initialized = false
	f.xPrev = 0
	f.dxPrev = 0
	f.tPrev = 0
}

func alpha(cutoff, dt float64) float64 {
	r := 2 * math.Pi * cutoff * dt
	return r / (r + 1)
}
