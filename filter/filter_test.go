package filter_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/flightstick/filter"
)

const dt = 0.01

func TestOneEuro_FirstSamplePassesThrough(t *testing.T) {
	f := filter.NewOneEuro(0.05, 0.5, 1.0)
	assert.Equal(t, 3.25, f.Filter(12.5, 3.25))
}

func TestOneEuro_ConstantInputConverges(t *testing.T) {
	f := filter.NewOneEuro(1.0, 0.5, 1.0)
	f.Filter(0, 0)

	const target = 0.8
	prevDiff := math.Inf(1)
	var out float64
	for i := 1; i <= 300; i++ {
		out = f.Filter(float64(i)*dt, target)
		diff := math.Abs(target - out)
		require.Less(t, diff, prevDiff, "step %d", i)
		prevDiff = diff
	}
	assert.InDelta(t, target, out, 1e-6)
}

func TestOneEuro_NonIncreasingTimestampIsNoop(t *testing.T) {
	tests := []struct {
		name  string
		stale int
	}{
		{"duplicate timestamp", 5},
		{"timestamp regression", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := filter.NewOneEuro(1.0, 0.7, 1.0)
			b := filter.NewOneEuro(1.0, 0.7, 1.0)
			samples := []float64{0, 0.2, 0.5, 0.4, 0.9, 1.3}
			var last float64
			for i, x := range samples {
				last = a.Filter(float64(i)*dt, x)
				b.Filter(float64(i)*dt, x)
			}

			got := a.Filter(float64(tt.stale)*dt, 42)
			assert.Equal(t, last, got)

			next := float64(len(samples)) * dt
			assert.Equal(t, b.Filter(next, 1.1), a.Filter(next, 1.1))
		})
	}
}

func TestOneEuro_LagDecreasesWithBeta(t *testing.T) {
	betas := []float64{0, 0.1, 0.5, 1, 2, 5}

	t.Run("step", func(t *testing.T) {
		prevLag := math.Inf(1)
		for _, beta := range betas {
			f := filter.NewOneEuro(1.0, beta, 1.0)
			f.Filter(0, 0)
			var out float64
			for i := 1; i <= 10; i++ {
				out = f.Filter(float64(i)*dt, 1)
			}
			lag := 1 - out
			assert.Less(t, lag, prevLag, "beta %v", beta)
			prevLag = lag
		}
	})

	t.Run("ramp", func(t *testing.T) {
		prevLag := math.Inf(1)
		for _, beta := range betas {
			f := filter.NewOneEuro(1.0, beta, 1.0)
			var out, x float64
			for i := 0; i <= 100; i++ {
				x = float64(i) * dt * 2
				out = f.Filter(float64(i)*dt, x)
			}
			lag := x - out
			assert.Less(t, lag, prevLag, "beta %v", beta)
			prevLag = lag
		}
	})
}

func TestOneEuro_SetBeta(t *testing.T) {
	slow := filter.NewOneEuro(1.0, 0, 1.0)
	fast := filter.NewOneEuro(1.0, 0, 1.0)
	fast.SetBeta(2)
	assert.Equal(t, 2.0, fast.Beta())

	slow.Filter(0, 0)
	fast.Filter(0, 0)
	assert.Greater(t, fast.Filter(dt, 1), slow.Filter(dt, 1))
}

func TestOneEuro_Reset(t *testing.T) {
	f := filter.NewOneEuro(1.0, 0.5, 1.0)
	f.Filter(0, 0)
	f.Filter(dt, 1)
	f.Reset()
	assert.Equal(t, 7.0, f.Filter(5, 7))
}
