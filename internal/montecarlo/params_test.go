package montecarlo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalibrateDefaultsBelowMinObservations(t *testing.T) {
	short := []float64{1.0, 0.99, 1.0, 0.98}
	assert.Equal(t, DefaultPegDynamicsParams(), CalibratePegParams(short, 30))
}

func TestCalibrateFloorsOnFlatSeries(t *testing.T) {
	flat := make([]float64, 100)
	for i := range flat {
		flat[i] = 1.0
	}
	params := CalibratePegParams(flat, 30)

	assert.Equal(t, 0.005, params.Vol)
	assert.Equal(t, 0.01, params.JumpIntensity)
	// No jumps observed: the default jump size stands.
	assert.Equal(t, -0.05, params.JumpSize)
	assert.Equal(t, -0.5, params.UtilCorrelation)
}

func TestCalibrateSeparatesJumpsFromDiffusion(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	dailyVol := 0.002

	series := make([]float64, 0, 366)
	peg := 1.0
	series = append(series, peg)
	for i := 0; i < 365; i++ {
		r := dailyVol * rng.NormFloat64()
		// Inject a slashing-style crash roughly monthly.
		if i%30 == 29 {
			r = -0.04
		}
		peg *= math.Exp(r)
		series = append(series, peg)
	}

	params := CalibratePegParams(series, 30)

	// Diffusion vol near the true annualized value, not inflated by
	// the injected jumps.
	assert.InDelta(t, dailyVol*math.Sqrt(365), params.Vol, 0.02)
	// Twelve jumps in a year.
	assert.InDelta(t, 12.0, params.JumpIntensity, 4.0)
	assert.InDelta(t, -0.04, params.JumpSize, 0.01)
}
