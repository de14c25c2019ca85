package montecarlo

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// OUParams parameterizes the Ornstein-Uhlenbeck utilization process.
type OUParams struct {
	Theta float64 // long-run mean utilization
	Kappa float64 // mean-reversion speed
	Sigma float64 // volatility of utilization shocks
}

// DefaultOUParams returns parameters fitted to the WETH pool.
func DefaultOUParams() OUParams {
	return OUParams{Theta: 0.78, Kappa: 5.0, Sigma: 0.08}
}

// PegDynamicsParams parameterizes the wstETH/ETH exchange-rate
// jump-diffusion:
//
//	dS/S = (stakingAPY - 0.5*sigma^2)dt + sigma*dW + J*dN
//
// where dW is a Brownian motion correlated with utilization shocks,
// J the jump size, and dN a Poisson process with intensity lambda.
type PegDynamicsParams struct {
	Vol             float64 // annualized diffusion volatility (sigma)
	JumpIntensity   float64 // average jumps per year (lambda)
	JumpSize        float64 // mean fractional jump; negative models slashing
	UtilCorrelation float64 // correlation between peg and utilization shocks (rho)
}

// DefaultPegDynamicsParams returns parameters calibrated to stETH/ETH
// secondary-market history.
func DefaultPegDynamicsParams() PegDynamicsParams {
	return PegDynamicsParams{
		Vol:             0.03,
		JumpIntensity:   0.1,
		JumpSize:        -0.05,
		UtilCorrelation: -0.5,
	}
}

// CalibratePegParams estimates jump-diffusion parameters from a
// chronological series of daily peg values. Jumps are log returns
// beyond three standard deviations; the diffusion volatility is
// re-estimated with jumps removed. Returns defaults when fewer than
// minObservations values are supplied.
func CalibratePegParams(dailyPegValues []float64, minObservations int) PegDynamicsParams {
	if minObservations <= 0 {
		minObservations = 30
	}
	if len(dailyPegValues) < minObservations {
		return DefaultPegDynamicsParams()
	}

	logReturns := make([]float64, 0, len(dailyPegValues)-1)
	for i := 1; i < len(dailyPegValues); i++ {
		logReturns = append(logReturns, math.Log(dailyPegValues[i]/dailyPegValues[i-1]))
	}

	dailyVol := stat.StdDev(logReturns, nil)
	annualVol := dailyVol * math.Sqrt(365)

	threshold := 3.0 * dailyVol
	var jumps, nonJumpReturns []float64
	for _, r := range logReturns {
		if math.Abs(r) > threshold {
			jumps = append(jumps, r)
		} else {
			nonJumpReturns = append(nonJumpReturns, r)
		}
	}

	jumpIntensity := 0.1
	if len(logReturns) > 0 {
		jumpIntensity = float64(len(jumps)) / float64(len(logReturns)) * 365
	}

	jumpSize := -0.05
	if len(jumps) > 0 {
		jumpSize = stat.Mean(jumps, nil)
	}

	diffusionVol := annualVol
	if len(nonJumpReturns) > 1 {
		diffusionVol = stat.StdDev(nonJumpReturns, nil) * math.Sqrt(365)
	}

	return PegDynamicsParams{
		Vol:           math.Max(0.005, diffusionVol),
		JumpIntensity: math.Max(0.01, jumpIntensity),
		JumpSize:      math.Min(-0.001, jumpSize),
		// Calibrating the correlation needs joint utilization history.
		UtilCorrelation: -0.5,
	}
}
