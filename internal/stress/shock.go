package stress

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/defirisk/wsteth-risk-engine/internal/position"
	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"
)

// Shock factor ordering: ETH price change, stETH peg, utilization.
var (
	factorCorrelation = []float64{
		1.0, 0.6, -0.5,
		0.6, 1.0, -0.3,
		-0.5, -0.3, 1.0,
	}
	factorVols = []float64{0.30, 0.05, 0.10}
)

// ApplyScenario revalues the position under the scenario's shocks.
//
// The position is ETH-denominated: a uniform ETH/USD move scales
// collateral and debt identically and cancels out of the health
// factor, so only the peg shock changes solvency. The ETH price
// change still matters for P&L measured in external terms, which is
// why it stays in the scenario definition.
func ApplyScenario(pos models.Position, p provider.PoolDataProvider, sc models.StressScenario) (models.ShockResult, error) {
	hfBefore, err := position.HealthFactor(pos, p)
	if err != nil {
		return models.ShockResult{}, err
	}
	collateralBefore, err := position.CollateralValue(pos, p)
	if err != nil {
		return models.ShockResult{}, err
	}

	stressed := provider.WithPegOverride(p, sc.StETHPeg)
	hfAfter, err := position.HealthFactor(pos, stressed)
	if err != nil {
		return models.ShockResult{}, err
	}
	collateralAfter, err := position.CollateralValue(pos, stressed)
	if err != nil {
		return models.ShockResult{}, err
	}

	return models.ShockResult{
		HFBefore:         hfBefore,
		HFAfter:          hfAfter,
		CollateralBefore: collateralBefore,
		CollateralAfter:  collateralAfter,
		PnLImpact:        collateralAfter - collateralBefore,
		IsLiquidated:     hfAfter < 1.0,
	}, nil
}

// GenerateCorrelatedScenarios draws n joint shocks from the 3-factor
// distribution. Factor shocks are L*z where L is the Cholesky factor
// of the covariance matrix and z is standard normal; peg and
// utilization draws are recentered on the supplied base levels and
// clamped to their valid ranges.
func GenerateCorrelatedScenarios(n int, basePeg, baseUtilization float64, seed int64) ([]models.CorrelatedScenario, error) {
	if n <= 0 {
		return nil, errors.InvalidArgument("stress: scenario count must be positive")
	}
	if basePeg <= 0 || basePeg > 1.0 {
		return nil, errors.InvalidArgument("stress: base peg must be in (0, 1]")
	}

	dim := len(factorVols)
	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			cov.SetSym(i, j, factorCorrelation[i*dim+j]*factorVols[i]*factorVols[j])
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, errors.Internal("stress: shock covariance matrix is not positive definite")
	}
	var lower mat.TriDense
	chol.LTo(&lower)

	rng := rand.New(rand.NewSource(seed))
	z := make([]float64, dim)
	shock := make([]float64, dim)
	scenarios := make([]models.CorrelatedScenario, n)
	for k := 0; k < n; k++ {
		for i := range z {
			z[i] = rng.NormFloat64()
		}
		for i := 0; i < dim; i++ {
			shock[i] = 0.0
			for j := 0; j <= i; j++ {
				shock[i] += lower.At(i, j) * z[j]
			}
		}

		peg := basePeg + shock[1]
		if peg <= 0.01 {
			peg = 0.01
		}
		if peg > 1.0 {
			peg = 1.0
		}
		util := baseUtilization + shock[2]
		if util < 0.0 {
			util = 0.0
		}
		if util > 1.0 {
			util = 1.0
		}

		scenarios[k] = models.CorrelatedScenario{
			ETHPriceChange: shock[0],
			StETHPeg:       peg,
			Utilization:    util,
		}
	}
	return scenarios, nil
}
