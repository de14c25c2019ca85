// risk-report evaluates the configured position once and writes the
// full risk report as JSON to stdout.
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/defirisk/wsteth-risk-engine/config"
	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/internal/risk"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

var (
	collateral = flag.Float64("collateral", 0, "Collateral amount in wstETH (0 uses the configured value)")
	debt       = flag.Float64("debt", 0, "Debt amount in WETH (0 uses the configured value)")
	emode      = flag.Bool("emode", true, "Evaluate with E-mode enabled")
	paths      = flag.Int("paths", 0, "Monte Carlo path count (0 uses the configured value)")
	horizon    = flag.Int("horizon", 0, "Simulation horizon in days (0 uses the configured value)")
	seed       = flag.Int64("seed", 0, "Simulation seed (0 uses the configured value)")
	pretty     = flag.Bool("pretty", false, "Indent the JSON output")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("error", "development")
		logger.GetLogger("risk-report").Fatalf("Failed to load configuration: %v", err)
	}

	// The report goes to stdout; keep log noise out of the way.
	logger.Init("error", cfg.App.Environment)
	log := logger.GetLogger("risk-report")

	if *collateral > 0 {
		cfg.Position.CollateralAmount = *collateral
	}
	if *debt > 0 {
		cfg.Position.DebtAmount = *debt
	}
	cfg.Position.EModeEnabled = *emode
	if *paths > 0 {
		cfg.MonteCarlo.Paths = *paths
	}
	if *horizon > 0 {
		cfg.MonteCarlo.HorizonDays = *horizon
	}
	if *seed != 0 {
		cfg.MonteCarlo.Seed = *seed
	}

	evaluator := risk.NewEvaluator(provider.NewStatic(cfg.Risk.StakingAPY), cfg, nil)

	report, err := evaluator.Evaluate()
	if err != nil {
		log.Fatalf("Risk evaluation failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
}
