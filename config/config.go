package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config for the whole application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	API        APIConfig        `mapstructure:"api"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Position   PositionConfig   `mapstructure:"position"`
	Risk       RiskConfig       `mapstructure:"risk"`
	MonteCarlo MonteCarloConfig `mapstructure:"montecarlo"`
	Cascade    CascadeConfig    `mapstructure:"cascade"`
}

// General application configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// Configuration for the API server
type APIConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Configuration for the risk-report Kafka publisher
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Configuration for metrics collection
type MetricsConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// The analyzed position
type PositionConfig struct {
	CollateralAmount float64 `mapstructure:"collateral_amount"` // wstETH
	DebtAmount       float64 `mapstructure:"debt_amount"`       // WETH
	EModeEnabled     bool    `mapstructure:"emode_enabled"`
}

// Configuration for the periodic risk evaluation
type RiskConfig struct {
	EvaluationInterval time.Duration `mapstructure:"evaluation_interval"`
	StakingAPY         float64       `mapstructure:"staking_apy"` // used when the provider has no live value
}

// Configuration for the Monte Carlo engine
type MonteCarloConfig struct {
	Paths       int   `mapstructure:"paths"`
	HorizonDays int   `mapstructure:"horizon_days"`
	Seed        int64 `mapstructure:"seed"`
	// Ornstein-Uhlenbeck utilization process
	OUTheta float64 `mapstructure:"ou_theta"`
	OUKappa float64 `mapstructure:"ou_kappa"`
	OUSigma float64 `mapstructure:"ou_sigma"`
	// Exchange-rate jump-diffusion; PegDynamics toggles the whole block
	PegDynamics        bool    `mapstructure:"peg_dynamics"`
	PegVol             float64 `mapstructure:"peg_vol"`
	PegJumpIntensity   float64 `mapstructure:"peg_jump_intensity"`
	PegJumpSize        float64 `mapstructure:"peg_jump_size"`
	PegUtilCorrelation float64 `mapstructure:"peg_util_correlation"`
}

// Configuration for the liquidation cascade simulator
type CascadeConfig struct {
	InitialDebtToLiquidate float64 `mapstructure:"initial_debt_to_liquidate"`
	PriceImpactPerUnit     float64 `mapstructure:"price_impact_per_unit"`
	DepegSensitivity       float64 `mapstructure:"depeg_sensitivity"`
	MaxSteps               int     `mapstructure:"max_steps"`
	MinDebtThreshold       float64 `mapstructure:"min_debt_threshold"`
}

// Load reads the configuration from config/config.yaml (when present)
// and environment variables prefixed with WSTETH_.
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine; defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("WSTETH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "wsteth-risk-engine")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.log_level", "info")

	// API defaults
	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.read_timeout", "10s")
	viper.SetDefault("api.write_timeout", "30s")
	viper.SetDefault("api.shutdown_timeout", "30s")

	// Kafka defaults
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "risk.reports")

	// Metrics defaults
	viper.SetDefault("metrics.interval", "15s")

	// Position defaults: representative Mellow vault position
	viper.SetDefault("position.collateral_amount", 12000.0)
	viper.SetDefault("position.debt_amount", 10500.0)
	viper.SetDefault("position.emode_enabled", true)

	// Risk defaults
	viper.SetDefault("risk.evaluation_interval", "5m")
	viper.SetDefault("risk.staking_apy", 0.035)

	// Monte Carlo defaults
	viper.SetDefault("montecarlo.paths", 1000)
	viper.SetDefault("montecarlo.horizon_days", 365)
	viper.SetDefault("montecarlo.seed", 42)
	viper.SetDefault("montecarlo.ou_theta", 0.78)
	viper.SetDefault("montecarlo.ou_kappa", 5.0)
	viper.SetDefault("montecarlo.ou_sigma", 0.08)
	viper.SetDefault("montecarlo.peg_dynamics", true)
	viper.SetDefault("montecarlo.peg_vol", 0.03)
	viper.SetDefault("montecarlo.peg_jump_intensity", 0.1)
	viper.SetDefault("montecarlo.peg_jump_size", -0.05)
	viper.SetDefault("montecarlo.peg_util_correlation", -0.5)

	// Cascade defaults
	viper.SetDefault("cascade.initial_debt_to_liquidate", 50000.0)
	viper.SetDefault("cascade.price_impact_per_unit", 0.00001)
	viper.SetDefault("cascade.depeg_sensitivity", 5.0)
	viper.SetDefault("cascade.max_steps", 10)
	viper.SetDefault("cascade.min_debt_threshold", 100.0)
}
