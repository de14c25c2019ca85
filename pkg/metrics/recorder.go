// Package metrics exposes Prometheus instrumentation for the risk
// engine: API traffic, evaluation throughput, and the latest risk
// figures as gauges for dashboarding and alerting.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder handles metrics recording and exposure
type Recorder struct {
	// API metrics
	apiRequestCounter   *prometheus.CounterVec
	apiLatencyHistogram *prometheus.HistogramVec

	// Evaluation metrics
	evaluationCounter *prometheus.CounterVec
	evaluationLatency *prometheus.HistogramVec

	// Position risk gauges
	healthFactorGauge    prometheus.Gauge
	leverageGauge        prometheus.Gauge
	netValueGauge        prometheus.Gauge
	netAPYGauge          prometheus.Gauge
	depegToLiqGauge      prometheus.Gauge
	liquidationProbGauge prometheus.Gauge
	varGauge             *prometheus.GaugeVec
	cvarGauge            *prometheus.GaugeVec

	// Simulation metrics
	simulationCounter *prometheus.CounterVec
	simulationLatency *prometheus.HistogramVec

	// Publisher metrics
	reportsPublishedCounter *prometheus.CounterVec
}

// NewRecorder creates a new metrics recorder
func NewRecorder() *Recorder {
	return &Recorder{
		apiRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wre_api_requests_total",
				Help: "The total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		apiLatencyHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wre_api_latency_seconds",
				Help:    "API request latency distribution",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // From 1ms to ~16s
			},
			[]string{"method", "path"},
		),

		evaluationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wre_risk_evaluations_total",
				Help: "The total number of risk evaluations",
			},
			[]string{"result"},
		),
		evaluationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wre_risk_evaluation_latency_seconds",
				Help:    "Risk evaluation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // From 10ms to ~40s
			},
			[]string{"result"},
		),

		healthFactorGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wre_health_factor",
			Help: "Current health factor of the monitored position",
		}),
		leverageGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wre_leverage",
			Help: "Current leverage (collateral value / equity)",
		}),
		netValueGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wre_net_value_eth",
			Help: "Current equity of the monitored position in ETH",
		}),
		netAPYGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wre_net_apy",
			Help: "Current net APY on equity",
		}),
		depegToLiqGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wre_depeg_to_liquidation",
			Help: "Fractional stETH/ETH depeg that triggers liquidation",
		}),
		liquidationProbGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wre_liquidation_probability",
			Help: "Simulated probability of liquidation over the horizon",
		}),
		varGauge: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wre_var_eth",
				Help: "Value at Risk in ETH (losses negative)",
			},
			[]string{"confidence_level"},
		),
		cvarGauge: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wre_cvar_eth",
				Help: "Conditional Value at Risk in ETH (losses negative)",
			},
			[]string{"confidence_level"},
		),

		simulationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wre_simulations_total",
				Help: "The total number of simulations run",
			},
			[]string{"type"},
		),
		simulationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wre_simulation_latency_seconds",
				Help:    "Simulation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"type"},
		),

		reportsPublishedCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wre_reports_published_total",
				Help: "The total number of risk reports published",
			},
			[]string{"result"},
		),
	}
}

// RecordAPIRequest records metrics for an API request
func (r *Recorder) RecordAPIRequest(method, path string, status int, latency time.Duration) {
	r.apiRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.apiLatencyHistogram.WithLabelValues(method, path).Observe(latency.Seconds())
}

// RecordEvaluation records one risk evaluation cycle
func (r *Recorder) RecordEvaluation(result string, latency time.Duration) {
	r.evaluationCounter.WithLabelValues(result).Inc()
	r.evaluationLatency.WithLabelValues(result).Observe(latency.Seconds())
}

// RecordPositionRisk records the current position risk gauges
func (r *Recorder) RecordPositionRisk(healthFactor, leverage, netValue, netAPY, depegToLiq float64) {
	r.healthFactorGauge.Set(healthFactor)
	r.leverageGauge.Set(leverage)
	r.netValueGauge.Set(netValue)
	r.netAPYGauge.Set(netAPY)
	r.depegToLiqGauge.Set(depegToLiq)
}

// RecordVaR records the latest tail-risk figures
func (r *Recorder) RecordVaR(var95, var99, cvar95, cvar99, liquidationProb float64) {
	r.varGauge.WithLabelValues("95").Set(var95)
	r.varGauge.WithLabelValues("99").Set(var99)
	r.cvarGauge.WithLabelValues("95").Set(cvar95)
	r.cvarGauge.WithLabelValues("99").Set(cvar99)
	r.liquidationProbGauge.Set(liquidationProb)
}

// RecordSimulation records a simulation run
func (r *Recorder) RecordSimulation(simType string, latency time.Duration) {
	r.simulationCounter.WithLabelValues(simType).Inc()
	r.simulationLatency.WithLabelValues(simType).Observe(latency.Seconds())
}

// RecordReportPublished records a report publish attempt
func (r *Recorder) RecordReportPublished(result string) {
	r.reportsPublishedCounter.WithLabelValues(result).Inc()
}
