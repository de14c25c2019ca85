package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/defirisk/wsteth-risk-engine/internal/position"
	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/internal/rates"
	"github.com/defirisk/wsteth-risk-engine/internal/stress"
	"github.com/defirisk/wsteth-risk-engine/pkg/models"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/errors"
)

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, code int, message string) {
	RespondJSON(w, code, map[string]string{"error": message})
}

// finite clamps IEEE non-finite values, which encoding/json rejects.
// A debt-free position legitimately has an infinite health factor.
func finite(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	case math.IsNaN(v):
		return 0
	default:
		return v
	}
}

func finiteSlice(vs []float64) {
	for i, v := range vs {
		vs[i] = finite(v)
	}
}

func sanitizeShock(s *models.ShockResult) {
	s.HFBefore = finite(s.HFBefore)
	s.HFAfter = finite(s.HFAfter)
}

func sanitizeReport(r *models.RiskReport) {
	r.Leverage = finite(r.Leverage)
	r.HealthFactor = finite(r.HealthFactor)
	r.LiquidationPriceDrop = finite(r.LiquidationPriceDrop)
	r.APY.NetAPY = finite(r.APY.NetAPY)
	for i := range r.Scenarios {
		sanitizeShock(&r.Scenarios[i].Result)
	}
}

// respondAppError maps typed application errors to HTTP status codes.
func respondAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsType(err, errors.ErrorTypeInvalidArgument):
		RespondError(w, http.StatusBadRequest, err.Error())
	case errors.IsType(err, errors.ErrorTypeNotFound):
		RespondError(w, http.StatusNotFound, err.Error())
	default:
		RespondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	RespondError(w, http.StatusNotFound, "endpoint not found")
}

// handleGetPositionRisk runs a full evaluation of the configured
// position and returns the risk report.
func (s *Server) handleGetPositionRisk(w http.ResponseWriter, r *http.Request) {
	report, err := s.evaluator.Evaluate()
	if err != nil {
		s.log.Errorf("risk evaluation failed: %v", err)
		respondAppError(w, err)
		return
	}
	sanitizeReport(report)
	RespondJSON(w, http.StatusOK, report)
}

// handleGetDepegSensitivity returns the health factor across a range
// of stETH/ETH peg ratios. Query parameters: low, high, points.
func (s *Server) handleGetDepegSensitivity(w http.ResponseWriter, r *http.Request) {
	low := queryFloat(r, "low", 0.0)
	high := queryFloat(r, "high", 0.0)
	points := queryInt(r, "points", 50)
	if points < 2 || points > 10000 {
		RespondError(w, http.StatusBadRequest, "points must be between 2 and 10000")
		return
	}

	pos := s.evaluator.Position()
	liqModel, err := position.LiquidationModel(pos, s.provider)
	if err != nil {
		respondAppError(w, err)
		return
	}
	price, err := s.provider.GetAssetPrice(provider.WstETH)
	if err != nil {
		respondAppError(w, err)
		return
	}
	debtValue, err := position.DebtValue(pos, s.provider)
	if err != nil {
		respondAppError(w, err)
		return
	}

	curve := liqModel.DepegSensitivity(pos.CollateralAmount, price, debtValue, low, high, points)
	for i := range curve {
		curve[i].HealthFactor = finite(curve[i].HealthFactor)
	}
	RespondJSON(w, http.StatusOK, curve)
}

// handleGetRateCurve returns the interest rate curve for an asset.
// Query parameter: points.
func (s *Server) handleGetRateCurve(w http.ResponseWriter, r *http.Request) {
	asset := mux.Vars(r)["asset"]
	points := queryInt(r, "points", 100)
	if points < 2 || points > 10000 {
		RespondError(w, http.StatusBadRequest, "points must be between 2 and 10000")
		return
	}

	params, err := s.provider.GetReserveParams(asset)
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, rates.NewModel(params).Curve(points))
}

// handleRunMonteCarlo runs the configured Monte Carlo simulation and
// returns the full path set.
func (s *Server) handleRunMonteCarlo(w http.ResponseWriter, r *http.Request) {
	result, err := s.evaluator.SimulateMonteCarlo()
	if err != nil {
		s.log.Errorf("monte carlo simulation failed: %v", err)
		respondAppError(w, err)
		return
	}
	for _, path := range result.HFPaths {
		finiteSlice(path)
	}
	RespondJSON(w, http.StatusOK, result)
}

// handleRunCascade runs the configured liquidation cascade simulation.
func (s *Server) handleRunCascade(w http.ResponseWriter, r *http.Request) {
	result, err := s.evaluator.SimulateCascade()
	if err != nil {
		s.log.Errorf("cascade simulation failed: %v", err)
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// handleGetScenarios returns the historical scenario library.
func (s *Server) handleGetScenarios(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, stress.HistoricalScenarios())
}

// handleApplyScenario applies a scenario from the request body to the
// configured position.
func (s *Server) handleApplyScenario(w http.ResponseWriter, r *http.Request) {
	var scenario models.StressScenario
	if err := json.NewDecoder(r.Body).Decode(&scenario); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid scenario payload")
		return
	}
	if scenario.StETHPeg <= 0 || scenario.StETHPeg > 1.5 {
		RespondError(w, http.StatusBadRequest, "steth_peg must be in (0, 1.5]")
		return
	}

	result, err := stress.ApplyScenario(s.evaluator.Position(), s.provider, scenario)
	if err != nil {
		respondAppError(w, err)
		return
	}
	sanitizeShock(&result)
	RespondJSON(w, http.StatusOK, models.ScenarioImpact{Scenario: scenario, Result: result})
}

type correlatedRequest struct {
	Count           int     `json:"count"`
	BasePeg         float64 `json:"base_peg"`
	BaseUtilization float64 `json:"base_utilization"`
	Seed            int64   `json:"seed"`
}

// handleGenerateCorrelated draws correlated shock scenarios.
func (s *Server) handleGenerateCorrelated(w http.ResponseWriter, r *http.Request) {
	req := correlatedRequest{Count: 1000, BasePeg: 1.0, BaseUtilization: 0.785, Seed: 42}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
	}
	if req.Count > 100000 {
		RespondError(w, http.StatusBadRequest, "count must be at most 100000")
		return
	}

	scenarios, err := stress.GenerateCorrelatedScenarios(req.Count, req.BasePeg, req.BaseUtilization, req.Seed)
	if err != nil {
		respondAppError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, scenarios)
}

func queryFloat(r *http.Request, name string, def float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
