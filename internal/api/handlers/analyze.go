package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/internal/pipeline"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// AnalyzeHandler exposes the event-to-signal pipeline over HTTP
type AnalyzeHandler struct {
	pipeline *pipeline.Pipeline
	logger   *logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(p *pipeline.Pipeline, log *logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		pipeline: p,
		logger:   log,
	}
}

// BatchResponse is the one-document JSON shape of a pipeline run
type BatchResponse struct {
	Query         string                     `json:"query"`
	WindowHours   int                        `json:"windowHours"`
	TotalEvents   int                        `json:"totalEvents"`
	StockScore    float64                    `json:"stockScore"`
	Uncertainty   float64                    `json:"uncertainty"`
	RiskMagnitude float64                    `json:"riskMagnitude"`
	Items         []contracts.EvaluatedEvent `json:"items"`
	TopItems      []contracts.EvaluatedEvent `json:"topItems"`
	Trace         []string                   `json:"trace,omitempty"`
}

// parseRequest extracts the pipeline parameters from the query string
func parseRequest(r *http.Request) pipeline.Request {
	req := pipeline.Request{
		Query: r.URL.Query().Get("query"),
	}
	if hours, err := strconv.Atoi(r.URL.Query().Get("hours")); err == nil && hours > 0 {
		req.Hours = hours
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		req.Limit = limit
	}
	return req
}

// Analyze runs the pipeline and returns the batch response.
// GET /api/analyze?query=2330&hours=48&limit=50[&debug=1]
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req := parseRequest(r)

	result, err := h.pipeline.Analyze(r.Context(), req)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidQuery) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).WithField("query", req.Query).Error("Pipeline run failed")
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	resp := BatchResponse{
		Query:         result.Query,
		WindowHours:   result.WindowHours,
		TotalEvents:   len(result.Events),
		StockScore:    result.Signal.Score,
		Uncertainty:   result.Signal.Uncertainty,
		RiskMagnitude: result.Signal.RiskMagnitude,
		Items:         result.Evaluated,
		TopItems:      result.Signal.TopEvents,
	}
	if r.URL.Query().Get("debug") == "1" {
		resp.Trace = result.Trace
	}

	respondJSON(w, http.StatusOK, resp)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
