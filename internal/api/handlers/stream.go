package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/internal/metrics"
	"github.com/wltsai/stockpulse/internal/pipeline"
)

// Stream delivers the pipeline incrementally over server-sent events.
// Frame order is the wire contract: events, list, item*, summary, done.
// GET /api/analyze/stream?query=2330
func (h *AnalyzeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	req := parseRequest(r)

	// Request context is cancelled on client disconnect, which propagates
	// down to the evaluation scheduler
	notices, err := h.pipeline.Stream(r.Context(), req)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidQuery) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	metrics.StreamClientConnected()
	defer metrics.StreamClientDisconnected()

	for notice := range notices {
		if err := writeSSE(w, notice); err != nil {
			h.logger.WithError(err).Debug("Stream client write failed")
			return
		}
		flusher.Flush()
	}
}

// writeSSE writes one notice as a named SSE event with a JSON data frame
func writeSSE(w http.ResponseWriter, notice contracts.Notice) error {
	payload := notice.Data
	if payload == nil {
		payload = struct{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", notice.Type, data)
	return err
}
