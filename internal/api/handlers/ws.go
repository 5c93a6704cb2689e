package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wltsai/stockpulse/internal/metrics"
	"github.com/wltsai/stockpulse/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The stream is one-way and carries no credentials
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// StreamWS delivers the same notice frames over a websocket, for clients
// that cannot consume server-sent events. No client messages are
// expected after the initial request.
// GET /api/analyze/ws?query=2330
func (h *AnalyzeHandler) StreamWS(w http.ResponseWriter, r *http.Request) {
	req := parseRequest(r)

	notices, err := h.pipeline.Stream(r.Context(), req)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidQuery) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.StreamClientConnected()
	defer metrics.StreamClientDisconnected()

	// Drain the reader so close frames are processed; r.Context() is
	// cancelled when the connection drops
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for notice := range notices {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(notice); err != nil {
			h.logger.WithError(err).Debug("Websocket client write failed")
			return
		}
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
