package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/websocket"
)

// RelayMessage is what the scheduling relay sends back to the page.
type RelayMessage struct {
	Type    string `json:"type"` // "session", "ignored", "error", "pong"
	Error   string `json:"error,omitempty"`
	Session *View  `json:"session,omitempty"`
}

// SchedulingRelay upgrades to a WebSocket over which the page forwards every
// message the embedded scheduling widget posts. Scheduled events update the
// draft; anything else is acknowledged and ignored.
func (h *Handler) SchedulingRelay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, err := h.manager.Get(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveRelay(conn, r, id)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveRelay(conn *websocket.Conn, r *http.Request, id string) {
	ctx := r.Context()
	if view, err := h.manager.Get(ctx, id); err == nil {
		_ = websocket.JSON.Send(conn, RelayMessage{Type: "session", Session: &view})
	}
	h.logger.Info("scheduling relay opened", "session_id", id)

	for {
		var raw json.RawMessage
		if err := websocket.JSON.Receive(conn, &raw); err != nil {
			h.logger.Debug("scheduling relay closed", "session_id", id, "error", err)
			return
		}

		var frame struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(raw, &frame) == nil && frame.Type == "ping" {
			_ = websocket.JSON.Send(conn, RelayMessage{Type: "pong"})
			continue
		}

		n, ok, err := ParseSchedulingNotification(raw)
		if err != nil {
			_ = websocket.JSON.Send(conn, RelayMessage{Type: "error", Error: err.Error()})
			continue
		}
		if !ok {
			_ = websocket.JSON.Send(conn, RelayMessage{Type: "ignored"})
			continue
		}

		view, _, err := h.manager.ReceiveScheduling(ctx, id, n)
		if errors.Is(err, ErrSessionNotFound) {
			_ = websocket.JSON.Send(conn, RelayMessage{Type: "error", Error: err.Error()})
			return
		}
		if err != nil {
			_ = websocket.JSON.Send(conn, RelayMessage{Type: "error", Error: err.Error(), Session: &view})
			continue
		}
		_ = websocket.JSON.Send(conn, RelayMessage{Type: "session", Session: &view})
	}
}
