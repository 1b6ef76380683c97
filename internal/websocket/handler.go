package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades connections to WebSocket and runs them as Hub
// clients. originPatterns restricts cross-origin connections; an empty list
// allows same-origin connections only.
func HandleWebSocket(hub *Hub, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept failed", "error", err)
			return
		}

		client := NewClient(hub, conn)
		client.Run(r.Context())
	}
}
