package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ynvest-tube/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// the feed is read-only and public
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler streams hub events to a websocket client as JSON text frames
type WSHandler struct {
	Hub *Hub
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		utils.Warn("realtime: websocket upgrade failed", map[string]any{"error": err.Error()})
		return
	}
	defer conn.Close()

	events, cancel := h.Hub.Subscribe()
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// clients never send data; the read loop only notices disconnects and pongs
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	utils.Debug("realtime: client connected", map[string]any{"remote": r.RemoteAddr})
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				utils.Error("realtime: failed to encode event", map[string]any{"type": ev.Type, "error": err.Error()})
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			utils.Debug("realtime: client disconnected", map[string]any{"remote": r.RemoteAddr})
			return
		case <-r.Context().Done():
			return
		}
	}
}
