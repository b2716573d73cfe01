package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

// The server binds to loopback only, so cross-origin requests from other
// local pages are acceptable.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsHandler streams session snapshots to the dashboard. The client receives
// the current state immediately and an update after every change; slow
// clients miss intermediate states but always converge on the latest.
func wsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.Logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		updates, unsubscribe := cfg.Sessions.Subscribe()
		defer unsubscribe()

		// Drain the client side so close frames are processed.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		snap := cfg.Sessions.Snapshot()
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(SnapshotToResponse(snap)); err != nil {
			return
		}

		for {
			select {
			case <-done:
				return
			case snap, ok := <-updates:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(SnapshotToResponse(snap)); err != nil {
					return
				}
			}
		}
	}
}
