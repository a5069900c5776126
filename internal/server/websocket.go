package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// upgrader configures the WebSocket upgrade parameters.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development.
	},
}

// handleWS is the WebSocket counterpart of the event stream for clients
// that prefer a socket: it registers a subscriber with the hub and writes
// a "reload" text message for every logical event. The connection's read
// loop exists only to detect disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	// Read loop: we expect no messages; an error means the client is gone.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
				return
			}
		}
	}
}
