package server

import (
	"fmt"
	"log"
	"net/http"
	"time"
)

// keepAliveInterval is how often a comment line is written on an idle
// event stream so intermediaries don't reap the connection.
const keepAliveInterval = 30 * time.Second

// handleEvents bridges one HTTP connection to one Hub subscriber in the
// server-sent-event wire format. Each logical event becomes a
// "files-changed" record with empty data; the browser's EventSource
// handles reconnection on its own, so the handler simply exits on any
// transport failure.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	if s.options.Verbose {
		log.Printf("event stream opened (%d subscribers)", s.hub.SubscriberCount())
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-sub.Events():
			if !ok {
				return
			}
			if _, err := fmt.Fprint(w, "event: files-changed\ndata:\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-keepAlive.C:
			// Comment line per the event-stream framing rules; clients
			// ignore it.
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
