package http

import (
	"log/slog"
	"net/http"
	"time"
)

// handleEvents streams dashboard refresh ticks to the browser as
// server-sent events. The client re-fetches the partials on each tick.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		http.Error(w, "sign in required", http.StatusUnauthorized)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	agg := s.dashboards.Open(s.baseCtx, user.Identity)
	tick, stop := agg.Notify()
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write([]byte("event: ready\ndata: {}\n\n"))
	flusher.Flush()

	slog.InfoContext(r.Context(), "event stream opened", "owner", user.Identity)

	// Heartbeats keep intermediaries from closing the idle stream.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-tick:
			if _, err := w.Write([]byte("event: change\ndata: {}\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			slog.InfoContext(r.Context(), "event stream closed", "owner", user.Identity)
			return
		}
	}
}
