package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// handleSSE holds a keep-alive event stream open until the client goes away.
// It carries no data beyond readiness and periodic pings.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, "event: ready\ndata: \"ok\"\n\n")
	fmt.Fprint(w, ": keep-alive\n\n")
	flusher.Flush()

	logger := zerolog.Ctx(r.Context())
	logger.Debug().Dur("interval", s.pingInterval).Msg("Event stream opened")

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Msg("Event stream closed by client")
			return
		case t := <-ticker.C:
			if _, err := fmt.Fprintf(w, "event: ping\ndata: %d\n\n", t.UnixMilli()); err != nil {
				logger.Debug().Err(err).Msg("Event stream write failed")
				return
			}
			flusher.Flush()
		}
	}
}
