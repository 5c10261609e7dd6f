package daemon

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"recap/internal/logging"
	"recap/internal/types"
)

// heartbeatInterval paces SSE comment lines so idle connections are not
// reaped by proxies or the client's read deadline.
const heartbeatInterval = 30 * time.Second

func (a *API) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	replay := parseReplay(r.URL.Query().Get("replay"))
	events, cancel := a.Hub.Subscribe(replay)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	_, _ = io.WriteString(w, ":\n\n")
	flusher.Flush()

	// The connected marker goes only to this subscriber; broadcasting it
	// would tell every other client the wrong thing.
	connected, err := types.NewPushEvent(types.EventConnectionStatus, types.ConnectionStatusConnected)
	if err == nil {
		writeSSEEvent(w, flusher, connected)
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			_, _ = io.WriteString(w, ":heartbeat\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSEEvent(w, flusher, ev); err != nil {
				a.Logger.Debug("sse_write_failed", logging.F("error", err))
				return
			}
		}
	}
}

func writeSSEEvent(w io.Writer, flusher http.Flusher, ev types.PushEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
