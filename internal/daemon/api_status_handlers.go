package daemon

import (
	"net/http"
	"os"
	"time"

	"recap/internal/types"
)

// Health stays outside auth so a fresh client can probe for a live daemon
// before it has read the token file.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": a.Version,
		"pid":     os.Getpid(),
	})
}

func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, types.DaemonStatus{
		Version:    a.Version,
		PID:        os.Getpid(),
		StartedAt:  a.StartedAt.Format(time.RFC3339),
		Connection: types.ConnectionStatusConnected,
	})
}
