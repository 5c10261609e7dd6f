package types

import "strings"

type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// RecordingState is the backend's authoritative answer to "is anything
// recording right now". Meeting is populated when the daemon still holds
// the full record; MeetingID alone forces callers down a refresh path.
type RecordingState struct {
	IsRecording bool     `json:"is_recording"`
	MeetingID   string   `json:"meeting_id,omitempty"`
	Meeting     *Meeting `json:"meeting,omitempty"`
}

type DaemonStatus struct {
	Version    string           `json:"version"`
	PID        int              `json:"pid"`
	StartedAt  string           `json:"started_at"`
	Connection ConnectionStatus `json:"connection"`
}

func NormalizeConnectionStatus(raw string) (ConnectionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "connected", "online", "up":
		return ConnectionStatusConnected, true
	case "disconnected", "offline", "down":
		return ConnectionStatusDisconnected, true
	default:
		return "", false
	}
}
