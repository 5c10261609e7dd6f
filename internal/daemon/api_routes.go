package daemon

import "net/http"

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", a.Health)
	mux.HandleFunc("/v1/status", a.Status)
	mux.HandleFunc("/v1/meetings", a.Meetings)
	mux.HandleFunc("/v1/meetings/", a.MeetingByID)
	mux.HandleFunc("/v1/recording", a.Recording)
	mux.HandleFunc("/v1/recording/stop", a.StopRecording)
	mux.HandleFunc("/v1/coaching", a.Coaching)
	mux.HandleFunc("/v1/coaching/history", a.CoachingHistory)
	mux.HandleFunc("/v1/coaching/start", a.StartCoaching)
	mux.HandleFunc("/v1/coaching/stop", a.StopCoaching)
	mux.HandleFunc("/v1/coaching/feedback", a.CoachingFeedback)
	mux.HandleFunc("/v1/coaching/window", a.CoachWindow)
	mux.HandleFunc("/v1/coaching/window/", a.CoachWindowAction)
	mux.HandleFunc("/v1/calendar/sync", a.SyncCalendar)
	mux.HandleFunc("/v1/settings", a.Settings)
	mux.HandleFunc("/v1/events", a.Events)
	mux.HandleFunc("/v1/shutdown", a.ShutdownDaemon)
}
