package store

// Repository bundles the daemon's persistent stores behind one handle so
// startup opens them together and shutdown closes them together.
type Repository interface {
	Meetings() MeetingStore
	Settings() SettingsStore
	Coaching() CoachingStore
	Close() error
}
