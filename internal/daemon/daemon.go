package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"recap/internal/logging"
	"recap/internal/types"
)

type Daemon struct {
	addr    string
	token   string
	version string
	server  *http.Server
	stores  *Stores
	log     logging.Logger
}

type Stores struct {
	Meetings MeetingStore
	Settings SettingsStore
	Coaching CoachingStore
}

type MeetingStore interface {
	List(ctx context.Context) ([]types.Meeting, error)
	Get(ctx context.Context, id string) (types.Meeting, bool, error)
	GetByCalendarEvent(ctx context.Context, calendarEventID string) (types.Meeting, bool, error)
	Create(ctx context.Context, meeting types.Meeting) (types.Meeting, error)
	Update(ctx context.Context, meeting types.Meeting) (types.Meeting, error)
	Delete(ctx context.Context, id string) error
}

type SettingsStore interface {
	Load(ctx context.Context) (types.Settings, error)
	Save(ctx context.Context, settings types.Settings) error
}

type CoachingStore interface {
	LoadState(ctx context.Context) (types.CoachingSessionState, error)
	SaveState(ctx context.Context, state types.CoachingSessionState) error
	ListFeedback(ctx context.Context, meetingID string) ([]types.FeedbackEntry, error)
	AppendFeedback(ctx context.Context, entry types.FeedbackEntry) (types.FeedbackEntry, error)
	ClearFeedback(ctx context.Context, meetingID string) error
}

func New(addr, token, version string, stores *Stores, log logging.Logger) *Daemon {
	if log == nil {
		log = logging.Nop()
	}
	return &Daemon{
		addr:    addr,
		token:   token,
		version: version,
		stores:  stores,
		log:     log,
	}
}

func (d *Daemon) Run(ctx context.Context) error {
	hub := NewEventHub(d.log)
	defer hub.Close()

	recorder := NewRecordingManager(d.stores, hub, d.log)
	defer recorder.Close()
	coach := NewCoachingManager(d.stores, hub, d.log)
	cleaner := NewTranscriptCleaner(d.stores, hub, d.log)
	importer := NewCalendarImporter(d.stores, hub, d.log)

	// A previous process may have died mid-recording; settle those
	// meetings before serving state to clients.
	if err := recorder.RecoverInterrupted(ctx); err != nil {
		d.log.Warn("recording_recovery_failed", logging.F("error", err))
	}

	api := &API{
		Version:   d.version,
		StartedAt: time.Now().UTC(),
		Stores:    d.stores,
		Hub:       hub,
		Recorder:  recorder,
		Coach:     coach,
		Cleaner:   cleaner,
		Calendar:  importer,
		Logger:    d.log,
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	handler := LoggingMiddleware(d.log, TokenAuthMiddleware(d.token, mux))
	d.server = &http.Server{
		Addr:    d.addr,
		Handler: handler,
	}
	api.Shutdown = d.server.Shutdown

	go func() {
		if _, err := importer.Sync(context.Background()); err != nil {
			d.log.Debug("startup_calendar_sync_skipped", logging.F("error", err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		d.log.Info("daemon_listening", logging.F("addr", d.addr), logging.F("version", d.version))
		errCh <- d.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
