package daemon

import (
	"context"
	"errors"
	"strings"
	"time"

	"recap/internal/store"
	"recap/internal/types"
)

type MeetingService struct {
	meetings MeetingStore
	settings SettingsStore
	hub      *EventHub
	recorder *RecordingManager
}

func NewMeetingService(stores *Stores, hub *EventHub, recorder *RecordingManager) *MeetingService {
	svc := &MeetingService{hub: hub, recorder: recorder}
	if stores != nil {
		svc.meetings = stores.Meetings
		svc.settings = stores.Settings
	}
	return svc
}

func (s *MeetingService) List(ctx context.Context) ([]types.Meeting, error) {
	if s.meetings == nil {
		return nil, unavailableError("meeting store not available", nil)
	}
	meetings, err := s.meetings.List(ctx)
	if err != nil {
		return nil, unavailableError(err.Error(), err)
	}
	return meetings, nil
}

func (s *MeetingService) Get(ctx context.Context, id string) (types.Meeting, error) {
	if s.meetings == nil {
		return types.Meeting{}, unavailableError("meeting store not available", nil)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return types.Meeting{}, invalidError("meeting id is required", nil)
	}
	meeting, ok, err := s.meetings.Get(ctx, id)
	if err != nil {
		return types.Meeting{}, unavailableError(err.Error(), err)
	}
	if !ok {
		return types.Meeting{}, notFoundError("meeting not found", store.ErrMeetingNotFound)
	}
	return meeting, nil
}

func (s *MeetingService) Create(ctx context.Context, req CreateMeetingRequest) (types.Meeting, error) {
	if s.meetings == nil {
		return types.Meeting{}, unavailableError("meeting store not available", nil)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return types.Meeting{}, invalidError("meeting title is required", nil)
	}

	meeting := types.Meeting{
		Title:       title,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		DurationMin: req.DurationMin,
		Notes:       req.Notes,
		Status:      types.MeetingStatusScheduled,
	}
	if meeting.StartsAt.IsZero() {
		meeting.StartsAt = time.Now().UTC()
	}
	if meeting.DurationMin <= 0 && meeting.EndsAt == nil {
		meeting.DurationMin = s.defaultDurationMin(ctx)
	}

	created, err := s.meetings.Create(ctx, meeting)
	if err != nil {
		return types.Meeting{}, unavailableError(err.Error(), err)
	}
	s.publishMeetingsUpdated()
	return created, nil
}

func (s *MeetingService) Update(ctx context.Context, id string, req UpdateMeetingRequest) (types.Meeting, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return types.Meeting{}, err
	}

	merged := types.CloneMeeting(existing)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return types.Meeting{}, invalidError("meeting title cannot be empty", nil)
		}
		merged.Title = title
	}
	if req.StartsAt != nil {
		merged.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		end := *req.EndsAt
		merged.EndsAt = &end
	}
	if req.DurationMin != nil {
		if *req.DurationMin < 0 {
			return types.Meeting{}, invalidError("duration cannot be negative", nil)
		}
		merged.DurationMin = *req.DurationMin
	}
	if req.Notes != nil {
		merged.Notes = *req.Notes
	}
	if req.Transcript != nil {
		merged.Transcript = *req.Transcript
	}

	updated, err := s.meetings.Update(ctx, merged)
	if err != nil {
		if errors.Is(err, store.ErrMeetingNotFound) {
			return types.Meeting{}, notFoundError("meeting not found", err)
		}
		return types.Meeting{}, unavailableError(err.Error(), err)
	}
	s.publishMeetingsUpdated()
	return updated, nil
}

// Delete removes a meeting. Calendar-backed meetings become tombstones so
// the next feed sync cannot resurrect them; manual meetings are removed
// outright together with their coaching feedback.
func (s *MeetingService) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.recorder != nil && s.recorder.ActiveMeetingID() == existing.ID {
		return conflictError("meeting is being recorded", nil)
	}

	if existing.CalendarEventID != "" {
		tombstone := types.CloneMeeting(existing)
		tombstone.Title = types.TombstoneTitle(existing.Title)
		if _, err := s.meetings.Update(ctx, tombstone); err != nil {
			return unavailableError(err.Error(), err)
		}
	} else {
		if err := s.meetings.Delete(ctx, existing.ID); err != nil {
			if errors.Is(err, store.ErrMeetingNotFound) {
				return notFoundError("meeting not found", err)
			}
			return unavailableError(err.Error(), err)
		}
	}
	s.publishMeetingsUpdated()
	return nil
}

func (s *MeetingService) defaultDurationMin(ctx context.Context) int {
	if s.settings == nil {
		return types.DefaultMeetingDurationMin
	}
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return types.DefaultMeetingDurationMin
	}
	return settings.DefaultDurationMin
}

func (s *MeetingService) publishMeetingsUpdated() {
	if s.hub != nil {
		s.hub.Publish(types.EventMeetingsUpdated, nil)
	}
}
