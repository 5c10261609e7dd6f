package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"recap/internal/types"
)

var (
	bucketMeetings      = []byte("meetings")
	bucketSettings      = []byte("settings")
	bucketCoachingState = []byte("coaching_state")
	bucketFeedback      = []byte("feedback")
	keySettings         = []byte("settings")
	keyCoachingState    = []byte("state")
)

type bboltRepository struct {
	db       *bolt.DB
	meetings MeetingStore
	settings SettingsStore
	coaching CoachingStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:       db,
		meetings: &bboltMeetingStore{db: db},
		settings: &bboltSettingsStore{db: db},
		coaching: &bboltCoachingStore{db: db},
	}, nil
}

func (r *bboltRepository) Meetings() MeetingStore {
	return r.meetings
}

func (r *bboltRepository) Settings() SettingsStore {
	return r.settings
}

func (r *bboltRepository) Coaching() CoachingStore {
	return r.coaching
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMeetings); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketSettings); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketCoachingState); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketFeedback); err != nil {
			return err
		}
		return nil
	})
}

type bboltMeetingStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltMeetingStore) List(ctx context.Context) ([]types.Meeting, error) {
	out := make([]types.Meeting, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeetings)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var meeting types.Meeting
			if err := json.Unmarshal(v, &meeting); err != nil {
				return err
			}
			out = append(out, meeting)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortMeetings(out)
	return out, nil
}

func (s *bboltMeetingStore) Get(ctx context.Context, id string) (types.Meeting, bool, error) {
	var (
		out types.Meeting
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeetings)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(id))
		if len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return types.Meeting{}, false, err
	}
	return out, ok, nil
}

func (s *bboltMeetingStore) GetByCalendarEvent(ctx context.Context, calendarEventID string) (types.Meeting, bool, error) {
	calendarEventID = strings.TrimSpace(calendarEventID)
	if calendarEventID == "" {
		return types.Meeting{}, false, nil
	}
	var (
		out types.Meeting
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeetings)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			if ok {
				return nil
			}
			var meeting types.Meeting
			if err := json.Unmarshal(v, &meeting); err != nil {
				return err
			}
			if meeting.CalendarEventID == calendarEventID {
				out = meeting
				ok = true
			}
			return nil
		})
	})
	if err != nil {
		return types.Meeting{}, false, err
	}
	return out, ok, nil
}

func (s *bboltMeetingStore) Create(ctx context.Context, meeting types.Meeting) (types.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized, err := normalizeMeeting(meeting, nil)
	if err != nil {
		return types.Meeting{}, err
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return types.Meeting{}, err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeetings)
		if b == nil {
			return errors.New("meetings bucket missing")
		}
		key := []byte(normalized.ID)
		if b.Get(key) != nil {
			return ErrMeetingExists
		}
		return b.Put(key, raw)
	}); err != nil {
		return types.Meeting{}, err
	}
	return normalized, nil
}

func (s *bboltMeetingStore) Update(ctx context.Context, meeting types.Meeting) (types.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var normalized types.Meeting
	if err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMeetings)
		if b == nil {
			return errors.New("meetings bucket missing")
		}
		key := []byte(meeting.ID)
		current := b.Get(key)
		if len(current) == 0 {
			return ErrMeetingNotFound
		}
		var existing types.Meeting
		if err := json.Unmarshal(current, &existing); err != nil {
			return err
		}
		var err error
		normalized, err = normalizeMeeting(meeting, &existing)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(normalized)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	}); err != nil {
		return types.Meeting{}, err
	}
	return normalized, nil
}

func (s *bboltMeetingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		meetings := tx.Bucket(bucketMeetings)
		feedback := tx.Bucket(bucketFeedback)
		if meetings == nil || feedback == nil {
			return errors.New("meeting buckets missing")
		}
		key := []byte(id)
		if meetings.Get(key) == nil {
			return ErrMeetingNotFound
		}
		if err := meetings.Delete(key); err != nil {
			return err
		}
		// Feedback entries are scoped to their meeting and go with it.
		prefix := feedbackMeetingPrefix(id)
		c := feedback.Cursor()
		for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

type bboltSettingsStore struct {
	db *bolt.DB
}

func (s *bboltSettingsStore) Load(ctx context.Context) (types.Settings, error) {
	settings := types.DefaultSettings()
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		if b == nil {
			return nil
		}
		raw := b.Get(keySettings)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &settings)
	})
	if err != nil {
		return types.Settings{}, err
	}
	return types.NormalizeSettings(settings), nil
}

func (s *bboltSettingsStore) Save(ctx context.Context, settings types.Settings) error {
	raw, err := json.Marshal(types.NormalizeSettings(settings))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		if b == nil {
			return errors.New("settings bucket missing")
		}
		return b.Put(keySettings, raw)
	})
}

type bboltCoachingStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltCoachingStore) LoadState(ctx context.Context) (types.CoachingSessionState, error) {
	state := types.DefaultCoachingSessionState()
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCoachingState)
		if b == nil {
			return nil
		}
		raw := b.Get(keyCoachingState)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, &state)
	})
	if err != nil {
		return types.CoachingSessionState{}, err
	}
	return state, nil
}

func (s *bboltCoachingStore) SaveState(ctx context.Context, state types.CoachingSessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCoachingState)
		if b == nil {
			return errors.New("coaching state bucket missing")
		}
		return b.Put(keyCoachingState, raw)
	})
}

func (s *bboltCoachingStore) ListFeedback(ctx context.Context, meetingID string) ([]types.FeedbackEntry, error) {
	out := make([]types.FeedbackEntry, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFeedback)
		if b == nil {
			return nil
		}
		prefix := feedbackMeetingPrefix(meetingID)
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var entry types.FeedbackEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *bboltCoachingStore) AppendFeedback(ctx context.Context, entry types.FeedbackEntry) (types.FeedbackEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized, err := normalizeFeedbackEntry(entry)
	if err != nil {
		return types.FeedbackEntry{}, err
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return types.FeedbackEntry{}, err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFeedback)
		if b == nil {
			return errors.New("feedback bucket missing")
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(feedbackKey(normalized.MeetingID, seq), raw)
	}); err != nil {
		return types.FeedbackEntry{}, err
	}
	return normalized, nil
}

func (s *bboltCoachingStore) ClearFeedback(ctx context.Context, meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFeedback)
		if b == nil {
			return errors.New("feedback bucket missing")
		}
		prefix := feedbackMeetingPrefix(meetingID)
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func feedbackMeetingPrefix(meetingID string) []byte {
	return []byte(meetingID + "\x00")
}

// feedbackKey orders entries within a meeting by insertion sequence. The
// fixed-width sequence keeps cursor order aligned with append order.
func feedbackKey(meetingID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s\x00%020d", meetingID, seq))
}
