package state

import "time"

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is the single transient message slot. At most one is visible;
// a newer message pre-empts the current one and restarts the dismissal
// clock from its own arrival.
type Toast struct {
	Message string
	Kind    ToastKind
	BornAt  time.Time
}

func (t *Toast) clone() *Toast {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}

// ShowToast replaces the visible message in place. The slot never goes
// empty between a message and its replacement, so rapid progress updates
// swap text without flickering. The previous dismissal timer is cancelled
// and a fresh one starts counting from this update; a generation counter
// keeps an already-fired timer from clearing the newer message.
func (s *Store) ShowToast(kind ToastKind, message string) {
	if s == nil || message == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.toastGen++
	gen := s.toastGen
	if s.toastTimer != nil {
		s.toastTimer.Stop()
	}
	s.toast = &Toast{Message: message, Kind: kind, BornAt: time.Now()}
	s.toastTimer = time.AfterFunc(s.toastTTL, func() {
		s.dismissToast(gen)
	})
	s.bumpLocked()
}

func (s *Store) dismissToast(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.toastGen || s.toast == nil {
		return
	}
	s.toast = nil
	s.toastTimer = nil
	s.bumpLocked()
}

func (s *Store) Toast() *Toast {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toast.clone()
}
