package state

import (
	"testing"
	"time"
)

func TestToastReplacementKeepsSingleSlot(t *testing.T) {
	s := New()
	defer s.Close()
	s.toastTTL = 60 * time.Millisecond

	s.ShowToast(ToastInfo, "A")
	time.Sleep(30 * time.Millisecond)
	s.ShowToast(ToastInfo, "B")

	got := s.Toast()
	if got == nil || got.Message != "B" {
		t.Fatalf("replacement should swap text in place, got %+v", got)
	}

	// A's timer would have fired 60ms after A; the replacement must have
	// cancelled it.
	time.Sleep(40 * time.Millisecond)
	got = s.Toast()
	if got == nil || got.Message != "B" {
		t.Fatalf("stale dismissal cleared the newer toast, got %+v", got)
	}

	// B's own deadline is 60ms after B.
	time.Sleep(45 * time.Millisecond)
	if got := s.Toast(); got != nil {
		t.Fatalf("toast should have dismissed, got %+v", got)
	}
}

func TestToastDismissesAfterTTL(t *testing.T) {
	s := New()
	defer s.Close()
	s.toastTTL = 30 * time.Millisecond

	s.ShowToast(ToastSuccess, "saved")
	if got := s.Toast(); got == nil || got.Kind != ToastSuccess {
		t.Fatalf("toast not visible after post: %+v", got)
	}
	time.Sleep(60 * time.Millisecond)
	if got := s.Toast(); got != nil {
		t.Fatalf("toast still visible after ttl: %+v", got)
	}
}

func TestToastIgnoresEmptyMessage(t *testing.T) {
	s := New()
	defer s.Close()

	s.ShowToast(ToastError, "")
	if got := s.Toast(); got != nil {
		t.Fatalf("empty message should not post a toast: %+v", got)
	}
}

func TestToastAfterCloseIsNoop(t *testing.T) {
	s := New()
	s.Close()

	s.ShowToast(ToastInfo, "late")
	if got := s.Toast(); got != nil {
		t.Fatalf("closed store accepted a toast: %+v", got)
	}
}
