package daemon

import (
	"fmt"
	"testing"
	"time"

	"recap/internal/logging"
	"recap/internal/types"
)

func TestEventHubBroadcast(t *testing.T) {
	hub := NewEventHub(logging.Nop())
	defer hub.Close()

	first, cancelFirst := hub.Subscribe(0)
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe(0)
	defer cancelSecond()

	hub.Publish(types.EventMeetingsUpdated, nil)

	for _, ch := range []<-chan types.PushEvent{first, second} {
		ev := waitForEvent(t, ch, types.EventMeetingsUpdated)
		if ev.Kind != types.EventMeetingsUpdated {
			t.Fatalf("kind = %s, want meetings-updated", ev.Kind)
		}
	}
}

func TestEventHubReplay(t *testing.T) {
	hub := NewEventHub(logging.Nop())
	defer hub.Close()

	for i := 0; i < 5; i++ {
		hub.Publish(types.EventSelectMeeting, types.SelectMeetingPayload{MeetingID: fmt.Sprintf("m-%d", i)})
	}

	events, cancel := hub.Subscribe(3)
	defer cancel()

	// Replay must deliver the newest three, oldest first.
	for _, want := range []string{"m-2", "m-3", "m-4"} {
		ev := waitForEvent(t, events, types.EventSelectMeeting)
		var payload types.SelectMeetingPayload
		if err := ev.Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.MeetingID != want {
			t.Fatalf("replayed meeting id = %s, want %s", payload.MeetingID, want)
		}
	}

	select {
	case ev := <-events:
		t.Fatalf("unexpected extra event %s", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventHubReplayClampedToRing(t *testing.T) {
	hub := NewEventHub(logging.Nop())
	defer hub.Close()

	hub.Publish(types.EventMeetingsUpdated, nil)

	events, cancel := hub.Subscribe(100)
	defer cancel()

	waitForEvent(t, events, types.EventMeetingsUpdated)
	select {
	case ev, ok := <-events:
		if ok {
			t.Fatalf("unexpected extra event %s", ev.Kind)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventHubCancelStopsDelivery(t *testing.T) {
	hub := NewEventHub(logging.Nop())
	defer hub.Close()

	events, cancel := hub.Subscribe(0)
	cancel()

	if _, ok := <-events; ok {
		t.Fatalf("expected channel closed after cancel")
	}

	// Publishing after cancel must not panic on the closed channel.
	hub.Publish(types.EventMeetingsUpdated, nil)
	cancel()
}

func TestEventHubCloseClosesSubscribers(t *testing.T) {
	hub := NewEventHub(logging.Nop())

	events, cancel := hub.Subscribe(0)
	defer cancel()

	hub.Close()

	if _, ok := <-events; ok {
		t.Fatalf("expected channel closed after hub close")
	}

	late, lateCancel := hub.Subscribe(0)
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Fatalf("expected closed channel for subscription after close")
	}
}
