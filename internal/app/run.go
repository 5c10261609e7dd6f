package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"recap/internal/client"
	"recap/internal/logging"
	"recap/internal/state"
	"recap/internal/types"
)

const (
	eventReplayDepth   = 32
	eventChannelBuffer = 64
	reconnectMinDelay  = 500 * time.Millisecond
	reconnectMaxDelay  = 10 * time.Second
)

// EventSource is the slice of the client the pump needs: the push stream
// plus the fetch surface the bootstrapper corroborates against.
type EventSource interface {
	state.Backend
	Events(ctx context.Context, replay int) (<-chan types.PushEvent, func(), error)
}

// Run wires the whole client side together and blocks until the UI exits.
// Layout: the pump feeds one ordered channel, the reconciler drains it into
// the store, and the program loop only ever reads store snapshots. Local
// intents (meeting selection) enter through the same channel so they cannot
// overtake daemon pushes.
func Run(c *client.Client, log logging.Logger) error {
	if log == nil {
		log = logging.Nop()
	}

	store := state.New()
	defer store.Close()
	reconciler := state.NewReconciler(c, store, log)
	defer reconciler.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan types.PushEvent, eventChannelBuffer)
	go reconciler.Run(ctx, events)

	pump := &eventPump{source: c, store: store, events: events, log: log}
	go pump.run(ctx)

	dispatch := func(ev types.PushEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	model := NewModel(c, c, store, dispatch)
	program := tea.NewProgram(&model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// eventPump owns the stream connection. Each successful (re)connect runs a
// bootstrap pass before draining, so a reconnecting client converges even
// when the daemon's replay window has already dropped the events it missed.
type eventPump struct {
	source EventSource
	store  *state.Store
	events chan<- types.PushEvent
	log    logging.Logger
}

func (p *eventPump) run(ctx context.Context) {
	delay := reconnectMinDelay
	for {
		stream, stop, err := p.source.Events(ctx, eventReplayDepth)
		if err != nil {
			p.log.Debug("event stream connect failed", logging.F("error", err))
			p.markDisconnected(ctx)
			if !sleepCtx(ctx, delay) {
				return
			}
			delay = min(delay*2, reconnectMaxDelay)
			continue
		}
		delay = reconnectMinDelay

		state.Bootstrap(ctx, p.source, p.store, p.log)

		if !p.drain(ctx, stream) {
			stop()
			return
		}
		stop()
		p.markDisconnected(ctx)
		if !sleepCtx(ctx, reconnectMinDelay) {
			return
		}
	}
}

// drain forwards stream events until the stream closes (returns true) or
// the context ends (returns false).
func (p *eventPump) drain(ctx context.Context, stream <-chan types.PushEvent) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-stream:
			if !ok {
				return true
			}
			select {
			case p.events <- ev:
			case <-ctx.Done():
				return false
			}
		}
	}
}

// markDisconnected synthesizes the status event the daemon can no longer
// send, keeping the connection dot truthful through the same event lane
// everything else uses.
func (p *eventPump) markDisconnected(ctx context.Context) {
	ev, err := types.NewPushEvent(types.EventConnectionStatus, types.ConnectionStatusDisconnected)
	if err != nil {
		return
	}
	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
