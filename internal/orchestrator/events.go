package orchestrator

import "github.com/Adda-Baaj/vidsum/internal/domain"

// EventKind identifies what an Event signals to the presentation layer.
type EventKind string

const (
	// EventViewModelChanged carries the view model after every transition.
	EventViewModelChanged EventKind = "view_model_changed"
	// EventErrorNotified is the one-shot toast of a failed submission.
	EventErrorNotified EventKind = "error_notified"
	// EventInputCleared asks the presentation layer to clear its URL input.
	EventInputCleared EventKind = "input_cleared"
)

// Event is delivered to subscribers.
type Event struct {
	Kind      EventKind
	ViewModel domain.ViewModel // EventViewModelChanged
	Message   string           // EventErrorNotified
}

type subscriber struct {
	ch     chan Event
	closed bool
}

// Subscribe registers a listener with the given channel buffer. The returned
// func unsubscribes and closes the channel; it is safe to call more than once.
// Events that do not fit in the buffer are dropped.
func (o *Orchestrator) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	sub := &subscriber{ch: make(chan Event, buffer)}

	o.mu.Lock()
	id := o.nextSubID
	o.nextSubID++
	o.subs[id] = sub
	o.mu.Unlock()

	return sub.ch, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if sub.closed {
			return
		}
		sub.closed = true
		delete(o.subs, id)
		close(sub.ch)
	}
}

// broadcastLocked delivers evt to every subscriber without blocking.
// Callers hold o.mu, so events arrive in transition order.
func (o *Orchestrator) broadcastLocked(evt Event) {
	for id, sub := range o.subs {
		select {
		case sub.ch <- evt:
		default:
			o.log.WarnObj("subscriber buffer full; event dropped", "event_drop", map[string]any{
				"subscriber_id": id,
				"kind":          string(evt.Kind),
			})
		}
	}
}
