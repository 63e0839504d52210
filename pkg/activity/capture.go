package activity

import (
	"context"
	"sync"
)

// CaptureHook keeps every event it receives. Err, when set, is returned from
// each Notify.
type CaptureHook struct {
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify stores the normalised event.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}

// Verbs lists the verbs of the captured events in arrival order.
func (h *CaptureHook) Verbs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	verbs := make([]string, len(h.Events))
	for i, event := range h.Events {
		verbs[i] = event.Verb
	}
	return verbs
}

// ForObject returns the captured events about objectID.
func (h *CaptureHook) ForObject(objectID string) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var events []Event
	for _, event := range h.Events {
		if event.ObjectID == objectID {
			events = append(events, event)
		}
	}
	return events
}
