package testutil

import (
	"sync"

	"tracker-sync/pkg/stats"
)

// CapturingPublisher collects stats events for assertions in tests.
type CapturingPublisher struct {
	mu     sync.Mutex
	Events []stats.Event
}

func NewCapturingPublisher() *CapturingPublisher { return &CapturingPublisher{} }

func (c *CapturingPublisher) Publish(event stats.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Events = append(c.Events, event)
}

func (c *CapturingPublisher) Snapshot() []stats.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]stats.Event, len(c.Events))
	copy(out, c.Events)
	return out
}

// ByType filters captured events down to the given EventType.
func (c *CapturingPublisher) ByType(eventType string) []stats.Event {
	var out []stats.Event
	for _, e := range c.Snapshot() {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}
