package stats

// NoopPublisher is a publisher that does nothing
// Useful for testing or when stats collection is disabled
type NoopPublisher struct{}

// NewNoopPublisher creates a new no-op publisher
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish does nothing
func (n *NoopPublisher) Publish(event Event) {
	// No-op
}

// Fanout duplicates every published event to each target publisher.
type Fanout []Publisher

func (f Fanout) Publish(event Event) {
	for _, p := range f {
		p.Publish(event)
	}
}
