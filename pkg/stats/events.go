package stats

import "time"

// Event is one observability sample emitted by a core component.
type Event interface {
	Timestamp() time.Time // When the event occurred
	EventType() string    // For categorization/filtering
}

// Publisher accepts events from the hot path. Implementations must be
// non-blocking; dropping under pressure is preferred to stalling a decoder.
type Publisher interface {
	Publish(event Event)
}

type ChannelStatusChanged struct {
	timestamp time.Time
	Status    string // connecting, connected, disconnected, gave_up
	Reason    string
	Attempts  uint
}

func (e ChannelStatusChanged) Timestamp() time.Time { return e.timestamp }
func (e ChannelStatusChanged) EventType() string    { return "channel_status_changed" }

func NewChannelStatusChanged(status, reason string, attempts uint) ChannelStatusChanged {
	return ChannelStatusChanged{
		timestamp: time.Now(),
		Status:    status,
		Reason:    reason,
		Attempts:  attempts,
	}
}

type MessageReceived struct {
	timestamp time.Time
	Kind      string
}

func (e MessageReceived) Timestamp() time.Time { return e.timestamp }
func (e MessageReceived) EventType() string    { return "message_received" }

func NewMessageReceived(kind string) MessageReceived {
	return MessageReceived{timestamp: time.Now(), Kind: kind}
}

type MessageSent struct {
	timestamp time.Time
	Kind      string
}

func (e MessageSent) Timestamp() time.Time { return e.timestamp }
func (e MessageSent) EventType() string    { return "message_sent" }

func NewMessageSent(kind string) MessageSent {
	return MessageSent{timestamp: time.Now(), Kind: kind}
}

type SnapshotApplied struct {
	timestamp   time.Time
	FPS         float64
	ActiveCount uint
}

func (e SnapshotApplied) Timestamp() time.Time { return e.timestamp }
func (e SnapshotApplied) EventType() string    { return "snapshot_applied" }

func NewSnapshotApplied(fps float64, activeCount uint) SnapshotApplied {
	return SnapshotApplied{timestamp: time.Now(), FPS: fps, ActiveCount: activeCount}
}

type PollCompleted struct {
	timestamp time.Time
	Latency   time.Duration
}

func (e PollCompleted) Timestamp() time.Time { return e.timestamp }
func (e PollCompleted) EventType() string    { return "poll_completed" }

func NewPollCompleted(latency time.Duration) PollCompleted {
	return PollCompleted{timestamp: time.Now(), Latency: latency}
}

type QuerySubmitted struct {
	timestamp time.Time
}

func (e QuerySubmitted) Timestamp() time.Time { return e.timestamp }
func (e QuerySubmitted) EventType() string    { return "query_submitted" }

func NewQuerySubmitted() QuerySubmitted {
	return QuerySubmitted{timestamp: time.Now()}
}

type QueryResolved struct {
	timestamp time.Time
	Synthetic bool // true when the bridge fabricated the reply after a disconnect
	Latency   time.Duration
}

func (e QueryResolved) Timestamp() time.Time { return e.timestamp }
func (e QueryResolved) EventType() string    { return "query_resolved" }

func NewQueryResolved(synthetic bool, latency time.Duration) QueryResolved {
	return QueryResolved{timestamp: time.Now(), Synthetic: synthetic, Latency: latency}
}

type ClientError struct {
	timestamp time.Time
	Err       error
	Context   string // e.g. "channel_dial", "tracking_decode", "telemetry_poll"
	Severity  ErrorSeverity
}

func (e ClientError) Timestamp() time.Time { return e.timestamp }
func (e ClientError) EventType() string    { return "client_error" }

func NewClientError(err error, context string, severity ErrorSeverity) ClientError {
	return ClientError{
		timestamp: time.Now(),
		Err:       err,
		Context:   context,
		Severity:  severity,
	}
}

type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityCritical
)
