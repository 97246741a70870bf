package stats

type Snapshot struct {
	// Core counters
	MessagesReceived uint64
	MessagesSent     uint64
	MessagesByKind   map[string]uint64
	SnapshotsApplied uint64
	PollsCompleted   uint64
	QueriesSubmitted uint64
	QueriesResolved  uint64
	SyntheticReplies uint64
	ErrorsTotal      uint64

	// Channel state. GaveUp is surfaced separately from plain disconnection:
	// it means the retry budget is spent and only a manual connect resumes.
	ChannelStatus     string
	ChannelConnected  bool
	GaveUp            bool
	ReconnectAttempts uint
	LastDisconnect    string

	// Latest stream/poll readings
	LastFPS           float64
	LastActiveCount   uint
	LastPollLatencyMs float64

	// Rates and system metrics
	MessagesPerSecond  float64
	UptimeSeconds      float64
	ChannelUtilization float64

	// Error breakdown
	ErrorsByContext  map[string]uint64
	ErrorsBySeverity map[ErrorSeverity]uint64
	RecentErrors     []string
}

type Reader interface {
	Snapshot() Snapshot
}
