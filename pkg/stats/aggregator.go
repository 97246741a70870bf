package stats

import (
	"context"
	"sync"
	"time"
)

// Clock interface allows for deterministic testing
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Config for the aggregator
type Config struct {
	BufferSize        int
	MaxRecentErrors   int
	RateWindowSeconds int
}

func DefaultConfig() Config {
	return Config{
		BufferSize:        1000,
		MaxRecentErrors:   50,
		RateWindowSeconds: 10,
	}
}

// Aggregator is the stateful consumer of observability events. Components
// publish fire-and-forget; readers take consistent snapshots.
type Aggregator struct {
	mu    sync.RWMutex
	clock Clock
	cfg   Config

	// Core counters
	messagesReceived uint64
	messagesSent     uint64
	errorsTotal      uint64
	snapshotsApplied uint64
	pollsCompleted   uint64
	queriesSubmitted uint64
	queriesResolved  uint64
	syntheticReplies uint64

	// Breakdown
	messagesByKind   map[string]uint64
	errorsByContext  map[string]uint64
	errorsBySeverity map[ErrorSeverity]uint64

	// Rate calculation (ring of receive times within the rate window)
	messageTimes []time.Time

	// Current state
	channelStatus     string
	reconnectAttempts uint
	lastDisconnect    string
	lastFPS           float64
	lastActiveCount   uint
	lastPollLatency   time.Duration

	// Recent errors (ring buffer)
	recentErrors []string
	errorIndex   int

	// Control channels
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup

	startTime time.Time
}

// NewAggregator creates a new stats aggregator
func NewAggregator(clock Clock, cfg Config) *Aggregator {
	if clock == nil {
		clock = RealClock{}
	}

	return &Aggregator{
		clock:            clock,
		cfg:              cfg,
		channelStatus:    "disconnected",
		messagesByKind:   make(map[string]uint64),
		errorsByContext:  make(map[string]uint64),
		errorsBySeverity: make(map[ErrorSeverity]uint64),
		messageTimes:     make([]time.Time, 0, cfg.RateWindowSeconds*10), // ~10 messages per second nominal
		recentErrors:     make([]string, cfg.MaxRecentErrors),
		eventCh:          make(chan Event, cfg.BufferSize),
		done:             make(chan struct{}),
		startTime:        clock.Now(),
	}
}

// Start begins processing events
func (a *Aggregator) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.processEvents(ctx)
}

// Stop gracefully shuts down the aggregator
func (a *Aggregator) Stop() {
	close(a.done)
	a.wg.Wait()
}

// Publish implements Publisher
func (a *Aggregator) Publish(event Event) {
	select {
	case a.eventCh <- event:
	default:
		// Non-blocking send - drop if channel is full
		// This protects the hot path from being blocked
	}
}

// Snapshot implements Reader
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	now := a.clock.Now()

	kindsCopy := make(map[string]uint64)
	for k, v := range a.messagesByKind {
		kindsCopy[k] = v
	}

	errorsByContextCopy := make(map[string]uint64)
	for k, v := range a.errorsByContext {
		errorsByContextCopy[k] = v
	}

	errorsBySeverityCopy := make(map[ErrorSeverity]uint64)
	for k, v := range a.errorsBySeverity {
		errorsBySeverityCopy[k] = v
	}

	recentErrors := make([]string, 0)
	for i := 0; i < a.cfg.MaxRecentErrors; i++ {
		idx := (a.errorIndex - i - 1 + len(a.recentErrors)) % len(a.recentErrors)
		if a.recentErrors[idx] != "" {
			recentErrors = append(recentErrors, a.recentErrors[idx])
		}
	}

	return Snapshot{
		MessagesReceived:   a.messagesReceived,
		MessagesSent:       a.messagesSent,
		MessagesByKind:     kindsCopy,
		SnapshotsApplied:   a.snapshotsApplied,
		PollsCompleted:     a.pollsCompleted,
		QueriesSubmitted:   a.queriesSubmitted,
		QueriesResolved:    a.queriesResolved,
		SyntheticReplies:   a.syntheticReplies,
		ErrorsTotal:        a.errorsTotal,
		ChannelStatus:      a.channelStatus,
		ChannelConnected:   a.channelStatus == "connected",
		GaveUp:             a.channelStatus == "gave_up",
		ReconnectAttempts:  a.reconnectAttempts,
		LastDisconnect:     a.lastDisconnect,
		LastFPS:            a.lastFPS,
		LastActiveCount:    a.lastActiveCount,
		LastPollLatencyMs:  float64(a.lastPollLatency) / float64(time.Millisecond),
		MessagesPerSecond:  a.calculateRate(a.messageTimes, now),
		UptimeSeconds:      now.Sub(a.startTime).Seconds(),
		ChannelUtilization: float64(len(a.eventCh)) / float64(cap(a.eventCh)) * 100,
		ErrorsByContext:    errorsByContextCopy,
		ErrorsBySeverity:   errorsBySeverityCopy,
		RecentErrors:       recentErrors,
	}
}

func (a *Aggregator) processEvents(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case event := <-a.eventCh:
			a.handleEvent(event)
		}
	}
}

func (a *Aggregator) handleEvent(event Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()

	switch e := event.(type) {
	case MessageReceived:
		a.messagesReceived++
		a.messagesByKind[e.Kind]++
		a.addMessageTime(now)

	case MessageSent:
		a.messagesSent++

	case SnapshotApplied:
		a.snapshotsApplied++
		a.lastFPS = e.FPS
		a.lastActiveCount = e.ActiveCount

	case PollCompleted:
		a.pollsCompleted++
		a.lastPollLatency = e.Latency

	case QuerySubmitted:
		a.queriesSubmitted++

	case QueryResolved:
		a.queriesResolved++
		if e.Synthetic {
			a.syntheticReplies++
		}

	case ChannelStatusChanged:
		a.channelStatus = e.Status
		a.reconnectAttempts = e.Attempts
		if e.Reason != "" {
			a.lastDisconnect = e.Reason
		}

	case ClientError:
		a.errorsTotal++
		a.errorsByContext[e.Context]++
		a.errorsBySeverity[e.Severity]++
		a.addRecentError(e.Err.Error())
	}
}

func (a *Aggregator) addMessageTime(t time.Time) {
	cutoff := t.Add(-time.Duration(a.cfg.RateWindowSeconds) * time.Second)

	// Remove old entries
	for len(a.messageTimes) > 0 && a.messageTimes[0].Before(cutoff) {
		a.messageTimes = a.messageTimes[1:]
	}

	a.messageTimes = append(a.messageTimes, t)
}

func (a *Aggregator) addRecentError(err string) {
	a.recentErrors[a.errorIndex] = err
	a.errorIndex = (a.errorIndex + 1) % len(a.recentErrors)
}

func (a *Aggregator) calculateRate(times []time.Time, now time.Time) float64 {
	if len(times) == 0 {
		return 0.0
	}

	cutoff := now.Add(-time.Duration(a.cfg.RateWindowSeconds) * time.Second)
	count := 0

	for _, t := range times {
		if t.After(cutoff) {
			count++
		}
	}

	return float64(count) / float64(a.cfg.RateWindowSeconds)
}
