package stats

import (
	"context"
	"errors"
	"testing"
	"time"
)

// Mock clock for deterministic testing
type MockClock struct {
	current time.Time
}

func (m *MockClock) Now() time.Time {
	return m.current
}

func (m *MockClock) Advance(d time.Duration) {
	m.current = m.current.Add(d)
}

func startAggregator(t *testing.T) (*Aggregator, *MockClock) {
	t.Helper()
	clock := &MockClock{current: time.Unix(1700000000, 0)}
	agg := NewAggregator(clock, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	agg.Start(ctx)
	t.Cleanup(agg.Stop)
	return agg, clock
}

func TestAggregator_MessageCounting(t *testing.T) {
	agg, _ := startAggregator(t)

	agg.Publish(NewMessageReceived("coordinate_tracking_update"))
	agg.Publish(NewMessageReceived("coordinate_tracking_update"))
	agg.Publish(NewMessageReceived("system_alert"))
	agg.Publish(NewMessageSent("submit_query"))

	// Give aggregator time to process
	time.Sleep(10 * time.Millisecond)

	snapshot := agg.Snapshot()
	if snapshot.MessagesReceived != 3 {
		t.Errorf("expected 3 messages received, got %d", snapshot.MessagesReceived)
	}
	if snapshot.MessagesSent != 1 {
		t.Errorf("expected 1 message sent, got %d", snapshot.MessagesSent)
	}
	if snapshot.MessagesByKind["coordinate_tracking_update"] != 2 {
		t.Errorf("expected 2 tracking updates, got %d", snapshot.MessagesByKind["coordinate_tracking_update"])
	}
}

func TestAggregator_ChannelStatusTracking(t *testing.T) {
	agg, _ := startAggregator(t)

	snapshot := agg.Snapshot()
	if snapshot.ChannelStatus != "disconnected" {
		t.Errorf("expected initial status 'disconnected', got '%s'", snapshot.ChannelStatus)
	}

	agg.Publish(NewChannelStatusChanged("connected", "", 0))
	time.Sleep(10 * time.Millisecond)

	snapshot = agg.Snapshot()
	if !snapshot.ChannelConnected {
		t.Error("expected channel to be connected")
	}
	if snapshot.GaveUp {
		t.Error("did not expect give-up state")
	}

	agg.Publish(NewChannelStatusChanged("gave_up", "read: connection reset", 5))
	time.Sleep(10 * time.Millisecond)

	snapshot = agg.Snapshot()
	if !snapshot.GaveUp {
		t.Error("expected give-up state to be surfaced")
	}
	if snapshot.ReconnectAttempts != 5 {
		t.Errorf("expected 5 reconnect attempts, got %d", snapshot.ReconnectAttempts)
	}
	if snapshot.LastDisconnect != "read: connection reset" {
		t.Errorf("unexpected last disconnect reason: %q", snapshot.LastDisconnect)
	}
}

func TestAggregator_SnapshotAndPollReadings(t *testing.T) {
	agg, _ := startAggregator(t)

	agg.Publish(NewSnapshotApplied(9.7, 3))
	agg.Publish(NewPollCompleted(40 * time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	snapshot := agg.Snapshot()
	if snapshot.SnapshotsApplied != 1 {
		t.Errorf("expected 1 snapshot applied, got %d", snapshot.SnapshotsApplied)
	}
	if snapshot.LastFPS != 9.7 {
		t.Errorf("expected fps 9.7, got %v", snapshot.LastFPS)
	}
	if snapshot.LastActiveCount != 3 {
		t.Errorf("expected active count 3, got %d", snapshot.LastActiveCount)
	}
	if snapshot.PollsCompleted != 1 {
		t.Errorf("expected 1 poll completed, got %d", snapshot.PollsCompleted)
	}
	if snapshot.LastPollLatencyMs != 40 {
		t.Errorf("expected poll latency 40ms, got %v", snapshot.LastPollLatencyMs)
	}
}

func TestAggregator_QueryAndErrorTracking(t *testing.T) {
	agg, _ := startAggregator(t)

	agg.Publish(NewQuerySubmitted())
	agg.Publish(NewQueryResolved(false, 200*time.Millisecond))
	agg.Publish(NewQuerySubmitted())
	agg.Publish(NewQueryResolved(true, 0))
	agg.Publish(NewClientError(errors.New("bad payload"), "tracking_decode", ErrorSeverityInfo))
	agg.Publish(NewClientError(errors.New("poll: 500"), "telemetry_poll", ErrorSeverityWarning))
	time.Sleep(10 * time.Millisecond)

	snapshot := agg.Snapshot()
	if snapshot.QueriesSubmitted != 2 {
		t.Errorf("expected 2 queries submitted, got %d", snapshot.QueriesSubmitted)
	}
	if snapshot.QueriesResolved != 2 {
		t.Errorf("expected 2 queries resolved, got %d", snapshot.QueriesResolved)
	}
	if snapshot.SyntheticReplies != 1 {
		t.Errorf("expected 1 synthetic reply, got %d", snapshot.SyntheticReplies)
	}
	if snapshot.ErrorsTotal != 2 {
		t.Errorf("expected 2 errors, got %d", snapshot.ErrorsTotal)
	}
	if snapshot.ErrorsByContext["tracking_decode"] != 1 {
		t.Errorf("expected 1 tracking_decode error, got %d", snapshot.ErrorsByContext["tracking_decode"])
	}
	if len(snapshot.RecentErrors) != 2 {
		t.Errorf("expected 2 recent errors, got %d", len(snapshot.RecentErrors))
	}
	// Most recent first
	if snapshot.RecentErrors[0] != "poll: 500" {
		t.Errorf("expected most recent error first, got %q", snapshot.RecentErrors[0])
	}
}

func TestAggregator_MessageRate(t *testing.T) {
	clock := &MockClock{current: time.Unix(1700000000, 0)}
	cfg := DefaultConfig()
	agg := NewAggregator(clock, cfg)

	// Drive handleEvent directly for deterministic timing.
	for i := 0; i < 20; i++ {
		agg.handleEvent(NewMessageReceived("coordinate_tracking_update"))
		clock.Advance(100 * time.Millisecond)
	}

	snapshot := agg.Snapshot()
	want := 20.0 / float64(cfg.RateWindowSeconds)
	if snapshot.MessagesPerSecond != want {
		t.Errorf("expected rate %v, got %v", want, snapshot.MessagesPerSecond)
	}
}

func TestAggregator_DropsWhenFull(t *testing.T) {
	clock := &MockClock{current: time.Unix(1700000000, 0)}
	agg := NewAggregator(clock, Config{BufferSize: 1, MaxRecentErrors: 5, RateWindowSeconds: 10})

	// Not started: channel fills up, further publishes must not block.
	agg.Publish(NewMessageReceived("a"))
	done := make(chan struct{})
	go func() {
		agg.Publish(NewMessageReceived("b"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
}
