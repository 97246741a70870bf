package query

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"tracker-sync/pkg/channel"
	"tracker-sync/pkg/wire"
)

// fakeChannel implements Channel with scriptable connectivity and captured
// outbound sends.
type fakeChannel struct {
	mu        sync.Mutex
	connected bool
	sendErr   error
	sent      []wire.Envelope
	handlers  map[string][]channel.MessageHandler
	stateSubs []channel.StateHandler
}

func newFakeChannel(connected bool) *fakeChannel {
	return &fakeChannel{connected: connected, handlers: make(map[string][]channel.MessageHandler)}
}

func (c *fakeChannel) Subscribe(kind string, h channel.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[kind] = append(c.handlers[kind], h)
}

func (c *fakeChannel) SubscribeState(h channel.StateHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateSubs = append(c.stateSubs, h)
}

func (c *fakeChannel) Send(kind string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	env, err := wire.NewEnvelope(kind, payload)
	if err != nil {
		return err
	}
	c.sent = append(c.sent, env)
	return nil
}

func (c *fakeChannel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeChannel) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func (c *fakeChannel) push(t *testing.T, kind string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c.mu.Lock()
	handlers := append([]channel.MessageHandler(nil), c.handlers[kind]...)
	c.mu.Unlock()
	for _, h := range handlers {
		h(data)
	}
}

func (c *fakeChannel) disconnect() {
	c.mu.Lock()
	c.connected = false
	subs := append([]channel.StateHandler(nil), c.stateSubs...)
	c.mu.Unlock()
	for _, h := range subs {
		h(channel.State{Status: channel.StatusDisconnected, Connected: false, LastError: "connection reset"})
	}
}

func newTestBridge(t *testing.T, ch Channel, grace time.Duration) *Bridge {
	t.Helper()
	b := NewBridge(ch, Options{
		Grace:  grace,
		Logger: log.New(io.Discard, "", 0),
		Context: func() wire.QueryContext {
			return wire.QueryContext{ActiveCount: 3, FPS: 9.5}
		},
	})
	t.Cleanup(b.Close)
	return b
}

func TestBridge_SubmitSendsContext(t *testing.T) {
	ch := newFakeChannel(true)
	b := newTestBridge(t, ch, DefaultGrace)

	if err := b.Submit("who is near the dairy shelf?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if ch.sentCount() != 1 {
		t.Fatalf("expected 1 outbound message, got %d", ch.sentCount())
	}
	env := ch.sent[0]
	if env.Event != wire.KindQuerySubmit {
		t.Errorf("expected kind %s, got %s", wire.KindQuerySubmit, env.Event)
	}
	var q wire.QuerySubmit
	if err := json.Unmarshal(env.Data, &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Text != "who is near the dairy shelf?" {
		t.Errorf("unexpected text %q", q.Text)
	}
	if q.Context.ActiveCount != 3 || q.Context.FPS != 9.5 {
		t.Errorf("unexpected context %+v", q.Context)
	}
	if b.Pending() == nil {
		t.Error("expected a pending query after Submit")
	}
}

func TestBridge_BusyWhilePending(t *testing.T) {
	ch := newFakeChannel(true)
	b := newTestBridge(t, ch, DefaultGrace)

	if err := b.Submit("first"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := b.Submit("second"); err != ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	// The busy rejection must not have emitted a second outbound message.
	if ch.sentCount() != 1 {
		t.Errorf("expected exactly 1 outbound message, got %d", ch.sentCount())
	}
}

func TestBridge_RejectedWhenDisconnected(t *testing.T) {
	ch := newFakeChannel(false)
	b := newTestBridge(t, ch, DefaultGrace)

	if err := b.Submit("anyone here?"); err != ErrNotConnected {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if b.Pending() != nil {
		t.Error("rejected submit left a pending query behind")
	}
}

func TestBridge_SendFailureClearsPending(t *testing.T) {
	ch := newFakeChannel(true)
	ch.sendErr = channel.ErrNotConnected
	b := newTestBridge(t, ch, DefaultGrace)

	if err := b.Submit("hello"); err != ErrNotConnected {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if b.Pending() != nil {
		t.Error("failed submit left a pending query behind")
	}
}

func TestBridge_ReplyClearsPending(t *testing.T) {
	ch := newFakeChannel(true)
	b := newTestBridge(t, ch, DefaultGrace)

	var responses []Response
	b.OnResponse(func(r Response) { responses = append(responses, r) })

	if err := b.Submit("how busy is the store?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ch.push(t, wire.KindQueryResponse, wire.QueryResponse{Text: "Three customers are currently tracked."})

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if responses[0].Synthetic {
		t.Error("real reply marked synthetic")
	}
	if responses[0].Text != "Three customers are currently tracked." {
		t.Errorf("unexpected reply text %q", responses[0].Text)
	}
	if b.Pending() != nil {
		t.Error("reply did not clear the pending query")
	}

	// The slot is free again.
	if err := b.Submit("and now?"); err != nil {
		t.Errorf("expected submit to succeed after reply, got %v", err)
	}
}

func TestBridge_AlertsForwardedWhilePending(t *testing.T) {
	ch := newFakeChannel(true)
	b := newTestBridge(t, ch, DefaultGrace)

	var alerts []wire.Alert
	b.OnAlert(func(a wire.Alert) { alerts = append(alerts, a) })

	if err := b.Submit("query"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ch.push(t, wire.KindAlert, wire.Alert{Message: "temperature rising", Severity: wire.SeverityWarning})

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Message != "temperature rising" {
		t.Errorf("unexpected alert %+v", alerts[0])
	}
	// Alerts never resolve the pending query.
	if b.Pending() == nil {
		t.Error("alert cleared the pending query")
	}
}

func TestBridge_SyntheticFailureOnDisconnect(t *testing.T) {
	ch := newFakeChannel(true)
	b := newTestBridge(t, ch, 30*time.Millisecond)

	var mu sync.Mutex
	var responses []Response
	b.OnResponse(func(r Response) {
		mu.Lock()
		responses = append(responses, r)
		mu.Unlock()
	})

	if err := b.Submit("query"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ch.disconnect()

	// Within the grace delay nothing fires yet.
	mu.Lock()
	early := len(responses)
	mu.Unlock()
	if early != 0 {
		t.Fatalf("synthetic failure fired before the grace delay")
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(responses) != 1 {
		t.Fatalf("expected exactly 1 synthetic response, got %d", len(responses))
	}
	if !responses[0].Synthetic {
		t.Error("expected the response to be synthetic")
	}
	if b.Pending() != nil {
		t.Error("synthetic failure did not clear the pending query")
	}
}

func TestBridge_RealReplyWinsGraceRace(t *testing.T) {
	ch := newFakeChannel(true)
	b := newTestBridge(t, ch, 50*time.Millisecond)

	var mu sync.Mutex
	var responses []Response
	b.OnResponse(func(r Response) {
		mu.Lock()
		responses = append(responses, r)
		mu.Unlock()
	})

	if err := b.Submit("query"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ch.disconnect()
	// Reply lands inside the grace window (e.g. flushed just before close).
	ch.push(t, wire.KindQueryResponse, wire.QueryResponse{Text: "answer"})

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(responses) != 1 {
		t.Fatalf("expected exactly 1 response, got %d", len(responses))
	}
	if responses[0].Synthetic {
		t.Error("expected the real reply, got the synthetic one")
	}
}

func TestBridge_DisconnectWithoutPendingIsQuiet(t *testing.T) {
	ch := newFakeChannel(true)
	b := newTestBridge(t, ch, 20*time.Millisecond)

	var mu sync.Mutex
	count := 0
	b.OnResponse(func(Response) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	ch.disconnect()
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("expected no responses without a pending query, got %d", count)
	}
}
