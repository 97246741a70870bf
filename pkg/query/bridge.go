// Package query layers a single-in-flight request/response exchange on top
// of the push channel. Replies carry no correlation id, so at most one query
// may be outstanding; a second submission is rejected, never queued.
package query

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"tracker-sync/pkg/channel"
	"tracker-sync/pkg/stats"
	"tracker-sync/pkg/wire"
)

// DefaultGrace is how long the bridge waits after a disconnect before
// fabricating a failure reply for a pending query.
const DefaultGrace = 1500 * time.Millisecond

var (
	// ErrBusy means a query is already pending on this connection.
	ErrBusy = errors.New("query: another query is pending")
	// ErrNotConnected means the channel is down.
	ErrNotConnected = errors.New("query: channel not connected")
)

// Response is a terminal answer to a submitted query. Synthetic marks a
// failure reply fabricated by the bridge after a disconnect.
type Response struct {
	Text      string
	Synthetic bool
}

// Pending describes the one permitted in-flight query.
type Pending struct {
	Text     string
	IssuedAt time.Time
}

// Channel is the slice of the connection manager the bridge depends on.
type Channel interface {
	Subscribe(kind string, h channel.MessageHandler)
	SubscribeState(h channel.StateHandler)
	Send(kind string, payload any) error
	Connected() bool
}

// Options configures a Bridge.
type Options struct {
	Grace   time.Duration
	Context func() wire.QueryContext // scene context attached to outbound queries
	Logger  *log.Logger
	Stats   stats.Publisher
}

// Bridge serializes queries over the channel and demultiplexes direct
// replies from unsolicited alerts.
type Bridge struct {
	ch        Channel
	grace     time.Duration
	contextFn func() wire.QueryContext
	logger    *log.Logger
	statsPub  stats.Publisher

	mu         sync.Mutex
	pending    *Pending
	failTimer  *time.Timer
	onResponse func(Response)
	onAlert    func(wire.Alert)
}

// NewBridge creates a Bridge subscribed to reply and alert kinds on ch.
func NewBridge(ch Channel, opts Options) *Bridge {
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Stats == nil {
		opts.Stats = stats.NewNoopPublisher()
	}

	b := &Bridge{
		ch:        ch,
		grace:     opts.Grace,
		contextFn: opts.Context,
		logger:    opts.Logger,
		statsPub:  opts.Stats,
	}
	ch.Subscribe(wire.KindQueryResponse, b.handleResponse)
	ch.Subscribe(wire.KindAlert, b.handleAlert)
	ch.SubscribeState(b.handleState)
	return b
}

// OnResponse registers the handler for terminal query replies, synthetic or
// real. Exactly one fires per accepted query.
func (b *Bridge) OnResponse(h func(Response)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onResponse = h
}

// OnAlert registers the handler for unsolicited system alerts. Alerts are
// forwarded at any time, pending query or not, and never touch the pending
// flag.
func (b *Bridge) OnAlert(h func(wire.Alert)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onAlert = h
}

// Pending returns a copy of the in-flight query, or nil.
func (b *Bridge) Pending() *Pending {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return nil
	}
	p := *b.pending
	return &p
}

// Submit sends one query over the channel. Rejected synchronously with
// ErrBusy while a query is pending and ErrNotConnected while the channel is
// down; never queued.
func (b *Bridge) Submit(text string) error {
	b.mu.Lock()
	if b.pending != nil {
		b.mu.Unlock()
		return ErrBusy
	}
	if !b.ch.Connected() {
		b.mu.Unlock()
		return ErrNotConnected
	}
	// Claim the slot before releasing the lock so a concurrent Submit is
	// rejected rather than racing for the single pending slot.
	b.pending = &Pending{Text: text, IssuedAt: time.Now()}
	b.mu.Unlock()

	var queryCtx wire.QueryContext
	if b.contextFn != nil {
		queryCtx = b.contextFn()
	}

	if err := b.ch.Send(wire.KindQuerySubmit, wire.QuerySubmit{Text: text, Context: queryCtx}); err != nil {
		b.mu.Lock()
		b.pending = nil
		b.mu.Unlock()
		if errors.Is(err, channel.ErrNotConnected) {
			return ErrNotConnected
		}
		return err
	}

	b.statsPub.Publish(stats.NewQuerySubmitted())
	return nil
}

// Close cancels the synthetic-failure timer. Call on teardown.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopFailTimerLocked()
	b.pending = nil
}

func (b *Bridge) handleResponse(data json.RawMessage) {
	var resp wire.QueryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		b.statsPub.Publish(stats.NewClientError(err, "query_decode", stats.ErrorSeverityInfo))
		return
	}

	b.mu.Lock()
	if b.pending == nil {
		// A reply with nothing outstanding: drop it, there is no query
		// to attribute it to.
		b.mu.Unlock()
		b.statsPub.Publish(stats.NewClientError(errors.New("reply with no pending query"), "query_orphan_reply", stats.ErrorSeverityInfo))
		return
	}
	latency := time.Since(b.pending.IssuedAt)
	b.pending = nil
	b.stopFailTimerLocked()
	handler := b.onResponse
	b.mu.Unlock()

	b.statsPub.Publish(stats.NewQueryResolved(false, latency))
	if handler != nil {
		handler(Response{Text: resp.Text})
	}
}

func (b *Bridge) handleAlert(data json.RawMessage) {
	var alert wire.Alert
	if err := json.Unmarshal(data, &alert); err != nil {
		b.statsPub.Publish(stats.NewClientError(err, "alert_decode", stats.ErrorSeverityInfo))
		return
	}

	b.mu.Lock()
	handler := b.onAlert
	b.mu.Unlock()

	if handler != nil {
		handler(alert)
	}
}

// handleState watches for disconnections. A pending query must not wait
// forever: after the grace delay with no reply, fabricate exactly one
// failure response.
func (b *Bridge) handleState(st channel.State) {
	if st.Connected {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil || b.failTimer != nil {
		return
	}
	b.failTimer = time.AfterFunc(b.grace, b.syntheticFailure)
}

func (b *Bridge) syntheticFailure() {
	b.mu.Lock()
	b.failTimer = nil
	if b.pending == nil {
		// The real reply won the race during the grace window.
		b.mu.Unlock()
		return
	}
	issued := b.pending.IssuedAt
	b.pending = nil
	handler := b.onResponse
	b.mu.Unlock()

	b.logger.Printf("query failed: channel lost before a reply arrived")
	b.statsPub.Publish(stats.NewQueryResolved(true, time.Since(issued)))
	if handler != nil {
		handler(Response{
			Text:      "The connection was lost before a reply arrived. Please try again.",
			Synthetic: true,
		})
	}
}

func (b *Bridge) stopFailTimerLocked() {
	if b.failTimer != nil {
		b.failTimer.Stop()
		b.failTimer = nil
	}
}
