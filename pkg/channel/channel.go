// Package channel owns the persistent bidirectional connection to the
// sensing backend. It is the only component that opens or closes the socket;
// decoders and the query bridge observe it through per-kind subscriptions
// and state notifications.
package channel

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"tracker-sync/pkg/stats"
	"tracker-sync/pkg/wire"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection lifecycle statuses visible to subscribers.
const (
	StatusDisconnected = "disconnected"
	StatusConnecting   = "connecting"
	StatusConnected    = "connected"
	StatusGaveUp       = "gave_up"
)

// ErrNotConnected is returned by Send when the socket is down.
var ErrNotConnected = errors.New("channel: not connected")

// State is an immutable snapshot of the connection. Failures surface here as
// a reason string; Connect never returns an error to its caller.
type State struct {
	Status            string
	Connected         bool
	LastError         string
	ReconnectAttempts uint
	SessionID         string
}

// MessageHandler receives the raw payload of one inbound message kind.
type MessageHandler func(data json.RawMessage)

// StateHandler receives connection state transitions.
type StateHandler func(State)

// Options configures a Manager.
type Options struct {
	URL           string        // websocket endpoint
	MaxReconnects uint          // automatic retry bound after unexpected closure
	RetryDelay    time.Duration // fixed delay between attempts
	Logger        *log.Logger
	Stats         stats.Publisher
}

// Manager implements the connection lifecycle: manual connect/disconnect and
// bounded automatic reconnection with a fixed delay. All exported methods are
// safe for concurrent use; internal state mutation is serialized by one lock.
type Manager struct {
	url           string
	maxReconnects uint
	retryDelay    time.Duration
	logger        *log.Logger
	statsPub      stats.Publisher
	dialer        *websocket.Dialer

	mu          sync.Mutex
	conn        *websocket.Conn
	state       State
	subs        map[string][]MessageHandler
	stateSubs   []StateHandler
	retryTimer  *time.Timer
	dialing     bool
	manualClose bool
	gen         uint64 // incremented on every disconnect to invalidate stale read loops

	writeMu sync.Mutex
}

// NewManager creates a Manager. It does not open the socket; call Connect.
func NewManager(opts Options) (*Manager, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("channel: URL is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Stats == nil {
		opts.Stats = stats.NewNoopPublisher()
	}
	return &Manager{
		url:           opts.URL,
		maxReconnects: opts.MaxReconnects,
		retryDelay:    opts.RetryDelay,
		logger:        opts.Logger,
		statsPub:      opts.Stats,
		dialer:        &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		state:         State{Status: StatusDisconnected},
		subs:          make(map[string][]MessageHandler),
	}, nil
}

// Connect opens the channel if it is not already open or opening. Calling it
// while connected is a no-op. Connection failures do not return here; they
// appear in the observable state and feed the retry policy.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.state.Connected || m.dialing {
		m.mu.Unlock()
		return
	}
	m.stopRetryLocked()
	m.manualClose = false
	m.dialing = true
	m.state = State{Status: StatusConnecting, SessionID: uuid.NewString()}
	m.notifyStateLocked()
	m.mu.Unlock()

	go m.dial()
}

// Disconnect closes the channel, cancels any pending reconnection attempt,
// and clears all subscriptions. Safe to call at any time.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.manualClose = true
	m.stopRetryLocked()
	m.gen++
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.dialing = false
	m.state = State{Status: StatusDisconnected, SessionID: m.state.SessionID}
	m.notifyStateLocked()
	m.subs = make(map[string][]MessageHandler)
	m.stateSubs = nil
	m.mu.Unlock()
}

// State returns the current connection state snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports whether the socket is currently open.
func (m *Manager) Connected() bool {
	return m.State().Connected
}

// Subscribe registers a handler for one inbound message kind. Handlers run
// serially on the read loop; they must not block.
func (m *Manager) Subscribe(kind string, h MessageHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[kind] = append(m.subs[kind], h)
}

// SubscribeState registers a handler for connection state transitions.
func (m *Manager) SubscribeState(h StateHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateSubs = append(m.stateSubs, h)
}

// Send marshals payload into an envelope of the given kind and writes it to
// the socket. Pass nil for kinds with no payload.
func (m *Manager) Send(kind string, payload any) error {
	m.mu.Lock()
	conn := m.conn
	connected := m.state.Connected
	m.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	env, err := wire.NewEnvelope(kind, payload)
	if err != nil {
		return err
	}

	m.writeMu.Lock()
	err = conn.WriteJSON(env)
	m.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("channel: write %s: %w", kind, err)
	}

	m.statsPub.Publish(stats.NewMessageSent(kind))
	return nil
}

func (m *Manager) dial() {
	header := http.Header{}
	m.mu.Lock()
	header.Set("X-Client-Session", m.state.SessionID)
	m.mu.Unlock()

	conn, resp, err := m.dialer.Dial(m.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.dialing = false
	if m.manualClose {
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		m.statsPub.Publish(stats.NewClientError(err, "channel_dial", stats.ErrorSeverityError))
		m.dialFailedLocked(err.Error())
		return
	}

	m.conn = conn
	m.state.Status = StatusConnected
	m.state.Connected = true
	m.state.LastError = ""
	m.state.ReconnectAttempts = 0
	m.logger.Printf("channel connected: %s", m.url)
	m.notifyStateLocked()

	gen := m.gen
	go m.readLoop(conn, gen)
}

// readLoop consumes inbound frames until the socket errors. gen guards
// against a stale loop acting after a manual disconnect/reconnect.
func (m *Manager) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			if m.gen != gen || m.manualClose {
				m.mu.Unlock()
				return
			}
			m.gen++
			m.conn = nil
			m.state.Connected = false
			m.logger.Printf("channel closed: %v", err)
			m.connectionLostLocked(err.Error())
			m.mu.Unlock()
			return
		}

		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Malformed frame: drop it, the stream stays up.
			m.statsPub.Publish(stats.NewClientError(err, "channel_decode", stats.ErrorSeverityInfo))
			continue
		}

		m.statsPub.Publish(stats.NewMessageReceived(env.Event))
		m.dispatch(env)
	}
}

func (m *Manager) dispatch(env wire.Envelope) {
	m.mu.Lock()
	handlers := make([]MessageHandler, len(m.subs[env.Event]))
	copy(handlers, m.subs[env.Event])
	m.mu.Unlock()

	for _, h := range handlers {
		h(env.Data)
	}
}

// dialFailedLocked records a failed connection attempt. The attempt counter
// increments on every failure and only resets on success; once it reaches the
// bound the manager stays down until a manual Connect. Caller holds m.mu.
func (m *Manager) dialFailedLocked(reason string) {
	m.state.LastError = reason
	m.state.ReconnectAttempts++

	if m.state.ReconnectAttempts >= m.maxReconnects {
		m.state.Status = StatusGaveUp
		m.state.Connected = false
		m.logger.Printf("channel gave up after %d attempts: %s", m.state.ReconnectAttempts, reason)
		m.notifyStateLocked()
		return
	}

	m.state.Status = StatusDisconnected
	m.state.Connected = false
	m.notifyStateLocked()
	m.scheduleRetryLocked()
}

// connectionLostLocked handles an unexpected closure of an established
// socket. The closure itself is not a failed attempt, so the counter is
// untouched; the next dial failure increments it. Caller holds m.mu.
func (m *Manager) connectionLostLocked(reason string) {
	m.state.LastError = reason
	m.state.Status = StatusDisconnected
	m.state.Connected = false
	m.notifyStateLocked()

	if m.maxReconnects == 0 {
		m.state.Status = StatusGaveUp
		m.notifyStateLocked()
		return
	}
	m.scheduleRetryLocked()
}

func (m *Manager) scheduleRetryLocked() {
	m.logger.Printf("channel retry %d/%d in %s", m.state.ReconnectAttempts+1, m.maxReconnects, m.retryDelay)
	m.retryTimer = time.AfterFunc(m.retryDelay, func() {
		m.mu.Lock()
		if m.manualClose || m.state.Connected || m.dialing {
			m.mu.Unlock()
			return
		}
		m.dialing = true
		m.state.Status = StatusConnecting
		m.notifyStateLocked()
		m.mu.Unlock()
		m.dial()
	})
}

func (m *Manager) stopRetryLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

// notifyStateLocked publishes the transition to stats and state subscribers.
// Caller holds m.mu; handlers are invoked asynchronously so they may call
// back into the manager.
func (m *Manager) notifyStateLocked() {
	st := m.state
	m.statsPub.Publish(stats.NewChannelStatusChanged(st.Status, st.LastError, st.ReconnectAttempts))
	subs := make([]StateHandler, len(m.stateSubs))
	copy(subs, m.stateSubs)
	for _, h := range subs {
		go h(st)
	}
}
