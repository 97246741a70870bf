// Package tracking decodes the high-frequency object-tracking push stream
// into a replaceable snapshot plus bounded scalar history for charting.
package tracking

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"tracker-sync/pkg/channel"
	"tracker-sync/pkg/history"
	"tracker-sync/pkg/overlay"
	"tracker-sync/pkg/stats"
	"tracker-sync/pkg/wire"
)

// HistoryCapacity bounds the fps and active-count trend buffers.
const HistoryCapacity = 60

// Bus is the subscription surface of the connection manager.
type Bus interface {
	Subscribe(kind string, h channel.MessageHandler)
}

// Entity is one tracked object with its overlay box precomputed in
// percent-of-frame units.
type Entity struct {
	wire.Entity
	Overlay overlay.Box
}

// Snapshot is the single current state of the tracking stream. Each inbound
// update replaces it wholesale; older snapshots survive only as scalar
// history.
type Snapshot struct {
	ActiveCount uint
	FPS         float64
	Entities    []wire.Entity
	ReceivedAt  time.Time
}

// Decoder consumes tracking updates from the channel. A malformed message is
// dropped and the last good snapshot stays authoritative.
type Decoder struct {
	norm     *overlay.Normalizer
	statsPub stats.Publisher
	logger   *log.Logger

	mu         sync.RWMutex
	snapshot   Snapshot
	active     []Entity
	fpsHist    *history.Buffer
	activeHist *history.Buffer
}

// NewDecoder creates a Decoder and subscribes it to the tracking message
// kind on bus.
func NewDecoder(bus Bus, norm *overlay.Normalizer, pub stats.Publisher, logger *log.Logger) (*Decoder, error) {
	if norm == nil {
		return nil, fmt.Errorf("tracking: normalizer is required")
	}
	if pub == nil {
		pub = stats.NewNoopPublisher()
	}
	if logger == nil {
		logger = log.Default()
	}

	fpsHist, err := history.New(HistoryCapacity)
	if err != nil {
		return nil, err
	}
	activeHist, err := history.New(HistoryCapacity)
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		norm:       norm,
		statsPub:   pub,
		logger:     logger,
		fpsHist:    fpsHist,
		activeHist: activeHist,
	}
	bus.Subscribe(wire.KindTrackingUpdate, d.handleUpdate)
	return d, nil
}

func (d *Decoder) handleUpdate(data json.RawMessage) {
	var update wire.TrackingUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		// Stale is better than crash: keep the previous snapshot.
		d.statsPub.Publish(stats.NewClientError(err, "tracking_decode", stats.ErrorSeverityInfo))
		return
	}

	active := make([]Entity, 0, len(update.People))
	for _, e := range update.People {
		if !e.Active {
			continue
		}
		active = append(active, Entity{
			Entity:  e,
			Overlay: d.norm.Normalize(overlay.Box{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}),
		})
	}

	d.mu.Lock()
	d.snapshot = Snapshot{
		ActiveCount: update.ActiveCount,
		FPS:         update.FPS,
		Entities:    update.People,
		ReceivedAt:  time.Now(),
	}
	d.active = active
	d.fpsHist.Push(update.FPS)
	d.activeHist.Push(float64(update.ActiveCount))
	d.mu.Unlock()

	d.statsPub.Publish(stats.NewSnapshotApplied(update.FPS, update.ActiveCount))
}

// Snapshot returns a copy of the current tracking snapshot.
func (d *Decoder) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := d.snapshot
	snap.Entities = make([]wire.Entity, len(d.snapshot.Entities))
	copy(snap.Entities, d.snapshot.Entities)
	return snap
}

// ActiveEntities returns the entities with Active set, each carrying its
// overlay box. Recomputed on every inbound update.
func (d *Decoder) ActiveEntities() []Entity {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Entity, len(d.active))
	copy(out, d.active)
	return out
}

// FPSHistory returns up to HistoryCapacity recent fps samples, oldest first.
func (d *Decoder) FPSHistory() []float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fpsHist.Values()
}

// ActiveCountHistory returns up to HistoryCapacity recent active-count
// samples, oldest first.
func (d *Decoder) ActiveCountHistory() []float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.activeHist.Values()
}

// QueryContext packages the current scene for an outbound query.
func (d *Decoder) QueryContext() wire.QueryContext {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return wire.QueryContext{ActiveCount: d.snapshot.ActiveCount, FPS: d.snapshot.FPS}
}
