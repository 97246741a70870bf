// Package telemetry polls the backend's pull endpoint for device and
// container health on a fixed interval. It is independent of the push
// channel: the two sources interleave arbitrarily and share no ordering.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"tracker-sync/pkg/health"
	"tracker-sync/pkg/history"
	"tracker-sync/pkg/stats"
	"tracker-sync/pkg/wire"
)

const (
	// DefaultInterval between polls. Fixed, no backoff: a monitoring
	// surface wants a predictable cadence even while the backend is down.
	DefaultInterval = 2 * time.Second

	// HistoryCapacity bounds each of the cpu/memory/temperature buffers.
	HistoryCapacity = 30
)

// Options configures a Poller.
type Options struct {
	URL      string // full pull endpoint URL
	Interval time.Duration
	Client   *http.Client
	Logger   *log.Logger
	Stats    stats.Publisher
}

// Poller issues periodic fetches and keeps the latest telemetry visible.
// On failure the previous data stays up (stale beats blank) with an error
// string set until the next success.
type Poller struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *log.Logger
	statsPub stats.Publisher

	mu         sync.RWMutex
	device     *wire.DeviceMetrics
	containers []wire.ContainerStatus
	isPi       bool
	lastError  string
	updatedAt  time.Time
	cpuHist    *history.Buffer
	memHist    *history.Buffer
	tempHist   *history.Buffer

	refreshCh chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewPoller creates a Poller. Call Start to begin polling.
func NewPoller(opts Options) (*Poller, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("telemetry: URL is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Interval}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Stats == nil {
		opts.Stats = stats.NewNoopPublisher()
	}

	cpuHist, err := history.New(HistoryCapacity)
	if err != nil {
		return nil, err
	}
	memHist, err := history.New(HistoryCapacity)
	if err != nil {
		return nil, err
	}
	tempHist, err := history.New(HistoryCapacity)
	if err != nil {
		return nil, err
	}

	return &Poller{
		url:       opts.URL,
		interval:  opts.Interval,
		client:    opts.Client,
		logger:    opts.Logger,
		statsPub:  opts.Stats,
		cpuHist:   cpuHist,
		memHist:   memHist,
		tempHist:  tempHist,
		refreshCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins the poll loop: one immediate fetch, then one per interval.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.loop(ctx)
}

// Stop releases the poll timer and waits for the loop to exit. No timer
// survives teardown.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

// RefreshNow requests an immediate out-of-schedule poll. Non-blocking; a
// refresh already queued is enough.
func (p *Poller) RefreshNow() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		case <-p.refreshCh:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.fail(fmt.Errorf("build request: %w", err))
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.fail(fmt.Errorf("fetch telemetry: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		p.fail(fmt.Errorf("fetch telemetry: unexpected status %d", resp.StatusCode))
		return
	}

	var data wire.TelemetryData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		p.fail(fmt.Errorf("decode telemetry: %w", err))
		return
	}

	p.apply(data)
	p.statsPub.Publish(stats.NewPollCompleted(time.Since(start)))
}

// fail records the poll error and keeps the stale data visible. The loop
// stays on schedule regardless.
func (p *Poller) fail(err error) {
	p.mu.Lock()
	p.lastError = err.Error()
	p.mu.Unlock()

	p.logger.Printf("telemetry poll failed: %v", err)
	p.statsPub.Publish(stats.NewClientError(err, "telemetry_poll", stats.ErrorSeverityWarning))
}

func (p *Poller) apply(data wire.TelemetryData) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.device = data.Device
	p.containers = data.Containers
	p.isPi = data.IsRaspberryPi
	p.lastError = ""
	p.updatedAt = time.Now()

	if data.Device != nil {
		p.cpuHist.Push(data.Device.CPUPercent)
		p.memHist.Push(data.Device.MemoryPercent)
		p.tempHist.Push(data.Device.TemperatureC)
	}
}

// Metrics returns the latest device metrics, or nil if none were ever
// received. The returned struct is a copy.
func (p *Poller) Metrics() *wire.DeviceMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.device == nil {
		return nil
	}
	m := *p.device
	return &m
}

// Containers returns the latest container statuses in reported order.
func (p *Poller) Containers() []wire.ContainerStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]wire.ContainerStatus, len(p.containers))
	copy(out, p.containers)
	return out
}

// LastError returns the current poll error, empty after a success.
func (p *Poller) LastError() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastError
}

// IsRaspberryPi reports the device flag from the latest poll.
func (p *Poller) IsRaspberryPi() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isPi
}

// UpdatedAt returns the time of the last successful poll.
func (p *Poller) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}

// Health classifies the latest metrics. Critical until the first successful
// poll: an unobserved device must not look healthy.
func (p *Poller) Health() health.Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.device == nil {
		return health.StatusCritical
	}
	return health.Classify(p.device.CPUPercent, p.device.MemoryPercent, p.device.TemperatureC)
}

// CPUHistory returns recent cpu samples, oldest first.
func (p *Poller) CPUHistory() []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cpuHist.Values()
}

// MemoryHistory returns recent memory-percent samples, oldest first.
func (p *Poller) MemoryHistory() []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.memHist.Values()
}

// TemperatureHistory returns recent temperature samples, oldest first.
func (p *Poller) TemperatureHistory() []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tempHist.Values()
}
