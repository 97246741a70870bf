package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"tracker-sync/pkg/stats"
)

// Recorder exposes client activity as Prometheus metrics. It implements
// stats.Publisher so it can sit next to the aggregator behind a Fanout.
type Recorder struct {
	messagesReceived  *prometheus.CounterVec
	messagesSent      *prometheus.CounterVec
	reconnectAttempts prometheus.Counter
	connected         prometheus.Gauge

	snapshotFPS    prometheus.Gauge
	activeEntities prometheus.Gauge

	pollDuration prometheus.Histogram

	queriesSubmitted prometheus.Counter
	queriesResolved  *prometheus.CounterVec

	clientErrors *prometheus.CounterVec
}

// NewRecorder builds a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		messagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_messages_received_total",
				Help: "Total messages received on the channel by kind",
			},
			[]string{"kind"},
		),
		messagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_messages_sent_total",
				Help: "Total messages sent on the channel by kind",
			},
			[]string{"kind"},
		),
		reconnectAttempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "channel_reconnect_attempts_total",
				Help: "Total automatic reconnect attempts",
			},
		),
		connected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "channel_connected",
				Help: "Whether the channel is currently connected (1 or 0)",
			},
		),
		snapshotFPS: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracking_fps",
				Help: "Frames per second reported by the latest tracking snapshot",
			},
		),
		activeEntities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracking_active_entities",
				Help: "Active entities in the latest tracking snapshot",
			},
		),
		pollDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "telemetry_poll_duration_seconds",
				Help:    "Telemetry poll round-trip duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		queriesSubmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "queries_submitted_total",
				Help: "Total queries submitted over the channel",
			},
		),
		queriesResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queries_resolved_total",
				Help: "Total queries resolved by outcome",
			},
			[]string{"outcome"},
		),
		clientErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_errors_total",
				Help: "Total client errors by context",
			},
			[]string{"context"},
		),
	}

	reg.MustRegister(
		r.messagesReceived,
		r.messagesSent,
		r.reconnectAttempts,
		r.connected,
		r.snapshotFPS,
		r.activeEntities,
		r.pollDuration,
		r.queriesSubmitted,
		r.queriesResolved,
		r.clientErrors,
	)

	return r
}

// Publish records the event synchronously. Prometheus collectors are
// lock-free counters, so this is safe to call from the hot path.
func (r *Recorder) Publish(event stats.Event) {
	switch e := event.(type) {
	case stats.ChannelStatusChanged:
		if e.Status == "connected" {
			r.connected.Set(1)
		} else {
			r.connected.Set(0)
		}
		if e.Status == "connecting" && e.Attempts > 0 {
			r.reconnectAttempts.Inc()
		}
	case stats.MessageReceived:
		r.messagesReceived.WithLabelValues(e.Kind).Inc()
	case stats.MessageSent:
		r.messagesSent.WithLabelValues(e.Kind).Inc()
	case stats.SnapshotApplied:
		r.snapshotFPS.Set(e.FPS)
		r.activeEntities.Set(float64(e.ActiveCount))
	case stats.PollCompleted:
		r.pollDuration.Observe(e.Latency.Seconds())
	case stats.QuerySubmitted:
		r.queriesSubmitted.Inc()
	case stats.QueryResolved:
		outcome := "reply"
		if e.Synthetic {
			outcome = "synthetic"
		}
		r.queriesResolved.WithLabelValues(outcome).Inc()
	case stats.ClientError:
		r.clientErrors.WithLabelValues(e.Context).Inc()
	}
}
