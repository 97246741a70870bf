package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tracker-sync/pkg/channel"
	"tracker-sync/pkg/query"
	"tracker-sync/pkg/stats"
	"tracker-sync/pkg/telemetry"
	"tracker-sync/pkg/tracking"
	"tracker-sync/pkg/version"
	"tracker-sync/pkg/wire"
)

// debugDeps are the components the debug server reads from.
type debugDeps struct {
	Stats   stats.Reader
	Channel *channel.Manager
	Decoder *tracking.Decoder
	Poller  *telemetry.Poller
	Bridge  *query.Bridge
}

// newDebugServer exposes Prometheus metrics plus small JSON endpoints for
// inspecting the live client state and driving queries by hand.
func newDebugServer(addr string, deps debugDeps) *http.Server {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler())

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "OK",
			"version":       version.Info(),
			"channel":       deps.Channel.State().Status,
			"device_health": deps.Poller.Health(),
			"timestamp":     time.Now(),
		})
	}).Methods("GET")

	r.HandleFunc("/api/state", func(w http.ResponseWriter, req *http.Request) {
		var uptime string
		if m := deps.Poller.Metrics(); m != nil {
			uptime = telemetry.FormatUptime(int64(m.UptimeSeconds))
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"channel": deps.Channel.State(),
			"stats":   deps.Stats.Snapshot(),
			"tracking": map[string]interface{}{
				"snapshot":             deps.Decoder.Snapshot(),
				"active_entities":      deps.Decoder.ActiveEntities(),
				"fps_history":          deps.Decoder.FPSHistory(),
				"active_count_history": deps.Decoder.ActiveCountHistory(),
			},
			"telemetry": map[string]interface{}{
				"device":              deps.Poller.Metrics(),
				"containers":          deps.Poller.Containers(),
				"health":              deps.Poller.Health(),
				"uptime":              uptime,
				"is_raspberry_pi":     deps.Poller.IsRaspberryPi(),
				"last_error":          deps.Poller.LastError(),
				"cpu_history":         deps.Poller.CPUHistory(),
				"memory_history":      deps.Poller.MemoryHistory(),
				"temperature_history": deps.Poller.TemperatureHistory(),
			},
			"pending_query": deps.Bridge.Pending(),
		})
	}).Methods("GET")

	r.HandleFunc("/api/query", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Text == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
			return
		}
		switch err := deps.Bridge.Submit(body.Text); {
		case errors.Is(err, query.ErrBusy):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, query.ErrNotConnected):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted"})
		}
	}).Methods("POST")

	r.HandleFunc("/api/telemetry/refresh", func(w http.ResponseWriter, req *http.Request) {
		deps.Poller.RefreshNow()
		// Also nudge the backend to push fresh telemetry over the channel.
		// Being disconnected is not an error here; the poll still runs.
		if err := deps.Channel.Send(wire.KindTelemetryRequest, nil); err != nil && !errors.Is(err, channel.ErrNotConnected) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
	}).Methods("POST")

	r.HandleFunc("/api/connect", func(w http.ResponseWriter, req *http.Request) {
		deps.Channel.Connect()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "connecting"})
	}).Methods("POST")

	return &http.Server{
		Handler:      r,
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
