package wire

// Telemetry shapes returned by the backend's pull endpoint
// (GET /api/telemetry). Replaced wholesale on every poll.

// DeviceMetrics is the device-level reading for one poll.
type DeviceMetrics struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	MemoryPercent float64 `json:"memory_percent"`
	TemperatureC  float64 `json:"temperature_c"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Timestamp     float64 `json:"timestamp"`
}

// Container lifecycle states as reported by the backend.
const (
	ContainerRunning    = "running"
	ContainerStopped    = "stopped"
	ContainerRestarting = "restarting"
	ContainerUnknown    = "unknown"
)

// ContainerStatus describes one service container on the device. Order in
// TelemetryData.Containers follows the backend's report.
type ContainerStatus struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Uptime     string  `json:"uptime"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memory_mb"`
}

// TelemetryData is the full pull endpoint document.
type TelemetryData struct {
	Device        *DeviceMetrics    `json:"device"`
	Containers    []ContainerStatus `json:"containers"`
	IsRaspberryPi bool              `json:"is_raspberry_pi"`
	Timestamp     float64           `json:"timestamp"`
}

// ContainerState normalizes a reported status string to one of the known
// container states.
func ContainerState(status string) string {
	switch status {
	case ContainerRunning, ContainerStopped, ContainerRestarting:
		return status
	default:
		return ContainerUnknown
	}
}
