// Package health derives a tri-state device health classification from the
// latest telemetry thresholds. The classification is never stored; callers
// recompute it from current metrics on every read.
package health

// Status is the derived health judgment for the device.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Threshold table. Any critical threshold breached wins over warnings.
const (
	cpuCritical  = 90.0
	cpuWarning   = 70.0
	memCritical  = 90.0
	memWarning   = 75.0
	tempCritical = 80.0
	tempWarning  = 70.0
)

// Classify maps a metrics reading to a Status. Inputs are CPU usage percent,
// memory usage percent, and temperature in Celsius.
func Classify(cpuPercent, memoryPercent, temperatureC float64) Status {
	if cpuPercent > cpuCritical || memoryPercent > memCritical || temperatureC > tempCritical {
		return StatusCritical
	}
	if cpuPercent > cpuWarning || memoryPercent > memWarning || temperatureC > tempWarning {
		return StatusWarning
	}
	return StatusHealthy
}
