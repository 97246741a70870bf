package telemetry

import "fmt"

// FormatUptime renders whole seconds as "1d 1h 1m", "1h 1m" or "0m"
// depending on the largest non-zero unit. Seconds are never shown.
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
