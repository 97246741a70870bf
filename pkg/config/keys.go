package config

// Configuration key constants
// These constants centralize all environment variable and configuration key names
// to eliminate magic strings and improve maintainability.

const (
	// Core service configuration keys
	KeyBaseURL = "TRACKER_BASE_URL"

	// Channel configuration keys
	KeyChannelMaxReconnects    = "CHANNEL_MAX_RECONNECTS"
	KeyChannelReconnectDelayMs = "CHANNEL_RECONNECT_DELAY_MS"

	// Telemetry configuration keys
	KeyTelemetryPollIntervalMs = "TELEMETRY_POLL_INTERVAL_MS"

	// Query configuration keys
	KeyQueryGraceMs = "QUERY_GRACE_MS"

	// Overlay configuration keys
	KeyOverlayRefWidth  = "OVERLAY_REF_WIDTH"
	KeyOverlayRefHeight = "OVERLAY_REF_HEIGHT"

	// Observability configuration keys
	KeyMetricsListenAddr = "METRICS_LISTEN_ADDR"
)

// Default values for configuration
const (
	// Channel defaults
	DefaultChannelMaxReconnects    = 5
	DefaultChannelReconnectDelayMs = 2000

	// Telemetry defaults
	DefaultTelemetryPollIntervalMs = 2000

	// Query defaults
	DefaultQueryGraceMs = 1500

	// Overlay defaults
	DefaultOverlayRefWidth  = 640
	DefaultOverlayRefHeight = 640

	// Observability defaults
	DefaultMetricsListenAddr = ":9108"
)

// CLI flag name constants
const (
	// CLI flag names (kebab-case for command line)
	FlagBaseURL                 = "base-url"
	FlagChannelMaxReconnects    = "channel-max-reconnects"
	FlagChannelReconnectDelayMs = "channel-reconnect-delay-ms"
	FlagTelemetryPollIntervalMs = "telemetry-poll-interval-ms"
	FlagQueryGraceMs            = "query-grace-ms"
	FlagOverlayRefWidth         = "overlay-ref-width"
	FlagOverlayRefHeight        = "overlay-ref-height"
	FlagMetricsListenAddr       = "metrics-listen-addr"
	FlagHelp                    = "help"
)

// Help message constants
const (
	AppName        = "Tracker Sync"
	AppDescription = "Synchronize tracking, telemetry and query state with a tracker backend"
	UsageFormat    = "trksync [OPTIONS]"

	// Help descriptions
	HelpBaseURL                 = "Tracker backend base URL (required)"
	HelpChannelMaxReconnects    = "Max automatic reconnect attempts"
	HelpChannelReconnectDelayMs = "Delay between reconnect attempts in milliseconds"
	HelpTelemetryPollIntervalMs = "Telemetry poll interval in milliseconds"
	HelpQueryGraceMs            = "Grace period before failing a pending query on disconnect, in milliseconds"
	HelpOverlayRefWidth         = "Reference frame width in pixels"
	HelpOverlayRefHeight        = "Reference frame height in pixels"
	HelpMetricsListenAddr       = "Listen address for the metrics/debug server (\"off\" disables)"
	HelpShowHelp                = "Show this help message"

	// Environment variable descriptions (reuse help descriptions)
	EnvDescBaseURL                 = "Tracker backend base URL"
	EnvDescChannelMaxReconnects    = "Max automatic reconnect attempts"
	EnvDescChannelReconnectDelayMs = "Delay between reconnect attempts in milliseconds"
	EnvDescTelemetryPollIntervalMs = "Telemetry poll interval in milliseconds"
	EnvDescQueryGraceMs            = "Pending query grace period in milliseconds"
	EnvDescOverlayRefWidth         = "Reference frame width in pixels"
	EnvDescOverlayRefHeight        = "Reference frame height in pixels"
	EnvDescMetricsListenAddr       = "Metrics/debug server listen address"

	// Help section headers
	HelpOptions         = "Options:"
	HelpEnvironmentVars = "Environment Variables:"
	HelpUsage           = "Usage:"
	HelpNote            = "Note: CLI options override environment variables"
)
