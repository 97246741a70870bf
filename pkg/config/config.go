package config

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	channelPath   = "/ws"
	telemetryPath = "/api/telemetry"
)

type Config struct {
	BaseURL           string
	ChannelURL        string
	TelemetryURL      string
	Channel           ChannelConfig
	Telemetry         TelemetryConfig
	Query             QueryConfig
	Overlay           OverlayConfig
	MetricsListenAddr string
}

type ChannelConfig struct {
	MaxReconnects    int
	ReconnectDelayMs int
}

type TelemetryConfig struct {
	PollIntervalMs int
}

type QueryConfig struct {
	GraceMs int
}

type OverlayConfig struct {
	RefWidth  int
	RefHeight int
}

// Load loads configuration from CLI flags and environment variables
// CLI flags take precedence over environment variables
func Load() (*Config, error) {
	// Parse CLI flags
	flagSource, showHelp := parseCLIFlags()

	if showHelp {
		printUsage()
		return nil, nil // Return nil to indicate help was shown
	}

	return load(flagSource, &EnvSource{})
}

// load builds a Config from the given sources in order of precedence.
func load(sources ...ConfigSource) (*Config, error) {
	resolver := NewConfigResolver(sources...)

	cfg := &Config{
		BaseURL: resolver.ResolveString(KeyBaseURL, ""),
		Channel: ChannelConfig{
			MaxReconnects:    resolver.ResolveInt(KeyChannelMaxReconnects, DefaultChannelMaxReconnects),
			ReconnectDelayMs: resolver.ResolveInt(KeyChannelReconnectDelayMs, DefaultChannelReconnectDelayMs),
		},
		Telemetry: TelemetryConfig{
			PollIntervalMs: resolver.ResolveInt(KeyTelemetryPollIntervalMs, DefaultTelemetryPollIntervalMs),
		},
		Query: QueryConfig{
			GraceMs: resolver.ResolveInt(KeyQueryGraceMs, DefaultQueryGraceMs),
		},
		Overlay: OverlayConfig{
			RefWidth:  resolver.ResolveInt(KeyOverlayRefWidth, DefaultOverlayRefWidth),
			RefHeight: resolver.ResolveInt(KeyOverlayRefHeight, DefaultOverlayRefHeight),
		},
		MetricsListenAddr: resolver.ResolveString(KeyMetricsListenAddr, DefaultMetricsListenAddr),
	}

	// "off" disables the metrics/debug server
	if strings.EqualFold(cfg.MetricsListenAddr, "off") {
		cfg.MetricsListenAddr = ""
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	channelURL, telemetryURL, err := deriveEndpoints(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg.ChannelURL = channelURL
	cfg.TelemetryURL = telemetryURL

	return cfg, nil
}

// deriveEndpoints builds the websocket channel URL and the telemetry
// poll URL from the backend base URL.
func deriveEndpoints(base string) (string, string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", "", fmt.Errorf("invalid %s: %w", KeyBaseURL, err)
	}

	ws := *u
	switch u.Scheme {
	case "http":
		ws.Scheme = "ws"
	case "https":
		ws.Scheme = "wss"
	default:
		return "", "", fmt.Errorf("invalid %s: unsupported scheme %q", KeyBaseURL, u.Scheme)
	}
	ws.Path = strings.TrimSuffix(u.Path, "/") + channelPath

	poll := *u
	poll.Path = strings.TrimSuffix(u.Path, "/") + telemetryPath

	return ws.String(), poll.String(), nil
}
