package config

import "fmt"

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%s is required", KeyBaseURL)
	}
	if c.Channel.MaxReconnects < 0 {
		return fmt.Errorf("%s must not be negative", KeyChannelMaxReconnects)
	}
	if c.Channel.ReconnectDelayMs < 0 {
		return fmt.Errorf("%s must not be negative", KeyChannelReconnectDelayMs)
	}
	if c.Telemetry.PollIntervalMs <= 0 {
		return fmt.Errorf("%s must be positive", KeyTelemetryPollIntervalMs)
	}
	if c.Query.GraceMs <= 0 {
		return fmt.Errorf("%s must be positive", KeyQueryGraceMs)
	}
	if c.Overlay.RefWidth <= 0 || c.Overlay.RefHeight <= 0 {
		return fmt.Errorf("%s and %s must be positive", KeyOverlayRefWidth, KeyOverlayRefHeight)
	}
	return nil
}
