package config

import (
	"flag"
	"fmt"
)

// parseCLIFlags parses command-line flags and returns a FlagSource and help flag
func parseCLIFlags() (*FlagSource, bool) {
	flagSource := NewFlagSource()

	// Define CLI flags
	baseURL := flag.String(FlagBaseURL, "", HelpBaseURL)
	channelMaxReconnects := flag.Int(FlagChannelMaxReconnects, -1, HelpChannelMaxReconnects)
	channelReconnectDelayMs := flag.Int(FlagChannelReconnectDelayMs, 0, HelpChannelReconnectDelayMs)
	telemetryPollIntervalMs := flag.Int(FlagTelemetryPollIntervalMs, 0, HelpTelemetryPollIntervalMs)
	queryGraceMs := flag.Int(FlagQueryGraceMs, 0, HelpQueryGraceMs)
	overlayRefWidth := flag.Int(FlagOverlayRefWidth, 0, HelpOverlayRefWidth)
	overlayRefHeight := flag.Int(FlagOverlayRefHeight, 0, HelpOverlayRefHeight)
	metricsListenAddr := flag.String(FlagMetricsListenAddr, "", HelpMetricsListenAddr)
	help := flag.Bool(FlagHelp, false, HelpShowHelp)

	flag.Parse()

	if *help {
		return flagSource, true
	}

	// Store non-zero/non-empty values in flag source
	if *baseURL != "" {
		flagSource.Set(KeyBaseURL, *baseURL)
	}
	if *channelMaxReconnects >= 0 {
		flagSource.Set(KeyChannelMaxReconnects, *channelMaxReconnects)
	}
	if *channelReconnectDelayMs != 0 {
		flagSource.Set(KeyChannelReconnectDelayMs, *channelReconnectDelayMs)
	}
	if *telemetryPollIntervalMs != 0 {
		flagSource.Set(KeyTelemetryPollIntervalMs, *telemetryPollIntervalMs)
	}
	if *queryGraceMs != 0 {
		flagSource.Set(KeyQueryGraceMs, *queryGraceMs)
	}
	if *overlayRefWidth != 0 {
		flagSource.Set(KeyOverlayRefWidth, *overlayRefWidth)
	}
	if *overlayRefHeight != 0 {
		flagSource.Set(KeyOverlayRefHeight, *overlayRefHeight)
	}
	if *metricsListenAddr != "" {
		flagSource.Set(KeyMetricsListenAddr, *metricsListenAddr)
	}

	return flagSource, false
}

// printUsage prints the usage message
func printUsage() {
	fmt.Printf("%s - %s\n", AppName, AppDescription)
	fmt.Println()
	fmt.Printf("%s\n", HelpUsage)
	fmt.Printf("  %s\n", UsageFormat)
	fmt.Println()
	fmt.Printf("%s\n", HelpOptions)
	fmt.Printf("  --%s string                %s\n", FlagBaseURL, HelpBaseURL)
	fmt.Printf("  --%s int     %s (default: %d)\n", FlagChannelMaxReconnects, HelpChannelMaxReconnects, DefaultChannelMaxReconnects)
	fmt.Printf("  --%s int %s (default: %d)\n", FlagChannelReconnectDelayMs, HelpChannelReconnectDelayMs, DefaultChannelReconnectDelayMs)
	fmt.Printf("  --%s int %s (default: %d)\n", FlagTelemetryPollIntervalMs, HelpTelemetryPollIntervalMs, DefaultTelemetryPollIntervalMs)
	fmt.Printf("  --%s int            %s (default: %d)\n", FlagQueryGraceMs, HelpQueryGraceMs, DefaultQueryGraceMs)
	fmt.Printf("  --%s int         %s (default: %d)\n", FlagOverlayRefWidth, HelpOverlayRefWidth, DefaultOverlayRefWidth)
	fmt.Printf("  --%s int        %s (default: %d)\n", FlagOverlayRefHeight, HelpOverlayRefHeight, DefaultOverlayRefHeight)
	fmt.Printf("  --%s string     %s (default: %s)\n", FlagMetricsListenAddr, HelpMetricsListenAddr, DefaultMetricsListenAddr)
	fmt.Printf("  --%s                           %s\n", FlagHelp, HelpShowHelp)
	fmt.Println()
	fmt.Printf("%s\n", HelpEnvironmentVars)
	fmt.Printf("  %-28s %s\n", KeyBaseURL, EnvDescBaseURL)
	fmt.Printf("  %-28s %s\n", KeyChannelMaxReconnects, EnvDescChannelMaxReconnects)
	fmt.Printf("  %-28s %s\n", KeyChannelReconnectDelayMs, EnvDescChannelReconnectDelayMs)
	fmt.Printf("  %-28s %s\n", KeyTelemetryPollIntervalMs, EnvDescTelemetryPollIntervalMs)
	fmt.Printf("  %-28s %s\n", KeyQueryGraceMs, EnvDescQueryGraceMs)
	fmt.Printf("  %-28s %s\n", KeyOverlayRefWidth, EnvDescOverlayRefWidth)
	fmt.Printf("  %-28s %s\n", KeyOverlayRefHeight, EnvDescOverlayRefHeight)
	fmt.Printf("  %-28s %s\n", KeyMetricsListenAddr, EnvDescMetricsListenAddr)
	fmt.Println()
	fmt.Printf("%s\n", HelpNote)
}
