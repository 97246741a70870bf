package main

import (
	"context"
	"log"
	"time"

	"tracker-sync/pkg/config"
	"tracker-sync/pkg/stats"
	"tracker-sync/pkg/utils"
)

// CLI represents the command-line interface runner
type CLI struct {
	stats  stats.Reader
	config *config.Config
	logger *log.Logger

	// State
	lastSnapshot stats.Snapshot
	done         chan struct{}
}

// NewCLI creates a new command-line interface runner
func NewCLI(statsReader stats.Reader, cfg *config.Config, logger *log.Logger) *CLI {
	return &CLI{
		stats:  statsReader,
		config: cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Run starts the CLI runner and blocks until shutdown
func (c *CLI) Run(ctx context.Context) error {
	c.logger.Printf("Starting Tracker Sync in quiet mode")
	c.logger.Printf("Backend: %s", c.config.BaseURL)
	c.logger.Printf("Channel: %s", c.config.ChannelURL)
	c.logger.Printf("Telemetry poll interval: %d ms", c.config.Telemetry.PollIntervalMs)

	// Print periodic status updates
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Printf("Shutting down...")
			return nil
		case <-ticker.C:
			c.printStatus()
		case <-c.done:
			return nil
		}
	}
}

// Stop stops the CLI runner
func (c *CLI) Stop() {
	close(c.done)
}

// printStatus prints current client status
func (c *CLI) printStatus() {
	snapshot := c.stats.Snapshot()

	if c.shouldPrintStatus(snapshot) {
		c.logger.Printf("Status - Messages: received=%s, sent=%s, rate=%.1f/s, errors=%s",
			utils.FormatNumber(snapshot.MessagesReceived),
			utils.FormatNumber(snapshot.MessagesSent),
			snapshot.MessagesPerSecond,
			utils.FormatNumber(snapshot.ErrorsTotal))

		c.logger.Printf("Channel - status=%s, connected=%t, attempts=%d",
			snapshot.ChannelStatus,
			snapshot.ChannelConnected,
			snapshot.ReconnectAttempts)
		if snapshot.GaveUp {
			c.logger.Printf("Channel gave up reconnecting; a manual connect is required")
		}

		if snapshot.SnapshotsApplied > 0 {
			c.logger.Printf("Stream - fps=%.1f, active=%d",
				snapshot.LastFPS,
				snapshot.LastActiveCount)
		}

		for _, kc := range utils.SortKindsByCount(snapshot.MessagesByKind) {
			c.logger.Printf("  %-18s %s", utils.KindLabel(kc.Kind), utils.FormatNumber(kc.Count))
		}
	}

	c.lastSnapshot = snapshot
}

// shouldPrintStatus determines if we should print a status update
func (c *CLI) shouldPrintStatus(snapshot stats.Snapshot) bool {
	// Always print first status
	if c.lastSnapshot.MessagesReceived == 0 && c.lastSnapshot.MessagesSent == 0 {
		return true
	}

	// Print if message counts changed
	if snapshot.MessagesReceived != c.lastSnapshot.MessagesReceived ||
		snapshot.MessagesSent != c.lastSnapshot.MessagesSent {
		return true
	}

	// Print if there are errors
	if snapshot.ErrorsTotal > c.lastSnapshot.ErrorsTotal {
		return true
	}

	// Print if connection status changed
	if snapshot.ChannelStatus != c.lastSnapshot.ChannelStatus ||
		snapshot.ChannelConnected != c.lastSnapshot.ChannelConnected {
		return true
	}

	return false
}
