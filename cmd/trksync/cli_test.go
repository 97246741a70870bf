package main

import (
	"io"
	"log"
	"testing"

	"tracker-sync/pkg/config"
	"tracker-sync/pkg/stats"
)

type fixedReader struct {
	snapshot stats.Snapshot
}

func (f *fixedReader) Snapshot() stats.Snapshot { return f.snapshot }

func newTestCLI(reader stats.Reader) *CLI {
	cfg := &config.Config{BaseURL: "http://tracker.local:5000"}
	return NewCLI(reader, cfg, log.New(io.Discard, "", 0))
}

func TestShouldPrintStatus(t *testing.T) {
	c := newTestCLI(&fixedReader{})

	t.Run("first status always prints", func(t *testing.T) {
		if !c.shouldPrintStatus(stats.Snapshot{}) {
			t.Error("expected first status to print")
		}
	})

	c.lastSnapshot = stats.Snapshot{
		MessagesReceived: 10,
		MessagesSent:     2,
		ChannelStatus:    "connected",
		ChannelConnected: true,
	}

	t.Run("no change is quiet", func(t *testing.T) {
		if c.shouldPrintStatus(c.lastSnapshot) {
			t.Error("expected unchanged snapshot to be quiet")
		}
	})

	t.Run("message count change prints", func(t *testing.T) {
		snap := c.lastSnapshot
		snap.MessagesReceived = 11
		if !c.shouldPrintStatus(snap) {
			t.Error("expected changed message count to print")
		}
	})

	t.Run("new error prints", func(t *testing.T) {
		snap := c.lastSnapshot
		snap.ErrorsTotal = 1
		if !c.shouldPrintStatus(snap) {
			t.Error("expected new error to print")
		}
	})

	t.Run("connection change prints", func(t *testing.T) {
		snap := c.lastSnapshot
		snap.ChannelStatus = "disconnected"
		snap.ChannelConnected = false
		if !c.shouldPrintStatus(snap) {
			t.Error("expected connection change to print")
		}
	})
}

func TestPrintStatusUpdatesLastSnapshot(t *testing.T) {
	reader := &fixedReader{snapshot: stats.Snapshot{
		MessagesReceived: 5,
		MessagesByKind:   map[string]uint64{"system_alert": 5},
		ChannelStatus:    "connected",
		ChannelConnected: true,
		GaveUp:           false,
	}}
	c := newTestCLI(reader)

	c.printStatus()
	if c.lastSnapshot.MessagesReceived != 5 {
		t.Errorf("expected lastSnapshot updated, got %+v", c.lastSnapshot)
	}
}
