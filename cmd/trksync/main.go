package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"tracker-sync/pkg/channel"
	"tracker-sync/pkg/config"
	"tracker-sync/pkg/metrics"
	"tracker-sync/pkg/overlay"
	"tracker-sync/pkg/query"
	"tracker-sync/pkg/stats"
	"tracker-sync/pkg/telemetry"
	"tracker-sync/pkg/tracking"
	"tracker-sync/pkg/version"
	"tracker-sync/pkg/wire"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("trksync %s\n", version.Info())
		return
	}

	// A missing .env file is fine; explicit env vars and flags still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg == nil {
		return // help was shown
	}

	logger := log.New(os.Stderr, "trksync ", log.LstdFlags)

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	aggregator := stats.NewAggregator(stats.RealClock{}, stats.DefaultConfig())
	aggregator.Start(ctx)
	defer aggregator.Stop()

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)
	pub := stats.Fanout{aggregator, recorder}

	norm, err := overlay.NewNormalizer(float64(cfg.Overlay.RefWidth), float64(cfg.Overlay.RefHeight))
	if err != nil {
		return err
	}

	mgr, err := channel.NewManager(channel.Options{
		URL:           cfg.ChannelURL,
		MaxReconnects: uint(cfg.Channel.MaxReconnects),
		RetryDelay:    time.Duration(cfg.Channel.ReconnectDelayMs) * time.Millisecond,
		Logger:        logger,
		Stats:         pub,
	})
	if err != nil {
		return err
	}

	decoder, err := tracking.NewDecoder(mgr, norm, pub, logger)
	if err != nil {
		return err
	}

	poller, err := telemetry.NewPoller(telemetry.Options{
		URL:      cfg.TelemetryURL,
		Interval: time.Duration(cfg.Telemetry.PollIntervalMs) * time.Millisecond,
		Logger:   logger,
		Stats:    pub,
	})
	if err != nil {
		return err
	}

	bridge := query.NewBridge(mgr, query.Options{
		Grace:   time.Duration(cfg.Query.GraceMs) * time.Millisecond,
		Context: decoder.QueryContext,
		Logger:  logger,
		Stats:   pub,
	})
	defer bridge.Close()

	bridge.OnResponse(func(r query.Response) {
		if r.Synthetic {
			logger.Printf("query failed: %s", r.Text)
			return
		}
		logger.Printf("query answered: %s", r.Text)
	})
	bridge.OnAlert(func(a wire.Alert) {
		logger.Printf("alert [%s]: %s", a.Severity, a.Message)
	})

	poller.Start(ctx)
	defer poller.Stop()

	mgr.Connect()
	defer mgr.Disconnect()

	if cfg.MetricsListenAddr != "" {
		srv := newDebugServer(cfg.MetricsListenAddr, debugDeps{
			Stats:   aggregator,
			Channel: mgr,
			Decoder: decoder,
			Poller:  poller,
			Bridge:  bridge,
		})
		go func() {
			logger.Printf("debug server listening on %s", cfg.MetricsListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("debug server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Printf("debug server shutdown: %v", err)
			}
		}()
	}

	cli := NewCLI(aggregator, cfg, logger)
	return cli.Run(ctx)
}
