package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/coldshift/adwin"
	"github.com/coldshift/adwin/internal/adwinfeed"
	"github.com/coldshift/adwin/internal/adwinlog"
	"github.com/coldshift/adwin/internal/adwinmgr"
	appconfig "github.com/coldshift/adwin/internal/config"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("adwinstream " + version)
		os.Exit(0)
	}

	// Load configuration before the logger, so log level/format can
	// itself be configured.
	v, err := loadViper(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	settings, err := appconfig.LoadSettings(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := appconfig.NewLogger(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("adwinstream starting", zap.String("version", version))

	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded", zap.String("source", f))
	} else {
		logger.Warn("no configuration file found, using defaults")
	}

	mgr, err := adwinmgr.New(settings.Manager.MaxStreams, adwin.Config{
		Delta:  settings.Delta,
		Logger: logger.Named("adwin"),
	}, logger.Named("adwinmgr"))
	if err != nil {
		logger.Fatal("failed to create stream manager", zap.Error(err))
	}
	logger.Info("stream manager created",
		zap.Int("max_streams", settings.Manager.MaxStreams),
		zap.Float64("delta", settings.Delta),
	)

	limiter := adwinfeed.New(mgr, settings.Feed.RequestsPerSecond, settings.Feed.Burst)
	logger.Info("ingestion limiter created",
		zap.Float64("requests_per_second", settings.Feed.RequestsPerSecond),
		zap.Int("burst", settings.Feed.Burst),
	)

	var eventLog *adwinlog.Store
	if settings.EventLogPath != "" {
		eventLog, err = adwinlog.Open(settings.EventLogPath)
		if err != nil {
			logger.Fatal("failed to open drift event log", zap.Error(err))
		}
		defer eventLog.Close()
		logger.Info("drift event log opened", zap.String("path", settings.EventLogPath))

		mgr.OnDrift(func(streamKey string, info adwin.DriftInfo) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := eventLog.InsertEvent(ctx, adwinlog.Event{
				StreamKey:  streamKey,
				OccurredAt: time.Now().UTC(),
				Dropped:    info.Dropped,
				NobsBefore: info.NobsBefore,
				NobsAfter:  info.NobsAfter,
				MeanBefore: info.MeanBefore,
				MeanAfter:  info.MeanAfter,
			})
			if err != nil {
				logger.Error("failed to record drift event",
					zap.String("stream", streamKey),
					zap.Error(err),
				)
			}
		})
	} else {
		logger.Warn("event_log_path is empty; drift events will not be persisted")
	}

	started := time.Now()
	handler := newMux(logger.Named("http"), limiter, mgr, started)
	srv := &http.Server{
		Addr:    settings.MetricsAddr,
		Handler: handler,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", settings.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("adwinstream ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("adwinstream stopped")
}
