package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nav-tracker/internal/config"
	"nav-tracker/internal/fetcher"
	"nav-tracker/internal/gateway"
	"nav-tracker/internal/logger"
	"nav-tracker/internal/metrics"
	"nav-tracker/internal/nav"
	"nav-tracker/internal/publish"
	"nav-tracker/internal/ringbuf"
	"nav-tracker/internal/scheduler"
	"nav-tracker/internal/tracker"
)

var processStart = time.Now()

func main() {
	cfgPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[tracker] load config: %v", err)
	}

	logger.Init("nav-tracker", logger.ParseLevel(cfg.LogLevel))
	slog.Info("starting",
		"symbol", cfg.Instrument.Symbol,
		"index", cfg.Instrument.IndexSymbol,
		"buffer_capacity", cfg.Tracker.BufferCapacity,
		"poll_interval", cfg.Tracker.PollInterval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mx := metrics.NewMetrics()
	metricsSrv := metrics.NewServer(cfg.Server.MetricsAddr)
	metricsSrv.Start()

	quoter := fetcher.NewYahoo()
	approx := nav.New(quoter, cfg.Instrument.IndexSymbol, cfg.NAV.ScalingFactor, cfg.NAV.NoiseStdDev)
	buf := ringbuf.New(cfg.Tracker.BufferCapacity)
	tr := tracker.New(quoter, cfg.Instrument.Symbol, approx, buf, cfg.Tracker.MinUpdateInterval, mx)

	hub := gateway.NewHub(tr, mx)

	sinks := []scheduler.Sink{hub}
	if cfg.Redis.Addr != "" {
		pub, err := publish.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Instrument.Symbol)
		if err != nil {
			slog.Warn("redis mirror disabled", "err", err)
		} else {
			defer pub.Close()
			sinks = append(sinks, pub)
			slog.Info("redis sample mirror enabled", "addr", cfg.Redis.Addr)
		}
	}

	sched := scheduler.New(tr, cfg.Tracker.PollInterval, sinks...)
	go sched.Run(ctx)

	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, hub, processStart)

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: mux,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("dashboard listening", "addr", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[tracker] server error: %v", err)
		}
	}()

	<-sigCh
	slog.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Shutdown(shutdownCtx)
}
