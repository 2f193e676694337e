package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/NativeSquare/Cadence-sub000/internal/config"
	"github.com/NativeSquare/Cadence-sub000/internal/database"
	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/handler/health"
	"github.com/NativeSquare/Cadence-sub000/internal/interview"
	"github.com/NativeSquare/Cadence-sub000/internal/migrations"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
	"github.com/NativeSquare/Cadence-sub000/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Interview content ---
	sections, err := interview.LoadCatalogFile(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	if err := scene.ValidateNarrative(); err != nil {
		return fmt.Errorf("validating narrative: %w", err)
	}
	logger.Info("catalog loaded", "sections", len(sections), "path", cfg.CatalogPath)

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Devices ---
	simulated := device.NewSimulatedConnector(cfg.DeviceProviders, cfg.DeviceLatency)
	connector := device.NewBreakerConnector(simulated, cfg.Breaker(), logger)

	// --- Sessions ---
	store := server.NewDocStore(db)
	broker := server.NewBroker(logger)
	registry := server.NewRegistry(store, broker, server.Engine{
		Sections:      sections,
		Timing:        cfg.Timing(),
		Stream:        cfg.StreamOptions(),
		Connector:     connector,
		Providers:     simulated.Providers(),
		EffectTimeout: cfg.EffectTimeout,
	}, logger)
	defer registry.Close()

	// --- HTTP Server ---
	healthz := health.NewHandler(logger, map[string]health.Checker{
		"sqlite": dbChecker{db},
	}).Optional("devices", breakerChecker{connector})

	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Store:    store,
		Registry: registry,
		Broker:   broker,
		Health:   healthz.Routes(),
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// breakerChecker reports an open device circuit breaker.
type breakerChecker struct{ c *device.BreakerConnector }

func (b breakerChecker) Check(context.Context) error {
	if s := b.c.State(); s == "open" {
		return fmt.Errorf("device breaker %s", s)
	}
	return nil
}
