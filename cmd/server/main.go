package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/imm-a8ub/backoffice/internal/config"
	"github.com/imm-a8ub/backoffice/internal/core"
	"github.com/imm-a8ub/backoffice/internal/enrich"
	"github.com/imm-a8ub/backoffice/internal/logging"
	"github.com/imm-a8ub/backoffice/internal/web"
	"github.com/imm-a8ub/backoffice/internal/zone"
)

func main() {
	ingestPath := flag.String("ingest", "", "CSV source file to ingest into the admin collection at startup")
	flag.Parse()

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"geocoding_enabled", cfg.Enrich.OpenCageAPIKey != "",
		"restructuring_enabled", cfg.Enrich.OpenAIAPIKey != "",
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Zone registry: a missing file degrades resolution, never startup.
	registry := zone.LoadOrEmpty(cfg.Source.ZoneRegistryPath)

	// Enrichment providers; nil providers always degrade.
	var geocoder enrich.Geocoder
	if cfg.Enrich.OpenCageAPIKey != "" {
		geocoder = enrich.NewOpenCageGeocoder(cfg.Enrich.OpenCageAPIKey)
	}
	var restructurer enrich.Restructurer
	if cfg.Enrich.OpenAIAPIKey != "" {
		restructurer = enrich.NewOpenAIRestructurer(cfg.Enrich.OpenAIAPIKey, cfg.Enrich.OpenAIModel)
	}

	enricher := enrich.New(geocoder, restructurer,
		enrich.WithCallTimeout(cfg.Enrich.CallTimeout),
		enrich.WithMaxInFlight(cfg.Enrich.MaxInFlight),
	)

	service := core.NewService(core.NewStore(), registry, enricher, core.ServiceConfig{
		ListingsPath:       cfg.Source.ListingsPath,
		ValidationSeedPath: cfg.Source.ValidationSeedPath,
	})

	// Seed the admin collection from the backing file when present.
	if err := service.LoadAdminFromBacking(); err != nil {
		slog.Warn("admin collection starts empty", "error", err)
	}

	// Optional one-shot ingest of a fresh scraper export.
	if *ingestPath != "" {
		added, err := service.IngestFile(context.Background(), *ingestPath)
		if err != nil {
			slog.Error("startup ingest failed", "path", *ingestPath, "error", err)
			os.Exit(1)
		}
		slog.Info("startup ingest complete", "path", *ingestPath, "added", added)
	}

	server, err := web.NewServer(service, cfg)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
