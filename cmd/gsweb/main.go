package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gsweb/internal/api"
	"gsweb/internal/config"
	"gsweb/internal/logger"
	"gsweb/internal/metrics"
	"gsweb/internal/profiles"
	"gsweb/internal/store"

	"github.com/spf13/pflag"
)

func main() {
	// 1. Parse command-line arguments
	fs := config.Flags("gsweb")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(fs)
	if err != nil {
		logger.NewLogger("info").Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	log, err := logger.NewFileLogger(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		log.Warnf("Logging to stdout: %v", err)
	}
	log.Infof("Starting ground station TX profile API...")
	log.Infof("Log level set to: %s", cfg.Log.Level)
	if cfg.ConfigFile != "" {
		log.Infof("Configuration loaded from %s", cfg.ConfigFile)
	}

	// 3. Open the profile store
	st, err := store.Open(cfg.Store.Type, cfg.Store.Path)
	if err != nil {
		log.Errorf("Failed to open %s store at %s: %v", cfg.Store.Type, cfg.Store.Path, err)
		os.Exit(1)
	}
	defer st.Close()
	log.Infof("Using %s store at %s", cfg.Store.Type, cfg.Store.Path)

	// 4. Initialize services
	collector, err := metrics.NewCollector(nil)
	if err != nil {
		log.Errorf("Failed to register metrics: %v", err)
		os.Exit(1)
	}
	service := profiles.NewService(st, cfg.Axis.Partition(), log,
		profiles.WithMetrics(collector),
		profiles.WithApplyCommand(cfg.Store.ApplyCommand, cfg.Store.ApplyTimeout),
	)

	// 5. Set up API router with dependencies
	router := api.New(service, log, collector)

	// 6. Set up and run the HTTP server with graceful shutdown
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Server starting on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		log.Errorf("Could not listen on %s: %v", cfg.Listen, err)
		st.Close()
		os.Exit(1)
	}
	log.Infof("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}

	log.Infof("Server exited gracefully")
}
