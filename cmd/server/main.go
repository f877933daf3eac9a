package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pagetoc/internal/api"
	"github.com/dgallion1/pagetoc/internal/config"
)

func main() {
	cfg, err := config.Load(envOr("PAGETOC_CONFIG", "pagetoc.yml"))
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	// Initialize layout measurement.
	measurer, closeMeasurer := cfg.Measurer()

	// Initialize HTTP server.
	pages := api.NewPageStore(cfg, measurer, log)
	srv := api.NewServer(pages, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.PageTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if err := closeMeasurer(); err != nil {
			log.Warn("closing layout measurer", "error", err)
		}
	}()

	log.Info("starting pagetoc", "port", cfg.Port, "root", cfg.Root, "layout", cfg.Layout)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
