// Package main implements the storefront gateway server. It fronts the
// marketplace API with a canonical JSON surface and a local session,
// so browser frontends never deal with the marketplace's envelope
// variations directly.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/playtrade/storefront/internal/config"
	"github.com/playtrade/storefront/internal/gateway"
	"github.com/playtrade/storefront/internal/logging"
	"github.com/playtrade/storefront/internal/marketplace"
	"github.com/playtrade/storefront/internal/metrics"
	"github.com/playtrade/storefront/internal/session"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	apiURL := flag.String("api-url", "", "Marketplace API base URL (overrides config)")
	sessionFile := flag.String("session-file", "", "Session persistence file (overrides config)")
	flag.Parse()

	// A .env file is optional; ignore the error when absent.
	_ = godotenv.Load()

	cfg := config.LoadOrDefault(*configPath)
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *sessionFile != "" {
		cfg.SessionFile = *sessionFile
	}

	logger := logging.New("storefront", cfg.LogLevel)
	logger.WithField("addr", cfg.ListenAddr).
		WithField("api_url", cfg.APIBaseURL).
		Info("starting storefront gateway")

	sessions := session.NewManager(
		session.NewFileStorage(cfg.SessionFile),
		session.NewMemoryCookies(),
		logger,
	)

	client, err := marketplace.NewClient(marketplace.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: time.Duration(cfg.RequestTimeout),
		Tokens:  sessions,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("marketplace client: %v", err)
	}

	m := metrics.New("storefront")
	gw := gateway.New(cfg, client, sessions, logger, m)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      gw.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}

	logger.Info("stopped")
}
