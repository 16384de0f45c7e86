package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reliefdata/sitewatch/internal/api"
	"github.com/reliefdata/sitewatch/internal/config"
	"github.com/reliefdata/sitewatch/internal/dashboard"
	"github.com/reliefdata/sitewatch/internal/fetch"
	"github.com/reliefdata/sitewatch/internal/pkg/logger"
)

// checkPortAvailable verifies that the target port is not already in
// use, so a stale process does not silently answer our traffic.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := os.Getenv("SITEWATCH_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check failed: %v", err)
	}

	var source *fetch.Source
	var downloader dashboard.Downloader
	if cfg.Source.Mode != "" {
		source = fetch.New(cfg.Source)
		downloader = source
	}

	pipeline := dashboard.New()
	service := dashboard.NewService(pipeline, downloader, cfg.Limits.MaxRowCount())

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial load is best-effort: a dead source at boot must not keep
	// the dashboard from serving uploads.
	if source != nil && source.Configured() {
		if err := service.LoadFromSource(ctx); err != nil {
			logger.Warn("initial load failed", "err", err)
		}
	}

	refresher := dashboard.NewRefresher(service)
	if cfg.Refresh.Enabled && source != nil && source.Configured() {
		refresher.Restart(ctx, cfg.Refresh.Interval())
	}

	handlers := api.NewHandlers(service, source, cfg.Overlay.Path, cfg.Limits.MaxUpload())
	router := api.SetupRoutes(handlers, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
