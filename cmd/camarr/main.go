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

	"github.com/camarr-app/camarr/internal/config"
	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/events"
	"github.com/camarr-app/camarr/internal/logger"
	"github.com/camarr-app/camarr/internal/server"
)

func main() {
	fmt.Println("=====================================")
	fmt.Println("  Camarr - Camera Companion Service  ")
	fmt.Println("=====================================")

	configPath := os.Getenv("CAMARR_CONFIG")
	if configPath == "" {
		// Try default paths
		if _, err := os.Stat("/config/camarr.yaml"); err == nil {
			configPath = "/config/camarr.yaml"
		} else if _, err := os.Stat("./camarr.yaml"); err == nil {
			configPath = "./camarr.yaml"
		}
	}

	if err := config.Load(configPath); err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", configPath, err)
	}
	cfg := config.Get()
	logger.Init(cfg.Logging.Level)
	if configPath != "" {
		logger.Info("✅ Configuration loaded from: %s", configPath)
	} else {
		logger.Info("✅ Using default configuration")
	}

	if err := database.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	r, err := server.SetupRouter()
	if err != nil {
		log.Fatalf("Failed to set up server: %v", err)
	}

	var watcher *config.Watcher
	if configPath != "" {
		watcher, err = config.NewWatcher(configPath, logger.Named("config"), func(updated *config.Config) {
			if bus := server.GetEventBus(); bus != nil {
				bus.PublishAsync(events.NewEvent(events.EventConfigReloaded, "config",
					"Configuration reloaded", configPath))
			}
		})
		if err != nil {
			logger.Warn("Config watcher unavailable: %v", err)
		} else if err := watcher.Start(); err != nil {
			logger.Warn("Config watcher failed to start: %v", err)
			watcher = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error: %v", err)
		}
		if err := server.ShutdownEventBus(); err != nil {
			logger.Error("Event bus shutdown error: %v", err)
		}
		if watcher != nil {
			watcher.Stop()
		}
		if err := database.Close(); err != nil {
			logger.Error("Database close error: %v", err)
		}

		cancel()
	}()

	logger.Info("🚀 Starting Camarr on %s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}

	<-ctx.Done()
	logger.Info("Server shutdown complete")
}
