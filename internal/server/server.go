// Package server assembles the HTTP surface: the gin router, module routes,
// the event feed, and health reporting.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/camarr-app/camarr/internal/config"
	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/events"
	"github.com/camarr-app/camarr/internal/logger"
	"github.com/camarr-app/camarr/internal/modules/modulemanager"

	// Import all modules to trigger their registration
	_ "github.com/camarr-app/camarr/internal/modules/cameramodule"
	_ "github.com/camarr-app/camarr/internal/modules/settingsmodule"
	_ "github.com/camarr-app/camarr/internal/modules/transcodemodule"
)

var systemEventBus events.EventBus

var moduleInitialized bool

// SetupRouter configures and returns the main router.
func SetupRouter() (*gin.Engine, error) {
	cfg := config.Get()

	r := gin.Default()

	if cfg.Server.EnableCORS {
		r.Use(corsMiddleware())
	}

	if err := initializeEventBus(); err != nil {
		return nil, err
	}
	if err := initializeModules(); err != nil {
		return nil, err
	}

	modulemanager.RegisterRoutes(r)
	registerEventRoutes(r)
	registerHealthRoutes(r)

	return r, nil
}

// corsMiddleware allows hub frontends served from other origins to reach the
// API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// initializeEventBus starts the system-wide event bus and publishes it for
// module use.
func initializeEventBus() error {
	if systemEventBus != nil {
		return nil
	}

	busConfig := events.DefaultEventBusConfig()
	systemEventBus = events.NewEventBus(busConfig, logger.Named("events"))

	if err := systemEventBus.Start(context.Background()); err != nil {
		return err
	}
	events.SetGlobalEventBus(systemEventBus)

	logger.Info("✅ Event bus initialized and started")
	return nil
}

// initializeModules loads every registered module.
func initializeModules() error {
	if moduleInitialized {
		return nil
	}

	if err := modulemanager.LoadAll(database.GetDB()); err != nil {
		return err
	}
	moduleInitialized = true

	logger.Info("✅ Module system initialized with %d modules", len(modulemanager.ListModules()))
	return nil
}

// registerEventRoutes mounts the event feed: recent events, bus stats, and
// the live websocket.
func registerEventRoutes(r *gin.Engine) {
	socket := newEventSocket(systemEventBus, logger.Named("events-ws"))

	eventsGroup := r.Group("/api/v1/events")
	{
		eventsGroup.GET("", listRecentEvents)
		eventsGroup.GET("/stats", getEventStats)
		eventsGroup.GET("/ws", socket.handleConnection)
	}
}

func listRecentEvents(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	recent := systemEventBus.RecentEvents(limit)
	c.JSON(http.StatusOK, gin.H{"events": recent, "count": len(recent)})
}

func getEventStats(c *gin.Context) {
	c.JSON(http.StatusOK, systemEventBus.GetStats())
}

// GetEventBus returns the system event bus instance.
func GetEventBus() events.EventBus {
	return systemEventBus
}

// ShutdownEventBus gracefully shuts down the event bus.
func ShutdownEventBus() error {
	if systemEventBus == nil {
		return nil
	}
	logger.Info("Shutting down event bus...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return systemEventBus.Stop(ctx)
}
