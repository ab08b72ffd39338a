package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/logger"
	"github.com/camarr-app/camarr/internal/modules/transcodemodule"
)

// registerHealthRoutes mounts the health endpoint.
func registerHealthRoutes(r *gin.Engine) {
	monitor := transcodemodule.NewResourceMonitor(logger.Named("health"))

	r.GET("/api/v1/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if err := database.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = err.Error()
		}

		busStatus := "ok"
		if systemEventBus == nil {
			busStatus = "not running"
		} else if err := systemEventBus.Health(); err != nil {
			status = http.StatusServiceUnavailable
			busStatus = err.Error()
		}

		c.JSON(status, gin.H{
			"status":   statusWord(status),
			"database": dbStatus,
			"events":   busStatus,
			"system":   monitor.Status(c.Request.Context()),
		})
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}
