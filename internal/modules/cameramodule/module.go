// Package cameramodule is the camera registry: it stores adoption records,
// probes cameras for their live capabilities, and announces registry changes
// on the event bus.
package cameramodule

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/camarr-app/camarr/internal/config"
	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/events"
	"github.com/camarr-app/camarr/internal/services"
)

const (
	ModuleID   = "system.cameras"
	ModuleName = "Camera Registry"
)

// Module wires the camera registry into the module system.
type Module struct {
	db       *gorm.DB
	logger   hclog.Logger
	manager  *Manager
	handlers *Handlers
}

// ID returns the module identifier
func (m *Module) ID() string {
	return ModuleID
}

// Name returns the module display name
func (m *Module) Name() string {
	return ModuleName
}

// Core marks this as a core module
func (m *Module) Core() bool {
	return true
}

// Migrate creates the camera table.
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.Camera{}); err != nil {
		return fmt.Errorf("failed to migrate camera model: %w", err)
	}
	return nil
}

// RegisterServices constructs the manager and publishes the camera service.
func (m *Module) RegisterServices() error {
	m.db = database.GetDB()
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}
	m.logger = hclog.New(&hclog.LoggerOptions{
		Name:  "camera-module",
		Level: hclog.Info,
	})

	cfg := config.Get()
	probe := NewHTTPProbe(
		time.Duration(cfg.Probe.TimeoutSeconds)*time.Second,
		cfg.Probe.Port,
		m.logger.Named("probe"),
	)
	m.manager = NewManager(m.db, probe, events.GetGlobalEventBus(), m.logger.Named("manager"))

	services.Register(services.CameraServiceName, m.manager)
	return nil
}

// Init completes module startup.
func (m *Module) Init() error {
	m.handlers = NewHandlers(m.manager, m.logger.Named("api"))
	m.logger.Info("camera module initialized")
	return nil
}

// RegisterRoutes mounts the camera API.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	if m.handlers != nil {
		m.handlers.RegisterRoutes(router)
	}
}
