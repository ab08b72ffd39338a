// Package settingsmodule is the settings engine: it derives each camera's
// settings schema from its capabilities, normalizes mutually exclusive
// transcode flags on write, expands argument presets, and requests stream
// reloads when a write affects live sessions.
package settingsmodule

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/events"
	"github.com/camarr-app/camarr/internal/modules/modulemanager"
	"github.com/camarr-app/camarr/internal/services"
)

const (
	ModuleID   = "system.settings"
	ModuleName = "Settings Engine"
)

// Module wires the settings engine into the module system.
type Module struct {
	db       *gorm.DB
	logger   hclog.Logger
	store    *GormStore
	service  *Service
	handlers *Handlers
}

// Register registers the settings module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func init() {
	Register()
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

// Migrate creates the settings table.
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.CameraSetting{}); err != nil {
		return fmt.Errorf("failed to migrate camera settings model: %w", err)
	}
	return nil
}

// Init builds the engine from the services other modules registered and
// publishes the settings service.
func (m *Module) Init() error {
	m.db = database.GetDB()
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}
	m.logger = hclog.New(&hclog.LoggerOptions{
		Name:  "settings-module",
		Level: hclog.Info,
	})

	cameras, err := services.GetCameraService()
	if err != nil {
		return fmt.Errorf("settings engine needs the camera service: %w", err)
	}
	transcode, err := services.GetTranscodeService()
	if err != nil {
		return fmt.Errorf("settings engine needs the transcode service: %w", err)
	}

	bus := events.GetGlobalEventBus()
	m.store = NewGormStore(m.db)
	m.service = NewService(
		m.store,
		cameras,
		transcode,
		NewBusNotifier(bus, m.logger.Named("notifier")),
		m.logger.Named("service"),
	)
	m.handlers = NewHandlers(m.service, m.logger.Named("api"))

	services.Register(services.SettingsServiceName, m.service)

	if bus != nil {
		_, err := bus.Subscribe(context.Background(), ModuleID, events.EventFilter{
			Types: []events.EventType{events.EventCameraRemoved},
		}, m.handleCameraRemoved)
		if err != nil {
			return fmt.Errorf("failed to subscribe to camera removals: %w", err)
		}
	}

	m.logger.Info("settings module initialized")
	return nil
}

// handleCameraRemoved purges stored settings for cameras that no longer
// exist.
func (m *Module) handleCameraRemoved(event events.Event) error {
	cameraID, _ := event.Data["camera_id"].(string)
	if cameraID == "" {
		return nil
	}
	if err := m.service.PurgeCamera(context.Background(), cameraID); err != nil {
		return err
	}
	m.logger.Info("purged settings for removed camera", "camera", cameraID)
	return nil
}

// RegisterRoutes mounts the settings API.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	if m.handlers != nil {
		m.handlers.RegisterRoutes(router)
	}
}
