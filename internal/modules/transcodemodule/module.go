package transcodemodule

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/camarr-app/camarr/internal/config"
	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/events"
	"github.com/camarr-app/camarr/internal/services"
	"github.com/camarr-app/camarr/internal/types"
)

const (
	ModuleID   = "system.transcode"
	ModuleName = "Stream Transcoding"
)

// Module wires the transcode service into the module system.
type Module struct {
	db       *gorm.DB
	logger   hclog.Logger
	service  *Service
	sessions *SessionManager
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

// Migrate creates the stream session table.
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.StreamSession{}); err != nil {
		return fmt.Errorf("failed to migrate stream session model: %w", err)
	}
	return nil
}

// RegisterServices publishes the transcode service. The catalog and expander
// are complete at this point; the session manager is attached in Init once
// the camera and settings services exist.
func (m *Module) RegisterServices() error {
	m.service = NewService()
	services.Register(services.TranscodeServiceName, m.service)
	return nil
}

// Init builds the session manager and subscribes to the events that drive
// session restarts.
func (m *Module) Init() error {
	m.db = database.GetDB()
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}
	m.logger = hclog.New(&hclog.LoggerOptions{
		Name:  "transcode-module",
		Level: hclog.Info,
	})

	cameras, err := services.GetCameraService()
	if err != nil {
		return fmt.Errorf("transcode module needs the camera service: %w", err)
	}
	settings, err := services.GetSettingsService()
	if err != nil {
		return fmt.Errorf("transcode module needs the settings service: %w", err)
	}

	cfg := config.Get()
	bus := events.GetGlobalEventBus()
	resources := NewResourceMonitor(m.logger.Named("resources"))
	builder := NewArgsBuilder(
		cfg.Sessions.RTSPPort,
		cfg.Sessions.OutputBase,
		resources,
		m.logger.Named("args"),
	)
	m.sessions = NewSessionManager(
		m.db,
		cameras,
		settings,
		m.service.expander,
		builder,
		bus,
		cfg.Sessions.MaxPerCamera,
		m.logger.Named("sessions"),
	)
	m.service.AttachSessions(m.sessions)
	m.handlers = NewHandlers(m.service, m.logger.Named("api"))

	settings.AddDescriptorProvider(&sessionDescriptors{maxPerCamera: cfg.Sessions.MaxPerCamera})

	if bus != nil {
		if _, err := bus.Subscribe(context.Background(), ModuleID, events.EventFilter{
			Types: []events.EventType{events.EventCameraReloadRequired},
		}, m.handleReloadRequired); err != nil {
			return fmt.Errorf("failed to subscribe to reload requests: %w", err)
		}
		if _, err := bus.Subscribe(context.Background(), ModuleID, events.EventFilter{
			Types: []events.EventType{events.EventCameraRemoved},
		}, m.handleCameraRemoved); err != nil {
			return fmt.Errorf("failed to subscribe to camera removals: %w", err)
		}
	}

	m.logger.Info("transcode module initialized",
		"max_sessions_per_camera", cfg.Sessions.MaxPerCamera)
	return nil
}

// handleReloadRequired restarts a camera's active sessions so they pick up
// changed settings.
func (m *Module) handleReloadRequired(event events.Event) error {
	cameraID, _ := event.Data["camera_id"].(string)
	if cameraID == "" {
		return nil
	}
	return m.sessions.RestartForCamera(context.Background(), cameraID)
}

// handleCameraRemoved stops sessions whose camera no longer exists.
func (m *Module) handleCameraRemoved(event events.Event) error {
	cameraID, _ := event.Data["camera_id"].(string)
	if cameraID == "" {
		return nil
	}
	return m.sessions.StopForCamera(context.Background(), cameraID)
}

// RegisterRoutes mounts the transcode API.
func (m *Module) RegisterRoutes(router *gin.Engine) {
	if m.handlers != nil {
		m.handlers.RegisterRoutes(router)
	}
}

// sessionDescriptors contributes the session layer's entries to every
// camera's settings schema.
type sessionDescriptors struct {
	maxPerCamera int
}

func (p *sessionDescriptors) SettingDescriptors(ctx context.Context, cameraID string) []types.SettingDescriptor {
	return []types.SettingDescriptor{
		{
			Key:         "maxConcurrentStreams",
			Title:       "Max Concurrent Streams",
			Group:       "Streams",
			Type:        types.SettingNumber,
			Value:       types.NumberValue(float64(p.maxPerCamera)),
			ReadOnly:    true,
			Description: "Stream sessions this camera may run at once. Set via service configuration.",
		},
	}
}
