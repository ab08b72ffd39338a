package cameramodule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/events"
	"github.com/camarr-app/camarr/internal/types"
)

// ErrCameraNotFound is returned when a camera ID does not resolve.
var ErrCameraNotFound = types.ErrCameraNotFound

// Manager is the camera registry. It owns adoption records and answers
// capability questions by combining the stored record with live probes.
type Manager struct {
	db     *gorm.DB
	probe  Prober
	bus    events.EventBus
	logger hclog.Logger
}

// NewManager creates a camera registry manager.
func NewManager(db *gorm.DB, probe Prober, bus events.EventBus, logger hclog.Logger) *Manager {
	return &Manager{
		db:     db,
		probe:  probe,
		bus:    bus,
		logger: logger,
	}
}

// CreateCamera records a discovered camera. A missing ID is generated.
func (m *Manager) CreateCamera(ctx context.Context, cam *database.Camera) error {
	if cam.ID == "" {
		cam.ID = uuid.NewString()
	}
	if cam.Name == "" || cam.Host == "" {
		return fmt.Errorf("camera name and host are required")
	}
	if err := m.db.WithContext(ctx).Create(cam).Error; err != nil {
		return fmt.Errorf("failed to create camera: %w", err)
	}
	m.logger.Info("camera registered", "camera", cam.ID, "name", cam.Name)
	return nil
}

// GetCamera returns a camera by ID.
func (m *Manager) GetCamera(ctx context.Context, id string) (*database.Camera, error) {
	var cam database.Camera
	err := m.db.WithContext(ctx).First(&cam, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCameraNotFound, id)
		}
		return nil, fmt.Errorf("failed to load camera %s: %w", id, err)
	}
	return &cam, nil
}

// ListCameras returns all cameras ordered by name.
func (m *Manager) ListCameras(ctx context.Context) ([]database.Camera, error) {
	var cams []database.Camera
	if err := m.db.WithContext(ctx).Order("name").Find(&cams).Error; err != nil {
		return nil, fmt.Errorf("failed to list cameras: %w", err)
	}
	return cams, nil
}

// UpdateCamera persists changes to a camera record.
func (m *Manager) UpdateCamera(ctx context.Context, cam *database.Camera) error {
	if _, err := m.GetCamera(ctx, cam.ID); err != nil {
		return err
	}
	if err := m.db.WithContext(ctx).Save(cam).Error; err != nil {
		return fmt.Errorf("failed to update camera %s: %w", cam.ID, err)
	}
	m.publish(events.EventCameraUpdated, cam, "Camera updated")
	return nil
}

// Adopt marks a camera as managed by this hub and announces it.
func (m *Manager) Adopt(ctx context.Context, id string) (*database.Camera, error) {
	cam, err := m.GetCamera(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	cam.Adopted = true
	cam.LastSeenAt = &now
	if err := m.db.WithContext(ctx).Save(cam).Error; err != nil {
		return nil, fmt.Errorf("failed to adopt camera %s: %w", id, err)
	}
	m.logger.Info("camera adopted", "camera", cam.ID, "name", cam.Name)
	m.publish(events.EventCameraAdopted, cam, "Camera adopted")
	return cam, nil
}

// DeleteCamera removes a camera. Dependent modules clean up their own state
// in response to the removal event.
func (m *Manager) DeleteCamera(ctx context.Context, id string) error {
	cam, err := m.GetCamera(ctx, id)
	if err != nil {
		return err
	}
	if err := m.db.WithContext(ctx).Delete(&database.Camera{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete camera %s: %w", id, err)
	}
	m.logger.Info("camera removed", "camera", id)
	m.publish(events.EventCameraRemoved, cam, "Camera removed")
	return nil
}

// Snapshot builds the camera's capability set from its record plus live
// probes. Probe failures leave channels or classes empty; the only error is
// an unknown camera.
func (m *Manager) Snapshot(ctx context.Context, id string) (types.CapabilitySet, error) {
	cam, err := m.GetCamera(ctx, id)
	if err != nil {
		return types.CapabilitySet{}, err
	}
	channels := m.probe.ListStreamChannels(ctx, cam)
	classes := m.probe.ListObjectClasses(ctx, cam)
	return types.CapabilitySet{
		MultiStream:                len(channels) > 1,
		HasMotionSensor:            cam.HasMotionSensor,
		HasAudioSensor:             cam.HasAudioSensor,
		HasObjectDetector:          cam.HasObjectDetector,
		SupportsNativeStreamConfig: cam.SupportsNativeStreamConfig,
		HasOnOffControl:            cam.HasOnOffControl,
		StreamChannels:             channels,
		ObjectClasses:              classes,
	}, nil
}

// ListStreamChannels probes a camera's channels, returning nil when the
// camera is unknown or unreachable.
func (m *Manager) ListStreamChannels(ctx context.Context, id string) []types.StreamChannel {
	cam, err := m.GetCamera(ctx, id)
	if err != nil {
		m.logger.Warn("channel probe skipped", "camera", id, "error", err)
		return nil
	}
	return m.probe.ListStreamChannels(ctx, cam)
}

// ListObjectClasses probes a camera's detector classes, returning nil when
// the camera is unknown or unreachable.
func (m *Manager) ListObjectClasses(ctx context.Context, id string) []string {
	cam, err := m.GetCamera(ctx, id)
	if err != nil {
		m.logger.Warn("object class probe skipped", "camera", id, "error", err)
		return nil
	}
	return m.probe.ListObjectClasses(ctx, cam)
}

func (m *Manager) publish(eventType events.EventType, cam *database.Camera, title string) {
	if m.bus == nil {
		return
	}
	event := events.NewEvent(eventType, "cameramodule", title, cam.Name)
	event.Data["camera_id"] = cam.ID
	event.Data["name"] = cam.Name
	m.bus.PublishAsync(event)
}
