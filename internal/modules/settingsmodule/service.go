package settingsmodule

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/events"
	"github.com/camarr-app/camarr/internal/types"
)

// CameraDirectory is the slice of the camera registry the settings engine
// needs: record lookup and capability snapshots.
type CameraDirectory interface {
	GetCamera(ctx context.Context, id string) (*database.Camera, error)
	Snapshot(ctx context.Context, id string) (types.CapabilitySet, error)
}

// ArgumentExpander resolves preset names into argument strings and lists
// the catalog names for combo-box choices.
type ArgumentExpander interface {
	PresetNamer
	Expand(kind types.PresetKind, raw string) string
}

// ReloadNotifier is told when a stream-affecting setting changed.
type ReloadNotifier interface {
	NotifyReload(cameraID, key string)
}

// busNotifier publishes reload requests on the event bus, where the session
// manager picks them up.
type busNotifier struct {
	bus    events.EventBus
	logger hclog.Logger
}

// NewBusNotifier creates a ReloadNotifier backed by the event bus.
func NewBusNotifier(bus events.EventBus, logger hclog.Logger) ReloadNotifier {
	return &busNotifier{bus: bus, logger: logger}
}

func (n *busNotifier) NotifyReload(cameraID, key string) {
	if n.bus == nil {
		return
	}
	event := events.NewEvent(events.EventCameraReloadRequired, "settingsmodule",
		"Stream reload required", fmt.Sprintf("setting %s changed", key))
	event.Priority = events.PriorityHigh
	event.Data["camera_id"] = cameraID
	event.Data["key"] = key
	n.bus.PublishAsync(event)
	n.logger.Debug("reload requested", "camera", cameraID, "key", key)
}

// Service is the settings engine entry point: schema derivation on the read
// side, normalization and expansion on the write side.
type Service struct {
	store    Store
	cameras  CameraDirectory
	expander ArgumentExpander
	modes    *ModeResolver
	builder  *SchemaBuilder
	notifier ReloadNotifier
	logger   hclog.Logger

	providerMu sync.RWMutex
	providers  []types.DescriptorProvider
}

// NewService wires the settings engine. All collaborators are required
// except the notifier, which may be nil when no session manager is running.
func NewService(store Store, cameras CameraDirectory, expander ArgumentExpander, notifier ReloadNotifier, logger hclog.Logger) *Service {
	modes := NewModeResolver(store, logger.Named("modes"))
	return &Service{
		store:    store,
		cameras:  cameras,
		expander: expander,
		modes:    modes,
		builder:  NewSchemaBuilder(store, modes, expander, logger.Named("schema")),
		notifier: notifier,
		logger:   logger,
	}
}

// AddDescriptorProvider registers a provider whose descriptors are appended
// to every schema after the derived entries.
func (s *Service) AddDescriptorProvider(provider types.DescriptorProvider) {
	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	s.providers = append(s.providers, provider)
}

// Schema derives the descriptor list for a camera. The only failure is an
// unknown camera; probe and storage degradation happen inside the builder.
func (s *Service) Schema(ctx context.Context, cameraID string) ([]types.SettingDescriptor, error) {
	cam, err := s.cameras.GetCamera(ctx, cameraID)
	if err != nil {
		return nil, err
	}
	caps, err := s.cameras.Snapshot(ctx, cameraID)
	if err != nil {
		return nil, err
	}
	return s.builder.Build(ctx, cam, caps, s.extraDescriptors(ctx, cameraID)), nil
}

func (s *Service) extraDescriptors(ctx context.Context, cameraID string) []types.SettingDescriptor {
	s.providerMu.RLock()
	providers := make([]types.DescriptorProvider, len(s.providers))
	copy(providers, s.providers)
	s.providerMu.RUnlock()

	var extra []types.SettingDescriptor
	for _, p := range providers {
		extra = append(extra, p.SettingDescriptors(ctx, cameraID)...)
	}
	return extra
}

// PutSetting encodes and persists one value. Decoder and encoder argument
// values are expanded through the preset catalog before the write; a
// hubStreamingMode write stores the submitted string first and then lets the
// mode resolver normalize the flag pair. Reload-sensitive keys notify after
// a successful write.
func (s *Service) PutSetting(ctx context.Context, cameraID, key string, value types.ConfigValue) error {
	cam, err := s.cameras.GetCamera(ctx, cameraID)
	if err != nil {
		return err
	}

	encoded := value.Encode()
	switch key {
	case KeyDecoderArguments:
		encoded = s.expander.Expand(types.PresetDecoder, encoded)
	case KeyEncoderArguments:
		encoded = s.expander.Expand(types.PresetEncoder, encoded)
	}

	if err := s.store.Set(ctx, cameraID, key, encoded); err != nil {
		return err
	}

	if key == KeyHubStreamingMode && cam.SupportsNativeStreamConfig {
		if err := s.modes.Apply(ctx, cameraID, encoded); err != nil {
			return err
		}
	}

	if reloadKeys[key] && s.notifier != nil {
		s.notifier.NotifyReload(cameraID, key)
	}
	s.logger.Debug("setting written", "camera", cameraID, "key", key)
	return nil
}

// DeleteSetting removes one stored value.
func (s *Service) DeleteSetting(ctx context.Context, cameraID, key string) error {
	if _, err := s.cameras.GetCamera(ctx, cameraID); err != nil {
		return err
	}
	return s.store.Remove(ctx, cameraID, key)
}

// Value returns the stored encoding for a key.
func (s *Service) Value(ctx context.Context, cameraID, key string) (string, bool, error) {
	return s.store.Get(ctx, cameraID, key)
}

// PurgeCamera drops every stored setting for a removed camera.
func (s *Service) PurgeCamera(ctx context.Context, cameraID string) error {
	return s.store.RemoveAll(ctx, cameraID)
}
