package services

import (
	"context"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/types"
)

// Service names used with Register and GetService.
const (
	CameraServiceName    = "cameras"
	SettingsServiceName  = "settings"
	TranscodeServiceName = "transcode"
)

// CameraService is the camera registry: adoption records plus live
// capability probes.
type CameraService interface {
	GetCamera(ctx context.Context, id string) (*database.Camera, error)
	ListCameras(ctx context.Context) ([]database.Camera, error)

	// Snapshot assembles the camera's current capability set. Probe
	// failures degrade the affected capabilities instead of erroring.
	Snapshot(ctx context.Context, id string) (types.CapabilitySet, error)

	// ListStreamChannels and ListObjectClasses expose the raw probes for
	// callers that need a single capability. Failures yield empty results.
	ListStreamChannels(ctx context.Context, id string) []types.StreamChannel
	ListObjectClasses(ctx context.Context, id string) []string
}

// SettingsService derives per-camera setting schemas and applies writes.
type SettingsService interface {
	// Schema recomputes the camera's settings descriptors from its
	// current capabilities and stored values.
	Schema(ctx context.Context, cameraID string) ([]types.SettingDescriptor, error)

	// PutSetting encodes and stores one value, applying any key-specific
	// normalization and expansion before the write.
	PutSetting(ctx context.Context, cameraID, key string, value types.ConfigValue) error

	// DeleteSetting removes one stored value.
	DeleteSetting(ctx context.Context, cameraID, key string) error

	// Value returns the stored encoding for a key, with present=false on
	// a miss.
	Value(ctx context.Context, cameraID, key string) (string, bool, error)

	// AddDescriptorProvider appends a provider whose descriptors are
	// attached to every schema after the derived entries.
	AddDescriptorProvider(provider types.DescriptorProvider)
}

// TranscodeService owns argument presets and stream sessions.
type TranscodeService interface {
	// PresetNames lists preset display names for a kind, in catalog order.
	PresetNames(kind types.PresetKind) []string

	// Expand maps a submitted argument value to its stored form: preset
	// names expand to token strings, anything else passes through.
	Expand(kind types.PresetKind, raw string) string

	StartSession(ctx context.Context, req types.SessionRequest) (*database.StreamSession, error)
	StopSession(ctx context.Context, id string) error
	GetSession(ctx context.Context, id string) (*database.StreamSession, error)
	ListSessions(ctx context.Context) ([]database.StreamSession, error)
}

// GetCameraService resolves the camera registry service.
func GetCameraService() (CameraService, error) {
	return GetService[CameraService](CameraServiceName)
}

// GetSettingsService resolves the settings engine service.
func GetSettingsService() (SettingsService, error) {
	return GetService[SettingsService](SettingsServiceName)
}

// GetTranscodeService resolves the transcode service.
func GetTranscodeService() (TranscodeService, error) {
	return GetService[TranscodeService](TranscodeServiceName)
}
