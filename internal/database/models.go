package database

import (
	"time"
)

// Camera is an adopted or discovered camera. The capability flags are
// populated at adoption time from the device's advertisement and refreshed
// by later probes; stream channels and object classes are probed live and
// never persisted here.
type Camera struct {
	ID              string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name            string `json:"name" gorm:"not null"`
	Host            string `json:"host" gorm:"not null"`
	MAC             string `json:"mac" gorm:"column:mac;uniqueIndex"`
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmware_version"`
	Adopted         bool   `json:"adopted" gorm:"default:false;index"`

	HasMotionSensor            bool `json:"has_motion_sensor"`
	HasAudioSensor             bool `json:"has_audio_sensor"`
	HasObjectDetector          bool `json:"has_object_detector"`
	SupportsNativeStreamConfig bool `json:"supports_native_stream_config"`
	HasOnOffControl            bool `json:"has_on_off_control"`

	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CameraSetting is one stored key/value pair for a camera. Values are plain
// strings in their canonical encoding; the settings engine owns the typing.
type CameraSetting struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CameraID  string    `json:"camera_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_camera_settings_camera_key"`
	Key       string    `json:"key" gorm:"type:varchar(128);not null;uniqueIndex:idx_camera_settings_camera_key"`
	Value     string    `json:"value" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StreamSession records one hub-requested stream and the argument vector it
// was started with. The request parameters are kept so a session can be
// rebuilt when a settings change forces a restart.
type StreamSession struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CameraID string `json:"camera_id" gorm:"type:varchar(36);not null;index"`
	Channel  string `json:"channel"`
	State    string `json:"state" gorm:"index"`

	Width          int `json:"width"`
	Height         int `json:"height"`
	Framerate      int `json:"framerate"`
	MaxBitrateKbps int `json:"max_bitrate_kbps"`

	Arguments    string `json:"arguments" gorm:"type:text"`
	RestartCount int    `json:"restart_count"`
	Error        string `json:"error,omitempty"`

	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
