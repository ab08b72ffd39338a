package types

// SessionRequest carries the parameters a hub supplies when it asks for a
// stream: the camera, the channel to pull, and the output constraints the
// deferred encoder arguments are evaluated against.
type SessionRequest struct {
	CameraID       string `json:"camera_id" binding:"required"`
	Channel        string `json:"channel,omitempty"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Framerate      int    `json:"framerate"`
	MaxBitrateKbps int    `json:"max_bitrate_kbps"`
}

// SessionState values for a stream session's lifecycle.
const (
	SessionQueued  = "queued"
	SessionRunning = "running"
	SessionStopped = "stopped"
	SessionFailed  = "failed"
)
