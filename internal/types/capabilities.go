package types

// StreamChannel describes a single video feed offered by a camera. Most
// cameras expose a full-resolution channel plus one or two downscaled ones.
type StreamChannel struct {
	Name   string `json:"name"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// CapabilitySet is a point-in-time snapshot of what a camera can do. It is
// assembled from the adoption record plus live probes and drives which
// settings are offered for the camera. Probe failures leave the affected
// fields empty rather than failing the snapshot.
type CapabilitySet struct {
	MultiStream                bool            `json:"multi_stream"`
	HasMotionSensor            bool            `json:"has_motion_sensor"`
	HasAudioSensor             bool            `json:"has_audio_sensor"`
	HasObjectDetector          bool            `json:"has_object_detector"`
	SupportsNativeStreamConfig bool            `json:"supports_native_stream_config"`
	HasOnOffControl            bool            `json:"has_on_off_control"`
	StreamChannels             []StreamChannel `json:"stream_channels"`
	ObjectClasses              []string        `json:"object_classes"`
}

// ChannelNames returns the channel names in probe order.
func (c CapabilitySet) ChannelNames() []string {
	names := make([]string, 0, len(c.StreamChannels))
	for _, ch := range c.StreamChannels {
		names = append(names, ch.Name)
	}
	return names
}
