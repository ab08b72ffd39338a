// Package transcodemodule owns the argument preset catalog, the deferred
// argument templates, and the stream session manager that evaluates them.
// The catalog and expander feed the settings engine; the session manager is
// the downstream consumer that substitutes deferred template fields when a
// hub actually requests a stream.
package transcodemodule

import (
	"github.com/camarr-app/camarr/internal/types"
)

// ArgumentPreset is one named, ordered token list from the catalog.
type ArgumentPreset struct {
	Name   string           `json:"name"`
	Kind   types.PresetKind `json:"kind"`
	Tokens []string         `json:"tokens"`
}

// PresetCatalog is the static registry of decoder and encoder presets. It is
// built once per process and never mutated; catalog order is the order the
// names appear in combo-box choices.
type PresetCatalog struct {
	decoders []ArgumentPreset
	encoders []ArgumentPreset
}

// NewPresetCatalog builds the built-in catalog. There is deliberately no
// stream-copy preset; operators who want passthrough submit the raw ffmpeg
// arguments instead.
func NewPresetCatalog() *PresetCatalog {
	return &PresetCatalog{
		decoders: []ArgumentPreset{
			{
				Name:   "Software Decode",
				Kind:   types.PresetDecoder,
				Tokens: []string{"-hwaccel", "none"},
			},
			{
				Name:   "VAAPI Accelerated",
				Kind:   types.PresetDecoder,
				Tokens: []string{"-hwaccel", "vaapi", "-hwaccel_device", "/dev/dri/renderD128", "-hwaccel_output_format", "vaapi"},
			},
			{
				Name:   "Intel Quick Sync",
				Kind:   types.PresetDecoder,
				Tokens: []string{"-hwaccel", "qsv", "-c:v", "h264_qsv"},
			},
			{
				Name:   "NVIDIA CUDA",
				Kind:   types.PresetDecoder,
				Tokens: []string{"-hwaccel", "cuda", "-hwaccel_output_format", "cuda"},
			},
			{
				Name:   "Raspberry Pi",
				Kind:   types.PresetDecoder,
				Tokens: []string{"-c:v", "h264_v4l2m2m"},
			},
		},
		encoders: []ArgumentPreset{
			{
				Name:   "Software x264",
				Kind:   types.PresetEncoder,
				Tokens: []string{"-c:v", "libx264", "-preset", "ultrafast", "-tune", "zerolatency"},
			},
			{
				Name:   "H.264 VAAPI",
				Kind:   types.PresetEncoder,
				Tokens: []string{"-c:v", "h264_vaapi"},
			},
			{
				Name:   "H.264 NVENC",
				Kind:   types.PresetEncoder,
				Tokens: []string{"-c:v", "h264_nvenc", "-preset", "llhq"},
			},
			{
				Name:   "H.264 Quick Sync",
				Kind:   types.PresetEncoder,
				Tokens: []string{"-c:v", "h264_qsv", "-preset", "veryfast"},
			},
			{
				Name:   "Raspberry Pi",
				Kind:   types.PresetEncoder,
				Tokens: []string{"-c:v", "h264_v4l2m2m", "-num_capture_buffers", "16"},
			},
		},
	}
}

// Resolve looks a preset up by kind and exact name.
func (c *PresetCatalog) Resolve(kind types.PresetKind, name string) (ArgumentPreset, bool) {
	for _, p := range c.byKind(kind) {
		if p.Name == name {
			return p, true
		}
	}
	return ArgumentPreset{}, false
}

// Names returns the preset names for a kind in catalog order.
func (c *PresetCatalog) Names(kind types.PresetKind) []string {
	presets := c.byKind(kind)
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

func (c *PresetCatalog) byKind(kind types.PresetKind) []ArgumentPreset {
	if kind == types.PresetDecoder {
		return c.decoders
	}
	return c.encoders
}
