package settingsmodule

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/camarr-app/camarr/internal/types"
)

// TranscodeMode is the resolved hub-streaming behavior. It is never stored
// directly; it is normalized into, and re-derived from, the dynamicBitrate
// and transcodeStreamingHub flags plus the raw hubStreamingMode value.
type TranscodeMode int

const (
	ModeDisabled TranscodeMode = iota
	ModeTranscode
	ModeDynamicBitrate
)

const (
	modeDisplayDisabled       = "Disabled"
	modeDisplayTranscode      = "Transcode"
	modeDisplayDynamicBitrate = "Dynamic Bitrate"
)

// DisplayName returns the choice string offered to operators.
func (m TranscodeMode) DisplayName() string {
	switch m {
	case ModeTranscode:
		return modeDisplayTranscode
	case ModeDynamicBitrate:
		return modeDisplayDynamicBitrate
	default:
		return modeDisplayDisabled
	}
}

// ParseTranscodeMode maps a submitted or stored string to a mode. The
// comparison is against the exact display strings; anything else, including
// values written by older firmware, resolves to Disabled.
func ParseTranscodeMode(s string) TranscodeMode {
	switch s {
	case modeDisplayTranscode:
		return ModeTranscode
	case modeDisplayDynamicBitrate:
		return ModeDynamicBitrate
	default:
		return ModeDisabled
	}
}

// TranscodeModeChoices returns the selector choices in display order.
func TranscodeModeChoices() []string {
	return []string{modeDisplayDisabled, modeDisplayTranscode, modeDisplayDynamicBitrate}
}

// ModeResolver keeps the dynamicBitrate and transcodeStreamingHub flags
// mutually exclusive. The two flag writes are separate store calls, so a
// crash between them can leave any combination behind; Effective re-derives
// a sane mode from whatever state it finds.
type ModeResolver struct {
	store  Store
	logger hclog.Logger
}

// NewModeResolver creates a resolver over the given store.
func NewModeResolver(store Store, logger hclog.Logger) *ModeResolver {
	return &ModeResolver{store: store, logger: logger}
}

// Apply normalizes the flag pair for a submitted hubStreamingMode value.
// The raw submitted value is stored by the caller before Apply runs.
func (r *ModeResolver) Apply(ctx context.Context, cameraID, submitted string) error {
	switch ParseTranscodeMode(submitted) {
	case ModeDynamicBitrate:
		if err := r.store.Set(ctx, cameraID, KeyDynamicBitrate, "true"); err != nil {
			return err
		}
		return r.store.Remove(ctx, cameraID, KeyTranscodeStreamingHub)
	case ModeTranscode:
		if err := r.store.Set(ctx, cameraID, KeyTranscodeStreamingHub, "true"); err != nil {
			return err
		}
		return r.store.Remove(ctx, cameraID, KeyDynamicBitrate)
	default:
		if err := r.store.Remove(ctx, cameraID, KeyDynamicBitrate); err != nil {
			return err
		}
		return r.store.Remove(ctx, cameraID, KeyTranscodeStreamingHub)
	}
}

// Effective derives the current mode for display. A stored hubStreamingMode
// value wins; otherwise the flags decide, preferring dynamicBitrate when a
// partial write left both set.
func (r *ModeResolver) Effective(ctx context.Context, cameraID string) TranscodeMode {
	if raw, ok := r.stored(ctx, cameraID, KeyHubStreamingMode); ok {
		return ParseTranscodeMode(raw)
	}
	if raw, _ := r.stored(ctx, cameraID, KeyDynamicBitrate); types.DecodeBool(raw) {
		return ModeDynamicBitrate
	}
	if raw, _ := r.stored(ctx, cameraID, KeyTranscodeStreamingHub); types.DecodeBool(raw) {
		return ModeTranscode
	}
	return ModeDisabled
}

func (r *ModeResolver) stored(ctx context.Context, cameraID, key string) (string, bool) {
	value, ok, err := r.store.Get(ctx, cameraID, key)
	if err != nil {
		r.logger.Warn("setting read failed during mode resolution", "camera", cameraID, "key", key, "error", err)
		return "", false
	}
	return value, ok
}
