package settingsmodule

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/types"
)

// PresetNamer lists the argument preset names offered as combo-box choices.
type PresetNamer interface {
	PresetNames(kind types.PresetKind) []string
}

// SchemaBuilder derives the ordered settings descriptor list for a camera
// from its capability set and stored values. Derivation never fails: probe
// gaps and malformed stored values degrade to conservative defaults. The
// list is recomputed on every call; nothing is cached.
type SchemaBuilder struct {
	store   Store
	modes   *ModeResolver
	presets PresetNamer
	logger  hclog.Logger
}

// NewSchemaBuilder creates a builder over the given collaborators.
func NewSchemaBuilder(store Store, modes *ModeResolver, presets PresetNamer, logger hclog.Logger) *SchemaBuilder {
	return &SchemaBuilder{
		store:   store,
		modes:   modes,
		presets: presets,
		logger:  logger,
	}
}

// Build produces the descriptor list for a camera. extra descriptors from
// other modules are appended after the derived entries; entries whose key a
// derived descriptor already uses are dropped to keep keys unique.
func (b *SchemaBuilder) Build(ctx context.Context, cam *database.Camera, caps types.CapabilitySet, extra []types.SettingDescriptor) []types.SettingDescriptor {
	var out []types.SettingDescriptor

	channels := caps.ChannelNames()
	multiChannel := len(channels) > 1

	linkedSensor, hasLinkedSensor := b.stored(ctx, cam.ID, KeyLinkedMotionSensor)
	motionPath := caps.HasMotionSensor || (hasLinkedSensor && linkedSensor != "")

	// Channel selectors only make sense when there is a choice to make.
	if multiChannel {
		out = append(out, types.SettingDescriptor{
			Key:     KeyStreamChannel,
			Title:   "Live Stream Channel",
			Group:   "Streams",
			Type:    types.SettingEnum,
			Value:   types.StringValue(b.storedOr(ctx, cam.ID, KeyStreamChannel, channels[0])),
			Choices: channels,
		})
		out = append(out, types.SettingDescriptor{
			Key:         KeyHubStreamChannel,
			Title:       "Hub Stream Channel",
			Group:       "Streams",
			Type:        types.SettingEnum,
			Value:       types.StringValue(b.storedOr(ctx, cam.ID, KeyHubStreamChannel, channels[0])),
			Choices:     channels,
			Description: "Channel used for remote and low-bandwidth viewers.",
		})
	}
	if multiChannel && motionPath {
		out = append(out, types.SettingDescriptor{
			Key:         KeyRecordingChannel,
			Title:       "Recording Channel",
			Group:       "Streams",
			Type:        types.SettingEnum,
			Value:       types.StringValue(b.storedOr(ctx, cam.ID, KeyRecordingChannel, channels[0])),
			Choices:     channels,
			Description: "Channel recorded when motion triggers.",
		})
	}

	out = append(out, types.SettingDescriptor{
		Key:         KeyLinkedMotionSensor,
		Title:       "Linked Motion Sensor",
		Group:       "Motion",
		Type:        types.SettingString,
		Value:       types.StringValue(b.linkedMotionValue(cam, caps, linkedSensor, hasLinkedSensor)),
		Placeholder: "Camera or sensor ID",
		Description: "Motion source that triggers recordings for this camera.",
	})

	out = append(out, types.SettingDescriptor{
		Key:      KeyTranscodingNotice,
		Title:    "Transcoding",
		Group:    "Transcoding",
		Type:     types.SettingString,
		Value:    types.StringValue(transcodingNoticeText),
		ReadOnly: true,
	})

	out = append(out, types.SettingDescriptor{
		Key:   KeyAddMissingStreamMetadata,
		Title: "Add Missing Stream Metadata",
		Group: "Transcoding",
		Type:  types.SettingBoolean,
		Value: types.BoolValue(b.storedBool(ctx, cam.ID, KeyAddMissingStreamMetadata)),
	})

	if motionPath {
		out = append(out, types.SettingDescriptor{
			Key:   KeyTranscodeRecording,
			Title: "Transcode Recordings",
			Group: "Transcoding",
			Type:  types.SettingBoolean,
			Value: types.BoolValue(b.storedBool(ctx, cam.ID, KeyTranscodeRecording)),
		})
	}

	out = append(out, types.SettingDescriptor{
		Key:   KeyTranscodeStreaming,
		Title: "Transcode Live Streams",
		Group: "Transcoding",
		Type:  types.SettingBoolean,
		Value: types.BoolValue(b.storedBool(ctx, cam.ID, KeyTranscodeStreaming)),
	})

	// Hub streaming control: a three-way mode selector when the camera can
	// apply stream config natively, a plain toggle otherwise.
	if caps.SupportsNativeStreamConfig {
		out = append(out, types.SettingDescriptor{
			Key:     KeyHubStreamingMode,
			Title:   "Hub Streaming Mode",
			Group:   "Transcoding",
			Type:    types.SettingEnum,
			Value:   types.StringValue(b.modes.Effective(ctx, cam.ID).DisplayName()),
			Choices: TranscodeModeChoices(),
		})
	} else {
		out = append(out, types.SettingDescriptor{
			Key:   KeyTranscodeStreamingHub,
			Title: "Transcode Hub Streams",
			Group: "Transcoding",
			Type:  types.SettingBoolean,
			Value: types.BoolValue(b.storedBool(ctx, cam.ID, KeyTranscodeStreamingHub)),
		})
	}

	if b.transcodeActive(ctx, cam.ID) {
		out = append(out, b.argumentDescriptor(ctx, cam.ID, KeyDecoderArguments, "Decoder Arguments", types.PresetDecoder))
		out = append(out, b.argumentDescriptor(ctx, cam.ID, KeyEncoderArguments, "Encoder Arguments", types.PresetEncoder))
	}

	if caps.HasAudioSensor {
		out = append(out, types.SettingDescriptor{
			Key:   KeyDetectAudio,
			Title: "Audio Detection",
			Group: "Detection",
			Type:  types.SettingBoolean,
			Value: types.BoolValue(b.storedBool(ctx, cam.ID, KeyDetectAudio)),
		})
	}

	if caps.HasObjectDetector && len(caps.ObjectClasses) > 0 {
		raw, _ := b.stored(ctx, cam.ID, KeyObjectDetectionContactSensors)
		out = append(out, types.SettingDescriptor{
			Key:         KeyObjectDetectionContactSensors,
			Title:       "Object Detection Sensors",
			Group:       "Detection",
			Type:        types.SettingEnum,
			Value:       types.StringListValue(types.DecodeStringList(raw)),
			Choices:     caps.ObjectClasses,
			Multiple:    true,
			Description: "Object classes that raise a contact sensor when detected.",
		})

		timeoutRaw, _ := b.stored(ctx, cam.ID, KeyObjectDetectionTimeout)
		out = append(out, types.SettingDescriptor{
			Key:         KeyObjectDetectionTimeout,
			Title:       "Object Detection Timeout",
			Group:       "Detection",
			Type:        types.SettingNumber,
			Value:       types.NumberValue(types.DecodeNumber(timeoutRaw, DefaultObjectDetectionTimeout)),
			Description: "Seconds a detection sensor stays open after the last sighting.",
		})
	}

	if caps.HasOnOffControl {
		out = append(out, types.SettingDescriptor{
			Key:   KeyStatusIndicator,
			Title: "Status Light",
			Group: "Device",
			Type:  types.SettingBoolean,
			Value: types.BoolValue(b.storedBool(ctx, cam.ID, KeyStatusIndicator)),
		})
	}

	return b.appendExtra(out, extra)
}

func (b *SchemaBuilder) argumentDescriptor(ctx context.Context, cameraID, key, title string, kind types.PresetKind) types.SettingDescriptor {
	value, _ := b.stored(ctx, cameraID, key)
	return types.SettingDescriptor{
		Key:         key,
		Title:       title,
		Group:       "Transcoding",
		Type:        types.SettingCombobox,
		Value:       types.StringValue(value),
		Choices:     b.presets.PresetNames(kind),
		Placeholder: "Select a preset or enter custom arguments",
	}
}

// transcodeActive reports whether any transcode path is enabled, which is
// what gates the decoder/encoder argument descriptors.
func (b *SchemaBuilder) transcodeActive(ctx context.Context, cameraID string) bool {
	return b.storedBool(ctx, cameraID, KeyTranscodeStreaming) ||
		b.storedBool(ctx, cameraID, KeyTranscodeRecording) ||
		b.storedBool(ctx, cameraID, KeyTranscodeStreamingHub) ||
		b.storedBool(ctx, cameraID, KeyDynamicBitrate)
}

func (b *SchemaBuilder) linkedMotionValue(cam *database.Camera, caps types.CapabilitySet, stored string, hasStored bool) string {
	if hasStored {
		return stored
	}
	if caps.HasMotionSensor {
		return cam.ID
	}
	return ""
}

// appendExtra attaches provider descriptors after the derived ones. A
// provider entry that reuses an emitted key is dropped so one derivation
// pass never repeats a key.
func (b *SchemaBuilder) appendExtra(out []types.SettingDescriptor, extra []types.SettingDescriptor) []types.SettingDescriptor {
	if len(extra) == 0 {
		return out
	}
	seen := make(map[string]bool, len(out))
	for _, d := range out {
		seen[d.Key] = true
	}
	for _, d := range extra {
		if seen[d.Key] {
			b.logger.Warn("dropping provider descriptor with duplicate key", "key", d.Key)
			continue
		}
		seen[d.Key] = true
		out = append(out, d)
	}
	return out
}

func (b *SchemaBuilder) stored(ctx context.Context, cameraID, key string) (string, bool) {
	value, ok, err := b.store.Get(ctx, cameraID, key)
	if err != nil {
		b.logger.Warn("setting read failed during schema build", "camera", cameraID, "key", key, "error", err)
		return "", false
	}
	return value, ok
}

func (b *SchemaBuilder) storedOr(ctx context.Context, cameraID, key, fallback string) string {
	if value, ok := b.stored(ctx, cameraID, key); ok {
		return value
	}
	return fallback
}

func (b *SchemaBuilder) storedBool(ctx context.Context, cameraID, key string) bool {
	value, _ := b.stored(ctx, cameraID, key)
	return types.DecodeBool(value)
}
