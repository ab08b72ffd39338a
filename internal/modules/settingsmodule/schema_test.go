package settingsmodule

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camarr-app/camarr/internal/database"
	"github.com/camarr-app/camarr/internal/types"
)

type stubNamer struct{}

func (stubNamer) PresetNames(kind types.PresetKind) []string {
	if kind == types.PresetDecoder {
		return []string{"Software Decode", "VAAPI Accelerated"}
	}
	return []string{"Software x264", "H.264 VAAPI"}
}

type schemaFixture struct {
	builder *SchemaBuilder
	store   Store
	cam     *database.Camera
	ctx     context.Context
}

func newSchemaFixture(t *testing.T) *schemaFixture {
	store := NewGormStore(setupTestDB(t))
	logger := hclog.NewNullLogger()
	return &schemaFixture{
		builder: NewSchemaBuilder(store, NewModeResolver(store, logger), stubNamer{}, logger),
		store:   store,
		cam:     &database.Camera{ID: "cam-1", Name: "Front Door", Host: "192.168.1.30"},
		ctx:     context.Background(),
	}
}

func (f *schemaFixture) set(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, f.store.Set(f.ctx, f.cam.ID, key, value))
}

func (f *schemaFixture) build(caps types.CapabilitySet) []types.SettingDescriptor {
	return f.builder.Build(f.ctx, f.cam, caps, nil)
}

func channels(names ...string) []types.StreamChannel {
	out := make([]types.StreamChannel, 0, len(names))
	for _, n := range names {
		out = append(out, types.StreamChannel{Name: n})
	}
	return out
}

func findDescriptor(list []types.SettingDescriptor, key string) (types.SettingDescriptor, bool) {
	for _, d := range list {
		if d.Key == key {
			return d, true
		}
	}
	return types.SettingDescriptor{}, false
}

func descriptorKeys(list []types.SettingDescriptor) []string {
	keys := make([]string, 0, len(list))
	for _, d := range list {
		keys = append(keys, d.Key)
	}
	return keys
}

func TestSchemaNoDuplicateKeys(t *testing.T) {
	bools := []bool{false, true}
	channelSets := [][]types.StreamChannel{
		channels("High"),
		channels("High", "Medium", "Low"),
	}
	for _, motion := range bools {
		for _, audio := range bools {
			for _, detector := range bools {
				for _, native := range bools {
					for _, onOff := range bools {
						for _, chans := range channelSets {
							f := newSchemaFixture(t)
							// A dirty store exercises every conditional branch.
							f.set(t, KeyTranscodeStreaming, "true")
							f.set(t, KeyDynamicBitrate, "true")
							f.set(t, KeyObjectDetectionContactSensors, "{not json")
							f.set(t, KeyLinkedMotionSensor, "cam-9")

							caps := types.CapabilitySet{
								MultiStream:                len(chans) > 1,
								HasMotionSensor:            motion,
								HasAudioSensor:             audio,
								HasObjectDetector:          detector,
								SupportsNativeStreamConfig: native,
								HasOnOffControl:            onOff,
								StreamChannels:             chans,
								ObjectClasses:              []string{"person", "vehicle"},
							}
							list := f.build(caps)
							require.NotEmpty(t, list)

							seen := make(map[string]bool)
							for _, d := range list {
								assert.False(t, seen[d.Key], "duplicate key %s", d.Key)
								seen[d.Key] = true
							}
						}
					}
				}
			}
		}
	}
}

func TestChannelSelectorsOnlyWithMultipleChannels(t *testing.T) {
	f := newSchemaFixture(t)

	single := f.build(types.CapabilitySet{StreamChannels: channels("High")})
	for _, key := range []string{KeyStreamChannel, KeyHubStreamChannel, KeyRecordingChannel} {
		_, ok := findDescriptor(single, key)
		assert.False(t, ok, "%s must not appear with a single channel", key)
	}

	multi := f.build(types.CapabilitySet{
		MultiStream:    true,
		StreamChannels: channels("High", "Low"),
	})
	stream, ok := findDescriptor(multi, KeyStreamChannel)
	require.True(t, ok)
	assert.Equal(t, types.SettingEnum, stream.Type)
	assert.Equal(t, []string{"High", "Low"}, stream.Choices)
	assert.Equal(t, "High", stream.Value.Str)

	hub, ok := findDescriptor(multi, KeyHubStreamChannel)
	require.True(t, ok)
	assert.Equal(t, "High", hub.Value.Str)
}

func TestRecordingChannelNeedsMotionPath(t *testing.T) {
	multiChannel := types.CapabilitySet{
		MultiStream:    true,
		StreamChannels: channels("High", "Low"),
	}

	f := newSchemaFixture(t)
	_, ok := findDescriptor(f.build(multiChannel), KeyRecordingChannel)
	assert.False(t, ok, "no motion path, no recording channel")

	withSensor := multiChannel
	withSensor.HasMotionSensor = true
	_, ok = findDescriptor(f.build(withSensor), KeyRecordingChannel)
	assert.True(t, ok, "native motion sensor opens the motion path")

	// A linked external sensor opens the path too.
	f2 := newSchemaFixture(t)
	f2.set(t, KeyLinkedMotionSensor, "cam-9")
	_, ok = findDescriptor(f2.build(multiChannel), KeyRecordingChannel)
	assert.True(t, ok, "linked sensor opens the motion path")
}

func TestLinkedMotionSensorDefaults(t *testing.T) {
	f := newSchemaFixture(t)

	// Native motion capability defaults the linkage to the camera itself.
	list := f.build(types.CapabilitySet{HasMotionSensor: true, StreamChannels: channels("High")})
	linked, ok := findDescriptor(list, KeyLinkedMotionSensor)
	require.True(t, ok)
	assert.Equal(t, f.cam.ID, linked.Value.Str)

	// Without the capability the default is empty.
	list = f.build(types.CapabilitySet{StreamChannels: channels("High")})
	linked, _ = findDescriptor(list, KeyLinkedMotionSensor)
	assert.Equal(t, "", linked.Value.Str)

	// A stored value always wins.
	f.set(t, KeyLinkedMotionSensor, "cam-7")
	list = f.build(types.CapabilitySet{HasMotionSensor: true, StreamChannels: channels("High")})
	linked, _ = findDescriptor(list, KeyLinkedMotionSensor)
	assert.Equal(t, "cam-7", linked.Value.Str)
}

func TestTranscodingNoticeAlwaysPresent(t *testing.T) {
	f := newSchemaFixture(t)
	list := f.build(types.CapabilitySet{})

	notice, ok := findDescriptor(list, KeyTranscodingNotice)
	require.True(t, ok)
	assert.True(t, notice.ReadOnly)
	assert.NotEmpty(t, notice.Value.Str)
}

func TestHubStreamingControlDependsOnNativeConfig(t *testing.T) {
	f := newSchemaFixture(t)

	native := f.build(types.CapabilitySet{SupportsNativeStreamConfig: true})
	mode, ok := findDescriptor(native, KeyHubStreamingMode)
	require.True(t, ok)
	assert.Equal(t, types.SettingEnum, mode.Type)
	assert.Equal(t, TranscodeModeChoices(), mode.Choices)
	assert.Equal(t, "Disabled", mode.Value.Str)
	_, ok = findDescriptor(native, KeyTranscodeStreamingHub)
	assert.False(t, ok, "native config replaces the plain toggle")

	plain := f.build(types.CapabilitySet{})
	toggle, ok := findDescriptor(plain, KeyTranscodeStreamingHub)
	require.True(t, ok)
	assert.Equal(t, types.SettingBoolean, toggle.Type)
	_, ok = findDescriptor(plain, KeyHubStreamingMode)
	assert.False(t, ok)
}

func TestHubStreamingModeReflectsFlags(t *testing.T) {
	f := newSchemaFixture(t)
	f.set(t, KeyDynamicBitrate, "true")

	list := f.build(types.CapabilitySet{SupportsNativeStreamConfig: true})
	mode, ok := findDescriptor(list, KeyHubStreamingMode)
	require.True(t, ok)
	assert.Equal(t, "Dynamic Bitrate", mode.Value.Str)
}

func TestArgumentDescriptorsGatedOnTranscodeFlags(t *testing.T) {
	caps := types.CapabilitySet{StreamChannels: channels("High")}

	f := newSchemaFixture(t)
	list := f.build(caps)
	_, ok := findDescriptor(list, KeyDecoderArguments)
	assert.False(t, ok, "no transcode flag, no argument descriptors")

	for _, flag := range []string{
		KeyTranscodeStreaming,
		KeyTranscodeRecording,
		KeyTranscodeStreamingHub,
		KeyDynamicBitrate,
	} {
		f := newSchemaFixture(t)
		f.set(t, flag, "true")
		list := f.build(caps)

		decoder, ok := findDescriptor(list, KeyDecoderArguments)
		require.True(t, ok, "flag %s should expose decoder arguments", flag)
		assert.Equal(t, types.SettingCombobox, decoder.Type)
		assert.Equal(t, []string{"Software Decode", "VAAPI Accelerated"}, decoder.Choices)

		encoder, ok := findDescriptor(list, KeyEncoderArguments)
		require.True(t, ok, "flag %s should expose encoder arguments", flag)
		assert.Equal(t, []string{"Software x264", "H.264 VAAPI"}, encoder.Choices)
	}
}

func TestDetectAudioGatedOnAudioSensor(t *testing.T) {
	f := newSchemaFixture(t)

	_, ok := findDescriptor(f.build(types.CapabilitySet{}), KeyDetectAudio)
	assert.False(t, ok)

	list := f.build(types.CapabilitySet{HasAudioSensor: true})
	audio, ok := findDescriptor(list, KeyDetectAudio)
	require.True(t, ok)
	assert.Equal(t, types.SettingBoolean, audio.Type)
}

func TestObjectDetectionDescriptors(t *testing.T) {
	withDetector := types.CapabilitySet{
		HasObjectDetector: true,
		ObjectClasses:     []string{"person", "vehicle"},
	}

	f := newSchemaFixture(t)
	list := f.build(withDetector)

	sensors, ok := findDescriptor(list, KeyObjectDetectionContactSensors)
	require.True(t, ok)
	assert.True(t, sensors.Multiple)
	assert.Equal(t, []string{"person", "vehicle"}, sensors.Choices)
	assert.Equal(t, types.ValueStringList, sensors.Value.Kind)
	assert.Empty(t, sensors.Value.List)

	timeout, ok := findDescriptor(list, KeyObjectDetectionTimeout)
	require.True(t, ok)
	assert.Equal(t, types.SettingNumber, timeout.Type)
	assert.Equal(t, float64(60), timeout.Value.Number)

	// Detector without classes emits neither descriptor.
	list = f.build(types.CapabilitySet{HasObjectDetector: true})
	_, ok = findDescriptor(list, KeyObjectDetectionContactSensors)
	assert.False(t, ok)
	_, ok = findDescriptor(list, KeyObjectDetectionTimeout)
	assert.False(t, ok)
}

func TestObjectDetectionValueSurvivesMalformedJSON(t *testing.T) {
	f := newSchemaFixture(t)
	f.set(t, KeyObjectDetectionContactSensors, "{definitely not json")

	list := f.build(types.CapabilitySet{
		HasObjectDetector: true,
		ObjectClasses:     []string{"person"},
	})
	sensors, ok := findDescriptor(list, KeyObjectDetectionContactSensors)
	require.True(t, ok)
	assert.Equal(t, types.ValueStringList, sensors.Value.Kind)
	assert.Empty(t, sensors.Value.List, "malformed stored JSON derives an empty selection")
}

func TestObjectDetectionStoredValues(t *testing.T) {
	f := newSchemaFixture(t)
	f.set(t, KeyObjectDetectionContactSensors, `["person"]`)
	f.set(t, KeyObjectDetectionTimeout, "120")

	list := f.build(types.CapabilitySet{
		HasObjectDetector: true,
		ObjectClasses:     []string{"person", "vehicle"},
	})
	sensors, _ := findDescriptor(list, KeyObjectDetectionContactSensors)
	assert.Equal(t, []string{"person"}, sensors.Value.List)

	timeout, _ := findDescriptor(list, KeyObjectDetectionTimeout)
	assert.Equal(t, float64(120), timeout.Value.Number)
}

func TestStatusIndicatorGatedOnOnOffControl(t *testing.T) {
	f := newSchemaFixture(t)

	_, ok := findDescriptor(f.build(types.CapabilitySet{}), KeyStatusIndicator)
	assert.False(t, ok)

	_, ok = findDescriptor(f.build(types.CapabilitySet{HasOnOffControl: true}), KeyStatusIndicator)
	assert.True(t, ok)
}

func TestDescriptorOrder(t *testing.T) {
	f := newSchemaFixture(t)
	f.set(t, KeyTranscodeStreaming, "true")

	caps := types.CapabilitySet{
		MultiStream:                true,
		HasMotionSensor:            true,
		HasAudioSensor:             true,
		HasObjectDetector:          true,
		SupportsNativeStreamConfig: true,
		HasOnOffControl:            true,
		StreamChannels:             channels("High", "Medium", "Low"),
		ObjectClasses:              []string{"person"},
	}
	list := f.build(caps)

	assert.Equal(t, []string{
		KeyStreamChannel,
		KeyHubStreamChannel,
		KeyRecordingChannel,
		KeyLinkedMotionSensor,
		KeyTranscodingNotice,
		KeyAddMissingStreamMetadata,
		KeyTranscodeRecording,
		KeyTranscodeStreaming,
		KeyHubStreamingMode,
		KeyDecoderArguments,
		KeyEncoderArguments,
		KeyDetectAudio,
		KeyObjectDetectionContactSensors,
		KeyObjectDetectionTimeout,
		KeyStatusIndicator,
	}, descriptorKeys(list))
}

func TestExtraDescriptorsAppendedAndDeduplicated(t *testing.T) {
	f := newSchemaFixture(t)

	extra := []types.SettingDescriptor{
		{Key: "maxConcurrentStreams", Title: "Max Concurrent Streams", Type: types.SettingNumber},
		{Key: KeyTranscodingNotice, Title: "Colliding", Type: types.SettingString},
	}
	list := f.builder.Build(f.ctx, f.cam, types.CapabilitySet{}, extra)

	tail, ok := findDescriptor(list, "maxConcurrentStreams")
	require.True(t, ok)
	assert.Equal(t, "Max Concurrent Streams", tail.Title)
	assert.Equal(t, "maxConcurrentStreams", list[len(list)-1].Key)

	// The colliding key keeps its derived form.
	notice, _ := findDescriptor(list, KeyTranscodingNotice)
	assert.True(t, notice.ReadOnly)
	seen := make(map[string]int)
	for _, d := range list {
		seen[d.Key]++
	}
	assert.Equal(t, 1, seen[KeyTranscodingNotice])
}
