package settingsmodule

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*ModeResolver, Store) {
	store := NewGormStore(setupTestDB(t))
	return NewModeResolver(store, hclog.NewNullLogger()), store
}

func storedValue(t *testing.T, store Store, cameraID, key string) (string, bool) {
	t.Helper()
	value, ok, err := store.Get(context.Background(), cameraID, key)
	require.NoError(t, err)
	return value, ok
}

func TestParseTranscodeMode(t *testing.T) {
	assert.Equal(t, ModeDisabled, ParseTranscodeMode("Disabled"))
	assert.Equal(t, ModeTranscode, ParseTranscodeMode("Transcode"))
	assert.Equal(t, ModeDynamicBitrate, ParseTranscodeMode("Dynamic Bitrate"))

	// Anything outside the offered choices resolves to Disabled.
	assert.Equal(t, ModeDisabled, ParseTranscodeMode(""))
	assert.Equal(t, ModeDisabled, ParseTranscodeMode("dynamic bitrate"))
	assert.Equal(t, ModeDisabled, ParseTranscodeMode("always"))
}

func TestDisplayNameRoundTrip(t *testing.T) {
	for _, mode := range []TranscodeMode{ModeDisabled, ModeTranscode, ModeDynamicBitrate} {
		assert.Equal(t, mode, ParseTranscodeMode(mode.DisplayName()))
	}
	assert.Equal(t, []string{"Disabled", "Transcode", "Dynamic Bitrate"}, TranscodeModeChoices())
}

func TestApplyDynamicBitrateFromAnyPriorState(t *testing.T) {
	priorStates := []map[string]string{
		{},
		{KeyTranscodeStreamingHub: "true"},
		{KeyDynamicBitrate: "true"},
		{KeyTranscodeStreamingHub: "true", KeyDynamicBitrate: "true"},
	}
	for _, prior := range priorStates {
		resolver, store := newTestResolver(t)
		ctx := context.Background()
		for key, value := range prior {
			require.NoError(t, store.Set(ctx, "cam-1", key, value))
		}

		require.NoError(t, resolver.Apply(ctx, "cam-1", "Dynamic Bitrate"))

		value, ok := storedValue(t, store, "cam-1", KeyDynamicBitrate)
		assert.True(t, ok)
		assert.Equal(t, "true", value)
		_, ok = storedValue(t, store, "cam-1", KeyTranscodeStreamingHub)
		assert.False(t, ok, "transcodeStreamingHub must be cleared, prior state %v", prior)
	}
}

func TestApplyDisabledClearsBothFlags(t *testing.T) {
	resolver, store := newTestResolver(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "cam-1", KeyDynamicBitrate, "true"))
	require.NoError(t, store.Set(ctx, "cam-1", KeyTranscodeStreamingHub, "true"))

	require.NoError(t, resolver.Apply(ctx, "cam-1", "Disabled"))

	_, ok := storedValue(t, store, "cam-1", KeyDynamicBitrate)
	assert.False(t, ok)
	_, ok = storedValue(t, store, "cam-1", KeyTranscodeStreamingHub)
	assert.False(t, ok)
}

func TestApplyTranscode(t *testing.T) {
	resolver, store := newTestResolver(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "cam-1", KeyDynamicBitrate, "true"))

	require.NoError(t, resolver.Apply(ctx, "cam-1", "Transcode"))

	value, ok := storedValue(t, store, "cam-1", KeyTranscodeStreamingHub)
	assert.True(t, ok)
	assert.Equal(t, "true", value)
	_, ok = storedValue(t, store, "cam-1", KeyDynamicBitrate)
	assert.False(t, ok)
}

func TestApplyUnrecognizedValueActsAsDisabled(t *testing.T) {
	resolver, store := newTestResolver(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "cam-1", KeyDynamicBitrate, "true"))

	require.NoError(t, resolver.Apply(ctx, "cam-1", "warp speed"))

	_, ok := storedValue(t, store, "cam-1", KeyDynamicBitrate)
	assert.False(t, ok)
	_, ok = storedValue(t, store, "cam-1", KeyTranscodeStreamingHub)
	assert.False(t, ok)
}

func TestEffectivePrefersStoredMode(t *testing.T) {
	resolver, store := newTestResolver(t)
	ctx := context.Background()

	// Flags say transcode but the stored mode string wins.
	require.NoError(t, store.Set(ctx, "cam-1", KeyTranscodeStreamingHub, "true"))
	require.NoError(t, store.Set(ctx, "cam-1", KeyHubStreamingMode, "Dynamic Bitrate"))

	assert.Equal(t, ModeDynamicBitrate, resolver.Effective(ctx, "cam-1"))
}

func TestEffectiveInfersFromFlags(t *testing.T) {
	tests := []struct {
		name  string
		state map[string]string
		want  TranscodeMode
	}{
		{"empty store", nil, ModeDisabled},
		{"dynamic flag", map[string]string{KeyDynamicBitrate: "true"}, ModeDynamicBitrate},
		{"hub flag", map[string]string{KeyTranscodeStreamingHub: "true"}, ModeTranscode},
		{"both flags prefer dynamic", map[string]string{
			KeyDynamicBitrate:        "true",
			KeyTranscodeStreamingHub: "true",
		}, ModeDynamicBitrate},
		{"stored garbage mode", map[string]string{KeyHubStreamingMode: "???"}, ModeDisabled},
		{"non-true flag value", map[string]string{KeyDynamicBitrate: "yes"}, ModeDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, store := newTestResolver(t)
			ctx := context.Background()
			for key, value := range tt.state {
				require.NoError(t, store.Set(ctx, "cam-1", key, value))
			}
			assert.Equal(t, tt.want, resolver.Effective(ctx, "cam-1"))
		})
	}
}
