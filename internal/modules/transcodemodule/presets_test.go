package transcodemodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camarr-app/camarr/internal/types"
)

func TestCatalogResolvesKnownPresets(t *testing.T) {
	catalog := NewPresetCatalog()

	preset, ok := catalog.Resolve(types.PresetDecoder, "VAAPI Accelerated")
	require.True(t, ok)
	assert.Equal(t, types.PresetDecoder, preset.Kind)
	assert.Contains(t, preset.Tokens, "vaapi")

	preset, ok = catalog.Resolve(types.PresetEncoder, "Software x264")
	require.True(t, ok)
	assert.Equal(t, types.PresetEncoder, preset.Kind)
	assert.Contains(t, preset.Tokens, "libx264")
}

func TestCatalogRejectsUnknownNames(t *testing.T) {
	catalog := NewPresetCatalog()

	_, ok := catalog.Resolve(types.PresetDecoder, "Copy")
	assert.False(t, ok)
	_, ok = catalog.Resolve(types.PresetEncoder, "-vcodec copy")
	assert.False(t, ok)
}

func TestCatalogKindsAreSeparateNamespaces(t *testing.T) {
	catalog := NewPresetCatalog()

	// Both kinds carry a Raspberry Pi preset with different tokens.
	decoder, ok := catalog.Resolve(types.PresetDecoder, "Raspberry Pi")
	require.True(t, ok)
	encoder, ok := catalog.Resolve(types.PresetEncoder, "Raspberry Pi")
	require.True(t, ok)
	assert.NotEqual(t, decoder.Tokens, encoder.Tokens)

	// Encoder names do not resolve as decoders.
	_, ok = catalog.Resolve(types.PresetDecoder, "H.264 NVENC")
	assert.False(t, ok)
}

func TestCatalogNamesPreserveOrder(t *testing.T) {
	catalog := NewPresetCatalog()

	assert.Equal(t, []string{
		"Software Decode",
		"VAAPI Accelerated",
		"Intel Quick Sync",
		"NVIDIA CUDA",
		"Raspberry Pi",
	}, catalog.Names(types.PresetDecoder))

	assert.Equal(t, []string{
		"Software x264",
		"H.264 VAAPI",
		"H.264 NVENC",
		"H.264 Quick Sync",
		"Raspberry Pi",
	}, catalog.Names(types.PresetEncoder))
}
