package transcodemodule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camarr-app/camarr/internal/types"
)

func TestExpandDecoderPresetJoinsTokens(t *testing.T) {
	expander := NewExpander(NewPresetCatalog())

	expanded := expander.Expand(types.PresetDecoder, "VAAPI Accelerated")

	assert.Equal(t, "-hwaccel vaapi -hwaccel_device /dev/dri/renderD128 -hwaccel_output_format vaapi", expanded)
	assert.False(t, strings.Contains(expanded, "`"), "decoder expansions are plain strings")
}

func TestExpandEncoderPresetAppendsDeferredTokens(t *testing.T) {
	expander := NewExpander(NewPresetCatalog())

	expanded := expander.Expand(types.PresetEncoder, "Software x264")

	assert.Equal(t,
		"`-c:v libx264 -preset ultrafast -tune zerolatency -b:v ${2*bitrate}k -filter:v scale=${width}:${height} -r ${framerate}`",
		expanded)

	// Exactly three deferred value tokens follow the preset's own tokens.
	expr := ParseExpression(expanded)
	assert.True(t, expr.Deferred)
	count := 0
	for _, part := range expr.Parts {
		if part.Field != "" {
			count++
		}
	}
	assert.Equal(t, 4, count, "bitrate, width, height, and framerate references")
	assert.True(t, strings.HasSuffix(expanded, "-r ${framerate}`"))
}

func TestExpandUnknownValuePassesThrough(t *testing.T) {
	expander := NewExpander(NewPresetCatalog())

	assert.Equal(t, "-vcodec copy", expander.Expand(types.PresetEncoder, "-vcodec copy"))
	assert.Equal(t, "-hwaccel cuda", expander.Expand(types.PresetDecoder, "-hwaccel cuda"))
}

func TestExpandIsAFixedPoint(t *testing.T) {
	expander := NewExpander(NewPresetCatalog())

	once := expander.Expand(types.PresetEncoder, "H.264 VAAPI")
	twice := expander.Expand(types.PresetEncoder, once)

	assert.Equal(t, once, twice, "an expanded string is no longer a preset name")
}

func TestExpanderPresetNamesMatchCatalog(t *testing.T) {
	catalog := NewPresetCatalog()
	expander := NewExpander(catalog)

	assert.Equal(t, catalog.Names(types.PresetDecoder), expander.PresetNames(types.PresetDecoder))
	assert.Equal(t, catalog.Names(types.PresetEncoder), expander.PresetNames(types.PresetEncoder))
}
