package transcodemodule

import (
	"strings"

	"github.com/camarr-app/camarr/internal/types"
)

// deferredEncoderTokens are appended to every cataloged encoder preset at
// expansion time: a target bit-rate at twice the requested maximum, a
// rescale filter, and a frame-rate bound to the request. They stay
// unevaluated until a session renders them.
var deferredEncoderTokens = []string{
	"-b:v", "${2*bitrate}k",
	"-filter:v", "scale=${width}:${height}",
	"-r", "${framerate}",
}

// Expander turns submitted argument values into their stored form. Cataloged
// preset names expand to token strings; any other value is treated as
// operator-supplied freeform arguments and passes through unchanged.
type Expander struct {
	catalog *PresetCatalog
}

// NewExpander wraps a catalog.
func NewExpander(catalog *PresetCatalog) *Expander {
	return &Expander{catalog: catalog}
}

// PresetNames lists the catalog names for a kind, in catalog order.
func (e *Expander) PresetNames(kind types.PresetKind) []string {
	return e.catalog.Names(kind)
}

// Expand resolves a raw value against the catalog. Decoder presets become a
// plain joined token string. Encoder presets additionally get the deferred
// tokens appended and the whole result wrapped in backtick markers, flagging
// it for render-time substitution. Unrecognized values come back verbatim
// with no wrapping.
func (e *Expander) Expand(kind types.PresetKind, raw string) string {
	preset, ok := e.catalog.Resolve(kind, raw)
	if !ok {
		return raw
	}
	if kind == types.PresetDecoder {
		return strings.Join(preset.Tokens, " ")
	}
	tokens := make([]string, 0, len(preset.Tokens)+len(deferredEncoderTokens))
	tokens = append(tokens, preset.Tokens...)
	tokens = append(tokens, deferredEncoderTokens...)
	return "`" + strings.Join(tokens, " ") + "`"
}
