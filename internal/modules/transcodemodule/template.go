package transcodemodule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/camarr-app/camarr/internal/types"
)

// TemplateField names a session request attribute a deferred token can
// reference.
type TemplateField string

const (
	FieldBitrate   TemplateField = "bitrate"
	FieldWidth     TemplateField = "width"
	FieldHeight    TemplateField = "height"
	FieldFramerate TemplateField = "framerate"
)

// TemplatePart is one segment of a parsed argument string: either a literal
// run of text or a field reference with an optional integer multiplier. A
// part is a reference when Field is non-empty.
type TemplatePart struct {
	Literal    string
	Field      TemplateField
	Multiplier int
}

// TemplateExpression is a parsed argument string. Deferred marks expressions
// that arrived wrapped in backtick markers; only those may carry field
// references, and only the session manager renders them.
type TemplateExpression struct {
	Parts    []TemplatePart
	Deferred bool
}

var placeholderPattern = regexp.MustCompile(`\$\{(?:(\d+)\*)?(bitrate|width|height|framerate)\}`)

// ParseExpression splits an argument string into literal and field-reference
// parts. Backtick markers around the whole string flag it as deferred and are
// stripped. Text that is not a recognized placeholder stays literal, so an
// unparseable fragment degrades to being passed through verbatim.
func ParseExpression(raw string) TemplateExpression {
	expr := TemplateExpression{}
	body := raw
	if len(body) >= 2 && strings.HasPrefix(body, "`") && strings.HasSuffix(body, "`") {
		expr.Deferred = true
		body = body[1 : len(body)-1]
	}

	matches := placeholderPattern.FindAllStringSubmatchIndex(body, -1)
	pos := 0
	for _, m := range matches {
		if m[0] > pos {
			expr.Parts = append(expr.Parts, TemplatePart{Literal: body[pos:m[0]]})
		}
		multiplier := 1
		if m[2] >= 0 {
			multiplier, _ = strconv.Atoi(body[m[2]:m[3]])
		}
		expr.Parts = append(expr.Parts, TemplatePart{
			Field:      TemplateField(body[m[4]:m[5]]),
			Multiplier: multiplier,
		})
		pos = m[1]
	}
	if pos < len(body) {
		expr.Parts = append(expr.Parts, TemplatePart{Literal: body[pos:]})
	}
	return expr
}

// Render substitutes every field reference with its value from the request
// and returns the plain argument string. Literal parts pass through
// untouched.
func (e TemplateExpression) Render(req types.SessionRequest) string {
	var sb strings.Builder
	for _, part := range e.Parts {
		if part.Field == "" {
			sb.WriteString(part.Literal)
			continue
		}
		value := fieldValue(part.Field, req)
		if part.Multiplier > 1 {
			value *= part.Multiplier
		}
		sb.WriteString(strconv.Itoa(value))
	}
	return sb.String()
}

// String serializes the expression back to its stored form, including the
// backtick markers for deferred expressions. ParseExpression(e.String()) is
// equivalent to e.
func (e TemplateExpression) String() string {
	var sb strings.Builder
	if e.Deferred {
		sb.WriteString("`")
	}
	for _, part := range e.Parts {
		if part.Field == "" {
			sb.WriteString(part.Literal)
			continue
		}
		if part.Multiplier > 1 {
			sb.WriteString(fmt.Sprintf("${%d*%s}", part.Multiplier, part.Field))
		} else {
			sb.WriteString(fmt.Sprintf("${%s}", part.Field))
		}
	}
	if e.Deferred {
		sb.WriteString("`")
	}
	return sb.String()
}

// HasReferences reports whether any part is a field reference.
func (e TemplateExpression) HasReferences() bool {
	for _, part := range e.Parts {
		if part.Field != "" {
			return true
		}
	}
	return false
}

func fieldValue(field TemplateField, req types.SessionRequest) int {
	switch field {
	case FieldBitrate:
		return req.MaxBitrateKbps
	case FieldWidth:
		return req.Width
	case FieldHeight:
		return req.Height
	case FieldFramerate:
		return req.Framerate
	default:
		return 0
	}
}
