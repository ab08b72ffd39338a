package types

import (
	"encoding/json"
	"strconv"
)

// ValueKind discriminates the payload of a ConfigValue.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueBool
	ValueStringList
	ValueNumber
)

// ConfigValue is a typed setting value. Settings are persisted as plain
// strings, so every kind defines a canonical string encoding: booleans as
// "true"/"false", lists as JSON arrays, numbers as decimal strings. Carrying
// the kind alongside the payload keeps encoding decisions at the storage
// boundary instead of scattered through callers.
type ConfigValue struct {
	Kind   ValueKind
	Str    string
	Bool   bool
	List   []string
	Number float64
}

// StringValue builds a string-kind value.
func StringValue(s string) ConfigValue {
	return ConfigValue{Kind: ValueString, Str: s}
}

// BoolValue builds a boolean-kind value.
func BoolValue(b bool) ConfigValue {
	return ConfigValue{Kind: ValueBool, Bool: b}
}

// StringListValue builds a list-kind value.
func StringListValue(items []string) ConfigValue {
	list := make([]string, len(items))
	copy(list, items)
	return ConfigValue{Kind: ValueStringList, List: list}
}

// NumberValue builds a number-kind value.
func NumberValue(n float64) ConfigValue {
	return ConfigValue{Kind: ValueNumber, Number: n}
}

// Encode renders the value in its canonical stored form.
func (v ConfigValue) Encode() string {
	switch v.Kind {
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueStringList:
		data, err := json.Marshal(v.List)
		if err != nil {
			return "[]"
		}
		return string(data)
	case ValueNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	default:
		return v.Str
	}
}

// DecodeBool interprets a stored string as a boolean. Only the literal
// "true" is truthy; anything else, including absence, reads as false.
func DecodeBool(s string) bool {
	return s == "true"
}

// DecodeStringList interprets a stored string as a JSON string array.
// Malformed input yields an empty list, never an error.
func DecodeStringList(s string) []string {
	if s == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return []string{}
	}
	return items
}

// DecodeNumber interprets a stored string as a number, falling back to the
// given default when the string is absent or malformed.
func DecodeNumber(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return n
}

// MarshalJSON renders the value in its native JSON shape so API clients see
// booleans and arrays instead of encoded strings.
func (v ConfigValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueStringList:
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	case ValueNumber:
		return json.Marshal(v.Number)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON accepts a string, boolean, number, or string array and picks
// the matching kind.
func (v *ConfigValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberValue(n)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = StringListValue(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = StringValue(s)
	return nil
}
