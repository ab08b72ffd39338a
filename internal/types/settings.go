package types

import "context"

// SettingType tells the UI which control to render for a descriptor.
type SettingType string

const (
	SettingString   SettingType = "string"
	SettingBoolean  SettingType = "boolean"
	SettingNumber   SettingType = "number"
	SettingEnum     SettingType = "enum"
	SettingCombobox SettingType = "combobox"
)

// SettingDescriptor is one entry of a camera's derived settings schema: the
// key, the control type, the current value, and any selectable choices. The
// schema is recomputed on every read, so descriptors always reflect the
// camera's current capabilities and stored values.
type SettingDescriptor struct {
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Group       string      `json:"group,omitempty"`
	Type        SettingType `json:"type"`
	Value       ConfigValue `json:"value"`
	Choices     []string    `json:"choices,omitempty"`
	Multiple    bool        `json:"multiple,omitempty"`
	ReadOnly    bool        `json:"read_only,omitempty"`
	Description string      `json:"description,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
}

// DescriptorProvider contributes extra descriptors to a camera's schema.
// Providers own their descriptors outright; the schema builder appends them
// after its own entries without inspecting them.
type DescriptorProvider interface {
	SettingDescriptors(ctx context.Context, cameraID string) []SettingDescriptor
}

// PresetKind separates decoder argument presets from encoder ones.
type PresetKind string

const (
	PresetDecoder PresetKind = "decoder"
	PresetEncoder PresetKind = "encoder"
)
