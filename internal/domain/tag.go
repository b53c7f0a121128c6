// Package domain holds the form-filling data model shared by the extractor,
// classifier, merger, planner and service.
package domain

import (
	"encoding/json"
	"fmt"
)

// TagType is one of the fillable element kinds.
type TagType string

const (
	TagInput    TagType = "input"
	TagSelect   TagType = "select"
	TagTextarea TagType = "textarea"
	TagButton   TagType = "button"
)

// FillableTags returns the extracted element kinds.
func FillableTags() []TagType {
	return []TagType{TagInput, TagSelect, TagTextarea, TagButton}
}

// IsFillable reports whether an element name is extracted.
func IsFillable(name string) bool {
	switch TagType(name) {
	case TagInput, TagSelect, TagTextarea, TagButton:
		return true
	default:
		return false
	}
}

// SelectOption is one <option> of a native select.
type SelectOption struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// TagRecord is one extracted fillable element with its surrounding text.
type TagRecord struct {
	// Key is type-scoped and 1-based, e.g. "input_3".
	Key string
	// Idx is the 0-based position among all extracted elements.
	Idx        int
	TagType    TagType
	Attributes Attributes
	TextAbove  []string
	TextBelow  []string
	// SelectOptions is nil for every tag type except select.
	SelectOptions []SelectOption
}

// JSON field names of the flat tag encoding.
const (
	fieldKey               = "key"
	fieldIdx               = "idx"
	fieldTagType           = "tag_type"
	fieldTextAbove         = "text_above_htmltag"
	fieldTextBelow         = "text_below_htmltag"
	fieldSelectOptions     = "select_options"
	fieldGroup             = "general_input_group"
	fieldDescription       = "description"
	fieldRelevant          = "is_relevant_or_required"
	fieldTextValue         = "text_value"
	fieldSelectOptionValue = "select_option_value"
	fieldIsFilled          = "is_filled"
)

func (t TagRecord) fields() map[string]any {
	m := make(map[string]any)
	t.Attributes.appendTo(m)
	m[fieldKey] = t.Key
	m[fieldIdx] = t.Idx
	m[fieldTagType] = t.TagType
	m[fieldTextAbove] = nonNil(t.TextAbove)
	m[fieldTextBelow] = nonNil(t.TextBelow)
	if t.SelectOptions != nil {
		m[fieldSelectOptions] = t.SelectOptions
	}
	return m
}

// MarshalJSON encodes the record as one flat object: attributes sit beside
// key, idx, tag_type and the context lists.
func (t TagRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.fields())
}

// UnmarshalJSON decodes the flat encoding produced by MarshalJSON.
func (t *TagRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode tag: %w", err)
	}
	return t.readFrom(raw)
}

func (t *TagRecord) readFrom(raw map[string]json.RawMessage) error {
	targets := map[string]any{
		fieldKey:           &t.Key,
		fieldIdx:           &t.Idx,
		fieldTagType:       &t.TagType,
		fieldTextAbove:     &t.TextAbove,
		fieldTextBelow:     &t.TextBelow,
		fieldSelectOptions: &t.SelectOptions,
	}
	for name, dst := range targets {
		msg, ok := raw[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, dst); err != nil {
			return fmt.Errorf("decode tag field %s: %w", name, err)
		}
	}
	return t.Attributes.readFrom(raw)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
