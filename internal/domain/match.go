package domain

import "encoding/json"

// ElementMatch describes the element found by an exact-text lookup. Unlike
// TagRecord it may be any element, so TagType holds the raw element name.
type ElementMatch struct {
	Key                  string
	Idx                  int
	TagType              string
	Attributes           Attributes
	TextAbove            []string
	TextBelow            []string
	IsRelevantOrRequired string
	IsFilled             FillStatus
	TextValue            string
	GeneralInputGroup    string
	Description          string
}

// MarshalJSON encodes the match as one flat object, like a merged tag.
func (e ElementMatch) MarshalJSON() ([]byte, error) {
	m := make(map[string]any)
	e.Attributes.appendTo(m)
	m[fieldKey] = e.Key
	m[fieldIdx] = e.Idx
	m[fieldTagType] = e.TagType
	m[fieldTextAbove] = nonNil(e.TextAbove)
	m[fieldTextBelow] = nonNil(e.TextBelow)
	m[fieldRelevant] = e.IsRelevantOrRequired
	m[fieldIsFilled] = e.IsFilled
	m[fieldTextValue] = e.TextValue
	m[fieldGroup] = e.GeneralInputGroup
	m[fieldDescription] = e.Description
	return json.Marshal(m)
}
