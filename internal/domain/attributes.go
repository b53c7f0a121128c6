package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Allow-listed attribute names, in selector order.
const (
	AttrClass            = "class"
	AttrID               = "id"
	AttrAriaDescribedBy  = "aria-describedby"
	AttrAriaLabel        = "aria-label"
	AttrAriaHasPopup     = "aria-haspopup"
	AttrAriaRequired     = "aria-required"
	AttrDataAutomationID = "data-automation-id"
	AttrAutocomplete     = "autocomplete"
	AttrName             = "name"
	AttrType             = "type"
	AttrValue            = "value"
	AttrRequired         = "required"
	AttrRole             = "role"
	AttrPlaceholder      = "placeholder"
	AttrAriaLabelledBy   = "aria-labelledby"
	AttrTitle            = "title"
)

// AllowList returns the projected attribute names in their fixed order.
func AllowList() []string {
	return []string{
		AttrClass, AttrID, AttrAriaDescribedBy, AttrAriaLabel, AttrAriaHasPopup,
		AttrAriaRequired, AttrDataAutomationID, AttrAutocomplete, AttrName, AttrType,
		AttrValue, AttrRequired, AttrRole, AttrPlaceholder, AttrAriaLabelledBy, AttrTitle,
	}
}

// Attributes is the allow-listed projection of an element's attributes.
// A nil field means the attribute was absent; a pointer to "" means it was
// present with no value (e.g. a bare `required`).
type Attributes struct {
	Class            []string
	ID               *string
	AriaDescribedBy  *string
	AriaLabel        *string
	AriaHasPopup     *string
	AriaRequired     *string
	DataAutomationID *string
	Autocomplete     *string
	Name             *string
	Type             *string
	Value            *string
	Required         *string
	Role             *string
	Placeholder      *string
	AriaLabelledBy   *string
	Title            *string
}

func (a *Attributes) field(name string) **string {
	switch name {
	case AttrID:
		return &a.ID
	case AttrAriaDescribedBy:
		return &a.AriaDescribedBy
	case AttrAriaLabel:
		return &a.AriaLabel
	case AttrAriaHasPopup:
		return &a.AriaHasPopup
	case AttrAriaRequired:
		return &a.AriaRequired
	case AttrDataAutomationID:
		return &a.DataAutomationID
	case AttrAutocomplete:
		return &a.Autocomplete
	case AttrName:
		return &a.Name
	case AttrType:
		return &a.Type
	case AttrValue:
		return &a.Value
	case AttrRequired:
		return &a.Required
	case AttrRole:
		return &a.Role
	case AttrPlaceholder:
		return &a.Placeholder
	case AttrAriaLabelledBy:
		return &a.AriaLabelledBy
	case AttrTitle:
		return &a.Title
	default:
		return nil
	}
}

// Set stores value under name. class is split on whitespace. Names outside
// the allow-list are ignored and reported false.
func (a *Attributes) Set(name, value string) bool {
	if name == AttrClass {
		a.Class = strings.Fields(value)
		return true
	}
	f := a.field(name)
	if f == nil {
		return false
	}
	v := value
	*f = &v
	return true
}

// Get returns the attribute value. class values are joined with one space.
func (a Attributes) Get(name string) (string, bool) {
	if name == AttrClass {
		if a.Class == nil {
			return "", false
		}
		return strings.Join(a.Class, " "), true
	}
	f := a.field(name)
	if f == nil || *f == nil {
		return "", false
	}
	return **f, true
}

// Each calls fn for every present attribute in allow-list order.
func (a Attributes) Each(fn func(name, value string)) {
	for _, name := range AllowList() {
		if v, ok := a.Get(name); ok {
			fn(name, v)
		}
	}
}

// IsEmpty reports whether no allow-listed attribute is present.
func (a Attributes) IsEmpty() bool {
	empty := true
	a.Each(func(string, string) { empty = false })
	return empty
}

// appendTo writes present attributes into m. class stays list-valued.
func (a Attributes) appendTo(m map[string]any) {
	if a.Class != nil {
		m[AttrClass] = a.Class
	}
	for _, name := range AllowList()[1:] {
		if v, ok := a.Get(name); ok {
			m[name] = v
		}
	}
}

// readFrom fills a from a flat JSON object, ignoring unknown keys.
func (a *Attributes) readFrom(raw map[string]json.RawMessage) error {
	for _, name := range AllowList() {
		msg, ok := raw[name]
		if !ok || string(msg) == "null" {
			continue
		}
		if name == AttrClass {
			var list []string
			if err := json.Unmarshal(msg, &list); err == nil {
				a.Class = list
				continue
			}
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return fmt.Errorf("decode attribute %s: %w", name, err)
		}
		a.Set(name, s)
	}
	return nil
}

// MarshalJSON encodes a flat object keyed by attribute name.
func (a Attributes) MarshalJSON() ([]byte, error) {
	m := make(map[string]any)
	a.appendTo(m)
	return json.Marshal(m)
}

// UnmarshalJSON accepts class as either a list or a space-separated string.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode attributes: %w", err)
	}
	return a.readFrom(raw)
}
