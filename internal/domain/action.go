package domain

import "encoding/json"

// EventType names an outbound notification.
type EventType string

const (
	EventClickDropdown EventType = "click_dropdown_and_select"
	EventFillText      EventType = "fill_text_input"
	EventFillRadio     EventType = "fill_radio_btn"
	EventFillCheckbox  EventType = "fill_checkbox"
	EventSelectOption  EventType = "select_option"
	EventEndProcess    EventType = "end-process"
)

// Action is one decided instruction for the live page.
type Action struct {
	Type     EventType
	WorkID   string
	Selector string
	Value    string
	// Tag is a snapshot taken when the action was decided.
	Tag *MergedTag
}

type selectorPayload struct {
	WorkID   string `json:"work_id"`
	Selector string `json:"selector"`
}

type fillTextPayload struct {
	WorkID   string `json:"work_id"`
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

type tagPayload struct {
	WorkID string     `json:"work_id"`
	Tag    *MergedTag `json:"tag"`
}

// Payload returns the wire body for the action's event type.
func (a Action) Payload() any {
	switch a.Type {
	case EventFillText:
		return fillTextPayload{WorkID: a.WorkID, Selector: a.Selector, Value: a.Value}
	case EventClickDropdown, EventSelectOption:
		return tagPayload{WorkID: a.WorkID, Tag: a.Tag}
	default:
		return selectorPayload{WorkID: a.WorkID, Selector: a.Selector}
	}
}

// MarshalJSON encodes the payload.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Payload())
}

// Notification returns the action as an outbound message.
func (a Action) Notification() Notification {
	return Notification{Type: a.Type, WorkID: a.WorkID, Payload: a.Payload()}
}

// Notification is one outbound message for a work session.
type Notification struct {
	Type    EventType
	WorkID  string
	Payload any
}
