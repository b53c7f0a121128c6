package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FillStatus tracks whether the planner has acted on a tag.
type FillStatus int

const (
	Unfilled FillStatus = iota
	Filled
)

// ParseFillStatus maps "yes" (any case) to Filled and everything else to Unfilled.
func ParseFillStatus(s string) FillStatus {
	if strings.EqualFold(strings.TrimSpace(s), Yes) {
		return Filled
	}
	return Unfilled
}

func (s FillStatus) String() string {
	if s == Filled {
		return Yes
	}
	return No
}

// MarshalJSON encodes the status as "yes" or "no".
func (s FillStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *FillStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode fill status: %w", err)
	}
	*s = ParseFillStatus(v)
	return nil
}

// MergedTag is a TagRecord overlaid with its summary and relevance results.
type MergedTag struct {
	TagRecord

	// HasSummary and HasRelevance record which passes matched this tag.
	HasSummary   bool
	HasRelevance bool

	GeneralInputGroup    string
	Description          *string
	IsRelevantOrRequired string
	TextValue            *string
	SelectOptionValue    *string
	Status               FillStatus
}

// NewMergedTag wraps a tag with no classification data.
func NewMergedTag(t TagRecord) *MergedTag {
	return &MergedTag{TagRecord: t}
}

// ApplySummary overlays the summary-pass fields.
func (m *MergedTag) ApplySummary(s Summary) {
	m.HasSummary = true
	m.GeneralInputGroup = s.GeneralInputGroup
	m.Description = s.Description
}

// ApplyRelevance overlays the relevance-pass fields.
func (m *MergedTag) ApplyRelevance(r Relevance) {
	m.HasRelevance = true
	m.IsRelevantOrRequired = r.IsRelevantOrRequired
	m.TextValue = r.TextValue
	m.SelectOptionValue = r.SelectOptionValue
	m.Status = ParseFillStatus(r.IsFilled)
}

// IsRelevant reports a case-insensitive "yes" relevance answer.
func (m *MergedTag) IsRelevant() bool {
	return strings.EqualFold(strings.TrimSpace(m.IsRelevantOrRequired), Yes)
}

// IsFilled reports whether a pass has acted on the tag.
func (m *MergedTag) IsFilled() bool {
	return m.Status == Filled
}

// MarkFilled moves the tag to Filled and reports whether it changed.
func (m *MergedTag) MarkFilled() bool {
	if m.Status == Filled {
		return false
	}
	m.Status = Filled
	return true
}

// Clone returns a copy that shares no slices with m.
func (m *MergedTag) Clone() *MergedTag {
	c := *m
	c.Attributes.Class = cloneStrings(m.Attributes.Class)
	c.TextAbove = cloneStrings(m.TextAbove)
	c.TextBelow = cloneStrings(m.TextBelow)
	if m.SelectOptions != nil {
		c.SelectOptions = append([]SelectOption{}, m.SelectOptions...)
	}
	return &c
}

// MarshalJSON flattens the record: the tag fields, then whichever pass
// fields were applied. is_filled is always present.
func (m MergedTag) MarshalJSON() ([]byte, error) {
	f := m.TagRecord.fields()
	if m.HasSummary {
		f[fieldGroup] = m.GeneralInputGroup
		f[fieldDescription] = m.Description
	}
	if m.HasRelevance {
		f[fieldRelevant] = m.IsRelevantOrRequired
		f[fieldTextValue] = m.TextValue
		f[fieldSelectOptionValue] = m.SelectOptionValue
	}
	f[fieldIsFilled] = m.Status
	return json.Marshal(f)
}

// UnmarshalJSON decodes the flat encoding. A pass counts as applied when any
// of its fields is present.
func (m *MergedTag) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode merged tag: %w", err)
	}
	if err := m.TagRecord.readFrom(raw); err != nil {
		return err
	}

	var s Summary
	if _, ok := raw[fieldGroup]; ok {
		m.HasSummary = true
	}
	if _, ok := raw[fieldDescription]; ok {
		m.HasSummary = true
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode summary fields: %w", err)
	}
	m.GeneralInputGroup, m.Description = s.GeneralInputGroup, s.Description

	var r Relevance
	for _, name := range []string{fieldRelevant, fieldTextValue, fieldSelectOptionValue} {
		if _, ok := raw[name]; ok {
			m.HasRelevance = true
		}
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("decode relevance fields: %w", err)
	}
	m.IsRelevantOrRequired, m.TextValue, m.SelectOptionValue = r.IsRelevantOrRequired, r.TextValue, r.SelectOptionValue
	m.Status = ParseFillStatus(r.IsFilled)
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
