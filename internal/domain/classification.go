package domain

// Answer values used by the classification passes.
const (
	Yes = "yes"
	No  = "no"
)

// Summary is the summary-pass result for one tag.
type Summary struct {
	Key               string  `json:"key"`
	GeneralInputGroup string  `json:"general_input_group"`
	Description       *string `json:"description"`
}

// Relevance is the relevance-pass result for one tag.
type Relevance struct {
	Key                  string  `json:"key"`
	IsRelevantOrRequired string  `json:"is_relevant_or_required"`
	TextValue            *string `json:"text_value"`
	SelectOptionValue    *string `json:"select_option_value"`
	// IsFilled defaults to "no" when the answer omits it.
	IsFilled string `json:"is_filled,omitempty"`
}
