package domain

// SuggestionType identifies what a suggestion refers to.
type SuggestionType string

// Suggestion types returned by the remote suggestion API.
const (
	SuggestionProduct    SuggestionType = "product"
	SuggestionCategory   SuggestionType = "category"
	SuggestionEnterprise SuggestionType = "enterprise"
)

// IsValid returns true if the suggestion type is recognised.
func (t SuggestionType) IsValid() bool {
	switch t {
	case SuggestionProduct, SuggestionCategory, SuggestionEnterprise:
		return true
	default:
		return false
	}
}

// FilterKey returns the filter a selected suggestion of this type narrows
// by, or "" for types that submit their value as the query.
func (t SuggestionType) FilterKey() string {
	switch t {
	case SuggestionCategory:
		return "category"
	case SuggestionEnterprise:
		return "enterprise"
	default:
		return ""
	}
}

// SuggestionItem is a typeahead suggestion.
type SuggestionItem struct {
	Type  SuggestionType `json:"type"`
	Text  string         `json:"text"`
	Value string         `json:"value"`
}
