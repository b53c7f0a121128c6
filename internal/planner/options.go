package planner

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
)

// foldKey reduces s to a comparison key: accents removed, case folded and
// whitespace collapsed.
func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.Join(strings.Fields(stripped), " "))
}

// MatchOption finds the option an answer refers to, preferring a value
// match over a text match.
func MatchOption(answer string, options []domain.SelectOption) (domain.SelectOption, bool) {
	key := foldKey(answer)
	if key == "" {
		return domain.SelectOption{}, false
	}
	for _, opt := range options {
		if opt.Value != "" && foldKey(opt.Value) == key {
			return opt, true
		}
	}
	for _, opt := range options {
		if foldKey(opt.Text) == key {
			return opt, true
		}
	}
	return domain.SelectOption{}, false
}

// submitValue is what a native select reports for opt: its value
// attribute, or its text when the attribute is absent.
func submitValue(opt domain.SelectOption) string {
	if opt.Value != "" {
		return opt.Value
	}
	return opt.Text
}
