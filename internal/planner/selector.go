package planner

import (
	"strings"

	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
)

var selectorEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Selector builds a structural CSS selector: the tag type followed by one
// [name="value"] predicate per present attribute, in allow-list order.
// It is not guaranteed to be unique on the page.
func Selector(tagType string, attrs domain.Attributes) string {
	var b strings.Builder
	b.WriteString(tagType)
	attrs.Each(func(name, value string) {
		b.WriteByte('[')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(selectorEscaper.Replace(value))
		b.WriteString(`"]`)
	})
	return b.String()
}

// TagSelector is Selector for a merged tag.
func TagSelector(tag *domain.MergedTag) string {
	return Selector(string(tag.TagType), tag.Attributes)
}
