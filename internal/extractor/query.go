package extractor

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
)

const (
	groupDropdown = "dropdown"
	attrTrue      = "true"
)

// FindByExactText returns the element owning the first text node whose
// trimmed content equals the trimmed search text. found is false on a miss.
func (d *Document) FindByExactText(text string) (domain.ElementMatch, bool) {
	n := d.textOwner(text)
	if n == nil {
		return domain.ElementMatch{}, false
	}

	m := d.match(n, text)
	m.Description = "Element containing the text: " + strings.TrimSpace(text)
	m.TextAbove = d.before(d.spanStart[n])
	m.TextBelow = d.after(d.spanEnd[n])
	return m, true
}

// FindParentByExactText is FindByExactText applied to the owning element's
// parent. Context comes from the parent's sibling elements.
func (d *Document) FindParentByExactText(text string) (domain.ElementMatch, bool) {
	owner := d.textOwner(text)
	if owner == nil {
		return domain.ElementMatch{}, false
	}
	parent := owner.Parent
	if parent == nil || parent.Type != html.ElementNode {
		return domain.ElementMatch{}, false
	}

	m := d.match(parent, text)
	m.Description = fmt.Sprintf("A %s element for %s", parent.Data, strings.TrimSpace(text))
	m.TextAbove = siblingText(parent, func(n *html.Node) *html.Node { return n.PrevSibling })
	slices.Reverse(m.TextAbove)
	m.TextBelow = siblingText(parent, func(n *html.Node) *html.Node { return n.NextSibling })
	return m, true
}

func (d *Document) textOwner(text string) *html.Node {
	want := strings.TrimSpace(text)
	if want == "" {
		return nil
	}
	for _, t := range d.texts {
		if strings.TrimSpace(t.Data) != want {
			continue
		}
		if t.Parent != nil && t.Parent.Type == html.ElementNode {
			return t.Parent
		}
	}
	return nil
}

func (d *Document) match(n *html.Node, text string) domain.ElementMatch {
	attrs := project(n)
	m := domain.ElementMatch{
		Key:                  fmt.Sprintf("element_%d", d.elemIdx[n]),
		Idx:                  d.elemIdx[n],
		TagType:              n.Data,
		Attributes:           attrs,
		IsRelevantOrRequired: domain.No,
		TextValue:            strings.TrimSpace(text),
	}
	if v, ok := attrs.Get(domain.AttrAriaRequired); ok && v == attrTrue {
		m.IsRelevantOrRequired = domain.Yes
	}
	if v, ok := attrs.Get(domain.AttrValue); ok && v != "" {
		m.IsFilled = domain.Filled
	}
	if v, ok := attrs.Get(domain.AttrAriaHasPopup); ok && v == attrTrue {
		m.GeneralInputGroup = groupDropdown
	}
	return m
}

// siblingText walks sibling elements in one direction and collects up to
// MaxContextFragments non-empty texts, nearest first.
func siblingText(n *html.Node, next func(*html.Node) *html.Node) []string {
	out := []string{}
	for s := next(n); s != nil && len(out) < MaxContextFragments; s = next(s) {
		if s.Type != html.ElementNode || skippedContainers[s.Data] {
			continue
		}
		if text := collapse(nodeText(s)); text != "" {
			out = append(out, truncate(text, MaxFragmentRunes))
		}
	}
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		if n.Type == html.ElementNode && skippedContainers[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// collapse folds whitespace runs to one space and trims.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Lines returns the visible text lines of the page, whitespace collapsed,
// in document order. Option labels are included.
func (d *Document) Lines() []string {
	lines := make([]string, 0, len(d.texts))
	for _, t := range d.texts {
		if line := collapse(t.Data); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// NewLines returns the distinct lines of newMarkup absent from oldMarkup,
// sorted. It is used to find the text of a panel revealed by a click.
func NewLines(oldMarkup, newMarkup string) ([]string, error) {
	oldDoc, err := Parse(oldMarkup)
	if err != nil {
		return nil, fmt.Errorf("parse old document: %w", err)
	}
	newDoc, err := Parse(newMarkup)
	if err != nil {
		return nil, fmt.Errorf("parse new document: %w", err)
	}

	seen := make(map[string]bool)
	for _, line := range oldDoc.Lines() {
		seen[line] = true
	}

	added := []string{}
	for _, line := range newDoc.Lines() {
		if seen[line] {
			continue
		}
		seen[line] = true
		added = append(added, line)
	}
	slices.Sort(added)
	return added, nil
}
