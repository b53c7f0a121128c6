// Package extractor turns a rendered page into ordered, context-annotated
// records of its fillable elements.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Context bounds.
const (
	MaxContextFragments = 3
	MaxFragmentRunes    = 120
)

// Elements whose text never counts as page text.
var skippedContainers = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"title":    true,
}

// Document is a parsed page with its pre-order walk precomputed.
type Document struct {
	doc *goquery.Document

	// elements in pre-order, and each element's position in that order.
	elements []*html.Node
	elemIdx  map[*html.Node]int

	// fragments are the trimmed visible text nodes used for context.
	// Option labels are excluded.
	fragments []string
	// span is the fragment range [start, end) covered by each element.
	spanStart map[*html.Node]int
	spanEnd   map[*html.Node]int

	// texts are all visible text nodes in order, option labels included.
	texts []*html.Node
}

// Parse parses markup. Malformed markup is repaired the way a browser would.
func Parse(markup string) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	d := &Document{
		doc:       gq,
		elemIdx:   make(map[*html.Node]int),
		spanStart: make(map[*html.Node]int),
		spanEnd:   make(map[*html.Node]int),
	}
	for _, root := range gq.Nodes {
		d.walk(root, false)
	}
	return d, nil
}

func (d *Document) walk(n *html.Node, inOption bool) {
	switch n.Type {
	case html.ElementNode:
		if skippedContainers[n.Data] {
			return
		}
		d.elemIdx[n] = len(d.elements)
		d.elements = append(d.elements, n)
		d.spanStart[n] = len(d.fragments)
		inOption = inOption || n.Data == "option"
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return
		}
		d.texts = append(d.texts, n)
		if !inOption {
			d.fragments = append(d.fragments, text)
		}
		return
	case html.DocumentNode:
	default:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c, inOption)
	}

	if n.Type == html.ElementNode {
		d.spanEnd[n] = len(d.fragments)
	}
}

// before returns up to MaxContextFragments fragments ending at pos, top to bottom.
func (d *Document) before(pos int) []string {
	start := max(pos-MaxContextFragments, 0)
	return truncateAll(d.fragments[start:pos])
}

// after returns up to MaxContextFragments fragments starting at pos.
func (d *Document) after(pos int) []string {
	end := min(pos+MaxContextFragments, len(d.fragments))
	if pos >= end {
		return []string{}
	}
	return truncateAll(d.fragments[pos:end])
}

func truncateAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = truncate(s, MaxFragmentRunes)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
