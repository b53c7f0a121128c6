package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
)

// Extract parses markup and returns its fillable elements in document order.
func Extract(markup string) ([]domain.TagRecord, error) {
	d, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	return d.Tags(), nil
}

// Tags returns one record per input, select, textarea and button, in
// document order. Keys count per element kind; Idx counts across kinds.
func (d *Document) Tags() []domain.TagRecord {
	counters := make(map[domain.TagType]int, len(domain.FillableTags()))
	var records []domain.TagRecord

	for _, n := range d.elements {
		if !domain.IsFillable(n.Data) {
			continue
		}
		tagType := domain.TagType(n.Data)
		counters[tagType]++

		rec := domain.TagRecord{
			Key:        fmt.Sprintf("%s_%d", tagType, counters[tagType]),
			Idx:        len(records),
			TagType:    tagType,
			Attributes: project(n),
			TextAbove:  d.before(d.spanStart[n]),
			TextBelow:  d.after(d.spanStart[n]),
		}
		if tagType == domain.TagSelect {
			rec.SelectOptions = selectOptions(n)
		}
		records = append(records, rec)
	}
	return records
}

// project copies the allow-listed attributes of n.
func project(n *html.Node) domain.Attributes {
	var attrs domain.Attributes
	seen := make(map[string]bool, len(n.Attr))
	for _, a := range n.Attr {
		if a.Namespace != "" || seen[a.Key] {
			continue
		}
		seen[a.Key] = true
		attrs.Set(a.Key, a.Val)
	}
	return attrs
}

// selectOptions lists the options of a select, including grouped ones.
func selectOptions(n *html.Node) []domain.SelectOption {
	options := []domain.SelectOption{}
	goquery.NewDocumentFromNode(n).Find("option").Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr("value")
		options = append(options, domain.SelectOption{
			Value: value,
			Text:  strings.TrimSpace(s.Text()),
		})
	})
	return options
}
