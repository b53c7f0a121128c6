// Package merger reconciles classification results with the extracted tags.
package merger

import "github.com/jonesrussell/north-cloud/formfill/internal/domain"

// Merge overlays summaries, then relevances, onto tags by key. The output
// keeps the order of tags; result order is irrelevant. Tags with no result
// pass through unchanged. When a key repeats within one pass, the last
// result wins.
func Merge(tags []domain.TagRecord, summaries []domain.Summary, relevances []domain.Relevance) []*domain.MergedTag {
	summaryByKey := index(summaries, func(s domain.Summary) string { return s.Key })
	relevanceByKey := index(relevances, func(r domain.Relevance) string { return r.Key })

	merged := make([]*domain.MergedTag, 0, len(tags))
	for _, tag := range tags {
		m := domain.NewMergedTag(tag)
		if s, ok := summaryByKey[tag.Key]; ok {
			m.ApplySummary(s)
		}
		if r, ok := relevanceByKey[tag.Key]; ok {
			m.ApplyRelevance(r)
		}
		merged = append(merged, m)
	}
	return merged
}

// WithSummaries overlays only the summary pass. Its output is the input of
// the relevance pass.
func WithSummaries(tags []domain.TagRecord, summaries []domain.Summary) []*domain.MergedTag {
	return Merge(tags, summaries, nil)
}

func index[T any](items []T, key func(T) string) map[string]T {
	out := make(map[string]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out
}
