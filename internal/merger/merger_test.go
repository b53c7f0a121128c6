package merger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/merger"
)

func strPtr(s string) *string { return &s }

func tags(keys ...string) []domain.TagRecord {
	out := make([]domain.TagRecord, len(keys))
	for i, k := range keys {
		out[i] = domain.TagRecord{Key: k, Idx: i, TagType: domain.TagInput}
	}
	return out
}

func TestMerge_KeepsTagOrder(t *testing.T) {
	t.Parallel()

	summaries := []domain.Summary{
		{Key: "input_3", GeneralInputGroup: "checkbox"},
		{Key: "input_1", GeneralInputGroup: "input text"},
	}
	relevances := []domain.Relevance{
		{Key: "input_2", IsRelevantOrRequired: "no"},
		{Key: "input_1", IsRelevantOrRequired: "yes", TextValue: strPtr("Jane")},
	}

	got := merger.Merge(tags("input_1", "input_2", "input_3"), summaries, relevances)
	require.Len(t, got, 3)
	for i, key := range []string{"input_1", "input_2", "input_3"} {
		assert.Equal(t, key, got[i].Key)
		assert.Equal(t, i, got[i].Idx)
	}

	assert.Equal(t, "input text", got[0].GeneralInputGroup)
	assert.True(t, got[0].IsRelevant())
	assert.Equal(t, "Jane", *got[0].TextValue)

	assert.True(t, got[1].HasRelevance)
	assert.False(t, got[1].HasSummary)
	assert.Equal(t, "checkbox", got[2].GeneralInputGroup)
	assert.False(t, got[2].HasRelevance)
}

func TestMerge_UnmatchedPassesThrough(t *testing.T) {
	t.Parallel()

	in := tags("button_1")
	in[0].TextAbove = []string{"Submit"}

	got := merger.Merge(in, []domain.Summary{{Key: "other"}}, []domain.Relevance{{Key: "other", IsRelevantOrRequired: "yes"}})
	require.Len(t, got, 1)
	assert.Equal(t, in[0], got[0].TagRecord)
	assert.False(t, got[0].HasSummary)
	assert.False(t, got[0].HasRelevance)
	assert.Empty(t, got[0].GeneralInputGroup)
	assert.False(t, got[0].IsRelevant())
	assert.False(t, got[0].IsFilled())
}

func TestMerge_RelevanceWinsFillStatus(t *testing.T) {
	t.Parallel()

	got := merger.Merge(tags("input_1"),
		[]domain.Summary{{Key: "input_1", GeneralInputGroup: "input text"}},
		[]domain.Relevance{{Key: "input_1", IsRelevantOrRequired: "yes", IsFilled: "yes"}},
	)
	assert.True(t, got[0].IsFilled())
}

func TestMerge_LastDuplicateWins(t *testing.T) {
	t.Parallel()

	got := merger.Merge(tags("input_1"),
		[]domain.Summary{
			{Key: "input_1", GeneralInputGroup: "dropdown"},
			{Key: "input_1", GeneralInputGroup: "input text"},
		},
		[]domain.Relevance{
			{Key: "input_1", IsRelevantOrRequired: "yes"},
			{Key: "input_1", IsRelevantOrRequired: "no"},
		},
	)
	assert.Equal(t, "input text", got[0].GeneralInputGroup)
	assert.False(t, got[0].IsRelevant())
}

func TestMerge_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, merger.Merge(nil, nil, nil))
}

func TestWithSummaries(t *testing.T) {
	t.Parallel()

	got := merger.WithSummaries(tags("input_1"), []domain.Summary{{Key: "input_1", Description: strPtr("Email")}})
	require.Len(t, got, 1)
	assert.True(t, got[0].HasSummary)
	assert.False(t, got[0].HasRelevance)
	assert.Equal(t, "Email", *got[0].Description)
}
