package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jonesrussell/north-cloud/formfill/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/classifier"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockClient struct {
	mu       sync.Mutex
	requests []classifier.Request
	complete func(ctx context.Context, req classifier.Request) (string, error)
}

func (m *mockClient) Complete(ctx context.Context, req classifier.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.complete(ctx, req)
}

func (m *mockClient) calls() []classifier.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]classifier.Request(nil), m.requests...)
}

// echoTemplate sends the raw JSON chunk as the only turn.
var echoTemplate = classifier.Template{Pass: "echo", ItemsFormat: "%s"}

func lastTurn(req classifier.Request) string {
	return req.Turns[len(req.Turns)-1]
}

func TestShard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		n          int
		maxWorkers int
		sizes      []int
	}{
		{name: "remainder to last chunk", n: 10, maxWorkers: 4, sizes: []int{2, 2, 2, 4}},
		{name: "fewer items than workers", n: 3, maxWorkers: 4, sizes: []int{1, 1, 1}},
		{name: "even split", n: 8, maxWorkers: 4, sizes: []int{2, 2, 2, 2}},
		{name: "single worker", n: 5, maxWorkers: 1, sizes: []int{5}},
		{name: "default workers", n: 9, maxWorkers: 0, sizes: []int{2, 2, 2, 3}},
		{name: "large remainder", n: 7, maxWorkers: 4, sizes: []int{1, 1, 1, 4}},
		{name: "empty", n: 0, maxWorkers: 4, sizes: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items := make([]int, tt.n)
			for i := range items {
				items[i] = i
			}

			chunks := classifier.Shard(items, tt.maxWorkers)
			var sizes []int
			var flat []int
			for _, c := range chunks {
				sizes = append(sizes, len(c))
				flat = append(flat, c...)
			}
			assert.Equal(t, tt.sizes, sizes)
			if tt.n > 0 {
				assert.Equal(t, items, flat, "chunks are contiguous and complete")
			}
		})
	}
}

func TestShard_ChunksDoNotAlias(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4}
	chunks := classifier.Shard(items, 2)
	chunks[0] = append(chunks[0], 99)
	assert.Equal(t, []int{1, 2, 3, 4}, items)
}

func TestBatch_ConcatenatesInShardOrder(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(_ context.Context, req classifier.Request) (string, error) {
		var chunk []int
		if err := json.Unmarshal([]byte(lastTurn(req)), &chunk); err != nil {
			return "", err
		}
		// Earlier shards finish last.
		time.Sleep(time.Duration(10-chunk[0]) * 5 * time.Millisecond)
		return lastTurn(req), nil
	}}

	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	got, err := classifier.Batch[int, int](context.Background(), client, 4, echoTemplate, items)
	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.Len(t, client.calls(), 4)
}

func TestBatch_SharedTurnsInEveryRequest(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(_ context.Context, req classifier.Request) (string, error) {
		return "[]", nil
	}}
	tmpl := classifier.Template{Pass: "p", System: "sys", Shared: []string{"doc"}, ItemsFormat: "items: %s"}

	_, err := classifier.Batch[int, int](context.Background(), client, 2, tmpl, []int{1, 2, 3})
	require.NoError(t, err)

	calls := client.calls()
	require.Len(t, calls, 2)
	for _, req := range calls {
		assert.Equal(t, "p", req.Pass)
		assert.Equal(t, "sys", req.System)
		require.Len(t, req.Turns, 2)
		assert.Equal(t, "doc", req.Turns[0])
		assert.True(t, strings.HasPrefix(req.Turns[1], "items: ["))
	}
}

func TestBatch_EmptyInputMakesNoCalls(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(context.Context, classifier.Request) (string, error) {
		t.Fatal("unexpected call")
		return "", nil
	}}
	got, err := classifier.Batch[int, int](context.Background(), client, 4, echoTemplate, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBatch_FailureIsAtomic(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var cancelled atomic.Int32
	client := &mockClient{complete: func(ctx context.Context, req classifier.Request) (string, error) {
		var chunk []int
		if err := json.Unmarshal([]byte(lastTurn(req)), &chunk); err != nil {
			return "", err
		}
		if chunk[0] == 4 {
			return "", boom
		}
		// Healthy shards block until the failure cancels them.
		<-ctx.Done()
		cancelled.Add(1)
		return "", ctx.Err()
	}}

	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	got, err := classifier.Batch[int, int](context.Background(), client, 4, echoTemplate, items)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)

	var shardErr *classifier.ShardError
	require.ErrorAs(t, err, &shardErr)
	assert.Equal(t, 2, shardErr.Shard)
	assert.Equal(t, "echo", shardErr.Pass)
	assert.Equal(t, int32(3), cancelled.Load())
}

func TestBatch_DecodesFencedAndWrappedAnswers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		answer string
	}{
		{name: "plain", answer: `[{"key":"input_1","general_input_group":"input text","description":"Email"}]`},
		{name: "fenced", answer: "```json\n[{\"key\":\"input_1\",\"general_input_group\":\"input text\",\"description\":\"Email\"}]\n```"},
		{name: "wrapped", answer: `{"tags":[{"key":"input_1","general_input_group":"input text","description":"Email"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &mockClient{complete: func(context.Context, classifier.Request) (string, error) {
				return tt.answer, nil
			}}
			got, err := classifier.Batch[int, domain.Summary](context.Background(), client, 1, echoTemplate, []int{1})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "input_1", got[0].Key)
			assert.Equal(t, "input text", got[0].GeneralInputGroup)
			require.NotNil(t, got[0].Description)
			assert.Equal(t, "Email", *got[0].Description)
		})
	}
}

func TestBatch_EmptyAnswer(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(context.Context, classifier.Request) (string, error) {
		return "```\n```", nil
	}}
	_, err := classifier.Batch[int, int](context.Background(), client, 1, echoTemplate, []int{1})
	assert.ErrorIs(t, err, classifier.ErrEmptyAnswer)
}

func newClassifier(client classifier.Client) *classifier.Classifier {
	return classifier.New(client, 4, infralogger.NewNop(), nil)
}

func TestClassifier_Summarize(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(_ context.Context, req classifier.Request) (string, error) {
		return `[{"key":"input_1","general_input_group":"input text","description":"First name"}]`, nil
	}}

	got, err := newClassifier(client).Summarize(context.Background(), []domain.TagRecord{{Key: "input_1", TagType: domain.TagInput}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "input text", got[0].GeneralInputGroup)

	req := client.calls()[0]
	assert.Equal(t, classifier.PassSummarize, req.Pass)
	assert.Contains(t, req.System, "HTML semantics")
	assert.Contains(t, lastTurn(req), `"key":"input_1"`)
}

func TestClassifier_AssessRelevance(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(_ context.Context, req classifier.Request) (string, error) {
		return `[{"key":"input_1","is_relevant_or_required":"yes","text_value":"Jane","select_option_value":null}]`, nil
	}}

	tags := []*domain.MergedTag{domain.NewMergedTag(domain.TagRecord{Key: "input_1", TagType: domain.TagInput})}
	got, err := newClassifier(client).AssessRelevance(context.Background(), tags, "My name is Jane.")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "yes", got[0].IsRelevantOrRequired)
	assert.Equal(t, domain.No, got[0].IsFilled)
	require.NotNil(t, got[0].TextValue)
	assert.Equal(t, "Jane", *got[0].TextValue)
	assert.Nil(t, got[0].SelectOptionValue)

	req := client.calls()[0]
	assert.Equal(t, classifier.PassRelevance, req.Pass)
	assert.Contains(t, req.Turns[0], "My name is Jane.")
}

func TestClassifier_PassFailureWrapsShardError(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(context.Context, classifier.Request) (string, error) {
		return "not json", nil
	}}
	_, err := newClassifier(client).Summarize(context.Background(), []domain.TagRecord{{Key: "input_1"}})

	var shardErr *classifier.ShardError
	require.ErrorAs(t, err, &shardErr)
	assert.Equal(t, classifier.PassSummarize, shardErr.Pass)
}

func TestClassifier_ChooseOption(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(context.Context, classifier.Request) (string, error) {
		return "\n  \"man\"  \nbecause the candidate is Male", nil
	}}

	got, err := newClassifier(client).ChooseOption(context.Background(), "Male", []domain.SelectOption{
		{Value: "M", Text: "man"},
		{Value: "F", Text: "woman"},
	})
	require.NoError(t, err)
	assert.Equal(t, "man", got)

	req := client.calls()[0]
	assert.Equal(t, classifier.PassChoose, req.Pass)
	assert.Contains(t, req.Turns[0], "Male")
	assert.Contains(t, req.Turns[1], `{"value":"M","text":"man"}`)
}

func TestClassifier_SelectDropdownItem(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(context.Context, classifier.Request) (string, error) {
		return "Canada", nil
	}}

	got, err := newClassifier(client).SelectDropdownItem(context.Background(), "I live in Toronto.", "Country", []string{"Canada", "France"})
	require.NoError(t, err)
	assert.Equal(t, "Canada", got)

	req := client.calls()[0]
	require.Len(t, req.Turns, 3)
	assert.Contains(t, req.Turns[0], "Toronto")
	assert.Contains(t, req.Turns[1], "Country")
	assert.Contains(t, req.Turns[2], `["Canada","France"]`)
}

func TestClassifier_SingleEmptyAnswer(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(context.Context, classifier.Request) (string, error) {
		return "  \n ", nil
	}}
	_, err := newClassifier(client).SelectDropdownItem(context.Background(), "", "x", nil)
	assert.ErrorIs(t, err, classifier.ErrEmptyAnswer)
}

func TestGuardedClient_CallTimeout(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(ctx context.Context, _ classifier.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	guarded := classifier.NewGuardedClient(client, classifier.GuardConfig{CallTimeout: 20 * time.Millisecond}, infralogger.NewNop(), nil)

	_, err := guarded.Complete(context.Background(), classifier.Request{Pass: "p"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGuardedClient_HungShardFailsBatch(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(ctx context.Context, req classifier.Request) (string, error) {
		if lastTurn(req) == "[1]" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return lastTurn(req), nil
	}}
	guarded := classifier.NewGuardedClient(client, classifier.GuardConfig{CallTimeout: 20 * time.Millisecond}, infralogger.NewNop(), nil)

	_, err := classifier.Batch[int, int](context.Background(), guarded, 2, echoTemplate, []int{0, 1})
	var shardErr *classifier.ShardError
	require.ErrorAs(t, err, &shardErr)
	assert.Equal(t, 1, shardErr.Shard)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGuardedClient_BreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := &mockClient{complete: func(context.Context, classifier.Request) (string, error) {
		calls.Add(1)
		return "", errors.New("provider down")
	}}
	var transitions []string
	guarded := classifier.NewGuardedClient(client, classifier.GuardConfig{
		Breaker: circuitbreaker.Config{
			FailureThreshold: 2,
			Timeout:          time.Hour,
			OnStateChange: func(_, to circuitbreaker.State) {
				transitions = append(transitions, to.String())
			},
		},
	}, infralogger.NewNop(), nil)

	for range 2 {
		_, err := guarded.Complete(context.Background(), classifier.Request{})
		require.Error(t, err)
	}
	_, err := guarded.Complete(context.Background(), classifier.Request{})
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, circuitbreaker.StateOpen, guarded.BreakerState())
	assert.Equal(t, []string{"open"}, transitions)
}

func TestGuardedClient_RateLimiterHonoursContext(t *testing.T) {
	t.Parallel()

	client := &mockClient{complete: func(context.Context, classifier.Request) (string, error) {
		return "ok", nil
	}}
	guarded := classifier.NewGuardedClient(client, classifier.GuardConfig{RequestsPerSecond: 0.001, Burst: 1}, infralogger.NewNop(), nil)

	got, err := guarded.Complete(context.Background(), classifier.Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = guarded.Complete(ctx, classifier.Request{})
	require.Error(t, err)
	assert.Len(t, client.calls(), 1)
}

func TestNewProviderClient(t *testing.T) {
	t.Parallel()

	c, err := classifier.NewProviderClient(context.Background(), classifier.ProviderConfig{Provider: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &classifier.AnthropicClient{}, c)

	_, err = classifier.NewProviderClient(context.Background(), classifier.ProviderConfig{Provider: "gemini"})
	require.Error(t, err)

	_, err = classifier.NewProviderClient(context.Background(), classifier.ProviderConfig{Provider: "openai"})
	require.Error(t, err)
}
