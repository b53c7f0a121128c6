package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxWorkers is the shard count used when none is configured.
const DefaultMaxWorkers = 4

// ShardError reports the shard whose call failed a batch.
type ShardError struct {
	Pass  string
	Shard int
	Err   error
}

func (e *ShardError) Error() string {
	return fmt.Sprintf("%s shard %d: %v", e.Pass, e.Shard, e.Err)
}

func (e *ShardError) Unwrap() error {
	return e.Err
}

// Template is the shared part of every request in a batch.
type Template struct {
	Pass   string
	System string
	// Shared turns precede the items turn in every request.
	Shared []string
	// ItemsFormat receives the JSON-encoded chunk through one %s verb.
	ItemsFormat string
}

func (t Template) request(chunk []byte) Request {
	turns := make([]string, 0, len(t.Shared)+1)
	turns = append(turns, t.Shared...)
	turns = append(turns, fmt.Sprintf(t.ItemsFormat, chunk))
	return Request{Pass: t.Pass, System: t.System, Turns: turns}
}

// Shard splits items into min(maxWorkers, len(items)) contiguous chunks of
// len(items)/shards elements. The remainder goes to the last chunk.
// maxWorkers <= 0 means DefaultMaxWorkers.
func Shard[T any](items []T, maxWorkers int) [][]T {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	n := len(items)
	if n == 0 {
		return nil
	}

	shards := min(maxWorkers, n)
	size := n / shards
	chunks := make([][]T, shards)
	for i := range shards {
		start := i * size
		end := start + size
		if i == shards-1 {
			end = n
		}
		chunks[i] = items[start:end:end]
	}
	return chunks
}

// Batch makes one call per shard in parallel and concatenates the decoded
// answers in shard order. Any failed shard fails the whole batch with a
// *ShardError; no partial result is returned.
func Batch[T, R any](ctx context.Context, client Client, maxWorkers int, tmpl Template, items []T) ([]R, error) {
	shards := Shard(items, maxWorkers)
	if len(shards) == 0 {
		return []R{}, nil
	}

	slots := make([][]R, len(shards))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range shards {
		g.Go(func() error {
			out, err := runShard[T, R](gctx, client, tmpl, chunk)
			if err != nil {
				return &ShardError{Pass: tmpl.Pass, Shard: i, Err: err}
			}
			slots[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}
	results := make([]R, 0, total)
	for _, s := range slots {
		results = append(results, s...)
	}
	return results, nil
}

func runShard[T, R any](ctx context.Context, client Client, tmpl Template, chunk []T) ([]R, error) {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("encode chunk: %w", err)
	}

	answer, err := client.Complete(ctx, tmpl.request(payload))
	if err != nil {
		return nil, err
	}
	return decodeList[R](answer)
}

// decodeList accepts a JSON array or an object wrapping it under "tags",
// optionally inside a Markdown code fence.
func decodeList[R any](answer string) ([]R, error) {
	body := stripFences(answer)
	if body == "" {
		return nil, ErrEmptyAnswer
	}

	if strings.HasPrefix(body, "{") {
		var wrapped struct {
			Tags []R `json:"tags"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
			return nil, fmt.Errorf("decode answer object: %w", err)
		}
		return wrapped.Tags, nil
	}

	var list []R
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		return nil, fmt.Errorf("decode answer list: %w", err)
	}
	return list, nil
}
