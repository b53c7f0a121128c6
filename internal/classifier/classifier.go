package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/telemetry"
)

// Classifier runs the summary, relevance and option-choice passes.
type Classifier struct {
	client     Client
	maxWorkers int
	logger     infralogger.Logger
	telemetry  *telemetry.Provider
}

// New creates a classifier. tp may be nil.
func New(client Client, maxWorkers int, logger infralogger.Logger, tp *telemetry.Provider) *Classifier {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Classifier{client: client, maxWorkers: maxWorkers, logger: logger, telemetry: tp}
}

// Summarize assigns each tag a general input group and a description.
func (c *Classifier) Summarize(ctx context.Context, tags []domain.TagRecord) ([]domain.Summary, error) {
	return runBatch[domain.TagRecord, domain.Summary](ctx, c, summarizeTemplate, tags)
}

// AssessRelevance decides, against the context document, whether each tag
// should be filled and with what. tags normally carry their summaries.
func (c *Classifier) AssessRelevance(
	ctx context.Context,
	tags []*domain.MergedTag,
	contextDoc string,
) ([]domain.Relevance, error) {
	results, err := runBatch[*domain.MergedTag, domain.Relevance](ctx, c, relevanceTemplate(contextDoc), tags)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].IsFilled == "" {
			results[i].IsFilled = domain.No
		}
	}
	return results, nil
}

func runBatch[T, R any](ctx context.Context, c *Classifier, tmpl Template, items []T) ([]R, error) {
	shards := len(Shard(items, c.maxWorkers))
	ctx, span := c.telemetry.StartSpan(ctx, "classifier."+tmpl.Pass,
		attribute.Int("items", len(items)),
		attribute.Int("shards", shards),
	)
	defer span.End()

	c.telemetry.RecordBatch(shards)
	c.logger.Debug("Classification batch started",
		infralogger.Pass(tmpl.Pass),
		infralogger.Int("items", len(items)),
		infralogger.Int("shards", shards),
	)

	results, err := Batch[T, R](ctx, c.client, c.maxWorkers, tmpl, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("Classification batch failed", infralogger.Pass(tmpl.Pass), infralogger.Error(err))
		return nil, fmt.Errorf("classify %s: %w", tmpl.Pass, err)
	}

	c.logger.Debug("Classification batch finished",
		infralogger.Pass(tmpl.Pass),
		infralogger.Int("results", len(results)),
	)
	return results, nil
}

// ChooseOption asks for the option text that best matches candidate. The
// answer is returned literally; callers reconcile it with the option set.
func (c *Classifier) ChooseOption(ctx context.Context, candidate string, options []domain.SelectOption) (string, error) {
	encoded, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	return c.single(ctx, Request{
		Pass:   PassChoose,
		System: pickOneSystem,
		Turns: []string{
			"Here is the context : " + candidate,
			fmt.Sprintf("Here are the list of options : %s . %s", encoded, chooseDirections),
		},
	})
}

// SelectDropdownItem picks one of options for a custom dropdown described
// by description, using the context document.
func (c *Classifier) SelectDropdownItem(
	ctx context.Context,
	contextDoc, description string,
	options []string,
) (string, error) {
	encoded, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	return c.single(ctx, Request{
		Pass:   PassDropdown,
		System: pickOneSystem,
		Turns: []string{
			"Here is the context document : " + contextDoc,
			"Here is the question/description : " + description,
			fmt.Sprintf("Here are the list of options : %s", encoded),
		},
	})
}

func (c *Classifier) single(ctx context.Context, req Request) (string, error) {
	ctx, span := c.telemetry.StartSpan(ctx, "classifier."+req.Pass)
	defer span.End()

	answer, err := c.client.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("classify %s: %w", req.Pass, err)
	}

	line := firstLine(stripFences(answer))
	if line == "" {
		return "", fmt.Errorf("classify %s: %w", req.Pass, ErrEmptyAnswer)
	}
	return line, nil
}

// firstLine returns the first non-empty line without surrounding quotes.
func firstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'`")
		if line != "" {
			return line
		}
	}
	return ""
}
