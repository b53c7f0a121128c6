// Package planner turns merged tags into fill, click and select actions.
//
// Five passes run in a fixed order over the same tags. Every pass except
// the radio pass skips tags an earlier pass already filled; the radio pass
// acts on every relevant radio each time Plan runs.
package planner

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/telemetry"
)

// Category markers, matched case-insensitively as substrings.
const (
	markerDropdown = "dropdown"
	markerText     = "text"
	markerRadio    = "radio"
	markerCheck    = "check"
	markerSelect   = "select"
)

// OptionResolver picks the option text that best matches a candidate value.
type OptionResolver interface {
	ChooseOption(ctx context.Context, candidate string, options []domain.SelectOption) (string, error)
}

// Notifier delivers notifications without waiting for the consumer.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// Result is the outcome of one Plan run.
type Result struct {
	Actions []domain.Action
	// Skipped counts select tags whose option could not be resolved.
	Skipped int
}

// Planner decides actions for one session's tags. It must not be run
// concurrently on the same tags.
type Planner struct {
	resolver  OptionResolver
	notifier  Notifier
	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// New creates a planner. tp may be nil.
func New(resolver OptionResolver, notifier Notifier, logger infralogger.Logger, tp *telemetry.Provider) *Planner {
	return &Planner{resolver: resolver, notifier: notifier, logger: logger, telemetry: tp}
}

type run struct {
	*Planner
	ctx    context.Context
	workID string
	logger infralogger.Logger
	result Result
}

// Plan runs the five passes over tags, mutating their fill status and
// resolved option values, and emits each action as it is decided.
func (p *Planner) Plan(ctx context.Context, workID string, tags []*domain.MergedTag) Result {
	ctx, span := p.telemetry.StartSpan(ctx, "planner.plan",
		attribute.String("work_id", workID),
		attribute.Int("tags", len(tags)),
	)
	defer span.End()

	r := &run{Planner: p, ctx: ctx, workID: workID, logger: p.logger.With(infralogger.WorkID(workID))}
	for _, pass := range []func(*domain.MergedTag){
		r.dropdownPass,
		r.textPass,
		r.radioPass,
		r.checkboxPass,
		r.selectPass,
	} {
		for _, tag := range tags {
			pass(tag)
		}
	}

	span.SetAttributes(
		attribute.Int("actions", len(r.result.Actions)),
		attribute.Int("skipped", r.result.Skipped),
	)
	r.logger.Info("Plan finished",
		infralogger.Int("actions", len(r.result.Actions)),
		infralogger.Int("skipped", r.result.Skipped),
	)
	return r.result
}

func contains(s, marker string) bool {
	return strings.Contains(strings.ToLower(s), marker)
}

func present(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

// dropdownPass clicks custom (non-native) dropdowns open.
func (r *run) dropdownPass(tag *domain.MergedTag) {
	if !contains(tag.GeneralInputGroup, markerDropdown) ||
		!tag.IsRelevant() || tag.IsFilled() ||
		contains(string(tag.TagType), markerSelect) {
		return
	}
	tag.MarkFilled()
	r.emit(domain.Action{Type: domain.EventClickDropdown, Tag: tag.Clone()})
}

// textPass fills free-text inputs that have a value.
func (r *run) textPass(tag *domain.MergedTag) {
	if !(contains(tag.GeneralInputGroup, markerText) || contains(string(tag.TagType), markerText)) ||
		!tag.IsRelevant() || !present(tag.TextValue) || tag.IsFilled() {
		return
	}
	tag.MarkFilled()
	r.emit(domain.Action{Type: domain.EventFillText, Selector: TagSelector(tag), Value: *tag.TextValue})
}

// radioPass clicks relevant radios. It does not check the fill status, so
// a repeated Plan clicks them again.
func (r *run) radioPass(tag *domain.MergedTag) {
	if !(contains(tag.GeneralInputGroup, markerRadio) || contains(string(tag.TagType), markerRadio)) ||
		!tag.IsRelevant() {
		return
	}
	tag.MarkFilled()
	r.emit(domain.Action{Type: domain.EventFillRadio, Selector: TagSelector(tag)})
}

// checkboxPass ticks relevant checkboxes.
func (r *run) checkboxPass(tag *domain.MergedTag) {
	if !contains(tag.GeneralInputGroup, markerCheck) || !tag.IsRelevant() || tag.IsFilled() {
		return
	}
	tag.MarkFilled()
	r.emit(domain.Action{Type: domain.EventFillCheckbox, Selector: TagSelector(tag)})
}

// selectPass resolves the candidate option of a native select to one of
// its options, then selects it.
func (r *run) selectPass(tag *domain.MergedTag) {
	if !(contains(tag.GeneralInputGroup, markerDropdown) || contains(tag.GeneralInputGroup, markerSelect)) ||
		!tag.IsRelevant() || !present(tag.SelectOptionValue) || tag.IsFilled() ||
		!contains(string(tag.TagType), markerSelect) {
		return
	}

	candidate := *tag.SelectOptionValue
	answer, err := r.resolver.ChooseOption(r.ctx, candidate, tag.SelectOptions)
	if err != nil {
		r.result.Skipped++
		r.logger.Error("Option resolution failed, skipping select",
			infralogger.TagKey(tag.Key),
			infralogger.Error(err),
		)
		return
	}

	resolved := answer
	if opt, ok := MatchOption(answer, tag.SelectOptions); ok {
		resolved = submitValue(opt)
	} else {
		r.telemetry.RecordUnmatchedOption()
		r.logger.Warn("Resolved option matches no select option",
			infralogger.TagKey(tag.Key),
			infralogger.String("candidate", candidate),
			infralogger.String("answer", answer),
		)
	}

	tag.SelectOptionValue = &resolved
	tag.MarkFilled()
	r.emit(domain.Action{Type: domain.EventSelectOption, Tag: tag.Clone()})
}

func (r *run) emit(action domain.Action) {
	action.WorkID = r.workID
	r.result.Actions = append(r.result.Actions, action)
	r.telemetry.RecordAction(string(action.Type))
	r.logger.Debug("Action decided",
		infralogger.String("type", string(action.Type)),
		infralogger.String("selector", action.Selector),
	)
	r.notifier.Notify(r.ctx, action.Notification())
}
