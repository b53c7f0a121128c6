// Package service runs form-filling work sessions: it validates submissions,
// drives extraction, classification, merging and planning in the background,
// and answers single-element resolve queries.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/extractor"
	"github.com/jonesrussell/north-cloud/formfill/internal/merger"
	"github.com/jonesrussell/north-cloud/formfill/internal/notify"
	"github.com/jonesrussell/north-cloud/formfill/internal/planner"
	"github.com/jonesrussell/north-cloud/formfill/internal/reference"
	"github.com/jonesrussell/north-cloud/formfill/internal/session"
	"github.com/jonesrussell/north-cloud/formfill/internal/telemetry"
)

// Classifier is the classification surface a run needs.
type Classifier interface {
	Summarize(ctx context.Context, tags []domain.TagRecord) ([]domain.Summary, error)
	AssessRelevance(ctx context.Context, tags []*domain.MergedTag, contextDoc string) ([]domain.Relevance, error)
	ChooseOption(ctx context.Context, candidate string, options []domain.SelectOption) (string, error)
	SelectDropdownItem(ctx context.Context, contextDoc, description string, options []string) (string, error)
}

// ContextLoader supplies the context document.
type ContextLoader interface {
	Load(ctx context.Context) (string, error)
}

// SubmitRequest starts a work session.
type SubmitRequest struct {
	WorkID       string `json:"work_id"`
	RenderedHTML string `json:"renderedHTML"`
}

// Service owns the session registry and the background runs.
type Service struct {
	registry   *session.Registry
	classifier Classifier
	loader     ContextLoader
	notifier   notify.Notifier
	planner    *planner.Planner
	logger     infralogger.Logger
	telemetry  *telemetry.Provider

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a service. tp may be nil.
func New(
	registry *session.Registry,
	classifier Classifier,
	loader ContextLoader,
	notifier notify.Notifier,
	logger infralogger.Logger,
	tp *telemetry.Provider,
) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		registry:   registry,
		classifier: classifier,
		loader:     loader,
		notifier:   notifier,
		planner:    planner.New(classifier, notifier, logger, tp),
		logger:     logger,
		telemetry:  tp,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Submit validates req, registers the session and starts its run in the
// background. It returns as soon as the run is scheduled.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) error {
	if err := validateSubmit(req); err != nil {
		return err
	}
	if existing, ok := s.registry.Get(req.WorkID); ok && existing.Active() {
		return fmt.Errorf("submit %s: %w", req.WorkID, ErrDuplicateWork)
	}

	contextDoc, err := s.loader.Load(ctx)
	if err != nil {
		if errors.Is(err, reference.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrContextNotFound, err)
		}
		return fmt.Errorf("load context: %w", err)
	}

	if _, err = s.registry.Create(req.WorkID, req.RenderedHTML, contextDoc); err != nil {
		if errors.Is(err, session.ErrActive) {
			return fmt.Errorf("submit %s: %w", req.WorkID, ErrDuplicateWork)
		}
		return fmt.Errorf("register session: %w", err)
	}

	s.telemetry.SessionStarted()
	s.logger.Info("Work accepted",
		infralogger.WorkID(req.WorkID),
		infralogger.Int("document_bytes", len(req.RenderedHTML)),
	)

	s.wg.Go(func() {
		s.run(s.ctx, req.WorkID, req.RenderedHTML, contextDoc)
	})
	return nil
}

func validateSubmit(req SubmitRequest) error {
	var missing []string
	if strings.TrimSpace(req.WorkID) == "" {
		missing = append(missing, "work_id")
	}
	if strings.TrimSpace(req.RenderedHTML) == "" {
		missing = append(missing, "renderedHTML")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// run drives one session to completion and always ends with end-process.
func (s *Service) run(ctx context.Context, workID, document, contextDoc string) {
	log := s.logger.With(infralogger.WorkID(workID))

	ctx, span := s.telemetry.StartSpan(ctx, "service.run", attribute.String("work_id", workID))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			span.SetStatus(codes.Error, err.Error())
			s.fail(ctx, log, workID, err, string(debug.Stack()))
		}
	}()

	count, err := s.process(ctx, log, workID, document, contextDoc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.fail(ctx, log, workID, err, "")
		return
	}

	if completeErr := s.registry.Complete(workID, domain.SessionDone, ""); completeErr != nil {
		log.Warn("Session vanished before completion", infralogger.Error(completeErr))
	}
	s.telemetry.SessionFinished(true)
	s.notifier.Notify(ctx, domain.Notification{
		Type:   domain.EventEndProcess,
		WorkID: workID,
		Payload: Completion{
			WorkID:       workID,
			RenderedHTML: document,
			Status:       string(domain.SessionDone),
			Actions:      count,
		},
	})
	log.Info("Work finished", infralogger.Int("actions", count))
}

func (s *Service) process(
	ctx context.Context,
	log infralogger.Logger,
	workID, document, contextDoc string,
) (int, error) {
	tags, err := extractor.Extract(document)
	if err != nil {
		return 0, fmt.Errorf("extract tags: %w", err)
	}
	log.Info("Tags extracted", infralogger.Int("tags", len(tags)))
	s.update(log, workID, func(sess *domain.Session) { sess.Tags = tags })

	summaries, err := s.classifier.Summarize(ctx, tags)
	if err != nil {
		return 0, err
	}
	relevances, err := s.classifier.AssessRelevance(ctx, merger.WithSummaries(tags, summaries), contextDoc)
	if err != nil {
		return 0, err
	}

	merged := merger.Merge(tags, summaries, relevances)
	result := s.planner.Plan(ctx, workID, merged)

	snapshot := make([]*domain.MergedTag, len(merged))
	for i, m := range merged {
		snapshot[i] = m.Clone()
	}
	s.update(log, workID, func(sess *domain.Session) {
		sess.Merged = snapshot
		sess.Actions = result.Actions
	})
	return len(result.Actions), nil
}

func (s *Service) update(log infralogger.Logger, workID string, fn func(*domain.Session)) {
	if err := s.registry.Update(workID, fn); err != nil {
		log.Warn("Session update skipped", infralogger.Error(err))
	}
}

func (s *Service) fail(ctx context.Context, log infralogger.Logger, workID string, err error, trace string) {
	report := NewFailureReport(workID, err, trace)
	log.Error("Work failed",
		infralogger.String("reason", report.Error),
		infralogger.Error(err),
	)

	if completeErr := s.registry.Complete(workID, domain.SessionFailed, report.Details); completeErr != nil {
		log.Warn("Session vanished before completion", infralogger.Error(completeErr))
	}
	s.telemetry.SessionFinished(false)
	s.notifier.Notify(ctx, domain.Notification{
		Type:    domain.EventEndProcess,
		WorkID:  workID,
		Payload: report,
	})
}

// Close cancels running sessions and waits for them to report.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// Wait blocks until every background run has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// List returns session summaries ordered by creation time.
func (s *Service) List() []domain.SessionSummary {
	return s.registry.List()
}

// Get returns one session.
func (s *Service) Get(workID string) (domain.Session, error) {
	sess, ok := s.registry.Get(workID)
	if !ok {
		return domain.Session{}, fmt.Errorf("get %s: %w", workID, ErrSessionNotFound)
	}
	return sess, nil
}

// Remove deletes a session. A running session keeps running but its
// results are no longer recorded.
func (s *Service) Remove(workID string) error {
	if !s.registry.Remove(workID) {
		return fmt.Errorf("remove %s: %w", workID, ErrSessionNotFound)
	}
	s.logger.Info("Session removed", infralogger.WorkID(workID))
	return nil
}
