package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/extractor"
)

// Resolve outcomes.
const (
	StatusSuccess      = "success"
	StatusUnsuccessful = "unsuccessful"
)

// ResolveRequest asks which element of a freshly opened custom dropdown to
// click. When Options is empty the text that appeared between OldHTML and
// NewHTML is offered instead.
type ResolveRequest struct {
	WorkID      string   `json:"work_id"`
	NewHTML     string   `json:"newHtml"`
	OldHTML     string   `json:"oldHtml,omitempty"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
}

// ResolveResult is the answer to a ResolveRequest.
type ResolveResult struct {
	Status          string               `json:"status"`
	ElementToSelect *domain.ElementMatch `json:"element_to_select,omitempty"`
	WorkID          string               `json:"work_id,omitempty"`
}

func unsuccessful() ResolveResult { return ResolveResult{Status: StatusUnsuccessful} }

// ResolveElement picks an option for the described dropdown using the
// session's context document and locates it in NewHTML. An unknown session
// or an answer absent from the document is unsuccessful, not an error.
func (s *Service) ResolveElement(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	if strings.TrimSpace(req.WorkID) == "" || strings.TrimSpace(req.NewHTML) == "" {
		return ResolveResult{}, fmt.Errorf("%w: work_id and newHtml are required", ErrInvalidInput)
	}

	ctx, span := s.telemetry.StartSpan(ctx, "service.resolve", attribute.String("work_id", req.WorkID))
	defer span.End()

	log := s.logger.With(infralogger.WorkID(req.WorkID))

	sess, ok := s.registry.Get(req.WorkID)
	if !ok {
		log.Warn("Resolve for unknown session")
		s.telemetry.RecordResolve(false)
		return unsuccessful(), nil
	}

	options := req.Options
	if len(options) == 0 && req.OldHTML != "" {
		revealed, err := extractor.NewLines(req.OldHTML, req.NewHTML)
		if err != nil {
			return ResolveResult{}, fmt.Errorf("diff documents: %w", err)
		}
		options = revealed
	}
	if len(options) == 0 {
		log.Warn("Resolve has no options to choose from")
		s.telemetry.RecordResolve(false)
		return unsuccessful(), nil
	}

	answer, err := s.classifier.SelectDropdownItem(ctx, sess.Context, req.Description, options)
	if err != nil {
		s.telemetry.RecordResolve(false)
		return ResolveResult{}, fmt.Errorf("select dropdown item: %w", err)
	}

	doc, err := extractor.Parse(req.NewHTML)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("parse document: %w", err)
	}
	match, found := doc.FindByExactText(answer)
	if !found {
		log.Info("Chosen option not present in document", infralogger.String("answer", answer))
		s.telemetry.RecordResolve(false)
		return unsuccessful(), nil
	}

	span.SetAttributes(attribute.String("element", match.Key))
	log.Info("Dropdown item resolved",
		infralogger.String("answer", answer),
		infralogger.TagKey(match.Key),
	)
	s.telemetry.RecordResolve(true)
	return ResolveResult{Status: StatusSuccess, ElementToSelect: &match, WorkID: req.WorkID}, nil
}
