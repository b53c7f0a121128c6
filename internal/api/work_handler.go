// Package api provides HTTP handlers for the formfill service.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/service"
)

// WorkService is the service surface the handlers need.
type WorkService interface {
	Submit(ctx context.Context, req service.SubmitRequest) error
	ResolveElement(ctx context.Context, req service.ResolveRequest) (service.ResolveResult, error)
	List() []domain.SessionSummary
	Get(workID string) (domain.Session, error)
	Remove(workID string) error
}

// WorkHandler handles work submission and resolve requests.
type WorkHandler struct {
	svc    WorkService
	logger infralogger.Logger
}

// NewWorkHandler creates a new work handler.
func NewWorkHandler(svc WorkService, logger infralogger.Logger) *WorkHandler {
	return &WorkHandler{svc: svc, logger: logger}
}

// SubmitWork handles POST /api/v1/work.
func (h *WorkHandler) SubmitWork(c *gin.Context) {
	var req service.SubmitRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.MsgInvalidInput, "details": bindErr.Error()})
		return
	}

	if err := h.svc.Submit(c.Request.Context(), req); err != nil {
		h.respondSubmitError(c, req.WorkID, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "work_id": req.WorkID})
}

func (h *WorkHandler) respondSubmitError(c *gin.Context, workID string, err error) {
	body := gin.H{"error": service.Message(err), "details": err.Error(), "work_id": workID}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrContextNotFound):
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, service.ErrDuplicateWork):
		body["error"] = "Work already running"
		c.JSON(http.StatusConflict, body)
	default:
		infralogger.FromContextOr(c.Request.Context(), h.logger).Error("Submit failed", infralogger.WorkID(workID), infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, body)
	}
}

// SelectOption handles POST /api/v1/select_option.
func (h *WorkHandler) SelectOption(c *gin.Context) {
	var req service.ResolveRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.MsgInvalidInput, "details": bindErr.Error()})
		return
	}

	result, err := h.svc.ResolveElement(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.MsgInvalidInput, "details": err.Error()})
			return
		}
		infralogger.FromContextOr(c.Request.Context(), h.logger).Error("Resolve failed", infralogger.WorkID(req.WorkID), infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.MsgInternal, "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
