package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/formfill/internal/service"
)

// SessionHandler serves the admin session routes.
type SessionHandler struct {
	svc WorkService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(svc WorkService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// ListSessions handles GET /api/v1/sessions.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions := h.svc.List()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// GetSession handles GET /api/v1/sessions/:work_id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, err := h.svc.Get(c.Param("work_id"))
	if err != nil {
		respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// DeleteSession handles DELETE /api/v1/sessions/:work_id.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.svc.Remove(c.Param("work_id")); err != nil {
		respondLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": service.MsgInternal, "details": err.Error()})
}
