package api

import (
	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/north-cloud/formfill/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/formfill/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/formfill/infrastructure/sse"
)

// SetupRoutes configures all API routes.
// Work, resolve and event routes are public; the browser extension calls
// them directly. Session administration is protected with JWT.
func SetupRoutes(
	router *gin.Engine,
	workHandler *WorkHandler,
	sessionHandler *SessionHandler,
	broker sse.Broker,
	logger infralogger.Logger,
	jwtSecret string,
) {
	public, protected := infragin.SetupAPIRoutesWithPublic(router, jwtSecret)

	public.POST("/work", workHandler.SubmitWork)
	public.POST("/select_option", workHandler.SelectOption)
	public.GET("/events", sse.HandlerWithOptions(broker, logger, func(c *gin.Context) []sse.ClientOption {
		return []sse.ClientOption{sse.WithTopic(c.Query("work_id"))}
	}))

	protected.GET("/sessions", sessionHandler.ListSessions)
	protected.GET("/sessions/:work_id", sessionHandler.GetSession)
	protected.DELETE("/sessions/:work_id", sessionHandler.DeleteSession)
}
