package http

import (
	"net/http"

	"tickrflow/internal/notifier/dto"
	"tickrflow/internal/notifier/service"
	"tickrflow/pkg/common"
	"tickrflow/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TriggerHandler handles HTTP requests that publish flow trigger events.
type TriggerHandler struct {
	triggerService service.TriggerService
	logger         *logger.Logger
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(triggerService service.TriggerService, logger *logger.Logger) *TriggerHandler {
	return &TriggerHandler{triggerService: triggerService, logger: logger}
}

// RegisterRoutes registers the trigger routes to the Echo group.
func (h *TriggerHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/digest/trigger", h.TriggerDigest)
	g.POST("/events/user-created", h.PublishUserCreated)
}

// TriggerDigest publishes an app/send.daily.news event.
func (h *TriggerHandler) TriggerDigest(c echo.Context) error {
	id, err := h.triggerService.PublishDailyNews(c.Request().Context(), dto.SendDailyNewsEvent{TriggeredBy: "api"})
	if err != nil {
		h.logger.Error("Failed to publish digest trigger", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusAccepted, dto.TriggerResponse{
		Stream:    common.RedisStreamSendDailyNews,
		MessageID: id,
	})
}

// PublishUserCreated publishes an app/user.created event, used by the auth
// layer and for replaying a welcome email.
func (h *TriggerHandler) PublishUserCreated(c echo.Context) error {
	var event dto.UserCreatedEvent
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}
	if event.Email == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email is required"})
	}

	id, err := h.triggerService.PublishUserCreated(c.Request().Context(), event)
	if err != nil {
		h.logger.Error("Failed to publish user created event", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusAccepted, dto.TriggerResponse{
		Stream:    common.RedisStreamUserCreated,
		MessageID: id,
	})
}
