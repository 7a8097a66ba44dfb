package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/middleware"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/service/chat"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/httputil"
)

type Handler struct {
	service *chat.Service
}

func NewHandler(service *chat.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	msgs := r.Group("/bookings/:id/messages")
	{
		msgs.POST("", h.Send)
		msgs.GET("", h.History)
	}
}

type sendRequest struct {
	Type    model.MessageType `json:"type,omitempty"`
	Content string            `json:"content" binding:"required"`
}

func (h *Handler) Send(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}
	if req.Type == "" {
		req.Type = model.MessageTypeText
	}

	msg, err := h.service.SendMessage(c.Request.Context(), account, bookingID, req.Type, req.Content)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, msg)
}

func (h *Handler) History(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	msgs, err := h.service.History(c.Request.Context(), account, bookingID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, msgs)
}
