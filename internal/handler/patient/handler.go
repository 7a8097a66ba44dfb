package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/middleware"
	"github.com/labloom/marketplace-api/internal/service/notification"
	"github.com/labloom/marketplace-api/internal/service/patient"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/httputil"
)

type Handler struct {
	service       *patient.Service
	notifications *notification.Service
}

func NewHandler(service *patient.Service, notifications *notification.Service) *Handler {
	return &Handler{service: service, notifications: notifications}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	p := r.Group("/patient")
	{
		p.GET("/home", h.Home)

		p.POST("/metrics", h.AddMetric)
		p.GET("/metrics", h.LatestMetrics)
		p.GET("/metrics/:type", h.MetricHistory)

		p.GET("/favorites", h.Favorites)
		p.POST("/favorites/:id", h.ToggleFavorite)

		p.POST("/avatar", h.UploadAvatar)
	}

	n := r.Group("/notifications")
	{
		n.GET("", h.Notifications)
		n.POST("/:id/read", h.MarkNotificationRead)
	}
}

func (h *Handler) Home(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	dashboard, err := h.service.HomeDashboard(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, dashboard)
}

func (h *Handler) AddMetric(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req patient.MetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	metric, err := h.service.AddMetric(c.Request.Context(), account, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, metric)
}

func (h *Handler) LatestMetrics(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	metrics, err := h.service.LatestMetrics(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, metrics)
}

func (h *Handler) MetricHistory(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	history, err := h.service.MetricHistory(c.Request.Context(), account, c.Param("type"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, history)
}

func (h *Handler) Favorites(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	doctors, err := h.service.Favorites(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, doctors)
}

func (h *Handler) ToggleFavorite(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid doctor id"))
		return
	}

	favorited, err := h.service.ToggleFavorite(c.Request.Context(), account, doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"favorited": favorited})
}

func (h *Handler) UploadAvatar(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("image file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("could not read image file"))
		return
	}
	defer file.Close()

	url, err := h.service.UploadProfileImage(c.Request.Context(), account, fileHeader.Filename, file)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"url": url})
}

func (h *Handler) Notifications(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	list, err := h.notifications.List(c.Request.Context(), account.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, list)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid notification id"))
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "notification read", nil)
}
