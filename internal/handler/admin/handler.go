package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/service/admin"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/httputil"
)

type Handler struct {
	service *admin.Service
}

func NewHandler(service *admin.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the admin endpoints. The group is expected to be
// gated to the admin role by the caller.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	a := r.Group("/admin")
	{
		a.GET("/pending/labs", h.PendingLabs)
		a.GET("/pending/hospitals", h.PendingHospitals)
		a.GET("/pending/doctors", h.PendingDoctors)

		a.POST("/labs/:id/review", h.ReviewLab)
		a.POST("/hospitals/:id/review", h.ReviewHospital)
		a.POST("/doctors/:id/review", h.ReviewDoctor)

		a.GET("/users", h.Users)
		a.POST("/users/:id/activate", h.Activate)
		a.POST("/users/:id/suspend", h.Suspend)

		a.GET("/analytics", h.Analytics)
	}
}

type reviewRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

func (h *Handler) PendingLabs(c *gin.Context) {
	labs, err := h.service.PendingLabs(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, labs)
}

func (h *Handler) PendingHospitals(c *gin.Context) {
	hospitals, err := h.service.PendingHospitals(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, hospitals)
}

func (h *Handler) PendingDoctors(c *gin.Context) {
	doctors, err := h.service.PendingDoctors(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, doctors)
}

func (h *Handler) ReviewLab(c *gin.Context) {
	h.review(c, func(ctx *gin.Context, id uuid.UUID, approve bool) (interface{}, error) {
		return h.service.ReviewLab(ctx.Request.Context(), id, approve)
	})
}

func (h *Handler) ReviewHospital(c *gin.Context) {
	h.review(c, func(ctx *gin.Context, id uuid.UUID, approve bool) (interface{}, error) {
		return h.service.ReviewHospital(ctx.Request.Context(), id, approve)
	})
}

func (h *Handler) ReviewDoctor(c *gin.Context) {
	h.review(c, func(ctx *gin.Context, id uuid.UUID, approve bool) (interface{}, error) {
		return h.service.ReviewDoctor(ctx.Request.Context(), id, approve)
	})
}

func (h *Handler) review(c *gin.Context, decide func(*gin.Context, uuid.UUID, bool) (interface{}, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid id"))
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	result, err := decide(c, id, *req.Approve)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, result)
}

func (h *Handler) Users(c *gin.Context) {
	var filter model.AccountFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}
	filter.Normalize()

	users, total, err := h.service.Users(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, users, filter.Page, filter.PageSize, total)
}

func (h *Handler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *Handler) Suspend(c *gin.Context) {
	h.setActive(c, false)
}

func (h *Handler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid account id"))
		return
	}

	account, err := h.service.SetActive(c.Request.Context(), id, active)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, account)
}

func (h *Handler) Analytics(c *gin.Context) {
	analytics, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, analytics)
}
