package booking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/middleware"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/service/booking"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/httputil"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	b := r.Group("/bookings")
	{
		b.POST("", h.Create)
		b.GET("", h.Mine)
		b.GET("/:id", h.Get)
		b.PATCH("/:id/status", h.UpdateStatus)
		b.GET("/visits", h.VisitSummaries)
	}
	r.GET("/doctors/:id/slots", h.Slots)
}

func (h *Handler) Create(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), account.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, created)
}

func (h *Handler) Mine(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	filter := filterFromQuery(c)

	bookings, total, err := h.service.MyBookings(c.Request.Context(), account.ID, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, bookings, filter.Page, filter.PageSize, total)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	account := middleware.AccountFromContext(c)
	if !canSee(account, b) {
		httputil.RespondWithError(c, apperrors.Forbidden("booking belongs to another account"))
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, b)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), account, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}

func (h *Handler) Slots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid doctor id"))
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("date must be YYYY-MM-DD"))
		return
	}

	slots, err := h.service.Slots(c.Request.Context(), doctorID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, slots)
}

func (h *Handler) VisitSummaries(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	opts := booking.VisitSummaryOptions{
		Specialization: c.Query("specialization"),
		Query:          c.Query("q"),
		SortAZ:         c.Query("sort") == "az",
	}

	visits, err := h.service.VisitSummaries(c.Request.Context(), account.ID, opts)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, visits)
}

// canSee restricts single-booking reads to the participants.
func canSee(account *model.Account, b *model.Booking) bool {
	switch {
	case account.Role == model.RoleAdmin:
		return true
	case b.UserID == account.ID:
		return true
	case b.DoctorID != nil && *b.DoctorID == account.ID:
		return true
	}
	kind, entityID, ok := account.EntityRef()
	if ok && kind == model.EntityKindLab && b.LabID != nil && *b.LabID == entityID {
		return true
	}
	return false
}

func filterFromQuery(c *gin.Context) *model.BookingFilter {
	filter := &model.BookingFilter{
		Type:   model.BookingType(c.Query("type")),
		Status: model.BookingStatus(c.Query("status")),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))
	filter.Normalize()
	return filter
}
