package hospital

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/middleware"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/service/booking"
	"github.com/labloom/marketplace-api/internal/service/facility"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/httputil"
)

type Handler struct {
	facilities *facility.Service
	bookings   *booking.Service
}

func NewHandler(facilities *facility.Service, bookings *booking.Service) *Handler {
	return &Handler{facilities: facilities, bookings: bookings}
}

// RegisterRoutes mounts the hospital-staff endpoints. The group is expected
// to be gated to the hospital role by the caller.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	hg := r.Group("/hospital")
	{
		hg.GET("/roster", h.Roster)
		hg.POST("/roster", h.AddToRoster)
		hg.DELETE("/roster/:id", h.RemoveFromRoster)
		hg.PUT("/roster/slots", h.AssignSlots)

		hg.GET("/dashboard", h.Dashboard)
		hg.GET("/appointments", h.Appointments)
		hg.GET("/finance", h.Finance)
	}
}

func (h *Handler) Roster(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	roster, err := h.facilities.Roster(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, roster)
}

func (h *Handler) AddToRoster(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req facility.RosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	entry, err := h.facilities.AddToRoster(c.Request.Context(), account, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, entry)
}

func (h *Handler) RemoveFromRoster(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid doctor id"))
		return
	}

	if err := h.facilities.RemoveFromRoster(c.Request.Context(), account, doctorID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "doctor removed from roster", nil)
}

func (h *Handler) AssignSlots(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req facility.SlotAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	if err := h.facilities.AssignSlots(c.Request.Context(), account, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "slots assigned", nil)
}

func (h *Handler) Dashboard(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	stats, err := h.facilities.Dashboard(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, stats)
}

func (h *Handler) Appointments(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	hospital, err := h.facilities.StaffHospital(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filter := &model.BookingFilter{
		Status: model.BookingStatus(c.Query("status")),
	}
	if from, ok := dateQuery(c, "from"); ok {
		filter.From = from
	}
	if to, ok := dateQuery(c, "to"); ok {
		filter.To = to
	}

	appointments, err := h.bookings.HospitalAppointments(c.Request.Context(), hospital, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, appointments)
}

func (h *Handler) Finance(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	hospital, err := h.facilities.StaffHospital(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	from, _ := dateQuery(c, "from")
	to, _ := dateQuery(c, "to")

	finance, err := h.bookings.HospitalFinance(c.Request.Context(), hospital, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, finance)
}

func dateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
