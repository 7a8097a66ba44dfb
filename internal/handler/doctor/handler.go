package doctor

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/middleware"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/service/booking"
	"github.com/labloom/marketplace-api/internal/service/consultation"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/httputil"
)

type Handler struct {
	bookings      *booking.Service
	consultations *consultation.Service
}

func NewHandler(bookings *booking.Service, consultations *consultation.Service) *Handler {
	return &Handler{bookings: bookings, consultations: consultations}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	d := r.Group("/doctor")
	{
		d.GET("/appointments", h.Appointments)
		d.POST("/appointments/:id/complete", h.CompleteVisit)
		d.PUT("/appointments/:id/records", h.SaveRecords)
		d.PUT("/appointments/:id/prescriptions", h.Prescribe)
		d.GET("/patients/:id/history", h.PatientHistory)
	}
}

func (h *Handler) Appointments(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	filter := &model.BookingFilter{
		Status: model.BookingStatus(c.Query("status")),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))
	filter.Normalize()

	appointments, total, err := h.bookings.DoctorAppointments(c.Request.Context(), account.ID, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, appointments, filter.Page, filter.PageSize, total)
}

func (h *Handler) CompleteVisit(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	var summary model.VisitSummary
	if err := c.ShouldBindJSON(&summary); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	completed, err := h.bookings.CompleteVisit(c.Request.Context(), account, bookingID, summary)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, completed)
}

func (h *Handler) SaveRecords(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	var req consultation.SaveRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	record, err := h.consultations.SaveRecords(c.Request.Context(), account, bookingID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, record)
}

type prescribeRequest struct {
	Prescriptions []model.Prescription `json:"prescriptions" binding:"required"`
}

func (h *Handler) Prescribe(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	var req prescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	record, err := h.consultations.Prescribe(c.Request.Context(), account, bookingID, req.Prescriptions)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, record)
}

func (h *Handler) PatientHistory(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid patient id"))
		return
	}

	history, err := h.consultations.PatientHistory(c.Request.Context(), account, patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, history)
}
