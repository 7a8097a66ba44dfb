package records

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/middleware"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/service/records"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/httputil"
)

type Handler struct {
	service *records.Service
}

func NewHandler(service *records.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rec := r.Group("/records")
	{
		rec.GET("/reports", h.LabReports)
		rec.GET("/prescriptions", h.Prescriptions)
		rec.POST("/prescriptions/:bookingId/:prescriptionId/refill", h.RequestRefill)
		rec.PUT("/prescriptions/:bookingId/:prescriptionId/reminder", h.SetReminder)
	}
}

func (h *Handler) LabReports(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	opts := records.ReportOptions{
		Category: c.Query("category"),
		Grade:    records.ReportGrade(c.Query("grade")),
		SortAZ:   c.Query("sort") == "az",
	}

	reports, err := h.service.LabReports(c.Request.Context(), account.ID, opts)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, reports)
}

func (h *Handler) Prescriptions(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	opts := records.PrescriptionOptions{
		Tab:            c.Query("tab"),
		MedicationType: c.Query("type"),
		Specialization: c.Query("specialization"),
		SortAZ:         c.Query("sort") == "az",
	}

	prescriptions, err := h.service.Prescriptions(c.Request.Context(), account.ID, opts)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, prescriptions)
}

func (h *Handler) RequestRefill(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	bookingID, prescriptionID, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.RequestRefill(c.Request.Context(), account, bookingID, prescriptionID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "refill requested", nil)
}

func (h *Handler) SetReminder(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	bookingID, prescriptionID, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var settings *model.ReminderSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	if err := h.service.SetReminder(c.Request.Context(), account, bookingID, prescriptionID, settings); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "reminder updated", nil)
}

func pathIDs(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.InvalidRequest("invalid booking id")
	}
	prescriptionID, err := uuid.Parse(c.Param("prescriptionId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.InvalidRequest("invalid prescription id")
	}
	return bookingID, prescriptionID, nil
}
