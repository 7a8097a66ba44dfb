package lab

import (
	"context"
	"io"
	"net/http"
	"strconv"

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

// RegisterRoutes mounts the lab-staff endpoints. The group is expected to be
// gated to the lab role by the caller.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	l := r.Group("/lab")
	{
		l.GET("/catalog", h.Catalog)
		l.POST("/catalog", h.AddCatalogEntry)
		l.PUT("/catalog/:id", h.UpdateCatalogEntry)
		l.DELETE("/catalog/:id", h.RemoveCatalogEntry)

		l.GET("/settings", h.Settings)
		l.PUT("/settings", h.UpdateSettings)

		l.GET("/staff", h.Staff)
		l.POST("/staff", h.AddStaff)

		l.GET("/bookings", h.Bookings)
		l.GET("/bookings/pending", h.PendingQueue)
		l.POST("/bookings/offline", h.OfflineBooking)

		l.POST("/bookings/:id/report", h.UploadReport)
		l.POST("/bookings/:id/report/legacy", h.UploadLegacyReport)
		l.POST("/bookings/:id/report/validate", h.ValidateReport)
	}
}

// RegisterReportRoutes mounts the report download shared by patients and lab
// staff; it belongs on the general authenticated group.
func (h *Handler) RegisterReportRoutes(r *gin.RouterGroup) {
	r.GET("/bookings/:id/report", h.ReportURL)
}

func (h *Handler) Catalog(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	items, err := h.facilities.Catalog(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, items)
}

func (h *Handler) AddCatalogEntry(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req facility.CatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	entry, err := h.facilities.AddCatalogEntry(c.Request.Context(), account, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, entry)
}

func (h *Handler) UpdateCatalogEntry(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid entry id"))
		return
	}

	var req facility.CatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	entry, err := h.facilities.UpdateCatalogEntry(c.Request.Context(), account, entryID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, entry)
}

func (h *Handler) RemoveCatalogEntry(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid entry id"))
		return
	}

	if err := h.facilities.RemoveCatalogEntry(c.Request.Context(), account, entryID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "catalog entry removed", nil)
}

func (h *Handler) Settings(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	lab, err := h.facilities.LabSettings(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, lab)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req facility.LabSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	lab, err := h.facilities.UpdateLabSettings(c.Request.Context(), account, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, lab)
}

func (h *Handler) Staff(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	staff, err := h.facilities.LabStaff(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, staff)
}

func (h *Handler) AddStaff(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req facility.AddStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	created, err := h.facilities.AddLabStaff(c.Request.Context(), account, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, created)
}

func (h *Handler) Bookings(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	lab, err := h.facilities.StaffLab(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filter := &model.BookingFilter{
		Status: model.BookingStatus(c.Query("status")),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))
	filter.Normalize()

	bookings, total, err := h.bookings.LabBookings(c.Request.Context(), lab.ID, filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, bookings, filter.Page, filter.PageSize, total)
}

func (h *Handler) PendingQueue(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	lab, err := h.facilities.StaffLab(c.Request.Context(), account)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	queue, err := h.bookings.PendingLabQueue(c.Request.Context(), lab.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, queue)
}

func (h *Handler) OfflineBooking(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req model.OfflineBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	created, err := h.bookings.CreateOfflineBooking(c.Request.Context(), account, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, created)
}

type attachFunc func(ctx context.Context, staff *model.Account, bookingID uuid.UUID, filename string, r io.Reader) (*model.Booking, error)

func (h *Handler) UploadReport(c *gin.Context) {
	h.upload(c, h.facilities.UploadReport)
}

func (h *Handler) UploadLegacyReport(c *gin.Context) {
	h.upload(c, h.facilities.UploadLegacyReport)
}

func (h *Handler) upload(c *gin.Context, attach attachFunc) {
	account := middleware.AccountFromContext(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	fileHeader, err := c.FormFile("report")
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("report file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("could not read report file"))
		return
	}
	defer file.Close()

	updated, err := attach(c.Request.Context(), account, bookingID, fileHeader.Filename, file)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}

func (h *Handler) ValidateReport(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	updated, err := h.facilities.ValidateReport(c.Request.Context(), account, bookingID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}

func (h *Handler) ReportURL(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid booking id"))
		return
	}

	url, err := h.facilities.ReportURL(c.Request.Context(), account, bookingID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"url": url})
}
