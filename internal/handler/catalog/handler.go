package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/service/catalog"
	"github.com/labloom/marketplace-api/internal/service/facility"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/httputil"
)

// Handler serves the public discovery surface: the test catalog plus the
// lab, doctor, and hospital directories.
type Handler struct {
	tests      *catalog.Service
	facilities *facility.Service
}

func NewHandler(tests *catalog.Service, facilities *facility.Service) *Handler {
	return &Handler{tests: tests, facilities: facilities}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tests", h.ListTests)
	r.GET("/tests/:id", h.GetTest)

	r.GET("/labs", h.Labs)
	r.GET("/labs/:id/tests", h.LabTests)

	r.GET("/doctors", h.Doctors)
	r.GET("/doctors/:id", h.Doctor)

	r.GET("/hospitals/popular", h.PopularHospitals)
}

// RegisterAdminRoutes mounts the catalog write endpoints on an admin-gated
// group.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	t := r.Group("/tests")
	{
		t.POST("", h.CreateTest)
		t.PUT("/:id", h.UpdateTest)
		t.DELETE("/:id", h.DeleteTest)
	}
}

func (h *Handler) ListTests(c *gin.Context) {
	tests, err := h.tests.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, tests)
}

func (h *Handler) GetTest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid test id"))
		return
	}

	test, err := h.tests.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, test)
}

func (h *Handler) CreateTest(c *gin.Context) {
	var req catalog.TestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	test, err := h.tests.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, test)
}

func (h *Handler) UpdateTest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid test id"))
		return
	}

	var req catalog.TestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	test, err := h.tests.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, test)
}

func (h *Handler) DeleteTest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid test id"))
		return
	}

	if err := h.tests.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "test deleted", nil)
}

func (h *Handler) Labs(c *gin.Context) {
	var filter model.LabFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}
	filter.Normalize()

	labs, total, err := h.facilities.Labs(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, labs, filter.Page, filter.PageSize, total)
}

func (h *Handler) LabTests(c *gin.Context) {
	labID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid lab id"))
		return
	}

	items, err := h.facilities.LabTests(c.Request.Context(), labID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, items)
}

func (h *Handler) Doctors(c *gin.Context) {
	doctors, err := h.facilities.Doctors(c.Request.Context(), c.Query("specialization"), c.Query("search"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, doctors)
}

func (h *Handler) Doctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest("invalid doctor id"))
		return
	}

	detail, err := h.facilities.Doctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, detail)
}

func (h *Handler) PopularHospitals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	hospitals, err := h.facilities.PopularHospitals(c.Request.Context(), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, hospitals)
}
