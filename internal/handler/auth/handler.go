package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labloom/marketplace-api/internal/middleware"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/service/auth"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the unauthenticated auth endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	a := r.Group("/auth")
	{
		a.POST("/signup", h.Signup)
		a.POST("/login", h.Login)
		a.POST("/otp/request", h.RequestOTP)
		a.POST("/otp/verify", h.VerifyOTP)
		a.POST("/refresh", h.Refresh)
		a.POST("/logout", h.Logout)
	}
}

// RegisterProtectedRoutes mounts the endpoints that need a valid token.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	a := r.Group("/auth")
	{
		a.GET("/me", h.Me)
		a.PUT("/me", h.UpdateProfile)
	}
}

func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	resp, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}

func (h *Handler) RequestOTP(c *gin.Context) {
	var req model.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	resp, err := h.service.RequestOTP(c.Request.Context(), req.Phone)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req model.OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	resp, err := h.service.VerifyOTP(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	resp, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	var req model.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, "logged out", nil)
}

func (h *Handler) Me(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	httputil.RespondWithSuccess(c, http.StatusOK, account)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	account := middleware.AccountFromContext(c)

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidRequest(err.Error()))
		return
	}

	updated, err := h.service.UpdateProfile(c.Request.Context(), account, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, updated)
}
