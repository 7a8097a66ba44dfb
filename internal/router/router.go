package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/labloom/marketplace-api/config"
	adminHandler "github.com/labloom/marketplace-api/internal/handler/admin"
	authHandler "github.com/labloom/marketplace-api/internal/handler/auth"
	bookingHandler "github.com/labloom/marketplace-api/internal/handler/booking"
	catalogHandler "github.com/labloom/marketplace-api/internal/handler/catalog"
	chatHandler "github.com/labloom/marketplace-api/internal/handler/chat"
	doctorHandler "github.com/labloom/marketplace-api/internal/handler/doctor"
	healthHandler "github.com/labloom/marketplace-api/internal/handler/health"
	hospitalHandler "github.com/labloom/marketplace-api/internal/handler/hospital"
	labHandler "github.com/labloom/marketplace-api/internal/handler/lab"
	patientHandler "github.com/labloom/marketplace-api/internal/handler/patient"
	recordsHandler "github.com/labloom/marketplace-api/internal/handler/records"
	reviewHandler "github.com/labloom/marketplace-api/internal/handler/review"
	"github.com/labloom/marketplace-api/internal/middleware"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/pkg/metrics"
)

type Handlers struct {
	Health   *healthHandler.Handler
	Auth     *authHandler.Handler
	Booking  *bookingHandler.Handler
	Chat     *chatHandler.Handler
	Records  *recordsHandler.Handler
	Doctor   *doctorHandler.Handler
	Lab      *labHandler.Handler
	Hospital *hospitalHandler.Handler
	Admin    *adminHandler.Handler
	Patient  *patientHandler.Handler
	Catalog  *catalogHandler.Handler
	Review   *reviewHandler.Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	handlers Handlers,
	m *metrics.Metrics,
	rateLimitCfg config.RateLimitConfig,
	uploadCfg config.UploadConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Metrics(m),
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.NewRateLimiter(rateLimitCfg).RateLimit(),
	)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if uploadCfg.Dir != "" {
		engine.Static(uploadCfg.BaseURL, uploadCfg.Dir)
	}

	return &Router{engine: engine, auth: auth, handlers: handlers}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.handlers.Health.RegisterRoutes(api)

	// Public surface: auth flows plus the discovery directory.
	r.handlers.Auth.RegisterRoutes(api)
	r.handlers.Catalog.RegisterRoutes(api)
	r.handlers.Review.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.handlers.Auth.RegisterProtectedRoutes(protected)
	r.handlers.Booking.RegisterRoutes(protected)
	r.handlers.Chat.RegisterRoutes(protected)
	r.handlers.Records.RegisterRoutes(protected)
	r.handlers.Patient.RegisterRoutes(protected)
	r.handlers.Review.RegisterRoutes(protected)
	r.handlers.Lab.RegisterReportRoutes(protected)

	doctor := protected.Group("")
	doctor.Use(r.auth.RequireApprovedDoctor())
	r.handlers.Doctor.RegisterRoutes(doctor)

	lab := protected.Group("")
	lab.Use(r.auth.RequireRoles(model.RoleLab))
	r.handlers.Lab.RegisterRoutes(lab)

	hospital := protected.Group("")
	hospital.Use(r.auth.RequireRoles(model.RoleHospital))
	r.handlers.Hospital.RegisterRoutes(hospital)

	admin := protected.Group("")
	admin.Use(r.auth.RequireAdmin())
	r.handlers.Admin.RegisterRoutes(admin)
	r.handlers.Catalog.RegisterAdminRoutes(admin.Group("/admin"))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
