package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/labloom/marketplace-api/config"
	"github.com/labloom/marketplace-api/internal/email"
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
	"github.com/labloom/marketplace-api/internal/repository/postgres"
	"github.com/labloom/marketplace-api/internal/router"
	adminService "github.com/labloom/marketplace-api/internal/service/admin"
	authService "github.com/labloom/marketplace-api/internal/service/auth"
	bookingService "github.com/labloom/marketplace-api/internal/service/booking"
	catalogService "github.com/labloom/marketplace-api/internal/service/catalog"
	chatService "github.com/labloom/marketplace-api/internal/service/chat"
	consultationService "github.com/labloom/marketplace-api/internal/service/consultation"
	facilityService "github.com/labloom/marketplace-api/internal/service/facility"
	notificationService "github.com/labloom/marketplace-api/internal/service/notification"
	patientService "github.com/labloom/marketplace-api/internal/service/patient"
	recordsService "github.com/labloom/marketplace-api/internal/service/records"
	reviewService "github.com/labloom/marketplace-api/internal/service/review"
	pkgauth "github.com/labloom/marketplace-api/pkg/auth"
	"github.com/labloom/marketplace-api/pkg/blob"
	"github.com/labloom/marketplace-api/pkg/logger"
	"github.com/labloom/marketplace-api/pkg/messaging"
	"github.com/labloom/marketplace-api/pkg/messaging/redis"
	"github.com/labloom/marketplace-api/pkg/metrics"
	"github.com/labloom/marketplace-api/pkg/otp"
	"github.com/labloom/marketplace-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	zl := appLogger.Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	labRepo := postgres.NewLabRepository(db)
	hospitalRepo := postgres.NewHospitalRepository(db)
	testRepo := postgres.NewTestRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	metricRepo := postgres.NewMetricRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	storage, err := blob.NewLocalStorage(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upload storage")
	}

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
	} else {
		log.Warn().Msg("redis not configured, notifications are store-only")
	}

	m := metrics.NewMetrics("marketplace")
	tokenSvc := pkgauth.NewTokenService(pkgauth.Config{
		Secret:              cfg.JWT.Secret,
		AccessTTL:           cfg.JWT.AccessTTL,
		LegacyTTL:           cfg.JWT.LegacyTTL,
		RestrictedLegacyTTL: cfg.JWT.RestrictedLegacyTTL,
	})
	hasher := security.NewBcryptHasher(0)
	mailer := email.NewService(cfg.SMTP, zl)

	notificationSvc := notificationService.NewService(notificationRepo, broker, zl, m)
	authSvc := authService.NewService(
		accountRepo, labRepo, hospitalRepo, tokenRepo,
		tokenSvc, hasher, otp.NewGenerator(), otp.NewLogSender(zl),
		cfg.Auth, cfg.JWT, m,
	)
	bookingSvc := bookingService.NewService(bookingRepo, accountRepo, testRepo, hospitalRepo, cfg.Booking, m)
	chatSvc := chatService.NewService(bookingRepo, messageRepo, cfg.Chat, m)
	consultationSvc := consultationService.NewService(consultationRepo, bookingRepo)
	facilitySvc := facilityService.NewService(labRepo, hospitalRepo, accountRepo, bookingRepo, testRepo, storage, notificationSvc)
	recordsSvc := recordsService.NewService(bookingRepo, accountRepo, testRepo, notificationSvc)
	patientSvc := patientService.NewService(metricRepo, bookingRepo, accountRepo, storage)
	catalogSvc := catalogService.NewService(testRepo, accountRepo, zl)
	reviewSvc := reviewService.NewService(reviewRepo, accountRepo, labRepo, hospitalRepo)
	adminSvc := adminService.NewService(accountRepo, labRepo, hospitalRepo, bookingSvc, mailer, notificationSvc, zl)

	ctx := context.Background()
	if err := authSvc.SeedAdmin(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin account")
	}
	if err := catalogSvc.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed test catalog")
	}
	if err := catalogSvc.SeedDoctors(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed demo doctors")
	}

	authMiddleware := middleware.NewAuthMiddleware(tokenSvc, accountRepo)

	handlers := router.Handlers{
		Health:   healthHandler.NewHandler(db),
		Auth:     authHandler.NewHandler(authSvc),
		Booking:  bookingHandler.NewHandler(bookingSvc),
		Chat:     chatHandler.NewHandler(chatSvc),
		Records:  recordsHandler.NewHandler(recordsSvc),
		Doctor:   doctorHandler.NewHandler(bookingSvc, consultationSvc),
		Lab:      labHandler.NewHandler(facilitySvc, bookingSvc),
		Hospital: hospitalHandler.NewHandler(facilitySvc, bookingSvc),
		Admin:    adminHandler.NewHandler(adminSvc),
		Patient:  patientHandler.NewHandler(patientSvc, notificationSvc),
		Catalog:  catalogHandler.NewHandler(catalogSvc, facilitySvc),
		Review:   reviewHandler.NewHandler(reviewSvc),
	}

	r := router.NewRouter(authMiddleware, handlers, m, cfg.RateLimit, cfg.Uploads)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
