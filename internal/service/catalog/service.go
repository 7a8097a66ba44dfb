package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

const (
	testsCacheKey = "tests:all"
	cacheTTL      = 5 * time.Minute
)

// Service manages the global test catalog. The catalog is small and read on
// every search screen, so listings go through an in-process cache.
type Service struct {
	tests    repository.TestRepository
	accounts repository.AccountRepository
	cache    *gocache.Cache
	logger   *zerolog.Logger
}

func NewService(tests repository.TestRepository, accounts repository.AccountRepository, logger *zerolog.Logger) *Service {
	return &Service{
		tests:    tests,
		accounts: accounts,
		cache:    gocache.New(cacheTTL, 10*time.Minute),
		logger:   logger,
	}
}

type TestRequest struct {
	Name            string `json:"name" binding:"required"`
	Category        string `json:"category,omitempty"`
	Description     string `json:"description,omitempty"`
	Price           int64  `json:"price" binding:"required"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// List serves the catalog from cache, falling back to the database.
func (s *Service) List(ctx context.Context) ([]*model.Test, error) {
	if cached, ok := s.cache.Get(testsCacheKey); ok {
		return cached.([]*model.Test), nil
	}

	tests, err := s.tests.List(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	s.cache.Set(testsCacheKey, tests, cacheTTL)
	return tests, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	test, err := s.tests.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("test")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return test, nil
}

func (s *Service) Create(ctx context.Context, req *TestRequest) (*model.Test, error) {
	if req.Price <= 0 {
		return nil, apperrors.InvalidRequest("price must be positive")
	}

	test := &model.Test{
		Name:            req.Name,
		Category:        req.Category,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, apperrors.Storage(err)
	}
	s.cache.Delete(testsCacheKey)
	return test, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *TestRequest) (*model.Test, error) {
	test, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	test.Name = req.Name
	test.Category = req.Category
	test.Description = req.Description
	if req.Price > 0 {
		test.Price = req.Price
	}
	if req.DurationMinutes > 0 {
		test.DurationMinutes = req.DurationMinutes
	}
	if err := s.tests.Update(ctx, test); err != nil {
		return nil, apperrors.Storage(err)
	}
	s.cache.Delete(testsCacheKey)
	return test, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.tests.Delete(ctx, id); err != nil {
		return apperrors.Storage(err)
	}
	s.cache.Delete(testsCacheKey)
	return nil
}

// Seed loads the default catalog on an empty database. Idempotent: a
// non-empty catalog is left alone.
func (s *Service) Seed(ctx context.Context) error {
	existing, err := s.tests.List(ctx)
	if err != nil {
		return apperrors.Storage(err)
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []model.Test{
		{Name: "Complete Blood Count", Category: "Blood", Price: 400, DurationMinutes: 15},
		{Name: "Lipid Profile", Category: "Blood", Price: 800, DurationMinutes: 15},
		{Name: "HbA1c", Category: "Blood", Price: 550, DurationMinutes: 15},
		{Name: "Thyroid Panel", Category: "Blood", Price: 700, DurationMinutes: 15},
		{Name: "Urine Routine", Category: "Urine", Price: 250, DurationMinutes: 10},
		{Name: "Chest X-Ray", Category: "Imaging", Price: 900, DurationMinutes: 20},
		{Name: "ECG", Category: "Cardiac", Price: 600, DurationMinutes: 20},
	}
	for i := range defaults {
		if err := s.tests.Create(ctx, &defaults[i]); err != nil {
			return apperrors.Storage(err)
		}
	}
	s.logger.Info().Int("count", len(defaults)).Msg("seeded test catalog")
	s.cache.Delete(testsCacheKey)
	return nil
}

// SeedDoctors provisions a demo set of approved doctors on an empty
// directory so a fresh install has something to book against.
func (s *Service) SeedDoctors(ctx context.Context) error {
	existing, err := s.accounts.ListDoctors(ctx, "", "")
	if err != nil {
		return apperrors.Storage(err)
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []model.Account{
		{Name: "Dr. Meera Nair", Phone: "9810000001", Role: model.RoleDoctor, DoctorProfile: model.DoctorProfile{
			Specialization: "Cardiology", Qualification: "MD", ExperienceYears: 12, Fee: 800,
			VerificationStatus: model.VerificationApproved,
		}},
		{Name: "Dr. Arjun Rao", Phone: "9810000002", Role: model.RoleDoctor, DoctorProfile: model.DoctorProfile{
			Specialization: "Dermatology", Qualification: "MBBS", ExperienceYears: 7, Fee: 500,
			VerificationStatus: model.VerificationApproved,
		}},
		{Name: "Dr. Sara Thomas", Phone: "9810000003", Role: model.RoleDoctor, DoctorProfile: model.DoctorProfile{
			Specialization: "Pediatrics", Qualification: "MD", ExperienceYears: 9, Fee: 600,
			VerificationStatus: model.VerificationApproved,
		}},
	}
	for i := range defaults {
		defaults[i].Approved = true
		defaults[i].Active = true
		if err := s.accounts.Create(ctx, &defaults[i]); err != nil {
			return apperrors.Storage(err)
		}
	}
	s.logger.Info().Int("count", len(defaults)).Msg("seeded demo doctors")
	return nil
}
