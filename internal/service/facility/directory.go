package facility

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

// DoctorDetail is the public doctor page: profile plus the hospitals that
// currently list the doctor.
type DoctorDetail struct {
	Account   *model.Account    `json:"doctor"`
	Hospitals []*model.Hospital `json:"hospitals,omitempty"`
}

// Labs lists approved labs for the public directory.
func (s *Service) Labs(ctx context.Context, filter *model.LabFilter) ([]*model.Lab, int, error) {
	labs, total, err := s.labs.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Storage(err)
	}
	return labs, total, nil
}

// LabTests returns a lab's offered tests with per-lab pricing. Entries the
// lab switched off are skipped.
func (s *Service) LabTests(ctx context.Context, labID uuid.UUID) ([]CatalogItem, error) {
	lab, err := s.labs.Get(ctx, labID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("lab")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	var items []CatalogItem
	for _, entry := range lab.Catalog {
		if !entry.Available {
			continue
		}
		item := CatalogItem{Entry: entry}
		if test, err := s.tests.Get(ctx, entry.TestID); err == nil {
			item.Test = test
		}
		items = append(items, item)
	}
	return items, nil
}

// Doctors lists verified doctors, optionally narrowed by specialization or a
// name search.
func (s *Service) Doctors(ctx context.Context, specialization, search string) ([]*model.Account, error) {
	doctors, err := s.accounts.ListDoctors(ctx, specialization, search)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return doctors, nil
}

// Doctor returns the public detail page for one doctor.
func (s *Service) Doctor(ctx context.Context, id uuid.UUID) (*DoctorDetail, error) {
	account, err := s.accounts.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if account.Role != model.RoleDoctor {
		return nil, apperrors.NotFound("doctor")
	}

	hospitals, err := s.hospitals.FindByDoctor(ctx, id)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return &DoctorDetail{Account: account, Hospitals: hospitals}, nil
}

// PopularHospitals returns the highest-rated approved hospitals.
func (s *Service) PopularHospitals(ctx context.Context, limit int) ([]*model.Hospital, error) {
	if limit <= 0 {
		limit = 10
	}
	hospitals, err := s.hospitals.ListPopular(ctx, limit)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return hospitals, nil
}
