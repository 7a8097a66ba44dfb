package review

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

type Service struct {
	reviews   repository.ReviewRepository
	accounts  repository.AccountRepository
	labs      repository.LabRepository
	hospitals repository.HospitalRepository
}

func NewService(
	reviews repository.ReviewRepository,
	accounts repository.AccountRepository,
	labs repository.LabRepository,
	hospitals repository.HospitalRepository,
) *Service {
	return &Service{reviews: reviews, accounts: accounts, labs: labs, hospitals: hospitals}
}

type CreateReviewRequest struct {
	TargetKind model.ReviewTarget `json:"target_kind" binding:"required"`
	TargetID   uuid.UUID          `json:"target_id" binding:"required"`
	Rating     int                `json:"rating" binding:"required"`
	Comment    string             `json:"comment,omitempty"`
}

// Create stores the review and folds the new aggregate back onto the target
// so listings never have to join reviews.
func (s *Service) Create(ctx context.Context, author *model.Account, req *CreateReviewRequest) (*model.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.InvalidRequest("rating must be between 1 and 5")
	}
	if !req.TargetKind.Valid() {
		return nil, apperrors.InvalidRequest("unknown review target")
	}
	if err := s.checkTarget(ctx, req.TargetKind, req.TargetID); err != nil {
		return nil, err
	}

	review := &model.Review{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		TargetKind: req.TargetKind,
		TargetID:   req.TargetID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.refreshAggregate(ctx, req.TargetKind, req.TargetID); err != nil {
		return nil, err
	}
	return review, nil
}

// ListForTarget returns a target's reviews, newest first.
func (s *Service) ListForTarget(ctx context.Context, kind model.ReviewTarget, targetID uuid.UUID) ([]*model.Review, error) {
	if !kind.Valid() {
		return nil, apperrors.InvalidRequest("unknown review target")
	}
	reviews, err := s.reviews.ListByTarget(ctx, kind, targetID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return reviews, nil
}

func (s *Service) checkTarget(ctx context.Context, kind model.ReviewTarget, targetID uuid.UUID) error {
	var err error
	switch kind {
	case model.ReviewTargetDoctor:
		var account *model.Account
		account, err = s.accounts.Get(ctx, targetID)
		if err == nil && account.Role != model.RoleDoctor {
			return apperrors.NotFound("doctor")
		}
	case model.ReviewTargetLab:
		_, err = s.labs.Get(ctx, targetID)
	case model.ReviewTargetHospital:
		_, err = s.hospitals.Get(ctx, targetID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(string(kind))
	}
	if err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// refreshAggregate recomputes and stores the denormalized rating.
func (s *Service) refreshAggregate(ctx context.Context, kind model.ReviewTarget, targetID uuid.UUID) error {
	average, count, err := s.reviews.Aggregate(ctx, kind, targetID)
	if err != nil {
		return apperrors.Storage(err)
	}

	switch kind {
	case model.ReviewTargetDoctor:
		account, err := s.accounts.Get(ctx, targetID)
		if err != nil {
			return apperrors.Storage(err)
		}
		account.DoctorProfile.Rating = average
		account.DoctorProfile.ReviewsCount = count
		if err := s.accounts.Update(ctx, account); err != nil {
			return apperrors.Storage(err)
		}
	case model.ReviewTargetLab:
		lab, err := s.labs.Get(ctx, targetID)
		if err != nil {
			return apperrors.Storage(err)
		}
		lab.Rating = average
		lab.ReviewsCount = count
		if err := s.labs.Update(ctx, lab); err != nil {
			return apperrors.Storage(err)
		}
	case model.ReviewTargetHospital:
		hospital, err := s.hospitals.Get(ctx, targetID)
		if err != nil {
			return apperrors.Storage(err)
		}
		hospital.Rating = average
		hospital.ReviewsCount = count
		if err := s.hospitals.Update(ctx, hospital); err != nil {
			return apperrors.Storage(err)
		}
	}
	return nil
}
