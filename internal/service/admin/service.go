package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/labloom/marketplace-api/internal/email"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	"github.com/labloom/marketplace-api/internal/service/booking"
	"github.com/labloom/marketplace-api/internal/service/notification"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

// Service implements the admin approval queue and platform oversight.
type Service struct {
	accounts      repository.AccountRepository
	labs          repository.LabRepository
	hospitals     repository.HospitalRepository
	bookings      *booking.Service
	mailer        email.Service
	notifications *notification.Service
	logger        *zerolog.Logger
}

func NewService(
	accounts repository.AccountRepository,
	labs repository.LabRepository,
	hospitals repository.HospitalRepository,
	bookings *booking.Service,
	mailer email.Service,
	notifications *notification.Service,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		accounts:      accounts,
		labs:          labs,
		hospitals:     hospitals,
		bookings:      bookings,
		mailer:        mailer,
		notifications: notifications,
		logger:        logger,
	}
}

// PendingLabs lists labs awaiting an approval decision.
func (s *Service) PendingLabs(ctx context.Context) ([]*model.Lab, error) {
	labs, err := s.labs.ListByStatus(ctx, model.VerificationPending)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return labs, nil
}

// PendingHospitals lists hospitals awaiting an approval decision.
func (s *Service) PendingHospitals(ctx context.Context) ([]*model.Hospital, error) {
	hospitals, err := s.hospitals.ListByStatus(ctx, model.VerificationPending)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return hospitals, nil
}

// PendingDoctors lists doctor accounts whose profile is still unverified.
func (s *Service) PendingDoctors(ctx context.Context) ([]*model.Account, error) {
	filter := &model.AccountFilter{Role: model.RoleDoctor}
	filter.PageSize = 100
	accounts, _, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	var out []*model.Account
	for _, a := range accounts {
		if a.DoctorProfile.VerificationStatus == model.VerificationPending {
			out = append(out, a)
		}
	}
	return out, nil
}

// ReviewLab applies the approval decision to the lab and every account
// linked to it, so a previously blocked OTP login starts working.
func (s *Service) ReviewLab(ctx context.Context, labID uuid.UUID, approve bool) (*model.Lab, error) {
	lab, err := s.labs.Get(ctx, labID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("lab")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	lab.Status = decisionStatus(approve)
	if err := s.labs.Update(ctx, lab); err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.flipLinkedAccounts(ctx, model.RoleLab, lab.ID, approve); err != nil {
		return nil, err
	}
	return lab, nil
}

// ReviewHospital applies the approval decision to the hospital and its
// linked accounts.
func (s *Service) ReviewHospital(ctx context.Context, hospitalID uuid.UUID, approve bool) (*model.Hospital, error) {
	hospital, err := s.hospitals.Get(ctx, hospitalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("hospital")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	hospital.Status = decisionStatus(approve)
	if err := s.hospitals.Update(ctx, hospital); err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.flipLinkedAccounts(ctx, model.RoleHospital, hospital.ID, approve); err != nil {
		return nil, err
	}
	return hospital, nil
}

// ReviewDoctor verifies or rejects a doctor and updates the login gate.
func (s *Service) ReviewDoctor(ctx context.Context, doctorID uuid.UUID, approve bool) (*model.Account, error) {
	doctor, err := s.accounts.Get(ctx, doctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("doctor")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if doctor.Role != model.RoleDoctor {
		return nil, apperrors.InvalidRequest("account is not a doctor")
	}

	doctor.DoctorProfile.VerificationStatus = decisionStatus(approve)
	doctor.Approved = approve
	if err := s.accounts.Update(ctx, doctor); err != nil {
		return nil, apperrors.Storage(err)
	}

	s.announceDecision(ctx, doctor, approve)
	return doctor, nil
}

// Users lists accounts for the admin console.
func (s *Service) Users(ctx context.Context, filter *model.AccountFilter) ([]*model.Account, int, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, apperrors.InvalidRequest("unknown role")
	}
	accounts, total, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Storage(err)
	}
	return accounts, total, nil
}

// SetActive suspends or reinstates an account. Suspended accounts fail every
// authentication path until reinstated.
func (s *Service) SetActive(ctx context.Context, accountID uuid.UUID, active bool) (*model.Account, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("account")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if account.Role == model.RoleAdmin {
		return nil, apperrors.Forbidden("admin accounts cannot be suspended")
	}

	account.Active = active
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, apperrors.Storage(err)
	}
	return account, nil
}

// Analytics returns the platform-wide counters.
func (s *Service) Analytics(ctx context.Context) (*booking.Analytics, error) {
	return s.bookings.SystemAnalytics(ctx)
}

func decisionStatus(approve bool) model.VerificationStatus {
	if approve {
		return model.VerificationApproved
	}
	return model.VerificationRejected
}

// flipLinkedAccounts updates the approval flag on every account tied to the
// facility and announces the decision to each.
func (s *Service) flipLinkedAccounts(ctx context.Context, role model.Role, entityID uuid.UUID, approve bool) error {
	filter := &model.AccountFilter{Role: role}
	filter.PageSize = 100
	accounts, _, err := s.accounts.List(ctx, filter)
	if err != nil {
		return apperrors.Storage(err)
	}

	for _, account := range accounts {
		if account.EntityID == nil || *account.EntityID != entityID {
			continue
		}
		account.Approved = approve
		if err := s.accounts.Update(ctx, account); err != nil {
			return apperrors.Storage(err)
		}
		s.announceDecision(ctx, account, approve)
	}
	return nil
}

// announceDecision delivers the decision over every channel the account can
// receive: stored notification always, email when an address exists.
func (s *Service) announceDecision(ctx context.Context, account *model.Account, approve bool) {
	subject, body := email.ApprovalBody(account.Name, approve)

	if s.notifications != nil {
		if _, err := s.notifications.Notify(ctx, account.ID, model.NotificationApproval, subject, ""); err != nil {
			s.logger.Warn().Err(err).Str("account_id", account.ID.String()).Msg("failed to store approval notification")
		}
	}
	if s.mailer != nil && account.Email != nil {
		if err := s.mailer.Send(*account.Email, subject, body); err != nil {
			s.logger.Warn().Err(err).Str("account_id", account.ID.String()).Msg("failed to send approval email")
		}
	}
}
