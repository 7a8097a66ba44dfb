package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/config"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	pkgauth "github.com/labloom/marketplace-api/pkg/auth"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/metrics"
	"github.com/labloom/marketplace-api/pkg/otp"
	"github.com/labloom/marketplace-api/pkg/security"
	"github.com/labloom/marketplace-api/pkg/validator"
)

const pendingApprovalMessage = "account is pending admin approval"

type Service struct {
	accounts  repository.AccountRepository
	labs      repository.LabRepository
	hospitals repository.HospitalRepository
	tokens    repository.TokenRepository
	tokenSvc  pkgauth.TokenService
	hasher    security.PasswordHasher
	otpGen    otp.Generator
	otpSender otp.Sender
	authCfg   config.AuthConfig
	jwtCfg    config.JWTConfig
	metrics   *metrics.Metrics
}

func NewService(
	accounts repository.AccountRepository,
	labs repository.LabRepository,
	hospitals repository.HospitalRepository,
	tokens repository.TokenRepository,
	tokenSvc pkgauth.TokenService,
	hasher security.PasswordHasher,
	otpGen otp.Generator,
	otpSender otp.Sender,
	authCfg config.AuthConfig,
	jwtCfg config.JWTConfig,
	m *metrics.Metrics,
) *Service {
	return &Service{
		accounts:  accounts,
		labs:      labs,
		hospitals: hospitals,
		tokens:    tokens,
		tokenSvc:  tokenSvc,
		hasher:    hasher,
		otpGen:    otpGen,
		otpSender: otpSender,
		authCfg:   authCfg,
		jwtCfg:    jwtCfg,
		metrics:   m,
	}
}

func (s *Service) Signup(ctx context.Context, req *model.SignupRequest) (*model.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RolePatient
	}
	if !role.Valid() || role == model.RoleAdmin {
		return nil, apperrors.InvalidRequest("role must be one of patient, doctor, lab, hospital")
	}
	if !validator.ValidPhone(req.Phone) {
		return nil, apperrors.InvalidRequest("invalid phone number")
	}

	if _, err := s.accounts.GetByPhone(ctx, req.Phone); err == nil {
		return nil, apperrors.Conflict("an account with this phone already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Storage(err)
	}
	if req.Email != "" {
		if _, err := s.accounts.GetByEmail(ctx, req.Email); err == nil {
			return nil, apperrors.Conflict("an account with this email already exists")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Storage(err)
		}
	}

	account := &model.Account{
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     role,
		Approved: role == model.RolePatient,
		Active:   true,
	}
	if req.Email != "" {
		account.Email = &req.Email
	}
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, apperrors.InvalidRequest(err.Error())
		}
		account.PasswordHash = &hash
	}

	switch role {
	case model.RoleLab:
		lab := &model.Lab{
			Name:               req.Name,
			RegistrationNumber: pendingRegistration(req.Phone),
			Phone:              req.Phone,
			Email:              account.Email,
			Status:             model.VerificationPending,
		}
		if err := s.labs.Create(ctx, lab); err != nil {
			return nil, apperrors.Storage(err)
		}
		kind := model.EntityKindLab
		account.EntityKind = &kind
		account.EntityID = &lab.ID

	case model.RoleHospital:
		hospital := &model.Hospital{
			Name:               req.Name,
			RegistrationNumber: pendingRegistration(req.Phone),
			Phone:              req.Phone,
			Email:              account.Email,
			Status:             model.VerificationPending,
		}
		if err := s.hospitals.Create(ctx, hospital); err != nil {
			return nil, apperrors.Storage(err)
		}
		kind := model.EntityKindHospital
		account.EntityKind = &kind
		account.EntityID = &hospital.ID

	case model.RoleDoctor:
		account.DoctorProfile = model.DoctorProfile{
			VerificationStatus: model.VerificationPending,
		}
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.Storage(err)
	}

	if role.Restricted() {
		return &model.AuthResponse{
			Account: account,
			Message: "registration received, " + pendingApprovalMessage,
		}, nil
	}

	access, refresh, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Account:      account,
	}, nil
}

// pendingRegistration is the placeholder registration number assigned at
// signup, replaced when the facility submits real paperwork.
func pendingRegistration(phone string) string {
	return "REG_PENDING_" + phone
}

// Login is the legacy email/password flow issuing a single long-lived token.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.countLoginFailure("unknown_email")
		return nil, apperrors.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if account.PasswordHash == nil {
		s.countLoginFailure("no_password")
		return nil, apperrors.Unauthenticated("invalid email or password")
	}
	if err := s.hasher.Compare(*account.PasswordHash, req.Password); err != nil {
		s.countLoginFailure("bad_password")
		return nil, apperrors.Unauthenticated("invalid email or password")
	}
	if err := s.approvalGate(account); err != nil {
		return nil, err
	}

	token, err := s.tokenSvc.GenerateLegacyToken(account.ID, string(account.Role), account.Role.Restricted())
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{Token: token, Account: account}, nil
}

// RequestOTP issues a login code for the phone, provisioning a patient
// account when none exists. Restricted roles are blocked before any code is
// generated; the seeded admin always gets the fixed code.
func (s *Service) RequestOTP(ctx context.Context, phone string) (*model.AuthResponse, error) {
	account, err := s.accounts.GetByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		account = &model.Account{
			Name:     "Guest User",
			Phone:    phone,
			Role:     model.RolePatient,
			Approved: true,
			Active:   true,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, apperrors.Storage(err)
		}
	} else if err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.approvalGate(account); err != nil {
		return nil, err
	}

	var code string
	if account.Role == model.RoleAdmin || phone == s.authCfg.AdminPhone {
		code = s.authCfg.AdminOTP
	} else {
		code, err = s.otpGen.Generate()
		if err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	expiry := time.Now().Add(s.authCfg.OTPTTL)
	account.OTPCode = &code
	account.OTPExpiresAt = &expiry
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.otpSender.Send(phone, code); err != nil {
		return nil, apperrors.Internal(err)
	}
	if s.metrics != nil {
		s.metrics.OTPIssued.Inc()
	}

	return &model.AuthResponse{
		Message: "OTP sent",
		OTP:     code,
	}, nil
}

// VerifyOTP checks the code lazily against its stored expiry, clears it, and
// issues the access/refresh token pair.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (*model.AuthResponse, error) {
	account, err := s.accounts.GetByPhone(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthenticated("invalid phone or OTP")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.approvalGate(account); err != nil {
		return nil, err
	}

	if account.OTPCode == nil || *account.OTPCode != code {
		s.countLoginFailure("bad_otp")
		return nil, apperrors.Unauthenticated("invalid phone or OTP")
	}
	if account.OTPExpiresAt == nil || time.Now().After(*account.OTPExpiresAt) {
		s.countLoginFailure("expired_otp")
		return nil, apperrors.Unauthenticated("OTP has expired")
	}

	account.OTPCode = nil
	account.OTPExpiresAt = nil
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, apperrors.Storage(err)
	}

	access, refresh, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Account:      account,
	}, nil
}

// Refresh reissues an access token. The refresh token itself is not rotated.
// An expired token is deleted on first use; a concurrent second use finds it
// gone and fails the same way.
func (s *Service) Refresh(ctx context.Context, token string) (*model.AuthResponse, error) {
	stored, err := s.tokens.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	if stored.Expired(time.Now()) {
		if _, err := s.tokens.Delete(ctx, token); err != nil {
			return nil, apperrors.Storage(err)
		}
		return nil, apperrors.Unauthenticated("refresh token expired")
	}

	account, err := s.accounts.Get(ctx, stored.AccountID)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}

	access, err := s.tokenSvc.GenerateAccessToken(account.ID, string(account.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{AccessToken: access}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if _, err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.accounts.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("account")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return account, nil
}

func (s *Service) UpdateProfile(ctx context.Context, account *model.Account, req *model.UpdateProfileRequest) (*model.Account, error) {
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Email != nil {
		account.Email = req.Email
	}
	if req.City != nil {
		account.City = req.City
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperrors.InvalidRequest(err.Error())
		}
		account.PasswordHash = &hash
	}
	if req.HealthProfile != nil {
		account.HealthProfile = *req.HealthProfile
	}
	if req.DoctorProfile != nil && account.Role == model.RoleDoctor {
		// Verification status stays admin-controlled.
		status := account.DoctorProfile.VerificationStatus
		account.DoctorProfile = *req.DoctorProfile
		account.DoctorProfile.VerificationStatus = status
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, apperrors.Storage(err)
	}
	return account, nil
}

// SeedAdmin guarantees the single admin account exists on the configured
// phone, purging any non-admin rows that squat on it.
func (s *Service) SeedAdmin(ctx context.Context) error {
	if s.authCfg.AdminPhone == "" {
		return nil
	}
	if err := s.accounts.DeleteByPhoneExcept(ctx, s.authCfg.AdminPhone, model.RoleAdmin); err != nil {
		return fmt.Errorf("failed to purge admin phone: %w", err)
	}

	_, err := s.accounts.GetByPhone(ctx, s.authCfg.AdminPhone)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	admin := &model.Account{
		Name:     "Platform Admin",
		Phone:    s.authCfg.AdminPhone,
		Role:     model.RoleAdmin,
		Approved: true,
		Active:   true,
	}
	if err := s.accounts.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
	return nil
}

// approvalGate blocks restricted roles until an admin approves them. The
// distinct error lets clients tell "awaiting approval" from a plain 403.
func (s *Service) approvalGate(account *model.Account) error {
	if account.Role.Restricted() && !account.Approved {
		s.countLoginFailure("pending_approval")
		return apperrors.PendingApproval(pendingApprovalMessage)
	}
	if !account.Active {
		return apperrors.Forbidden("account is suspended")
	}
	return nil
}

func (s *Service) issueTokens(ctx context.Context, account *model.Account) (string, string, error) {
	access, err := s.tokenSvc.GenerateAccessToken(account.ID, string(account.Role))
	if err != nil {
		return "", "", apperrors.Internal(err)
	}

	refresh, err := pkgauth.NewRefreshToken()
	if err != nil {
		return "", "", apperrors.Internal(err)
	}
	if err := s.tokens.Create(ctx, &model.RefreshToken{
		Token:     refresh,
		AccountID: account.ID,
		ExpiresAt: time.Now().Add(s.jwtCfg.RefreshTTL),
	}); err != nil {
		return "", "", apperrors.Storage(err)
	}
	return access, refresh, nil
}

func (s *Service) countLoginFailure(reason string) {
	if s.metrics != nil {
		s.metrics.LoginFailures.WithLabelValues(reason).Inc()
	}
}
