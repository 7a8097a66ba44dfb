package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the opaque server-stored credential, keyed by its value.
type RefreshToken struct {
	Token     string    `json:"-" db:"token"`
	AccountID uuid.UUID `json:"-" db:"account_id"`
	ExpiresAt time.Time `json:"-" db:"expires_at"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type OTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type OTPVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"otp" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AuthResponse carries the issued credentials. Legacy password login fills
// Token; the OTP flow fills AccessToken/RefreshToken.
type AuthResponse struct {
	Token        string   `json:"token,omitempty"`
	AccessToken  string   `json:"access_token,omitempty"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	Account      *Account `json:"user,omitempty"`
	Message      string   `json:"message,omitempty"`
	// OTP echoes the issued code in development responses.
	OTP          string   `json:"otp,omitempty"`
}

type UpdateProfileRequest struct {
	Name          *string        `json:"name,omitempty"`
	Email         *string        `json:"email,omitempty"`
	Password      *string        `json:"password,omitempty"`
	City          *string        `json:"city,omitempty"`
	HealthProfile *HealthProfile `json:"health_profile,omitempty"`
	DoctorProfile *DoctorProfile `json:"doctor_profile,omitempty"`
}
