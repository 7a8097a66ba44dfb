package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by every signed token: the account id and its role.
type Claims struct {
	AccountID uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies credentials. Two classes exist: short-lived
// access tokens paired with opaque server-stored refresh tokens, and the
// legacy single long-lived token (shorter expiry for restricted subjects).
type TokenService interface {
	GenerateAccessToken(accountID uuid.UUID, role string) (string, error)
	GenerateLegacyToken(accountID uuid.UUID, role string, restricted bool) (string, error)
	Verify(token string) (*Claims, error)
}

type Config struct {
	Secret              string
	AccessTTL           time.Duration
	LegacyTTL           time.Duration
	RestrictedLegacyTTL time.Duration
}

type tokenService struct {
	secret              []byte
	accessTTL           time.Duration
	legacyTTL           time.Duration
	restrictedLegacyTTL time.Duration
}

func NewTokenService(cfg Config) TokenService {
	return &tokenService{
		secret:              []byte(cfg.Secret),
		accessTTL:           cfg.AccessTTL,
		legacyTTL:           cfg.LegacyTTL,
		restrictedLegacyTTL: cfg.RestrictedLegacyTTL,
	}
}

func (s *tokenService) GenerateAccessToken(accountID uuid.UUID, role string) (string, error) {
	return s.sign(accountID, role, s.accessTTL)
}

func (s *tokenService) GenerateLegacyToken(accountID uuid.UUID, role string, restricted bool) (string, error) {
	ttl := s.legacyTTL
	if restricted {
		ttl = s.restrictedLegacyTTL
	}
	return s.sign(accountID, role, ttl)
}

func (s *tokenService) sign(accountID uuid.UUID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

const refreshTokenBytes = 40

// NewRefreshToken returns an opaque, cryptographically-random token. It is
// stored server-side keyed by its value; the JWT layer never sees it.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
