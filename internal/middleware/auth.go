package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	pkgauth "github.com/labloom/marketplace-api/pkg/auth"
)

const (
	// ContextAccount is the gin context key holding the *model.Account.
	ContextAccount = "account"
)

type AuthMiddleware struct {
	tokenSvc pkgauth.TokenService
	accounts repository.AccountRepository
}

func NewAuthMiddleware(tokenSvc pkgauth.TokenService, accounts repository.AccountRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, accounts: accounts}
}

// Authenticate verifies the bearer token and loads the account into context.
// Suspended accounts are rejected here so every protected route gets the
// check for free.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		claims, err := m.tokenSvc.Verify(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		account, err := m.accounts.Get(c.Request.Context(), claims.AccountID)
		if err != nil {
			abortUnauthorized(c, "account not found")
			return
		}
		if !account.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Code:    http.StatusForbidden,
				Message: "account is suspended",
			})
			return
		}

		c.Set(ContextAccount, account)
		c.Next()
	}
}

// RequireRoles rejects callers whose account role is not in the allow list.
func (m *AuthMiddleware) RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := AccountFromContext(c)
		if account == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		for _, role := range roles {
			if account.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Code:    http.StatusForbidden,
			Message: "insufficient role",
		})
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.RequireRoles(model.RoleAdmin)
}

// RequireApprovedDoctor gates doctor-only routes. An unverified doctor gets a
// distinct message so clients can show the right screen.
func (m *AuthMiddleware) RequireApprovedDoctor() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := AccountFromContext(c)
		if account == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if account.Role != model.RoleDoctor {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Code:    http.StatusForbidden,
				Message: "insufficient role",
			})
			return
		}
		if account.DoctorProfile.VerificationStatus != model.VerificationApproved {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Code:    http.StatusForbidden,
				Message: "doctor verification is pending",
			})
			return
		}
		c.Next()
	}
}

// AccountFromContext returns the authenticated account, or nil outside the
// Authenticate middleware.
func AccountFromContext(c *gin.Context) *model.Account {
	value, ok := c.Get(ContextAccount)
	if !ok {
		return nil
	}
	account, ok := value.(*model.Account)
	if !ok {
		return nil
	}
	return account
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Code:    http.StatusUnauthorized,
		Message: message,
	})
}
