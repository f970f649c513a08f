package middleware

import (
	"errors"
	"strings"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/auth"
	"go-jobboard-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// TokenVerifier checks a bearer token and returns the asserted identity.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// resolve turns a token into a principal. The role and company always come
// from the local user record, never from token claims. A verified identity
// without a local user yields a principal with an empty role so it can
// still register.
func resolve(c *gin.Context, verifier TokenVerifier, users domain.UserRepository, token string) (*domain.Principal, error) {
	id, err := verifier.Verify(token)
	if err != nil {
		logger.Log.Debug("token validation failed", "error", err, "ip", c.ClientIP())
		return nil, apperror.Unauthenticated("Invalid or expired token")
	}
	user, err := users.GetByID(c.Request.Context(), id.Subject)
	switch {
	case err == nil:
		return user.Principal(), nil
	case errors.Is(err, domain.ErrNotFound):
		return &domain.Principal{UserID: id.Subject, Email: id.Email}, nil
	default:
		return nil, apperror.Internal(err)
	}
}

func attach(c *gin.Context, p *domain.Principal) {
	c.Set(string(domain.KeyPrincipal), p)
	c.Set(string(domain.KeyUserID), p.UserID)
	c.Set(string(domain.KeyUserEmail), p.Email)
	c.Request = c.Request.WithContext(domain.WithPrincipal(c.Request.Context(), p))
}

// AuthMiddleware rejects requests without a valid token.
func AuthMiddleware(verifier TokenVerifier, users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Error(apperror.Unauthenticated("Authorization header or auth_token cookie required"))
			c.Abort()
			return
		}
		p, err := resolve(c, verifier, users, token)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		attach(c, p)
		c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is present and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalAuth(verifier TokenVerifier, users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		p, err := resolve(c, verifier, users, token)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		attach(c, p)
		c.Next()
	}
}
