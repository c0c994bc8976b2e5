package http

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authDomain "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/domain"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/httputil"
)

// TokenVerifier verifies access tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*authDomain.Principal, error)
}

// AuthenticationMiddleware authenticates requests with a Bearer token in the
// Authorization header and stores the principal in the request context.
//
// Missing, malformed, expired or forged tokens are answered with 401 and no handler runs.
func AuthenticationMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if token == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debug("authentication failed", zap.Error(err))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))

		logger.Debug("authentication successful",
			zap.String("subject_id", principal.SubjectID.String()),
			zap.String("role", string(principal.Role)))

		c.Next()
	}
}

// RequireRole rejects authenticated principals whose role is not role with 403.
// It must run after AuthenticationMiddleware.
func RequireRole(role authDomain.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			logger.Debug("authorization failed: no authenticated principal in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if principal.Role != role {
			logger.Debug("authorization failed: role mismatch",
				zap.String("subject_id", principal.SubjectID.String()),
				zap.String("role", string(principal.Role)),
				zap.String("required_role", string(role)))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
