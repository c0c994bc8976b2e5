// Package service provides the token and password providers used for authentication.
package service

import (
	"time"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

// TokenService issues and verifies signed access tokens.
type TokenService interface {
	// Issue signs a token for subject with role.
	Issue(subject identifier.ID, role domain.Role) (token string, expiresAt time.Time, err error)

	// Verify checks the signature and expiry of token and returns its principal.
	// Any failure is reported as domain.ErrInvalidToken.
	Verify(token string) (*domain.Principal, error)
}

// PasswordService hashes and compares account passwords.
type PasswordService interface {
	Hash(plain string) (string, error)

	// Compare reports whether plain matches hash. Malformed hashes never match.
	Compare(plain, hash string) bool
}
