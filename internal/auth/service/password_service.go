package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
)

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordService creates a PasswordService with the interactive Argon2id policy.
func NewPasswordService() (PasswordService, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, err
	}
	return &passwordService{hasher: hasher}, nil
}

// Hash hashes a plain text password.
func (s *passwordService) Hash(plain string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plain))
	if err != nil {
		return "", apperrors.NewProviderError("pwdhash", "hash", err)
	}
	return hashed, nil
}

// Compare performs a constant-time comparison between a plain password and its hash.
func (s *passwordService) Compare(plain, hash string) bool {
	ok, err := s.hasher.Verify([]byte(plain), hash)
	if err != nil {
		return false
	}
	return ok
}
