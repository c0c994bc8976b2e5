package app

import (
	"fmt"

	authService "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/service"
)

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() (authService.PasswordService, error) {
	err := c.initOnce("passwordService", &c.passwordServiceInit, func() (err error) {
		c.passwordService, err = authService.NewPasswordService()
		if err != nil {
			return fmt.Errorf("failed to create password service: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.passwordService, nil
}

// TokenService returns the access token service signed with JWT_SECRET.
func (c *Container) TokenService() (authService.TokenService, error) {
	err := c.initOnce("tokenService", &c.tokenServiceInit, func() (err error) {
		c.tokenService, err = authService.NewTokenService(c.config.JWTSecret, c.config.AuthTokenExpiration)
		if err != nil {
			return fmt.Errorf("failed to create token service: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.tokenService, nil
}
