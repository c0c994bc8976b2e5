// Package dto provides data transfer objects for the users HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/usecase"
	appValidation "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/validation"
)

// RegisterAccountRequest represents the API request for customer and employee registration
type RegisterAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the request shape. Password strength is enforced by the use case.
func (r *RegisterAccountRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), appValidation.NotBlank),
		validation.Field(&r.Email, validation.Required.Error("email is required"), appValidation.Email),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	)
	return appValidation.WrapValidationError(err)
}

// ToRegisterInput converts the request to a use case input
func (r *RegisterAccountRequest) ToRegisterInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
	}
}

// CreateSessionRequest represents the API request for a login
type CreateSessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present.
func (r *CreateSessionRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required.Error("email is required"), appValidation.NotBlank),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	)
	return appValidation.WrapValidationError(err)
}

// ToCredentials converts the request to use case credentials
func (r *CreateSessionRequest) ToCredentials() usecase.Credentials {
	return usecase.Credentials{Email: r.Email, Password: r.Password}
}
