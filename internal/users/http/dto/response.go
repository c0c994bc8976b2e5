package dto

import (
	"time"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/domain"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/users/usecase"
)

// AccountResponse represents the API response for a customer or employee.
// It never includes the password hash.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapAccountToResponse converts a domain account to its API representation
func MapAccountToResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID.String(),
		Name:      account.Name,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// SessionResponse represents an issued access token
type SessionResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// MapSessionToResponse converts a session to its API representation
func MapSessionToResponse(session *usecase.Session) SessionResponse {
	return SessionResponse{
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
	}
}
