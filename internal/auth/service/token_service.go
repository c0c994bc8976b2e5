package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/auth/domain"
	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

const tokenIssuer = "starsoft"

// claims is the JWT body.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// jwtTokenService implements TokenService with HS256 signed JWTs.
type jwtTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret. Tokens expire after ttl.
func NewTokenService(secret string, ttl time.Duration) (TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &jwtTokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for subject with role.
func (s *jwtTokenService) Issue(subject identifier.ID, role domain.Role) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperrors.NewProviderError("jwt", "issue", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of token and returns its principal.
func (s *jwtTokenService) Verify(token string) (*domain.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrInvalidToken, err.Error())
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	role := domain.Role(c.Role)
	model, ok := role.Model()
	if !ok {
		return nil, apperrors.Wrapf(domain.ErrInvalidToken, "unknown role %q", c.Role)
	}

	subject, err := identifier.Parse(c.Subject, model)
	if err != nil {
		return nil, apperrors.Wrap(domain.ErrInvalidToken, err.Error())
	}

	return &domain.Principal{SubjectID: subject, Role: role}, nil
}
