package usecase

import (
	"library-rental-api/internal/domain/user"
	"library-rental-api/internal/pkg/errs"
	"library-rental-api/internal/pkg/jwt"

	"github.com/google/uuid"
)

var ErrInvalidToken = errs.New("invalid token")

// TokenValidator shields the handler layer from the concrete JWT service.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, user.Role, error)
}

type jwtTokenValidator struct {
	jwt *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &jwtTokenValidator{jwt: jwtService}
}

func (v *jwtTokenValidator) ValidateToken(token string) (uuid.UUID, user.Role, error) {
	claims, err := v.jwt.ValidateToken(token)
	if err != nil {
		return uuid.Nil, "", errs.Mark(err, ErrInvalidToken)
	}

	role := user.Role(claims.Role)
	if !role.IsValid() {
		return uuid.Nil, "", ErrInvalidToken
	}

	return claims.UserID, role, nil
}
