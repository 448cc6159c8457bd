package commands

import (
	"context"
	"errors"

	"library-rental-api/internal/domain/user"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/pkg/errs"
	"library-rental-api/internal/pkg/jwt"
	"library-rental-api/internal/pkg/password"
	"library-rental-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrEmailAlreadyRegistered = errs.New("email already registered")
	ErrInvalidCredentials     = errs.New("invalid email or password")
	ErrUserNotFound           = errs.New("user not found")
)

type LoginResult struct {
	Token string
	User  *user.User
}

type AuthCommands interface {
	Register(ctx context.Context, name, email, rawPassword string) (*user.User, error)
	Login(ctx context.Context, email, rawPassword string) (*LoginResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*user.User, error)
}

type authCommandsImpl struct {
	uow shared.UnitOfWork
	jwt *jwt.Service
}

func NewAuthCommands(uow shared.UnitOfWork, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		uow: uow,
		jwt: jwtService,
	}
}

// Register creates a member account. Role escalation is not self-service;
// admins are provisioned out of band.
func (a *authCommandsImpl) Register(ctx context.Context, name, email, rawPassword string) (*user.User, error) {
	emailVO, err := user.NewEmail(email)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	pass, err := user.NewPassword(rawPassword)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	hash, err := password.HashPassword(pass.Value())
	if err != nil {
		return nil, err
	}

	newUser := user.NewUser(name, emailVO, hash, user.RoleMember)

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().Create(ctx, newUser)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}

	return newUser, nil
}

func (a *authCommandsImpl) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	found, err := a.uow.Users().FindByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := password.ComparePassword(found.PasswordHash(), rawPassword); err != nil {
		if errors.Is(err, password.ErrComparisonFailed) || errors.Is(err, password.ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	token, err := a.jwt.GenerateToken(found.ID(), found.Role())
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: found}, nil
}

func (a *authCommandsImpl) Me(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	found, err := a.uow.Users().FindByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return found, nil
}
