package repository

import (
	"context"
	"time"

	"library-rental-api/internal/domain/user"
	"library-rental-api/internal/infra"
	"library-rental-api/internal/infra/db"
	"library-rental-api/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type UserRepository struct {
	db db.DBTX
}

func NewUserRepository(dbtx db.DBTX) *UserRepository {
	return &UserRepository{db: dbtx}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		u.ID(), u.Name(), u.Email().Value(), u.PasswordHash(), u.Role().String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("email already registered", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create user", err)
	}

	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	const query = `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = $1`

	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	const query = `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1`

	return scanUser(r.db.QueryRow(ctx, query, id))
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		id           uuid.UUID
		name         string
		emailValue   string
		passwordHash string
		role         string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&id, &name, &emailValue, &passwordHash, &role, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan user", err)
	}

	email, err := user.NewEmail(emailValue)
	if err != nil {
		return nil, infra.WrapRepoErr("stored email is invalid", err)
	}

	return user.ReconstructUser(id, name, email, passwordHash, user.Role(role), createdAt, updatedAt), nil
}
