package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"marketplace-api/internal/domain"
	"marketplace-api/pkg/database"
	apperrors "marketplace-api/pkg/errors"
)

const identityColumns = `id, email, username, password_hash, profile_image_ref, created_at, updated_at`

// UserRepository is the Postgres-backed CredentialStore
type UserRepository struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) *UserRepository {
	return &UserRepository{db: db}
}

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var id domain.Identity
	err := row.Scan(&id.ID, &id.Email, &id.Username, &id.PasswordHash, &id.ProfileImageRef, &id.CreatedAt, &id.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// FindByEmailOrUsername matches email case-insensitively and username exactly
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.Identity, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" && username == "" {
		return nil, nil
	}

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + identityColumns + `
		FROM users
		WHERE ($1 <> '' AND LOWER(email) = LOWER($1))
		   OR ($2 <> '' AND username = $2)
		ORDER BY id
		LIMIT 1
	`

	identity, err := scanIdentity(r.db.Pool.QueryRow(ctx, query, email, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("find user by email or username", err)
	}
	return identity, nil
}

// Create inserts a new identity
func (r *UserRepository) Create(ctx context.Context, fields domain.NewIdentity) (*domain.Identity, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (email, username, password_hash, profile_image_ref)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + identityColumns

	identity, err := scanIdentity(r.db.Pool.QueryRow(ctx, query,
		fields.Email,
		fields.Username,
		fields.PasswordHash,
		fields.ProfileImageRef,
	))
	if err != nil {
		return nil, mapError("create user", err)
	}
	return identity, nil
}

// FindByID retrieves an identity by ID
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.Identity, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := `SELECT ` + identityColumns + ` FROM users WHERE id = $1`

	identity, err := scanIdentity(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("find user by id", err)
	}
	return identity, nil
}

// Update applies the non-nil fields of patch
func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.IdentityPatch) (*domain.Identity, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users SET
			email = COALESCE($2, email),
			username = COALESCE($3, username),
			password_hash = COALESCE($4, password_hash),
			profile_image_ref = COALESCE($5, profile_image_ref),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + identityColumns

	identity, err := scanIdentity(r.db.Pool.QueryRow(ctx, query,
		id,
		patch.Email,
		patch.Username,
		patch.PasswordHash,
		patch.ProfileImageRef,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, mapError("update user", err)
	}
	return identity, nil
}

// Delete removes the identity and returns it, or nil when it did not exist
func (r *UserRepository) Delete(ctx context.Context, id int64) (*domain.Identity, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := `DELETE FROM users WHERE id = $1 RETURNING ` + identityColumns

	identity, err := scanIdentity(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("delete user", err)
	}
	return identity, nil
}
