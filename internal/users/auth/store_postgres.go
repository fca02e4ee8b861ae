// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

// PostgreSQL implementation of the auth storage contracts.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `
	id, username, email, passwordhash, fullname,
	avatarurl, coverimageurl, refreshtokenslot, createdat, updatedat`

// scanUser hydrates a full User entity from a single-row query.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.RefreshTokenSlot,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided. Duplicate identities surface as a client-safe Conflict.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on duplicate username/email, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, fullname,
			avatarurl, coverimageurl, refreshtokenslot, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.AvatarURL,
		user.CoverImageURL,
		user.RefreshTokenSlot,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("User with email or username already exists")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their canonical email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE email = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByUsername retrieves a user record by their canonical username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE username = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_username_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
Exists reports whether an account with the given ID is present.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - bool: Presence flag
  - error: Execution errors
*/
func (repository *PostgresUserRepository) Exists(context context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users.account WHERE id = $1)`

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_user_repo_exists_failed: %w", err)
	}

	return exists, nil
}

/*
Update persists changes to a user's mutable profile fields.

Description: Synchronizes the in-memory user state with the database,
refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.Conflict on duplicate email, or update failures
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET fullname = $2, email = $3, avatarurl = $4, coverimageurl = $5, updatedat = $6
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FullName,
		user.Email,
		user.AvatarURL,
		user.CoverImageURL,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already in use")
		}
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

// # Refresh Token Slot

/*
SetRefreshToken unconditionally replaces the account's refresh-token slot.

Description: Used at login, where issuing a fresh session is always legal.

Parameters:
  - context: context.Context
  - userID: string
  - token: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) SetRefreshToken(context context.Context, userID, token string) error {
	const query = `
		UPDATE users.account
		SET refreshtokenslot = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_refresh_token_failed: %w", err)
	}

	return nil
}

/*
RotateRefreshToken atomically swaps the slot contents via a conditional UPDATE.

Description: The WHERE clause compares the stored slot against the presented
token, so two concurrent rotations of the same token cannot both succeed: the
loser matches zero rows and receives [ErrRefreshTokenMismatch].

Parameters:
  - context: context.Context
  - userID: string
  - presentedToken: string
  - newToken: string

Returns:
  - error: ErrRefreshTokenMismatch on a stale or replayed token, or execution errors
*/
func (repository *PostgresUserRepository) RotateRefreshToken(context context.Context, userID, presentedToken, newToken string) error {
	const query = `
		UPDATE users.account
		SET refreshtokenslot = $3, updatedat = $4
		WHERE id = $1 AND refreshtokenslot = $2`

	tag, err := repository.pool.Exec(context, query, userID, presentedToken, newToken, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_rotate_refresh_token_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrRefreshTokenMismatch
	}

	return nil
}

/*
ClearRefreshToken empties the account's refresh-token slot.

Description: Terminates the rotating session at logout. Clearing an already
empty slot is a no-op, which keeps logout idempotent.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ClearRefreshToken(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET refreshtokenslot = '', updatedat = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_clear_refresh_token_failed: %w", err)
	}

	return nil
}
