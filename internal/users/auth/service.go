// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/blob"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/sec"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/username"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and verifying security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a short-lived signed JWT carrying identity claims.
	GenerateAccessToken(userID, username, email, fullName string) (string, error)

	// GenerateRefreshToken creates a long-lived signed JWT carrying only the user ID.
	GenerateRefreshToken(userID string) (string, error)

	// VerifyRefreshToken validates a refresh token and returns the user ID it
	// was issued for.
	VerifyRefreshToken(tokenString string) (string, error)

	// AccessTokenTTL returns the configured access-token lifetime.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured refresh-token lifetime.
	RefreshTokenTTL() time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or token rotation logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	blobStore      blob.Store
	tokenProvider  TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, blobStore blob.Store, tokenProv TokenProvider) *Service {
	return &Service{
		userRepository: userRepo,
		blobStore:      blobStore,
		tokenProvider:  tokenProv,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Avatar     *blob.File
	CoverImage *blob.File
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member. Conflict checks run BEFORE any
blob upload so that a duplicate identity never leaves orphaned media behind.
The avatar is mandatory; the cover image is optional.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Conflict (if identity exists), ValidationError (missing avatar),
    Upload, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	canonicalUsername := username.Canonical(input.Username)
	canonicalEmail := username.Canonical(input.Email)

	// Usernames become URL path segments (/channel/{username}), so their shape
	// is constrained beyond non-emptiness.
	if !username.IsValid(input.Username) {
		return nil, apperr.ValidationError("Username must be 3-30 characters: letters, digits, '.', '_' or '-'")
	}

	// Verify identity uniqueness up front. One generic Conflict message covers
	// both fields.
	_, err := service.userRepository.FindByEmail(context, canonicalEmail)
	if err == nil {
		return nil, apperr.Conflict("User with email or username already exists")
	}

	_, err = service.userRepository.FindByUsername(context, canonicalUsername)
	if err == nil {
		return nil, apperr.Conflict("User with email or username already exists")
	}

	// The avatar is the face of the account and is required at enrollment.
	if input.Avatar == nil {
		return nil, apperr.ValidationError("Avatar file is required")
	}

	avatarURL, err := service.blobStore.Upload(context, input.Avatar)
	if err != nil {
		return nil, apperr.Upload("Failed to upload avatar", err)
	}

	// The cover image is optional decoration.
	coverImageURL := ""
	if input.CoverImage != nil {
		coverImageURL, err = service.blobStore.Upload(context, input.CoverImage)
		if err != nil {
			return nil, apperr.Upload("Failed to upload cover image", err)
		}
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:            uuid.New(),
		Username:      canonicalUsername,
		Email:         canonicalEmail,
		PasswordHash:  hashedPassword,
		FullName:      input.FullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
// Either Username or Email identifies the account.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// TokenPair represents a successfully established user session.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Resolves the account by username or email, performs constant-time
password comparison, and fills the account's refresh-token slot. Logging in
invalidates any previously issued refresh token.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Transport-ready session credentials
  - error: ValidationError, NotFound, Unauthorized, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenPair, error) {
	if input.Username == "" && input.Email == "" {
		return nil, apperr.ValidationError("Username or email is required")
	}

	// Flexible login: look up by Username first, then by Email.
	var user *User
	var err error
	if input.Username != "" {
		user, err = service.userRepository.FindByUsername(context, username.Canonical(input.Username))
	} else {
		user, err = service.userRepository.FindByEmail(context, username.Canonical(input.Email))
	}

	// An unknown identifier is a 404, distinct from a bad password.
	if err != nil {
		return nil, apperr.NotFound("User")
	}

	// bcrypt compares in constant time to prevent timing attacks.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid user credentials")
	}

	pair, err := service.issueTokenPair(user)
	if err != nil {
		return nil, err
	}

	// Fill the slot unconditionally: a login always starts a new session.
	if err := service.userRepository.SetRefreshToken(context, user.ID, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_set_refresh_token_failed: %w", err)
	}
	user.RefreshTokenSlot = pair.RefreshToken

	return pair, nil
}

/*
Logout terminates the user's rotating session.

Description: Empties the refresh-token slot so that no previously issued
refresh token can ever be used again. Idempotent: logging out twice succeeds.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Storage failures
*/
func (service *Service) Logout(context context.Context, userID string) error {
	if err := service.userRepository.ClearRefreshToken(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Rotation

/*
RefreshTokens implements the Refresh Token Rotation mechanism.

Description: Verifies the presented refresh token cryptographically, confirms
it is the one currently held in the account's slot, and atomically swaps in a
fresh pair. A token that fails the slot comparison is either expired by a
newer rotation or replayed by an attacker; both are rejected identically.

Parameters:
  - context: context.Context
  - presentedToken: string

Returns:
  - *TokenPair: New session credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) RefreshTokens(context context.Context, presentedToken string) (*TokenPair, error) {

	// Signature and expiry check first; an unverifiable token never touches storage.
	userID, err := service.tokenProvider.VerifyRefreshToken(presentedToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// Strict slot comparison: only the most recently issued token is live.
	if user.RefreshTokenSlot == "" || user.RefreshTokenSlot != presentedToken {
		return nil, apperr.Unauthorized("Refresh token is expired or used")
	}

	pair, err := service.issueTokenPair(user)
	if err != nil {
		return nil, err
	}

	// Conditional swap: a concurrent rotation of the same token loses here
	// instead of silently double-issuing sessions.
	err = service.userRepository.RotateRefreshToken(context, user.ID, presentedToken, pair.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenMismatch) {
			return nil, apperr.Unauthorized("Refresh token is expired or used")
		}
		return nil, fmt.Errorf("auth_service_rotate_failed: %w", err)
	}
	user.RefreshTokenSlot = pair.RefreshToken

	return pair, nil
}

// # Credential Management

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password before applying the new hash.

Parameters:
  - context: context.Context
  - userID: string
  - oldPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized (wrong old password) or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, oldPassword, newPassword string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// A wrong current password is an authentication failure, same as a bad login.
	if !sec.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return apperr.Unauthorized("Invalid old password")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	return nil
}

// issueTokenPair signs a fresh access/refresh pair for the user.
func (service *Service) issueTokenPair(user *User) (*TokenPair, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, user.Email, user.FullName)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
