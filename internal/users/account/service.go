// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

/*
Package account implements the authenticated self-service profile surface.

It covers reading the current user, updating account details, and replacing
profile media (avatar and cover image) through the blob store.

# Architecture

The package reuses the [auth.UserRepository] contract for persistence: the
account is the same entity the auth domain owns, viewed through its mutable
profile fields.
*/
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/blob"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/users/auth"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/username"
)

// # Service Layer

// Service orchestrates business logic for profile reads and updates.
type Service struct {
	userRepository auth.UserRepository
	blobStore      blob.Store
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(userRepo auth.UserRepository, blobStore blob.Store, logger *slog.Logger) *Service {
	return &Service{
		userRepository: userRepo,
		blobStore:      blobStore,
		logger:         logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
UpdateDetails replaces the user's full name and email.

Description: Both fields are updated together. The email is canonicalized
before persistence so case-insensitive uniqueness holds; a duplicate email
surfaces as a client-safe Conflict.

Parameters:
  - context: context.Context
  - userID: string
  - fullName: string
  - email: string

Returns:
  - *auth.User: The updated user profile
  - error: Conflict, not found, or storage failures
*/
func (service *Service) UpdateDetails(context context.Context, userID, fullName, email string) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = fullName
	user.Email = username.Canonical(email)

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_details_updated", slog.String("user_id", userID))

	return user, nil
}

// # Profile Media

/*
UpdateAvatar replaces the user's avatar image.

Description: Uploads the new image first, persists the new URL, and only then
deletes the previous object. A failed delete is logged and swallowed: the
profile already points at the new image, and an orphaned blob is a cleanup
concern, not a user-facing failure.

Parameters:
  - context: context.Context
  - userID: string
  - file: *blob.File

Returns:
  - *auth.User: The updated user profile
  - error: ValidationError (missing file), Upload, or storage failures
*/
func (service *Service) UpdateAvatar(context context.Context, userID string, file *blob.File) (*auth.User, error) {
	return service.replaceImage(context, userID, file, "Avatar file is required",
		func(user *auth.User) *string { return &user.AvatarURL })
}

/*
UpdateCoverImage replaces the user's cover image.

Description: Same upload-persist-delete sequence as [UpdateAvatar], with the
same non-fatal handling of the old object's deletion.

Parameters:
  - context: context.Context
  - userID: string
  - file: *blob.File

Returns:
  - *auth.User: The updated user profile
  - error: ValidationError (missing file), Upload, or storage failures
*/
func (service *Service) UpdateCoverImage(context context.Context, userID string, file *blob.File) (*auth.User, error) {
	return service.replaceImage(context, userID, file, "Cover image file is required",
		func(user *auth.User) *string { return &user.CoverImageURL })
}

// replaceImage is the shared upload-persist-delete sequence for both media slots.
// The field selector keeps avatar and cover handling byte-for-byte identical.
func (service *Service) replaceImage(
	context context.Context,
	userID string,
	file *blob.File,
	missingMessage string,
	selectField func(*auth.User) *string,
) (*auth.User, error) {
	if file == nil {
		return nil, apperr.ValidationError(missingMessage)
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	newURL, err := service.blobStore.Upload(context, file)
	if err != nil {
		return nil, apperr.Upload("Failed to upload image", err)
	}

	field := selectField(user)
	oldURL := *field
	*field = newURL

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_media_update_failed: %w", err)
	}

	// Best-effort cleanup of the replaced object.
	if oldURL != "" {
		oldKey := service.blobStore.KeyFromURL(oldURL)
		if deleteErr := service.blobStore.Delete(context, oldKey); deleteErr != nil {
			service.logger.Warn("stale_media_delete_failed",
				slog.String("user_id", userID),
				slog.String("key", oldKey),
				slog.Any("error", deleteErr),
			)
		}
	}

	service.logger.Info("user_media_updated", slog.String("user_id", userID))

	return user, nil
}
