// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entity (User) and the logic for registration,
credential verification, and the rotating refresh-token lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered member of the MyTube platform.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Explicitly omitted from JSON for security.
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`

	// RefreshTokenSlot is the single currently-valid refresh token for this
	// account. Rotating it invalidates every previously issued token.
	RefreshTokenSlot string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullName        = "fullName"
	FieldAvatar          = "avatar"
	FieldCoverImage      = "coverImage"
	FieldRefreshToken    = "refreshToken"
	FieldAccessToken     = "accessToken"
	FieldOldPassword     = "oldPassword"
	FieldNewPassword     = "newPassword"
	FieldUser            = "user"
)
