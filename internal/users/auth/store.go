// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package auth

import (
	"context"
	"errors"
)

// ErrRefreshTokenMismatch is returned by RotateRefreshToken when the presented
// token is not the one currently stored in the account's slot. It signals
// either an expired rotation or a replayed (already used) token.
var ErrRefreshTokenMismatch = errors.New("auth: refresh token slot mismatch")

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Username and email parameters are expected in canonical (folded) form; the
// service layer normalizes them before any lookup or write.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given canonical email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given canonical username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Exists reports whether an account with the given ID is present.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - bool: Presence flag
		  - error: Database retrieval failures
	*/
	Exists(context context.Context, id string) (bool, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Conflict on duplicate identity, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists changes to mutable profile fields
		(fullname, email, avatar, cover image).

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Conflict on duplicate email, or persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		SetRefreshToken stores the given token in the account's single
		refresh-token slot, replacing whatever was there.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	SetRefreshToken(context context.Context, userID, token string) error

	/*
		RotateRefreshToken atomically replaces the stored refresh token, but
		ONLY if the slot still holds presentedToken. This compare-and-swap
		closes the race between two concurrent refresh attempts and detects
		replay of an already-rotated token.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - presentedToken: string
		  - newToken: string

		Returns:
		  - error: ErrRefreshTokenMismatch when the slot does not hold
		    presentedToken, or persistence failures
	*/
	RotateRefreshToken(context context.Context, userID, presentedToken, newToken string) error

	/*
		ClearRefreshToken empties the account's refresh-token slot, ending
		the session on every device that held the rotated token.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ClearRefreshToken(context context.Context, userID string) error
}
