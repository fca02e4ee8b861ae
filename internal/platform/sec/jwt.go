// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [auth.TokenProvider] interface.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/uuid"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the UserID, Username, Email, and FullName directly inside the
// JWT, the [middleware.Authenticate] guard can reconstruct the active user
// context WITHOUT querying the database on every single API request. This
// provides massive read-scalability.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Email    string `json:"eml"`
	FullName string `json:"fnm"`
}

// RefreshClaims is the minimal payload of a Refresh Token.
//
// It deliberately carries ONLY the user ID: a leaked refresh token signed
// with the refresh secret cannot forge identity claims an access-token
// consumer would trust.
type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"uid"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// Access and refresh tokens are signed with two DISTINCT symmetric secrets so
// that their lifetimes can be tuned independently and the blast radius of a
// leaked secret is bounded to one token class.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewTokenService creates a new TokenService from environment-provided secrets.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, issuer string) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("sec: token secrets must not be empty")
	}

	// Sharing one secret would collapse the two token classes into one.
	if accessSecret == refreshSecret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
	}, nil
}

// # Token Generation

// GenerateAccessToken creates a short-lived signed JWT carrying identity claims.
func (service *TokenService) GenerateAccessToken(userID, username, email, fullName string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.accessTTL)),
		},
		UserID:   userID,
		Username: username,
		Email:    email,
		FullName: fullName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign access token: %w", err)
	}

	return signedToken, nil
}

// GenerateRefreshToken creates a long-lived signed JWT carrying only the user ID.
//
// Every issuance carries a fresh jti. The rotation slot compares raw token
// strings, so two tokens minted for the same user in the same second must
// still differ — otherwise a superseded token would keep matching the slot.
func (service *TokenService) GenerateRefreshToken(userID string) (string, error) {
	currentTime := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.refreshTTL)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// # Token Verification

// VerifyAccessToken checks the signature and validity of an access token string.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, service.keyFunc(service.accessSecret))
	if err != nil {
		return nil, fmt.Errorf("sec: invalid access token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid access token claims")
	}

	return claims, nil
}

// VerifyRefreshToken checks a refresh token against the refresh secret and
// returns the user ID it was issued for.
func (service *TokenService) VerifyRefreshToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, service.keyFunc(service.refreshSecret))
	if err != nil {
		return "", fmt.Errorf("sec: invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return "", errors.New("sec: invalid refresh token claims")
	}

	return claims.UserID, nil
}

// AccessTokenTTL returns the configured access-token lifetime.
func (service *TokenService) AccessTokenTTL() time.Duration { return service.accessTTL }

// RefreshTokenTTL returns the configured refresh-token lifetime.
func (service *TokenService) RefreshTokenTTL() time.Duration { return service.refreshTTL }

// keyFunc builds a [jwt.Keyfunc] that pins the signing method to HMAC.
func (service *TokenService) keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}
}
