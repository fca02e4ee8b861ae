// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/constants"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/middleware"
	requestutil "github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/request"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/respond"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points: registration, login,
// logout, token rotation, and password changes. It is strictly responsible
// for transport concerns (status codes, cookies, JSON).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Register wires the authentication routes into the given router.
//
// # Endpoints
//   - POST /register        : Creates a new account (multipart form).
//   - POST /login           : Authenticates and sets token cookies.
//   - POST /refresh-token   : Rotates the refresh token.
//   - POST /logout          : Ends the session (auth required).
//   - POST /change-password : Updates the password (auth required).
func (handler *Handler) Register(router chi.Router) {

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
	})
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/users/register

Description: Parses the multipart form, validates input, checks for identity
conflicts, uploads the avatar (required) and cover image (optional), and
persists the new user profile.

Request:
  - Multipart form: username, email, password, fullName + avatar, coverImage files

Response:
  - 201: User: Created user profile
  - 400: ErrInvalidJSON: Bad input, validation failure, or missing avatar
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	form, err := requestutil.MediaFiles(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer form.Close()

	input := RegisterInput{
		Username:   request.FormValue(FieldUsername),
		Email:      request.FormValue(FieldEmail),
		Password:   request.FormValue(FieldPassword),
		FullName:   request.FormValue(FieldFullName),
		Avatar:     form.Avatar,
		CoverImage: form.CoverImage,
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Required(FieldFullName, input.FullName)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user, "User registered successfully")
}

/*
Login authenticates a user and establishes a rotating session.

POST /api/v1/users/login

Description: Verifies credentials, issues a token pair, and injects both
tokens as secure HttpOnly cookies. The tokens are also echoed in the body
for non-browser clients.

Request:
  - Body: loginRequest (Username or Email, Password)

Response:
  - 200: TokenPair and User profile
  - 404: ErrNotFound: Unknown username or email
  - 401: ErrUnauthorized: Wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setTokenCookies(writer, pair)

	respond.OK(writer, map[string]any{
		FieldUser:         pair.User,
		FieldAccessToken:  pair.AccessToken,
		FieldRefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
}

/*
Logout terminates the current user session.

POST /api/v1/users/logout

Description: Empties the server-side refresh-token slot and clears both
security cookies from the client. Idempotent.

Response:
  - 200: Session terminated
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearTokenCookies(writer)

	respond.OK(writer, map[string]any{}, "User logged out")
}

/*
RefreshToken issues a new token pair using a valid refresh token.

POST /api/v1/users/refresh-token

Description: Reads the refresh token from the cookie (preferred) or the JSON
body, rotates the server-side slot, and re-issues both cookies.

Request:
  - Cookie: refreshToken, or Body: refreshTokenRequest

Response:
  - 200: New token pair
  - 401: ErrUnauthorized: Missing, invalid, expired, or reused refresh token
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	presented := handler.refreshTokenFromRequest(request)
	if presented == "" {
		respond.Error(writer, request, apperr.Unauthorized("Refresh token is required"))
		return
	}

	pair, err := handler.authService.RefreshTokens(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setTokenCookies(writer, pair)

	respond.OK(writer, map[string]any{
		FieldAccessToken:  pair.AccessToken,
		FieldRefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/users/change-password

Description: Verifies the current password before applying the new one.

Request:
  - Body: changePasswordRequest (OldPassword, NewPassword)

Response:
  - 200: Password updated
  - 400: ErrInvalidJSON: Missing or weak new password
  - 401: ErrUnauthorized: Authentication required or wrong old password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldOldPassword, input.OldPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), userID, input.OldPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{}, "Password updated successfully")
}

// # Cookie Management

// setTokenCookies writes both token cookies with lifetimes matching the tokens.
func (handler *Handler) setTokenCookies(writer http.ResponseWriter, pair *TokenPair) {
	now := time.Now()

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    pair.AccessToken,
		Path:     constants.TokenCookiePath,
		Expires:  now.Add(handler.authService.tokenProvider.AccessTokenTTL()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    pair.RefreshToken,
		Path:     constants.TokenCookiePath,
		Expires:  now.Add(handler.authService.tokenProvider.RefreshTokenTTL()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearTokenCookies expires both token cookies on the client.
func (handler *Handler) clearTokenCookies(writer http.ResponseWriter) {
	for _, name := range []string{constants.AccessTokenCookieName, constants.RefreshTokenCookieName} {
		http.SetCookie(writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     constants.TokenCookiePath,
			MaxAge:   -1,
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// refreshTokenFromRequest extracts the refresh token from the cookie or,
// for non-browser clients, from the JSON body.
func (handler *Handler) refreshTokenFromRequest(request *http.Request) string {
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var body refreshTokenRequest
	if err := requestutil.DecodeJSON(request, &body); err == nil {
		return body.RefreshToken
	}

	return ""
}
