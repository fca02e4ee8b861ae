// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package account

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/blob"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/constants"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/middleware"
	requestutil "github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/request"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/respond"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/validate"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements the authenticated profile HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Register wires the profile routes into the given router.
//
// # Endpoints (all require authentication)
//   - GET   /current-user        : Returns the active user's profile.
//   - PATCH /update-account-info : Updates full name and email.
//   - PATCH /update-avatar-image : Replaces the avatar image.
//   - PATCH /update-cover-image  : Replaces the cover image.
func (handler *Handler) Register(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Get("/current-user", handler.currentUser)
		r.Patch("/update-account-info", handler.updateAccountInfo)
		r.Patch("/update-avatar-image", handler.updateAvatarImage)
		r.Patch("/update-cover-image", handler.updateCoverImage)
	})
}

// # Request Payloads

type updateAccountInfoRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

/*
CurrentUser returns the profile of the authenticated user.

GET /api/v1/users/current-user

Response:
  - 200: User: The active profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Current user fetched successfully")
}

/*
UpdateAccountInfo updates the user's full name and email together.

PATCH /api/v1/users/update-account-info

Request:
  - Body: updateAccountInfoRequest (FullName, Email — both required)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON: Missing fields or malformed email
  - 409: ErrConflict: Email already in use
*/
func (handler *Handler) updateAccountInfo(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateAccountInfoRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldFullName, input.FullName).
		Required(auth.FieldEmail, input.Email).
		Email(auth.FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateDetails(request.Context(), userID, input.FullName, input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, "Account details updated successfully")
}

/*
UpdateAvatarImage replaces the user's avatar.

PATCH /api/v1/users/update-avatar-image

Request:
  - Multipart form: avatar file (required)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON: Missing or unreadable file
*/
func (handler *Handler) updateAvatarImage(writer http.ResponseWriter, request *http.Request) {
	handler.updateImage(writer, request, constants.FormFieldAvatar,
		handler.accountService.UpdateAvatar, "Avatar image updated successfully")
}

/*
UpdateCoverImage replaces the user's cover image.

PATCH /api/v1/users/update-cover-image

Request:
  - Multipart form: coverImage file (required)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON: Missing or unreadable file
*/
func (handler *Handler) updateCoverImage(writer http.ResponseWriter, request *http.Request) {
	handler.updateImage(writer, request, constants.FormFieldCoverImage,
		handler.accountService.UpdateCoverImage, "Cover image updated successfully")
}

// updateImage is the shared multipart flow for both media endpoints.
func (handler *Handler) updateImage(
	writer http.ResponseWriter,
	request *http.Request,
	field string,
	apply func(ctx context.Context, userID string, file *blob.File) (*auth.User, error),
	message string,
) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respond.Error(writer, request, validate.RequiredError(field, "must be a multipart file upload"))
		return
	}

	file, err := requestutil.FormFile(request, field)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer file.Close()

	user, err := apply(request.Context(), userID, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user, message)
}
