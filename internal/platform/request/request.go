// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction, common body
decoding patterns, and multipart file handling, ensuring consistent error
handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/blob"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/constants"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/ctxutil"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/sec"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {

	// Get user claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {

	// Get user claims
	claims, err := RequiredClaims(request)

	// If the user is not authenticated, return an error
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}

// # Multipart Uploads

// MediaForm is the explicit optional-field shape of an image upload form.
// Absent fields are nil pointers, validated by callers before use.
type MediaForm struct {
	Avatar     *blob.File
	CoverImage *blob.File
}

// Close releases all form files held by the form.
func (form *MediaForm) Close() {
	_ = form.Avatar.Close()
	_ = form.CoverImage.Close()
}

/*
MediaFiles parses the request's multipart form and extracts the avatar and
cover image fields.

Returns:
  - *MediaForm: Files keyed by field, nil entries for absent fields
  - error: validate.ErrInvalidJSON-equivalent validation error on a malformed form
*/
func MediaFiles(request *http.Request) (*MediaForm, error) {
	if err := request.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return nil, apperr.ValidationError("Invalid multipart form")
	}

	avatar, err := FormFile(request, constants.FormFieldAvatar)
	if err != nil {
		return nil, err
	}

	cover, err := FormFile(request, constants.FormFieldCoverImage)
	if err != nil {
		_ = avatar.Close()
		return nil, err
	}

	return &MediaForm{Avatar: avatar, CoverImage: cover}, nil
}

/*
FormFile extracts a single uploaded file from a multipart request.

An absent field is not an error: the result is (nil, nil). Callers decide
whether the field is required.

Returns:
  - *blob.File: The opened upload, or nil when the field was not submitted
  - error: Validation error when the field exists but cannot be read
*/
func FormFile(request *http.Request, field string) (*blob.File, error) {
	file, header, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperr.ValidationError("Invalid file field: " + field)
	}

	return &blob.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}, nil
}
