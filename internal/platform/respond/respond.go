// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// It ensures that every response (Success or Error) across the entire application
// follows a strict, predictable JSON envelope:
//
//	{statusCode, data, message, success}
//
// This consistency is crucial for mobile apps and frontend SPAs to parse data
// robustly. Error responses additionally carry a machine-readable code and
// optional field-level errors.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/ctxkey"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/pagination"
)

// Envelope is the JSON envelope for successful responses.
type Envelope struct {
	StatusCode int              `json:"statusCode"`
	Data       interface{}      `json:"data"`
	Message    string           `json:"message"`
	Success    bool             `json:"success"`
	Meta       *pagination.Meta `json:"meta,omitempty"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	StatusCode int                 `json:"statusCode"`
	Data       interface{}         `json:"data"`
	Message    string              `json:"message"`
	Success    bool                `json:"success"`
	Code       string              `json:"code"`
	Errors     []apperr.FieldError `json:"errors,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard envelope.
func OK(writer http.ResponseWriter, data interface{}, message string) {
	JSON(writer, http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Created writes a 201 Created response with data wrapped in the standard envelope.
func Created(writer http.ResponseWriter, data interface{}, message string) {
	JSON(writer, http.StatusCreated, Envelope{
		StatusCode: http.StatusCreated,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Paginated writes a 200 OK response with list data and a metadata block.
func Paginated(writer http.ResponseWriter, data interface{}, metadata pagination.Meta, message string) {
	JSON(writer, http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    message,
		Success:    true,
		Meta:       &metadata,
	})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger := getLoggerFromContext(request)
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", getRequestIDFromContext(request)),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := getLoggerFromContext(request)
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", getRequestIDFromContext(request)),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		StatusCode: appError.HTTPStatus,
		Data:       nil,
		Message:    appError.Message,
		Success:    false,
		Code:       appError.Code,
		Errors:     appError.Details,
	})
}

// getLoggerFromContext extracts the per-request logger.
func getLoggerFromContext(request *http.Request) *slog.Logger {
	if logger, ok := request.Context().Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// getRequestIDFromContext extracts the X-Request-ID for log correlation.
func getRequestIDFromContext(request *http.Request) string {
	if id, ok := request.Context().Value(ctxkey.KeyRequestID).(string); ok {
		return id
	}
	return ""
}
