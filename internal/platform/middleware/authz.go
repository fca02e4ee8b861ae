// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/constants"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/ctxutil"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/sec"
)

// # Authentication & Authorization

// TokenVerifier validates access tokens and extracts user claims.
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*sec.AuthClaims, error)
}

// AccountChecker confirms that the account a token refers to still exists.
// Tokens outlive account deletion; the check closes that window.
type AccountChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// Authenticate validates the access token and injects user claims into context.
//
// The token is read from the accessToken cookie first, then from the
// Authorization Bearer header. An absent token passes through anonymously:
// protected routes enforce presence via RequireAuth. An invalid token, or a
// valid token for an account that no longer exists, is rejected outright.
func Authenticate(verifier TokenVerifier, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Locate the token (cookie preferred, header fallback)
			tokenString := tokenFromRequest(request)
			if tokenString == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Verify signature, expiry, and issuer
			claims, err := verifier.VerifyAccessToken(tokenString)
			if err != nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid access token")
				return
			}

			// 3. Confirm the account behind the token still exists
			exists, err := accounts.Exists(request.Context(), claims.UserID)
			if err != nil {
				writeError(writer, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred")
				return
			}
			if !exists {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid access token")
				return
			}

			// 4. Attach the verified identity to the request context
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks anonymous requests. It must run after Authenticate.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if ctxutil.GetAuthUser(request.Context()) == nil {
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}

// tokenFromRequest extracts the raw access token from the cookie or the
// Authorization header.
func tokenFromRequest(request *http.Request) string {
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authorization := request.Header.Get(constants.HeaderAuthorization)
	if token, found := strings.CutPrefix(authorization, "Bearer "); found {
		return strings.TrimSpace(token)
	}

	return ""
}
