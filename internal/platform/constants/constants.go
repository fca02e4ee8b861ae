// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer and cookie configuration.
  - Uploads: Multipart form limits and field names.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "mytube-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Generous enough for multipart image uploads on slow links.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "mytube.app"

	// AccessTokenCookieName is the cookie that carries the short-lived access token.
	AccessTokenCookieName = "accessToken"

	// RefreshTokenCookieName is the cookie that carries the rotating refresh token.
	RefreshTokenCookieName = "refreshToken"

	// TokenCookiePath scopes both token cookies. The refresh cookie must be
	// visible to /refresh-token and the access cookie to every guarded route,
	// so both are issued site-wide.
	TokenCookiePath = "/"
)

// # Uploads

const (
	// MaxUploadSize caps the in-memory portion of a multipart form (bytes).
	MaxUploadSize = 10 << 20 // 10 MiB

	// FormFieldAvatar is the multipart field name for avatar images.
	FormFieldAvatar = "avatar"

	// FormFieldCoverImage is the multipart field name for cover images.
	FormFieldCoverImage = "coverImage"
)

// # HTTP Headers

const (
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Database Schemas

const (
	SchemaUsers   = "users"
	SchemaContent = "content"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixChannelStats keys the cached subscriber aggregates per channel.
	RedisPrefixChannelStats = "channel:stats:"
)
