// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package channel

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/middleware"
	requestutil "github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/request"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/respond"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the channel profile and watch history HTTP endpoints.
type Handler struct {
	channelService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{channelService: service}
}

// Register wires the channel routes into the given router.
//
// # Endpoints (all require authentication)
//   - GET /channel/{username} : Channel profile, viewer-aware.
//   - GET /watchHistory       : The authenticated user's watch history.
func (handler *Handler) Register(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Get("/channel/{username}", handler.channelProfile)
		r.Get("/watchHistory", handler.watchHistory)
	})
}

/*
ChannelProfile returns the channel view for a username.

GET /api/v1/users/channel/{username}

Description: The IsSubscribed flag reflects the requesting viewer's own
subscription to the channel.

Response:
  - 200: Profile: Channel identity plus subscription aggregates
  - 400: ErrInvalidJSON: Blank username
  - 401: ErrUnauthorized: Authentication required
  - 404: ErrNotFound: No channel with this username
*/
func (handler *Handler) channelProfile(writer http.ResponseWriter, request *http.Request) {
	rawUsername := requestutil.Param(request, FieldChannelUsername)

	viewerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.channelService.GetProfile(request.Context(), rawUsername, viewerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile, "User channel fetched successfully")
}

/*
WatchHistory returns the authenticated user's watched videos, newest first.

GET /api/v1/users/watchHistory?page=&limit=

Response:
  - 200: []WatchedVideo with pagination metadata
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) watchHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	videos, meta, err := handler.channelService.WatchHistory(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, videos, meta, "Watch history fetched successfully")
}
