// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package channel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/users/auth"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/pagination"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/username"
)

// # Service Layer

// Service orchestrates channel profile assembly and watch history reads.
type Service struct {
	userRepository    auth.UserRepository
	channelRepository ChannelRepository
	statsCache        StatsCache
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo auth.UserRepository,
	channelRepo ChannelRepository,
	statsCache StatsCache,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		channelRepository: channelRepo,
		statsCache:        statsCache,
		logger:            logger,
	}
}

// # Channel Profiles

/*
GetProfile assembles the public channel view for a username.

Description: Resolves the channel account, attaches the subscription
aggregates (cache-aside with a short TTL), and computes the viewer-specific
IsSubscribed flag fresh on every request. An empty viewerID means an
anonymous request and always yields IsSubscribed = false.

Parameters:
  - context: context.Context
  - rawUsername: string (as received from the URL)
  - viewerID: string (empty for anonymous viewers)

Returns:
  - *Profile: Assembled channel projection
  - error: ValidationError (blank username), NotFound, or execution failures
*/
func (service *Service) GetProfile(context context.Context, rawUsername, viewerID string) (*Profile, error) {
	canonical := username.Canonical(rawUsername)
	if canonical == "" {
		return nil, apperr.ValidationError("Username is required")
	}

	user, err := service.userRepository.FindByUsername(context, canonical)
	if err != nil {
		return nil, apperr.NotFound("Channel")
	}

	stats, err := service.channelStats(context, user.ID)
	if err != nil {
		return nil, err
	}

	// Viewer flag is never cached: it is per-viewer and must be exact.
	isSubscribed := false
	if viewerID != "" {
		isSubscribed, err = service.channelRepository.IsSubscribed(context, viewerID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("channel_service_is_subscribed_failed: %w", err)
		}
	}

	return &Profile{
		ID:                       user.ID,
		Username:                 user.Username,
		Email:                    user.Email,
		FullName:                 user.FullName,
		AvatarURL:                user.AvatarURL,
		CoverImageURL:            user.CoverImageURL,
		SubscribersCount:         stats.SubscribersCount,
		ChannelSubscribedToCount: stats.ChannelSubscribedToCount,
		IsSubscribed:             isSubscribed,
	}, nil
}

// channelStats reads the aggregates cache-aside: serve from Redis when warm,
// recompute and repopulate on a miss. Cache failures degrade to the database
// rather than failing the request.
func (service *Service) channelStats(context context.Context, channelID string) (*Stats, error) {
	cached, err := service.statsCache.Get(context, channelID)
	if err == nil {
		return cached, nil
	}
	if !apperr.IsNotFound(err) {
		service.logger.Warn("channel_stats_cache_read_failed",
			slog.String("channel_id", channelID),
			slog.Any("error", err),
		)
	}

	stats, err := service.channelRepository.Stats(context, channelID)
	if err != nil {
		return nil, fmt.Errorf("channel_service_stats_failed: %w", err)
	}

	if cacheErr := service.statsCache.Set(context, channelID, stats); cacheErr != nil {
		service.logger.Warn("channel_stats_cache_write_failed",
			slog.String("channel_id", channelID),
			slog.Any("error", cacheErr),
		)
	}

	return stats, nil
}

// # Watch History

/*
WatchHistory returns one page of the user's watched videos, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []WatchedVideo: Page of history entries
  - pagination.Meta: Metadata for the response envelope
  - error: Execution failures
*/
func (service *Service) WatchHistory(context context.Context, userID string, params pagination.Params) ([]WatchedVideo, pagination.Meta, error) {
	videos, total, err := service.channelRepository.WatchHistory(context, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("channel_service_watch_history_failed: %w", err)
	}

	return videos, pagination.NewMeta(params.Page, params.Limit, total), nil
}
