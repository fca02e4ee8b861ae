// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package channel

import "context"

// # Channel Data Access

// ChannelRepository defines the aggregate and history read contract.
type ChannelRepository interface {

	/*
		Stats computes the subscription aggregates for a channel.

		Parameters:
		  - context: context.Context
		  - channelID: string

		Returns:
		  - *Stats: Subscriber and subscribed-to counts
		  - error: Execution failures
	*/
	Stats(context context.Context, channelID string) (*Stats, error)

	/*
		IsSubscribed reports whether viewerID subscribes to channelID.

		Parameters:
		  - context: context.Context
		  - viewerID: string
		  - channelID: string

		Returns:
		  - bool: Subscription flag
		  - error: Execution failures
	*/
	IsSubscribed(context context.Context, viewerID, channelID string) (bool, error)

	/*
		WatchHistory returns one page of the user's watched videos, newest
		first, along with the total entry count for pagination metadata.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit: int
		  - offset: int

		Returns:
		  - []WatchedVideo: Page of history entries with owners attached
		  - int: Total number of history entries
		  - error: Execution failures
	*/
	WatchHistory(context context.Context, userID string, limit, offset int) ([]WatchedVideo, int, error)
}

// # Volatile Data Access

// StatsCache defines the short-lived cache contract for channel aggregates.
type StatsCache interface {

	/*
		Get retrieves cached stats for a channel.

		Parameters:
		  - context: context.Context
		  - channelID: string

		Returns:
		  - *Stats: Cached aggregates
		  - error: apperr.NotFound on a cache miss, or connectivity errors
	*/
	Get(context context.Context, channelID string) (*Stats, error)

	/*
		Set stores stats for a channel under the cache TTL.

		Parameters:
		  - context: context.Context
		  - channelID: string
		  - stats: *Stats

		Returns:
		  - error: Storage failures
	*/
	Set(context context.Context, channelID string, stats *Stats) error
}
