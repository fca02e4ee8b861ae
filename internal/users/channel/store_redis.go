// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/constants"
)

// statsCacheTTL bounds how stale a channel's subscriber aggregates may be.
const statsCacheTTL = 60 * time.Second

// RedisStatsCache implements StatsCache using Redis with JSON values.
type RedisStatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a new Redis-backed StatsCache.
func NewStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

/*
Get retrieves cached stats for a channel.

Description: Returns apperr.NotFound on a cache miss so the caller falls
through to the database.

Parameters:
  - context: context.Context
  - channelID: string

Returns:
  - *Stats: Cached aggregates
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisStatsCache) Get(context context.Context, channelID string) (*Stats, error) {
	key := constants.RedisPrefixChannelStats + channelID

	payload, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Channel stats cache entry")
		}
		return nil, fmt.Errorf("redis_channel_stats_get_failed: %w", err)
	}

	stats := &Stats{}
	if err := json.Unmarshal(payload, stats); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten shortly.
		return nil, apperr.NotFound("Channel stats cache entry")
	}

	return stats, nil
}

/*
Set stores stats for a channel under the cache TTL.

Parameters:
  - context: context.Context
  - channelID: string
  - stats: *Stats

Returns:
  - error: Storage failures
*/
func (cache *RedisStatsCache) Set(context context.Context, channelID string, stats *Stats) error {
	key := constants.RedisPrefixChannelStats + channelID

	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis_channel_stats_marshal_failed: %w", err)
	}

	if err := cache.client.Set(context, key, payload, statsCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_channel_stats_set_failed: %w", err)
	}

	return nil
}
