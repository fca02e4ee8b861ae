// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package channel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/apperr"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/users/auth"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/pagination"
)

// # Test Doubles

// stubUserLookup resolves one fixed channel account by canonical username.
type stubUserLookup struct {
	user *auth.User
}

func (repo *stubUserLookup) FindByUsername(_ context.Context, name string) (*auth.User, error) {
	if repo.user != nil && repo.user.Username == name {
		copied := *repo.user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *stubUserLookup) FindByID(_ context.Context, id string) (*auth.User, error) {
	if repo.user != nil && repo.user.ID == id {
		copied := *repo.user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *stubUserLookup) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, apperr.NotFound("User")
}

func (repo *stubUserLookup) Exists(_ context.Context, id string) (bool, error) {
	return repo.user != nil && repo.user.ID == id, nil
}

func (repo *stubUserLookup) Create(context.Context, *auth.User) error              { return nil }
func (repo *stubUserLookup) Update(context.Context, *auth.User) error              { return nil }
func (repo *stubUserLookup) UpdatePassword(context.Context, string, string) error  { return nil }
func (repo *stubUserLookup) SetRefreshToken(context.Context, string, string) error { return nil }
func (repo *stubUserLookup) ClearRefreshToken(context.Context, string) error       { return nil }
func (repo *stubUserLookup) RotateRefreshToken(context.Context, string, string, string) error {
	return nil
}

// stubChannelRepository counts how often each query runs so tests can verify
// the cache-aside behavior.
type stubChannelRepository struct {
	stats        Stats
	statsCalls   int
	subscribed   map[string]bool // keyed by viewerID
	history      []WatchedVideo
	historyTotal int
}

func (repo *stubChannelRepository) Stats(context.Context, string) (*Stats, error) {
	repo.statsCalls++
	copied := repo.stats
	return &copied, nil
}

func (repo *stubChannelRepository) IsSubscribed(_ context.Context, viewerID, _ string) (bool, error) {
	return repo.subscribed[viewerID], nil
}

func (repo *stubChannelRepository) WatchHistory(_ context.Context, _ string, limit, offset int) ([]WatchedVideo, int, error) {
	if offset >= len(repo.history) {
		return []WatchedVideo{}, repo.historyTotal, nil
	}
	end := offset + limit
	if end > len(repo.history) {
		end = len(repo.history)
	}
	return repo.history[offset:end], repo.historyTotal, nil
}

// memoryStatsCache is an in-process StatsCache without TTL handling.
type memoryStatsCache struct {
	entries  map[string]*Stats
	failGet  bool
	setCalls int
}

func newMemoryStatsCache() *memoryStatsCache {
	return &memoryStatsCache{entries: make(map[string]*Stats)}
}

func (cache *memoryStatsCache) Get(_ context.Context, channelID string) (*Stats, error) {
	if cache.failGet {
		return nil, fmt.Errorf("redis: simulated outage")
	}
	if stats, ok := cache.entries[channelID]; ok {
		copied := *stats
		return &copied, nil
	}
	return nil, apperr.NotFound("Channel stats cache entry")
}

func (cache *memoryStatsCache) Set(_ context.Context, channelID string, stats *Stats) error {
	cache.setCalls++
	copied := *stats
	cache.entries[channelID] = &copied
	return nil
}

// # Fixtures

func newTestChannelService() (*Service, *stubChannelRepository, *memoryStatsCache) {
	users := &stubUserLookup{
		user: &auth.User{
			ID:        "channel-1",
			Username:  "alice",
			Email:     "alice@example.com",
			FullName:  "Alice Lidell",
			AvatarURL: "https://cdn.mytube.app/media/avatar.png",
		},
	}
	channels := &stubChannelRepository{
		stats:      Stats{SubscribersCount: 42, ChannelSubscribedToCount: 7},
		subscribed: map[string]bool{"viewer-1": true},
	}
	cache := newMemoryStatsCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(users, channels, cache, logger), channels, cache
}

// # Channel Profiles

func TestGetProfile(t *testing.T) {
	t.Run("assembles identity and aggregates", func(t *testing.T) {
		service, _, _ := newTestChannelService()

		profile, err := service.GetProfile(context.Background(), "alice", "")
		require.NoError(t, err)

		assert.Equal(t, "alice", profile.Username)
		assert.Equal(t, 42, profile.SubscribersCount)
		assert.Equal(t, 7, profile.ChannelSubscribedToCount)
		assert.False(t, profile.IsSubscribed)
	})

	t.Run("username lookup is case-insensitive", func(t *testing.T) {
		service, _, _ := newTestChannelService()

		profile, err := service.GetProfile(context.Background(), "  ALICE  ", "")
		require.NoError(t, err)
		assert.Equal(t, "channel-1", profile.ID)
	})

	t.Run("blank username is a validation error", func(t *testing.T) {
		service, _, _ := newTestChannelService()

		_, err := service.GetProfile(context.Background(), "   ", "")

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})

	t.Run("unknown channel is not found", func(t *testing.T) {
		service, _, _ := newTestChannelService()

		_, err := service.GetProfile(context.Background(), "nobody", "")

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
		assert.Equal(t, "Channel not found", appError.Message)
	})

	t.Run("subscribed viewer sees the flag", func(t *testing.T) {
		service, _, _ := newTestChannelService()

		profile, err := service.GetProfile(context.Background(), "alice", "viewer-1")
		require.NoError(t, err)
		assert.True(t, profile.IsSubscribed)

		profile, err = service.GetProfile(context.Background(), "alice", "viewer-2")
		require.NoError(t, err)
		assert.False(t, profile.IsSubscribed)
	})

	t.Run("stats are served from cache after the first read", func(t *testing.T) {
		service, channels, cache := newTestChannelService()

		_, err := service.GetProfile(context.Background(), "alice", "")
		require.NoError(t, err)
		_, err = service.GetProfile(context.Background(), "alice", "")
		require.NoError(t, err)

		assert.Equal(t, 1, channels.statsCalls, "second read must hit the cache")
		assert.Equal(t, 1, cache.setCalls)
	})

	t.Run("cache outage degrades to the database", func(t *testing.T) {
		service, channels, cache := newTestChannelService()
		cache.failGet = true

		profile, err := service.GetProfile(context.Background(), "alice", "")
		require.NoError(t, err)

		assert.Equal(t, 42, profile.SubscribersCount)
		assert.Equal(t, 1, channels.statsCalls)
	})
}

// # Watch History

func TestWatchHistory(t *testing.T) {
	makeHistory := func(count int) []WatchedVideo {
		videos := make([]WatchedVideo, 0, count)
		for i := 0; i < count; i++ {
			videos = append(videos, WatchedVideo{
				ID:        fmt.Sprintf("video-%d", i),
				Title:     fmt.Sprintf("Video %d", i),
				Owner:     VideoOwner{Username: "alice", FullName: "Alice Lidell"},
				WatchedAt: time.Now().Add(-time.Duration(i) * time.Minute),
			})
		}
		return videos
	}

	t.Run("returns a page with metadata", func(t *testing.T) {
		service, channels, _ := newTestChannelService()
		channels.history = makeHistory(5)
		channels.historyTotal = 5

		videos, meta, err := service.WatchHistory(context.Background(), "viewer-1", pagination.Params{Page: 1, Limit: 3})
		require.NoError(t, err)

		assert.Len(t, videos, 3)
		assert.Equal(t, 5, meta.Total)
		assert.Equal(t, 2, meta.TotalPages)
		assert.Equal(t, "alice", videos[0].Owner.Username)
	})

	t.Run("second page picks up where the first ended", func(t *testing.T) {
		service, channels, _ := newTestChannelService()
		channels.history = makeHistory(5)
		channels.historyTotal = 5

		videos, _, err := service.WatchHistory(context.Background(), "viewer-1", pagination.Params{Page: 2, Limit: 3})
		require.NoError(t, err)

		require.Len(t, videos, 2)
		assert.Equal(t, "video-3", videos[0].ID)
	})

	t.Run("empty history yields an empty page", func(t *testing.T) {
		service, _, _ := newTestChannelService()

		videos, meta, err := service.WatchHistory(context.Background(), "viewer-1", pagination.Params{Page: 1, Limit: 20})
		require.NoError(t, err)

		assert.Empty(t, videos)
		assert.Equal(t, 0, meta.Total)
	})
}
