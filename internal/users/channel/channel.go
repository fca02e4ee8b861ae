// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

/*
Package channel implements the public channel profile and watch history reads.

A channel is the outward-facing view of a user account: its identity fields
plus subscription aggregates. Watch history is the authenticated user's
chronological record of viewed videos.

# Architecture

Reads are served through a cache-aside layer: subscriber aggregates are
expensive correlated counts, so they are cached in Redis with a short TTL,
while the viewer-specific subscription flag is always computed fresh.
*/
package channel

import "time"

// # Domain Entities

// Profile is the public projection of a channel with its aggregates.
type Profile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	AvatarURL     string `json:"avatar"`
	CoverImageURL string `json:"coverImage,omitempty"`

	SubscribersCount         int  `json:"subscribersCount"`
	ChannelSubscribedToCount int  `json:"channelSubscribedToCount"`
	IsSubscribed             bool `json:"isSubscribed"`
}

// Stats holds the cacheable, viewer-independent subscription aggregates.
type Stats struct {
	SubscribersCount         int `json:"subscribersCount"`
	ChannelSubscribedToCount int `json:"channelSubscribedToCount"`
}

// VideoOwner is the denormalized owner block embedded in watch history items.
type VideoOwner struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// WatchedVideo is a single watch-history entry with its owner attached.
type WatchedVideo struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ThumbnailURL string     `json:"thumbnail"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	Owner        VideoOwner `json:"owner"`
	WatchedAt    time.Time  `json:"watchedAt"`
}

// # Field Identifiers

const (
	FieldChannelUsername = "username"
)
