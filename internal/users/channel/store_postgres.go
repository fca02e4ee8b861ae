// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package channel

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// # Channel Repository

// PostgresChannelRepository implements the ChannelRepository interface using pgx.
type PostgresChannelRepository struct {
	pool *pgxpool.Pool
}

// NewChannelRepository creates a new PostgreSQL implementation of the ChannelRepository.
func NewChannelRepository(pool *pgxpool.Pool) *PostgresChannelRepository {
	return &PostgresChannelRepository{pool: pool}
}

/*
Stats computes both subscription aggregates for a channel in one round trip.

Description: SubscribersCount counts rows where the channel is the target;
ChannelSubscribedToCount counts rows where the channel itself is the subscriber.

Parameters:
  - context: context.Context
  - channelID: string

Returns:
  - *Stats: Freshly computed aggregates
  - error: Execution failures
*/
func (repository *PostgresChannelRepository) Stats(context context.Context, channelID string) (*Stats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM users.subscription WHERE channelid = $1),
			(SELECT COUNT(*) FROM users.subscription WHERE subscriberid = $1)`

	stats := &Stats{}
	err := repository.pool.QueryRow(context, query, channelID).Scan(
		&stats.SubscribersCount,
		&stats.ChannelSubscribedToCount,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres_channel_repo_stats_failed: %w", err)
	}

	return stats, nil
}

/*
IsSubscribed reports whether viewerID has an active subscription to channelID.

Parameters:
  - context: context.Context
  - viewerID: string
  - channelID: string

Returns:
  - bool: Subscription flag
  - error: Execution failures
*/
func (repository *PostgresChannelRepository) IsSubscribed(context context.Context, viewerID, channelID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM users.subscription
			WHERE subscriberid = $1 AND channelid = $2
		)`

	var subscribed bool
	if err := repository.pool.QueryRow(context, query, viewerID, channelID).Scan(&subscribed); err != nil {
		return false, fmt.Errorf("postgres_channel_repo_is_subscribed_failed: %w", err)
	}

	return subscribed, nil
}

/*
WatchHistory returns one page of the user's watched videos, newest first.

Description: Joins the history table to the video catalogue and each video's
owner account, so the response carries the denormalized owner block without a
second query. The total count drives pagination metadata.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int
  - offset: int

Returns:
  - []WatchedVideo: Page of entries
  - int: Total history size
  - error: Execution failures
*/
func (repository *PostgresChannelRepository) WatchHistory(context context.Context, userID string, limit, offset int) ([]WatchedVideo, int, error) {
	const countQuery = `SELECT COUNT(*) FROM users.watchhistory WHERE userid = $1`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_channel_repo_history_count_failed: %w", err)
	}

	const query = `
		SELECT
			video.id, video.title, video.description, video.thumbnailurl,
			video.duration, video.views,
			owner.username, owner.fullname, owner.avatarurl,
			history.watchedat
		FROM users.watchhistory AS history
		JOIN content.video AS video ON video.id = history.videoid
		JOIN users.account AS owner ON owner.id = video.ownerid
		WHERE history.userid = $1
		ORDER BY history.watchedat DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_channel_repo_history_query_failed: %w", err)
	}
	defer rows.Close()

	videos := make([]WatchedVideo, 0, limit)
	for rows.Next() {
		var video WatchedVideo
		err := rows.Scan(
			&video.ID,
			&video.Title,
			&video.Description,
			&video.ThumbnailURL,
			&video.Duration,
			&video.Views,
			&video.Owner.Username,
			&video.Owner.FullName,
			&video.Owner.Avatar,
			&video.WatchedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_channel_repo_history_scan_failed: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_channel_repo_history_rows_failed: %w", err)
	}

	return videos, total, nil
}
