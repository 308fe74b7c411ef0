package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"VidTube.com/cmd/model"
)

// StatsCacheManager caches derived dashboard records so the multi-stage
// channel-stats aggregation does not run on every request.
type StatsCacheManager struct {
	client       *redis.Client
	statsExpire  time.Duration
	videosExpire time.Duration
}

func NewStatsCacheManager(client *redis.Client) *StatsCacheManager {
	return &StatsCacheManager{
		client:       client,
		statsExpire:  5 * time.Minute,
		videosExpire: 1 * time.Minute,
	}
}

const (
	// Channel stats cache key, keyed by owner id.
	ChannelStatsKey = "channel:stats:%s"
)

func (scm *StatsCacheManager) GetChannelStats(ctx context.Context, ownerID string) (*model.ChannelStats, error) {
	key := fmt.Sprintf(ChannelStatsKey, ownerID)
	data, err := scm.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached channel stats: %w", err)
	}

	stats := new(model.ChannelStats)
	if err := json.Unmarshal([]byte(data), stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached channel stats: %w", err)
	}
	return stats, nil
}

func (scm *StatsCacheManager) SetChannelStats(ctx context.Context, ownerID string, stats *model.ChannelStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal channel stats: %w", err)
	}
	key := fmt.Sprintf(ChannelStatsKey, ownerID)
	return scm.client.Set(ctx, key, data, scm.statsExpire).Err()
}

// InvalidateChannelStats drops the cached record after a mutation that
// changes the aggregates (publish, delete, like toggle on owned video).
func (scm *StatsCacheManager) InvalidateChannelStats(ctx context.Context, ownerID string) error {
	return scm.client.Del(ctx, fmt.Sprintf(ChannelStatsKey, ownerID)).Err()
}
