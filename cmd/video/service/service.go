package service

import (
	"context"

	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/storage"
)

// StatsInvalidator drops a channel's cached dashboard totals after a mutation
// that changes them. Satisfied by cache.StatsCacheManager.
type StatsInvalidator interface {
	InvalidateChannelStats(ctx context.Context, ownerID string) error
}

type VideoService struct {
	ctx      context.Context
	store    storage.Client
	uploader oss.Uploader
	producer *mq.Producer
	stats    StatsInvalidator
}

func NewVideoService(ctx context.Context, store storage.Client) *VideoService {
	return &VideoService{ctx: ctx, store: store}
}

func (s *VideoService) WithUploader(u oss.Uploader) *VideoService {
	s.uploader = u
	return s
}

func (s *VideoService) WithProducer(p *mq.Producer) *VideoService {
	s.producer = p
	return s
}

func (s *VideoService) WithStatsCache(c StatsInvalidator) *VideoService {
	s.stats = c
	return s
}

type ListVideosRequest struct {
	Query    string `query:"query"`
	SortBy   string `query:"sort_by"`
	SortType string `query:"sort_type"`
	UserID   string `query:"user_id"`
	Page     int64  `query:"page"`
	Limit    int64  `query:"limit"`
}

type PublishVideoRequest struct {
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
}

type UpdateVideoRequest struct {
	VideoID       string
	Title         string
	Description   string
	ThumbnailPath string
}
