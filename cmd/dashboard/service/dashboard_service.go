package service

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/cache"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/storage"
)

type DashboardService struct {
	ctx   context.Context
	store storage.Client
	stats *cache.StatsCacheManager
}

func NewDashboardService(ctx context.Context, store storage.Client) *DashboardService {
	return &DashboardService{ctx: ctx, store: store}
}

func (s *DashboardService) WithStatsCache(c *cache.StatsCacheManager) *DashboardService {
	s.stats = c
	return s
}

// ChannelStats aggregates the actor's channel totals in a single pipeline:
// every owned video is joined with its likes and the channel's subscriptions,
// then folded into one record. A channel with no videos gets zeroed totals.
func (s *DashboardService) ChannelStats(actor primitive.ObjectID) (*model.ChannelStats, error) {
	if s.stats != nil {
		cached, err := s.stats.GetChannelStats(s.ctx, actor.Hex())
		if err != nil {
			hlog.CtxWarnf(s.ctx, "channel stats cache read failed for %s: %v", actor.Hex(), err)
		} else if cached != nil {
			return cached, nil
		}
	}

	stages := []bson.D{
		query.Match(bson.M{"owner": actor}),
		query.Lookup{
			From:         constants.LikeCollection,
			LocalField:   "_id",
			ForeignField: "video",
			As:           "likes",
		}.Stage(),
		query.Lookup{
			From:         constants.SubscriptionCollection,
			LocalField:   "owner",
			ForeignField: "channel",
			As:           "subscribers",
		}.Stage(),
		query.Group(bson.M{
			"_id":              nil,
			"totalVideos":      bson.M{"$sum": 1},
			"totalViews":       bson.M{"$sum": "$views"},
			"totalSubscribers": bson.M{"$first": bson.M{"$size": "$subscribers"}},
			"totalLikes":       bson.M{"$sum": bson.M{"$size": "$likes"}},
		}),
	}

	docs, err := s.store.Aggregate(s.ctx, constants.VideoCollection, stages)
	if err != nil {
		return nil, err
	}

	stats := new(model.ChannelStats)
	if len(docs) > 0 {
		if err := storage.Decode(docs[0], stats); err != nil {
			return nil, err
		}
	}

	if s.stats != nil {
		if err := s.stats.SetChannelStats(s.ctx, actor.Hex(), stats); err != nil {
			hlog.CtxWarnf(s.ctx, "channel stats cache write failed for %s: %v", actor.Hex(), err)
		}
	}
	return stats, nil
}

// ChannelVideos returns every video the actor owns, published or not,
// newest first.
func (s *DashboardService) ChannelVideos(actor primitive.ObjectID) ([]storage.Document, error) {
	stages := []bson.D{
		query.Match(bson.M{"owner": actor}),
		query.Sort(constants.DefaultSortField, -1),
	}
	return s.store.Aggregate(s.ctx, constants.VideoCollection, stages)
}
