package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/cache"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/storage"
	"VidTube.com/pkg/utils"
)

type SubscriptionService struct {
	ctx   context.Context
	store storage.Client
	stats *cache.StatsCacheManager
}

func NewSubscriptionService(ctx context.Context, store storage.Client) *SubscriptionService {
	return &SubscriptionService{ctx: ctx, store: store}
}

func (s *SubscriptionService) WithStatsCache(c *cache.StatsCacheManager) *SubscriptionService {
	s.stats = c
	return s
}

// SubscribeResult reports which way the toggle went.
type SubscribeResult struct {
	Subscribed   bool                `json:"subscribed"`
	Subscription *model.Subscription `json:"subscription,omitempty"`
}

// Toggle subscribes the actor to a channel if not yet subscribed, otherwise
// unsubscribes. Subscribing to yourself is rejected.
func (s *SubscriptionService) Toggle(channelID string, actor primitive.ObjectID) (*SubscribeResult, error) {
	channel, err := utils.ParseID(channelID)
	if err != nil {
		return nil, err
	}
	if channel == actor {
		return nil, errno.ParamErr.WithMessage("cannot subscribe to your own channel")
	}

	user, err := s.store.FindByID(s.ctx, constants.UserCollection, channel)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errno.NotFoundErr.WithMessage("channel not found")
	}

	criteria := bson.M{"subscriber": actor, "channel": channel}
	existing, err := s.store.FindOne(s.ctx, constants.SubscriptionCollection, criteria)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		doc, err := s.store.Create(s.ctx, constants.SubscriptionCollection, storage.Document{
			"subscriber": actor,
			"channel":    channel,
			"createdAt":  time.Now(),
		})
		if err != nil {
			return nil, err
		}
		sub := new(model.Subscription)
		if err := storage.Decode(doc, sub); err != nil {
			return nil, err
		}
		s.invalidateStats(channel)
		return &SubscribeResult{Subscribed: true, Subscription: sub}, nil
	}

	removed, err := s.store.DeleteOne(s.ctx, constants.SubscriptionCollection, criteria)
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, errno.ServiceErr.WithMessage("unable to remove the subscription")
	}
	s.invalidateStats(channel)
	return &SubscribeResult{Subscribed: false}, nil
}

func (s *SubscriptionService) invalidateStats(channel primitive.ObjectID) {
	if s.stats == nil {
		return
	}
	_ = s.stats.InvalidateChannelStats(s.ctx, channel.Hex())
}
