package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"VidTube.com/cmd/dashboard/service"
	jwt "VidTube.com/pkg"
	"VidTube.com/pkg/cache"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/storage"
)

func statsCache() *cache.StatsCacheManager {
	client := cache.RedisClient()
	if client == nil {
		return nil
	}
	return cache.NewStatsCacheManager(client)
}

func GetChannelStats(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	stats, err := service.NewDashboardService(ctx, storage.Store()).
		WithStatsCache(statsCache()).
		ChannelStats(actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("channel stats fetched successfully"), stats)
}

func GetChannelVideos(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	docs, err := service.NewDashboardService(ctx, storage.Store()).ChannelVideos(actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("channel videos fetched successfully"), docs)
}

func ToggleSubscription(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	result, err := service.NewSubscriptionService(ctx, storage.Store()).
		WithStatsCache(statsCache()).
		Toggle(c.Param("channel_id"), actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	message := "subscribed successfully"
	if !result.Subscribed {
		message = "unsubscribed successfully"
	}
	SendResponse(c, errno.Success.WithMessage(message), result)
}
