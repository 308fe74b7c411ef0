package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"VidTube.com/cmd/tweet/service"
	jwt "VidTube.com/pkg"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/storage"
)

func CreateTweet(ctx context.Context, c *app.RequestContext) {
	var param TweetContentParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	tweet, err := service.NewTweetService(ctx, storage.Store()).Create(param.Content, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("tweet created successfully"), tweet)
}

func GetUserTweets(ctx context.Context, c *app.RequestContext) {
	var param ListTweetsParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	if _, err := jwt.GetActorID(ctx, c); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	docs, err := service.NewTweetService(ctx, storage.Store()).
		ListForUser(c.Param("user_id"), param.Page, param.Limit)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("tweets fetched successfully"), docs)
}

func UpdateTweet(ctx context.Context, c *app.RequestContext) {
	var param TweetContentParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	tweet, err := service.NewTweetService(ctx, storage.Store()).
		Update(c.Param("tweet_id"), param.Content, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("tweet updated successfully"), tweet)
}

func DeleteTweet(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	if err := service.NewTweetService(ctx, storage.Store()).Delete(c.Param("tweet_id"), actor); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("tweet deleted successfully"), nil)
}
