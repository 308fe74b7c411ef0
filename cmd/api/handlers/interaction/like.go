package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"VidTube.com/cmd/interaction/service"
	jwt "VidTube.com/pkg"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/locker"
	"VidTube.com/pkg/storage"
)

func likeService(ctx context.Context) *service.LikeService {
	return service.NewLikeService(ctx, storage.Store()).WithLocker(locker.Default())
}

func toggleLike(ctx context.Context, c *app.RequestContext, kind, id string) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	result, err := likeService(ctx).Toggle(kind, id, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	message := "liked successfully"
	if !result.Liked {
		message = "like removed successfully"
	}
	SendResponse(c, errno.Success.WithMessage(message), result)
}

func ToggleVideoLike(ctx context.Context, c *app.RequestContext) {
	toggleLike(ctx, c, service.TargetVideo, c.Param("video_id"))
}

func ToggleCommentLike(ctx context.Context, c *app.RequestContext) {
	toggleLike(ctx, c, service.TargetComment, c.Param("comment_id"))
}

func ToggleTweetLike(ctx context.Context, c *app.RequestContext) {
	toggleLike(ctx, c, service.TargetTweet, c.Param("tweet_id"))
}

func GetLikedVideos(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	docs, err := likeService(ctx).LikedVideos(actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("liked videos fetched successfully"), docs)
}
