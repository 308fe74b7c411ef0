package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"VidTube.com/cmd/interaction/service"
	jwt "VidTube.com/pkg"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/storage"
)

func commentService(ctx context.Context) *service.CommentService {
	return service.NewCommentService(ctx, storage.Store()).WithProducer(mq.DefaultProducer())
}

func ListComments(ctx context.Context, c *app.RequestContext) {
	var param ListCommentsParam
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

	docs, err := commentService(ctx).ListForVideo(&service.ListCommentsRequest{
		VideoID: c.Param("video_id"),
		Page:    param.Page,
		Limit:   param.Limit,
	}, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("comments fetched successfully"), docs)
}

func AddComment(ctx context.Context, c *app.RequestContext) {
	var param CommentContentParam
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

	comment, err := commentService(ctx).Add(c.Param("video_id"), param.Content, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("comment added successfully"), comment)
}

func UpdateComment(ctx context.Context, c *app.RequestContext) {
	var param CommentContentParam
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

	comment, err := commentService(ctx).Update(c.Param("comment_id"), param.Content, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("comment updated successfully"), comment)
}

func DeleteComment(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	if err := commentService(ctx).Delete(c.Param("comment_id"), actor); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("comment deleted successfully"), nil)
}
