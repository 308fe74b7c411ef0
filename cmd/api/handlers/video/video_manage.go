package handlers

import (
	"context"
	"os"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"VidTube.com/cmd/video/service"
	jwt "VidTube.com/pkg"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/storage"
)

func UpdateVideo(ctx context.Context, c *app.RequestContext) {
	var param UpdateVideoParam
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

	dir, err := os.MkdirTemp("", "update")
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	defer os.RemoveAll(dir)

	thumbnailPath, err := saveUpload(c, "thumbnail", dir)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	svc := service.NewVideoService(ctx, storage.Store()).WithUploader(oss.Default())
	video, err := svc.Update(&service.UpdateVideoRequest{
		VideoID:       c.Param("video_id"),
		Title:         param.Title,
		Description:   param.Description,
		ThumbnailPath: thumbnailPath,
	}, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("video updated successfully"), video)
}

func DeleteVideo(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	svc := service.NewVideoService(ctx, storage.Store()).
		WithProducer(mq.DefaultProducer()).
		WithStatsCache(statsCache())
	if err := svc.Delete(c.Param("video_id"), actor); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("video deleted successfully"), nil)
}

func TogglePublishStatus(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	video, err := service.NewVideoService(ctx, storage.Store()).
		WithStatsCache(statsCache()).
		TogglePublish(c.Param("video_id"), actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("publish status toggled successfully"), video)
}
