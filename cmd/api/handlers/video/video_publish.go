package handlers

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"VidTube.com/cmd/video/service"
	jwt "VidTube.com/pkg"
	"VidTube.com/pkg/cache"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/storage"
)

// statsCache exposes the shared redis-backed stats cache to the video
// mutations, so the dashboard drops its cached totals when the channel
// changes. Nil (no invalidation) until redis is up.
func statsCache() service.StatsInvalidator {
	client := cache.RedisClient()
	if client == nil {
		return nil
	}
	return cache.NewStatsCacheManager(client)
}

// saveUpload spools a multipart file to dir and returns its local path.
// A missing file is reported as "", not an error; the service decides
// whether the file was mandatory.
func saveUpload(c *app.RequestContext, field, dir string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	local := filepath.Join(dir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, local); err != nil {
		return "", err
	}
	return local, nil
}

func PublishVideo(ctx context.Context, c *app.RequestContext) {
	var param PublishVideoParam
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

	dir, err := os.MkdirTemp("", "publish")
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	defer os.RemoveAll(dir)

	videoPath, err := saveUpload(c, "videoFile", dir)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	thumbnailPath, err := saveUpload(c, "thumbnail", dir)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	svc := service.NewVideoService(ctx, storage.Store()).
		WithUploader(oss.Default()).
		WithProducer(mq.DefaultProducer()).
		WithStatsCache(statsCache())
	video, err := svc.Publish(&service.PublishVideoRequest{
		Title:         param.Title,
		Description:   param.Description,
		VideoPath:     videoPath,
		ThumbnailPath: thumbnailPath,
	}, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("video published successfully"), video)
}
