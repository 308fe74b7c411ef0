package service

import (
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/storage"
)

// Publish uploads the media files and creates the video record. A published
// video defaults to visible.
func (s *VideoService) Publish(req *PublishVideoRequest, actor primitive.ObjectID) (*model.Video, error) {
	if req.Title == "" || req.Description == "" {
		return nil, errno.ParamErr.WithMessage("title and description are both required")
	}
	if req.VideoPath == "" {
		return nil, errno.ParamErr.WithMessage("video file is required")
	}

	up, err := s.uploader.UploadVideo(s.ctx, req.VideoPath)
	if err != nil {
		return nil, err
	}
	if up.URL == "" {
		return nil, errno.ParamErr.WithMessage("video URL is missing after upload")
	}

	thumbnailPath := req.ThumbnailPath
	if thumbnailPath == "" {
		// No explicit thumbnail: grab the first frame.
		dir, err := os.MkdirTemp("", "thumbnail")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)
		if thumbnailPath, err = oss.ExtractThumbnail(req.VideoPath, dir); err != nil {
			return nil, err
		}
	}
	thumbnailURL, err := s.uploader.UploadImage(s.ctx, thumbnailPath)
	if err != nil {
		return nil, err
	}
	if thumbnailURL == "" {
		return nil, errno.ParamErr.WithMessage("thumbnail URL is missing after upload")
	}

	now := time.Now()
	doc, err := s.store.Create(s.ctx, constants.VideoCollection, storage.Document{
		"owner":       actor,
		"title":       req.Title,
		"description": req.Description,
		"videoFile":   up.URL,
		"thumbnail":   thumbnailURL,
		"duration":    up.Duration,
		"views":       int64(0),
		"isPublished": true,
		"createdAt":   now,
		"updatedAt":   now,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(actor)

	video := new(model.Video)
	if err := storage.Decode(doc, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *VideoService) invalidateStats(owner primitive.ObjectID) {
	if s.stats == nil {
		return
	}
	if err := s.stats.InvalidateChannelStats(s.ctx, owner.Hex()); err != nil {
		hlog.CtxWarnf(s.ctx, "failed to invalidate channel stats for %s: %v", owner.Hex(), err)
	}
}
