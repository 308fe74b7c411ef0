package service

import (
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/policy"
	"VidTube.com/pkg/storage"
	"VidTube.com/pkg/utils"
)

// load fetches and decodes a video, mapping absence to NotFound.
func (s *VideoService) load(videoID string) (*model.Video, error) {
	oid, err := utils.ParseID(videoID)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.FindByID(s.ctx, constants.VideoCollection, oid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.NotFoundErr.WithMessage("video doesn't exist")
	}
	video := new(model.Video)
	if err := storage.Decode(doc, video); err != nil {
		return nil, err
	}
	return video, nil
}

// Update edits title, description and optionally the thumbnail.
func (s *VideoService) Update(req *UpdateVideoRequest, actor primitive.ObjectID) (*model.Video, error) {
	if req.Title == "" || req.Description == "" {
		return nil, errno.ParamErr.WithMessage("title and description are both required")
	}

	video, err := s.load(req.VideoID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(video.Owner, actor) {
		return nil, errno.UnauthorizedErr
	}

	patch := bson.M{
		"title":       req.Title,
		"description": req.Description,
		"updatedAt":   time.Now(),
	}
	if req.ThumbnailPath != "" {
		thumbnailURL, err := s.uploader.UploadImage(s.ctx, req.ThumbnailPath)
		if err != nil {
			return nil, err
		}
		patch["thumbnail"] = thumbnailURL
	}

	doc, err := s.store.UpdateByID(s.ctx, constants.VideoCollection, video.ID, bson.M{"$set": patch})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.ServiceErr.WithMessage("something went wrong while updating the video")
	}

	updated := new(model.Video)
	if err := storage.Decode(doc, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the video and cascades: its comments, its likes, and its id
// in every playlist. The steps are not transactional; a cascade event lets
// the reconciler verify the cleanup.
func (s *VideoService) Delete(videoID string, actor primitive.ObjectID) error {
	video, err := s.load(videoID)
	if err != nil {
		return err
	}
	if !policy.CanMutate(video.Owner, actor) {
		return errno.UnauthorizedErr
	}

	deleted, err := s.store.DeleteByID(s.ctx, constants.VideoCollection, video.ID)
	if err != nil {
		return err
	}
	if deleted == nil {
		return errno.ServiceErr.WithMessage("something went wrong while deleting the video")
	}

	comments, err := s.store.DeleteMany(s.ctx, constants.CommentCollection, bson.M{"video": video.ID})
	if err != nil {
		return err
	}
	likes, err := s.store.DeleteMany(s.ctx, constants.LikeCollection, bson.M{"video": video.ID})
	if err != nil {
		return err
	}
	pulls, err := s.store.UpdateMany(s.ctx, constants.PlaylistCollection,
		bson.M{"videos": video.ID},
		bson.M{"$pull": bson.M{"videos": video.ID}})
	if err != nil {
		return err
	}

	s.invalidateStats(actor)
	s.publishCascade(video.ID, comments, likes, pulls)
	return nil
}

func (s *VideoService) publishCascade(videoID primitive.ObjectID, comments, likes, pulls int64) {
	if s.producer == nil {
		return
	}
	event := &mq.CascadeEvent{
		VideoID:         videoID.Hex(),
		DeletedComments: comments,
		DeletedLikes:    likes,
		PlaylistPulls:   pulls,
		Timestamp:       time.Now().Unix(),
		EventID:         uuid.New().String(),
	}
	if err := s.producer.PublishCascadeEvent(s.ctx, event); err != nil {
		hlog.CtxWarnf(s.ctx, "failed to publish cascade event for video %s: %v", videoID.Hex(), err)
	}
}

// TogglePublish flips the publication flag in one atomic update and returns
// the updated record.
func (s *VideoService) TogglePublish(videoID string, actor primitive.ObjectID) (*model.Video, error) {
	video, err := s.load(videoID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(video.Owner, actor) {
		return nil, errno.UnauthorizedErr
	}

	doc, err := s.store.UpdateByID(s.ctx, constants.VideoCollection, video.ID, bson.M{
		"$set": bson.M{
			"isPublished": !video.IsPublished,
			"updatedAt":   time.Now(),
		},
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.ServiceErr.WithMessage("something went wrong while toggling the status")
	}

	updated := new(model.Video)
	if err := storage.Decode(doc, updated); err != nil {
		return nil, err
	}
	s.invalidateStats(actor)
	return updated, nil
}
