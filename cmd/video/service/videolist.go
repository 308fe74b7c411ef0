package service

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/policy"
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/storage"
	"VidTube.com/pkg/utils"
	"github.com/pkg/errors"
)

// List runs the video feed query. An empty page is a valid empty result, not
// an error.
func (s *VideoService) List(req *ListVideosRequest, actor primitive.ObjectID) ([]storage.Document, error) {
	filters := bson.M{}

	ownerFilter := primitive.NilObjectID
	if req.UserID != "" {
		oid, err := utils.ParseID(req.UserID)
		if err != nil {
			return nil, err
		}
		ownerFilter = oid
		filters["owner"] = oid
	}

	// The builder is actor-agnostic; visibility is layered here. Listing
	// your own channel shows everything, any other view only published
	// videos (plus your own).
	if ownerFilter != actor {
		filters["$or"] = []bson.M{
			{"isPublished": true},
			{"owner": actor},
		}
	}

	order := -1
	if req.SortType == "asc" {
		order = 1
	}

	opts := query.Options{
		Filters:   filters,
		Search:    req.Query,
		SortBy:    req.SortBy,
		SortOrder: order,
		Page:      req.Page,
		Limit:     req.Limit,
	}

	docs, err := s.store.Aggregate(s.ctx, constants.VideoCollection, opts.Build())
	if err != nil {
		return nil, errors.WithMessage(err, "video list query failed")
	}
	return docs, nil
}

// GetByID returns a video visible to the actor. An existing but invisible
// video reports NotFound so that unpublished ids do not leak.
func (s *VideoService) GetByID(videoID string, actor primitive.ObjectID) (*model.Video, error) {
	oid, err := utils.ParseID(videoID)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.FindByID(s.ctx, constants.VideoCollection, oid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.NotFoundErr.WithMessage("video not found")
	}

	video := new(model.Video)
	if err := storage.Decode(doc, video); err != nil {
		return nil, err
	}
	if !policy.CanView(video.Owner, actor, video.IsPublished) {
		return nil, errno.NotFoundErr.WithMessage("video not found")
	}
	return video, nil
}
