package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/locker"
	"VidTube.com/pkg/policy"
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/storage"
	"VidTube.com/pkg/utils"
)

// Like target kinds. Each maps to the field a Like stores its reference in
// and to the collection the target lives in.
const (
	TargetVideo   = "video"
	TargetComment = "comment"
	TargetTweet   = "tweet"
)

var targetCollections = map[string]string{
	TargetVideo:   constants.VideoCollection,
	TargetComment: constants.CommentCollection,
	TargetTweet:   constants.TweetCollection,
}

type LikeService struct {
	ctx    context.Context
	store  storage.Client
	locker locker.Locker
}

func NewLikeService(ctx context.Context, store storage.Client) *LikeService {
	return &LikeService{ctx: ctx, store: store}
}

func (s *LikeService) WithLocker(l locker.Locker) *LikeService {
	s.locker = l
	return s
}

// ToggleResult reports which way the toggle went.
type ToggleResult struct {
	Liked bool        `json:"liked"`
	Like  *model.Like `json:"like,omitempty"`
}

// Toggle creates a like for (actor, target) if absent and removes it if
// present. Toggles for the same pair are serialized through the locker so
// two racing requests cannot both insert; the store's unique index backs
// this up.
func (s *LikeService) Toggle(targetKind, targetID string, actor primitive.ObjectID) (*ToggleResult, error) {
	collection, ok := targetCollections[targetKind]
	if !ok {
		return nil, errno.ParamErr.WithMessage("invalid like target: " + targetKind)
	}
	oid, err := utils.ParseID(targetID)
	if err != nil {
		return nil, err
	}

	target, err := s.store.FindByID(s.ctx, collection, oid)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errno.NotFoundErr.WithMessage(targetKind + " not found")
	}
	// Visibility follows the video: an invisible video hides its likes and
	// the likes of its comments.
	switch targetKind {
	case TargetVideo:
		video := new(model.Video)
		if err := storage.Decode(target, video); err != nil {
			return nil, err
		}
		if !policy.CanView(video.Owner, actor, video.IsPublished) {
			return nil, errno.NotFoundErr.WithMessage("video not found")
		}
	case TargetComment:
		comment := new(model.Comment)
		if err := storage.Decode(target, comment); err != nil {
			return nil, err
		}
		parent, err := s.store.FindByID(s.ctx, constants.VideoCollection, comment.Video)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, errno.NotFoundErr.WithMessage("comment not found")
		}
		video := new(model.Video)
		if err := storage.Decode(parent, video); err != nil {
			return nil, err
		}
		if !policy.CanView(video.Owner, actor, video.IsPublished) {
			return nil, errno.NotFoundErr.WithMessage("comment not found")
		}
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(locker.ToggleKey(actor.Hex(), targetKind, targetID))
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	criteria := bson.M{targetKind: oid, "likedBy": actor}
	existing, err := s.store.FindOne(s.ctx, constants.LikeCollection, criteria)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		doc, err := s.store.Create(s.ctx, constants.LikeCollection, storage.Document{
			targetKind:  oid,
			"likedBy":   actor,
			"createdAt": time.Now(),
		})
		if err != nil {
			return nil, err
		}
		like := new(model.Like)
		if err := storage.Decode(doc, like); err != nil {
			return nil, err
		}
		return &ToggleResult{Liked: true, Like: like}, nil
	}

	removed, err := s.store.DeleteOne(s.ctx, constants.LikeCollection, criteria)
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, errno.ServiceErr.WithMessage("unable to remove the like")
	}
	return &ToggleResult{Liked: false}, nil
}

// LikedVideos returns the actor's liked, still-published videos flattened to
// {id, title, thumbnail, owner{username, avatar, fullName}}.
func (s *LikeService) LikedVideos(actor primitive.ObjectID) ([]storage.Document, error) {
	stages := []bson.D{
		query.Match(bson.M{
			"likedBy": actor,
			"video":   bson.M{"$exists": true},
		}),
		query.Lookup{
			From:         constants.VideoCollection,
			LocalField:   "video",
			ForeignField: "_id",
			As:           "likedVideo",
		}.Stage(),
		query.Unwind("$likedVideo", false),
		query.Match(bson.M{"likedVideo.isPublished": true}),
		query.Lookup{
			From:         constants.UserCollection,
			LocalField:   "likedVideo.owner",
			ForeignField: "_id",
			As:           "owner",
			Project:      []string{"username", "avatar", "fullName"},
		}.Stage(),
		query.Unwind("$owner", true),
		query.Project(bson.M{
			"_id":       "$likedVideo._id",
			"title":     "$likedVideo.title",
			"thumbnail": "$likedVideo.thumbnail",
			"owner": bson.M{
				"username": "$owner.username",
				"avatar":   "$owner.avatar",
				"fullName": "$owner.fullName",
			},
		}),
	}

	docs, err := s.store.Aggregate(s.ctx, constants.LikeCollection, stages)
	if err != nil {
		return nil, err
	}
	return docs, nil
}
