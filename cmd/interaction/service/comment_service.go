package service

import (
	"context"
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
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/storage"
	"VidTube.com/pkg/utils"
)

type CommentService struct {
	ctx      context.Context
	store    storage.Client
	producer *mq.Producer
}

func NewCommentService(ctx context.Context, store storage.Client) *CommentService {
	return &CommentService{ctx: ctx, store: store}
}

func (s *CommentService) WithProducer(p *mq.Producer) *CommentService {
	s.producer = p
	return s
}

type ListCommentsRequest struct {
	VideoID string
	Page    int64
	Limit   int64
}

// loadParent fetches the parent video. A dangling reference is an invariant
// violation: every comment pointing at the missing video is purged before
// NotFound is reported.
func (s *CommentService) loadParent(videoID primitive.ObjectID) (*model.Video, error) {
	doc, err := s.store.FindByID(s.ctx, constants.VideoCollection, videoID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		s.purgeOrphans(videoID)
		return nil, errno.NotFoundErr.WithMessage("video doesn't exist; orphaned comments were removed")
	}
	video := new(model.Video)
	if err := storage.Decode(doc, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *CommentService) purgeOrphans(videoID primitive.ObjectID) {
	purged, err := s.store.DeleteMany(s.ctx, constants.CommentCollection, bson.M{"video": videoID})
	if err != nil {
		hlog.CtxErrorf(s.ctx, "failed to purge orphaned comments of video %s: %v", videoID.Hex(), err)
		return
	}
	if purged == 0 || s.producer == nil {
		return
	}
	event := &mq.RepairEvent{
		VideoID:        videoID.Hex(),
		PurgedComments: purged,
		Timestamp:      time.Now().Unix(),
		EventID:        uuid.New().String(),
	}
	if err := s.producer.PublishRepairEvent(s.ctx, event); err != nil {
		hlog.CtxWarnf(s.ctx, "failed to publish repair event for video %s: %v", videoID.Hex(), err)
	}
}

// ListForVideo pages through a video's comments with the commenter joined in.
func (s *CommentService) ListForVideo(req *ListCommentsRequest, actor primitive.ObjectID) ([]storage.Document, error) {
	videoID, err := utils.ParseID(req.VideoID)
	if err != nil {
		return nil, err
	}
	video, err := s.loadParent(videoID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(video.Owner, actor, video.IsPublished) {
		return nil, errno.NotFoundErr.WithMessage("video not found")
	}

	opts := query.Options{
		Filters: bson.M{"video": videoID},
		Page:    req.Page,
		Limit:   req.Limit,
		Lookups: []query.Lookup{{
			From:         constants.UserCollection,
			LocalField:   "owner",
			ForeignField: "_id",
			As:           "owner",
			Project:      []string{"username", "fullName", "avatar"},
			Unwind:       true,
		}},
	}
	docs, err := s.store.Aggregate(s.ctx, constants.CommentCollection, opts.Build())
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Add posts a comment under a video visible to the actor.
func (s *CommentService) Add(videoID, content string, actor primitive.ObjectID) (*model.Comment, error) {
	if content == "" {
		return nil, errno.ParamErr.WithMessage("comment content is required")
	}
	vid, err := utils.ParseID(videoID)
	if err != nil {
		return nil, err
	}
	video, err := s.loadParent(vid)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(video.Owner, actor, video.IsPublished) {
		return nil, errno.UnauthorizedErr.WithMessage("video is not visible")
	}

	now := time.Now()
	doc, err := s.store.Create(s.ctx, constants.CommentCollection, storage.Document{
		"video":     vid,
		"owner":     actor,
		"content":   content,
		"createdAt": now,
		"updatedAt": now,
	})
	if err != nil {
		return nil, err
	}
	comment := new(model.Comment)
	if err := storage.Decode(doc, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) loadComment(commentID string) (*model.Comment, error) {
	oid, err := utils.ParseID(commentID)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.FindByID(s.ctx, constants.CommentCollection, oid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.NotFoundErr.WithMessage("comment doesn't exist")
	}
	comment := new(model.Comment)
	if err := storage.Decode(doc, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update edits a comment's text. The actor must own the comment and the
// parent video must still be visible to them.
func (s *CommentService) Update(commentID, content string, actor primitive.ObjectID) (*model.Comment, error) {
	if content == "" {
		return nil, errno.ParamErr.WithMessage("new content is required to update the comment")
	}
	comment, err := s.loadComment(commentID)
	if err != nil {
		return nil, err
	}
	video, err := s.loadParent(comment.Video)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateViaParent(comment.Owner, video.Owner, video.IsPublished, actor) {
		return nil, errno.UnauthorizedErr
	}

	doc, err := s.store.UpdateByID(s.ctx, constants.CommentCollection, comment.ID, bson.M{
		"$set": bson.M{"content": content, "updatedAt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.ServiceErr.WithMessage("unable to update the comment")
	}

	updated := new(model.Comment)
	if err := storage.Decode(doc, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a comment under the same rules as Update.
func (s *CommentService) Delete(commentID string, actor primitive.ObjectID) error {
	comment, err := s.loadComment(commentID)
	if err != nil {
		return err
	}
	video, err := s.loadParent(comment.Video)
	if err != nil {
		return err
	}
	if !policy.CanMutateViaParent(comment.Owner, video.Owner, video.IsPublished, actor) {
		return errno.UnauthorizedErr
	}

	deleted, err := s.store.DeleteByID(s.ctx, constants.CommentCollection, comment.ID)
	if err != nil {
		return err
	}
	if deleted == nil {
		return errno.ServiceErr.WithMessage("unable to delete the comment")
	}
	return nil
}
