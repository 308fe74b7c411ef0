package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/policy"
	"VidTube.com/pkg/query"
	"VidTube.com/pkg/storage"
	"VidTube.com/pkg/utils"
)

type TweetService struct {
	ctx   context.Context
	store storage.Client
}

func NewTweetService(ctx context.Context, store storage.Client) *TweetService {
	return &TweetService{ctx: ctx, store: store}
}

// Create posts a tweet owned by the actor.
func (s *TweetService) Create(content string, actor primitive.ObjectID) (*model.Tweet, error) {
	if content == "" {
		return nil, errno.ParamErr.WithMessage("content is required to tweet")
	}

	now := time.Now()
	doc, err := s.store.Create(s.ctx, constants.TweetCollection, storage.Document{
		"owner":     actor,
		"content":   content,
		"createdAt": now,
		"updatedAt": now,
	})
	if err != nil {
		return nil, err
	}

	tweet := new(model.Tweet)
	if err := storage.Decode(doc, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

// ListForUser returns a user's tweets, newest first. No tweets is a valid
// empty result.
func (s *TweetService) ListForUser(userID string, page, limit int64) ([]storage.Document, error) {
	oid, err := utils.ParseID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindByID(s.ctx, constants.UserCollection, oid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errno.NotFoundErr.WithMessage("user not found")
	}

	opts := query.Options{
		Filters: bson.M{"owner": oid},
		Page:    page,
		Limit:   limit,
	}
	return s.store.Aggregate(s.ctx, constants.TweetCollection, opts.Build())
}

func (s *TweetService) load(tweetID string) (*model.Tweet, error) {
	oid, err := utils.ParseID(tweetID)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.FindByID(s.ctx, constants.TweetCollection, oid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.NotFoundErr.WithMessage("tweet doesn't exist")
	}
	tweet := new(model.Tweet)
	if err := storage.Decode(doc, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

// Update edits a tweet's content; owner only.
func (s *TweetService) Update(tweetID, content string, actor primitive.ObjectID) (*model.Tweet, error) {
	if content == "" {
		return nil, errno.ParamErr.WithMessage("content is required to update the tweet")
	}
	tweet, err := s.load(tweetID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(tweet.Owner, actor) {
		return nil, errno.UnauthorizedErr
	}

	doc, err := s.store.UpdateByID(s.ctx, constants.TweetCollection, tweet.ID, bson.M{
		"$set": bson.M{"content": content, "updatedAt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.ServiceErr.WithMessage("unable to update the tweet")
	}

	updated := new(model.Tweet)
	if err := storage.Decode(doc, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a tweet; owner only.
func (s *TweetService) Delete(tweetID string, actor primitive.ObjectID) error {
	tweet, err := s.load(tweetID)
	if err != nil {
		return err
	}
	if !policy.CanMutate(tweet.Owner, actor) {
		return errno.UnauthorizedErr
	}

	deleted, err := s.store.DeleteByID(s.ctx, constants.TweetCollection, tweet.ID)
	if err != nil {
		return err
	}
	if deleted == nil {
		return errno.ServiceErr.WithMessage("unable to delete the tweet")
	}

	// A tweet's likes go with it.
	if _, err := s.store.DeleteMany(s.ctx, constants.LikeCollection, bson.M{"tweet": tweet.ID}); err != nil {
		return err
	}
	return nil
}
