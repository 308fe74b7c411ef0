package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/storage"
)

func seedUser(t *testing.T, store *storage.MemoryClient) primitive.ObjectID {
	t.Helper()
	doc, err := store.Create(context.Background(), constants.UserCollection, storage.Document{
		"username": "someone",
		"fullName": "Some One",
		"avatar":   "http://files/avatar.png",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return doc["_id"].(primitive.ObjectID)
}

func errCode(t *testing.T, err error) int64 {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return errno.ConvertErr(err).ErrCode
}

func TestCreateTweet(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()
	svc := NewTweetService(ctx, store)

	t.Run("content is required", func(t *testing.T) {
		_, err := svc.Create("", actor)
		if code := errCode(t, err); code != errno.ParamErrCode {
			t.Errorf("code = %d, want %d", code, errno.ParamErrCode)
		}
	})

	t.Run("the tweet is owned by the actor", func(t *testing.T) {
		tweet, err := svc.Create("hello", actor)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if tweet.Owner != actor {
			t.Errorf("owner = %s, want %s", tweet.Owner.Hex(), actor.Hex())
		}
		if tweet.Content != "hello" {
			t.Errorf("content = %q, want %q", tweet.Content, "hello")
		}
	})
}

func TestListForUserChecksTheUser(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	svc := NewTweetService(ctx, store)

	t.Run("unknown user is NotFound", func(t *testing.T) {
		_, err := svc.ListForUser(primitive.NewObjectID().Hex(), 1, 10)
		if code := errCode(t, err); code != errno.NotFoundErrCode {
			t.Errorf("code = %d, want %d", code, errno.NotFoundErrCode)
		}
	})

	t.Run("a user with no tweets is an empty page", func(t *testing.T) {
		userID := seedUser(t, store)
		docs, err := svc.ListForUser(userID.Hex(), 1, 10)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("docs = %d, want 0", len(docs))
		}
	})
}

func TestTweetMutationRules(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	svc := NewTweetService(ctx, store)

	tweet, err := svc.Create("original", actor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("a stranger cannot edit", func(t *testing.T) {
		_, err := svc.Update(tweet.ID.Hex(), "hijack", stranger)
		if code := errCode(t, err); code != errno.UnauthorizedErrCode {
			t.Errorf("code = %d, want %d", code, errno.UnauthorizedErrCode)
		}
	})

	t.Run("the owner can edit", func(t *testing.T) {
		updated, err := svc.Update(tweet.ID.Hex(), "edited", actor)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Content != "edited" {
			t.Errorf("content = %q, want %q", updated.Content, "edited")
		}
	})

	t.Run("delete takes the tweet's likes with it", func(t *testing.T) {
		store.Create(ctx, constants.LikeCollection, storage.Document{"tweet": tweet.ID, "likedBy": stranger, "createdAt": time.Now()})
		if err := svc.Delete(tweet.ID.Hex(), actor); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if n := store.Count(constants.TweetCollection, bson.M{"_id": tweet.ID}); n != 0 {
			t.Error("tweet still present")
		}
		if n := store.Count(constants.LikeCollection, bson.M{"tweet": tweet.ID}); n != 0 {
			t.Error("tweet likes survived the delete")
		}
	})
}
