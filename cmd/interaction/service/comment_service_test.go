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

func seedComment(t *testing.T, store *storage.MemoryClient, video, owner primitive.ObjectID) primitive.ObjectID {
	t.Helper()
	doc, err := store.Create(context.Background(), constants.CommentCollection, storage.Document{
		"video":     video,
		"owner":     owner,
		"content":   "first",
		"createdAt": time.Now(),
		"updatedAt": time.Now(),
	})
	if err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	return doc["_id"].(primitive.ObjectID)
}

func TestAddCommentVisibility(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	svc := NewCommentService(ctx, store)

	t.Run("content is required", func(t *testing.T) {
		videoID := seedVideo(t, store, owner, true)
		_, err := svc.Add(videoID.Hex(), "", stranger)
		if code := errCode(t, err); code != errno.ParamErrCode {
			t.Errorf("code = %d, want %d", code, errno.ParamErrCode)
		}
	})

	t.Run("anyone can comment on a published video", func(t *testing.T) {
		videoID := seedVideo(t, store, owner, true)
		comment, err := svc.Add(videoID.Hex(), "nice", stranger)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if comment.Owner != stranger {
			t.Errorf("comment owner = %s, want %s", comment.Owner.Hex(), stranger.Hex())
		}
	})

	t.Run("an unpublished video only takes the owner's comments", func(t *testing.T) {
		hidden := seedVideo(t, store, owner, false)
		if _, err := svc.Add(hidden.Hex(), "mine", owner); err != nil {
			t.Fatalf("owner's comment rejected: %v", err)
		}
		_, err := svc.Add(hidden.Hex(), "sneaky", stranger)
		if code := errCode(t, err); code != errno.UnauthorizedErrCode {
			t.Errorf("code = %d, want %d", code, errno.UnauthorizedErrCode)
		}
	})
}

func TestOrphanedCommentsArePurged(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	missing := primitive.NewObjectID()
	commenter := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		seedComment(t, store, missing, commenter)
	}
	liveVideo := seedVideo(t, store, primitive.NewObjectID(), true)
	kept := seedComment(t, store, liveVideo, commenter)

	svc := NewCommentService(ctx, store)

	t.Run("listing under a missing video purges its comments", func(t *testing.T) {
		_, err := svc.ListForVideo(&ListCommentsRequest{VideoID: missing.Hex()}, commenter)
		if code := errCode(t, err); code != errno.NotFoundErrCode {
			t.Fatalf("code = %d, want %d", code, errno.NotFoundErrCode)
		}
		if n := store.Count(constants.CommentCollection, bson.M{"video": missing}); n != 0 {
			t.Errorf("%d orphaned comments survived the purge", n)
		}
		if n := store.Count(constants.CommentCollection, bson.M{"_id": kept}); n != 1 {
			t.Errorf("a healthy comment was purged")
		}
	})

	t.Run("updating a comment whose video was deleted purges too", func(t *testing.T) {
		videoID := seedVideo(t, store, primitive.NewObjectID(), true)
		orphan := seedComment(t, store, videoID, commenter)
		sibling := seedComment(t, store, videoID, commenter)
		if _, err := store.DeleteByID(ctx, constants.VideoCollection, videoID); err != nil {
			t.Fatalf("delete video: %v", err)
		}

		_, err := svc.Update(orphan.Hex(), "edit into the void", commenter)
		if code := errCode(t, err); code != errno.NotFoundErrCode {
			t.Fatalf("code = %d, want %d", code, errno.NotFoundErrCode)
		}
		if n := store.Count(constants.CommentCollection, bson.M{"video": videoID}); n != 0 {
			t.Errorf("%d orphaned comments survived the purge, including %s and %s",
				n, orphan.Hex(), sibling.Hex())
		}
	})
}

func TestCommentMutationRules(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	videoOwner := primitive.NewObjectID()
	commenter := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	videoID := seedVideo(t, store, videoOwner, true)
	commentID := seedComment(t, store, videoID, commenter)

	svc := NewCommentService(ctx, store)

	t.Run("the commenter can edit", func(t *testing.T) {
		updated, err := svc.Update(commentID.Hex(), "edited", commenter)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Content != "edited" {
			t.Errorf("content = %q, want %q", updated.Content, "edited")
		}
	})

	t.Run("neither the video owner nor a stranger can edit", func(t *testing.T) {
		for _, actor := range []primitive.ObjectID{videoOwner, stranger} {
			_, err := svc.Update(commentID.Hex(), "hijack", actor)
			if code := errCode(t, err); code != errno.UnauthorizedErrCode {
				t.Errorf("code = %d, want %d", code, errno.UnauthorizedErrCode)
			}
		}
	})

	t.Run("a stranger cannot delete", func(t *testing.T) {
		err := svc.Delete(commentID.Hex(), stranger)
		if code := errCode(t, err); code != errno.UnauthorizedErrCode {
			t.Errorf("code = %d, want %d", code, errno.UnauthorizedErrCode)
		}
	})

	t.Run("the commenter can delete", func(t *testing.T) {
		if err := svc.Delete(commentID.Hex(), commenter); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if n := store.Count(constants.CommentCollection, bson.M{"_id": commentID}); n != 0 {
			t.Error("comment still present")
		}
	})
}
