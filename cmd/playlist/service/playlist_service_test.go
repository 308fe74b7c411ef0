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

func seedVideo(t *testing.T, store *storage.MemoryClient, owner primitive.ObjectID, published bool) primitive.ObjectID {
	t.Helper()
	doc, err := store.Create(context.Background(), constants.VideoCollection, storage.Document{
		"owner":       owner,
		"title":       "a video",
		"description": "about something",
		"isPublished": published,
		"createdAt":   time.Now(),
		"updatedAt":   time.Now(),
	})
	if err != nil {
		t.Fatalf("seed video: %v", err)
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

func TestCreatePlaylist(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()
	svc := NewPlaylistService(ctx, store)

	t.Run("name is required", func(t *testing.T) {
		_, err := svc.Create("", "whatever", actor)
		if code := errCode(t, err); code != errno.ParamErrCode {
			t.Errorf("code = %d, want %d", code, errno.ParamErrCode)
		}
	})

	t.Run("a new playlist is empty and owned by the actor", func(t *testing.T) {
		playlist, err := svc.Create("watch later", "", actor)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if playlist.Owner != actor {
			t.Errorf("owner = %s, want %s", playlist.Owner.Hex(), actor.Hex())
		}
		if len(playlist.Videos) != 0 {
			t.Errorf("videos = %d, want 0", len(playlist.Videos))
		}
	})
}

func TestAddVideoIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()
	svc := NewPlaylistService(ctx, store)

	playlist, err := svc.Create("mix", "", actor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	videoID := seedVideo(t, store, primitive.NewObjectID(), true)

	for i := 0; i < 3; i++ {
		if _, err := svc.AddVideo(playlist.ID.Hex(), videoID.Hex(), actor); err != nil {
			t.Fatalf("add #%d: %v", i+1, err)
		}
	}

	doc, _ := store.FindByID(ctx, constants.PlaylistCollection, playlist.ID)
	videos, _ := doc["videos"].(primitive.A)
	if len(videos) != 1 {
		t.Errorf("videos = %d after repeated adds, want 1", len(videos))
	}
}

func TestAddVideoChecks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	svc := NewPlaylistService(ctx, store)

	playlist, err := svc.Create("mix", "", actor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("only the owner can add", func(t *testing.T) {
		videoID := seedVideo(t, store, primitive.NewObjectID(), true)
		_, err := svc.AddVideo(playlist.ID.Hex(), videoID.Hex(), stranger)
		if code := errCode(t, err); code != errno.UnauthorizedErrCode {
			t.Errorf("code = %d, want %d", code, errno.UnauthorizedErrCode)
		}
	})

	t.Run("an invisible video cannot be added", func(t *testing.T) {
		hidden := seedVideo(t, store, stranger, false)
		_, err := svc.AddVideo(playlist.ID.Hex(), hidden.Hex(), actor)
		if code := errCode(t, err); code != errno.NotFoundErrCode {
			t.Errorf("code = %d, want %d", code, errno.NotFoundErrCode)
		}
	})

	t.Run("your own unpublished video is fine", func(t *testing.T) {
		mine := seedVideo(t, store, actor, false)
		updated, err := svc.AddVideo(playlist.ID.Hex(), mine.Hex(), actor)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if len(updated.Videos) != 1 {
			t.Errorf("videos = %d, want 1", len(updated.Videos))
		}
	})
}

func TestRemoveVideo(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()
	svc := NewPlaylistService(ctx, store)

	t.Run("removing an absent reference mutates nothing", func(t *testing.T) {
		playlist, _ := svc.Create("mix", "", actor)
		inPlaylist := seedVideo(t, store, actor, true)
		svc.AddVideo(playlist.ID.Hex(), inPlaylist.Hex(), actor)
		other := seedVideo(t, store, actor, true)

		_, err := svc.RemoveVideo(playlist.ID.Hex(), other.Hex(), actor)
		if code := errCode(t, err); code != errno.NotFoundErrCode {
			t.Errorf("code = %d, want %d", code, errno.NotFoundErrCode)
		}
		doc, _ := store.FindByID(ctx, constants.PlaylistCollection, playlist.ID)
		videos, _ := doc["videos"].(primitive.A)
		if len(videos) != 1 {
			t.Errorf("videos = %d, want 1 (untouched)", len(videos))
		}
	})

	t.Run("removing a live reference reports a removal", func(t *testing.T) {
		playlist, _ := svc.Create("mix", "", actor)
		videoID := seedVideo(t, store, actor, true)
		svc.AddVideo(playlist.ID.Hex(), videoID.Hex(), actor)

		result, err := svc.RemoveVideo(playlist.ID.Hex(), videoID.Hex(), actor)
		if err != nil {
			t.Fatalf("remove: %v", err)
		}
		if !result.Removed || result.Stale {
			t.Errorf("result = %+v, want a plain removal", result)
		}
		if n := store.Count(constants.PlaylistCollection, bson.M{"videos": videoID}); n != 0 {
			t.Error("reference still present")
		}
	})

	t.Run("an unpublished video is dropped as a stale entry", func(t *testing.T) {
		playlist, _ := svc.Create("mix", "", actor)
		videoID := seedVideo(t, store, actor, false)
		svc.AddVideo(playlist.ID.Hex(), videoID.Hex(), actor)

		result, err := svc.RemoveVideo(playlist.ID.Hex(), videoID.Hex(), actor)
		if err != nil {
			t.Fatalf("remove: %v", err)
		}
		if !result.Stale || result.Removed {
			t.Errorf("result = %+v, want a stale correction", result)
		}
		if n := store.Count(constants.PlaylistCollection, bson.M{"videos": videoID}); n != 0 {
			t.Error("stale reference still present")
		}
	})

	t.Run("a dangling reference is repaired in every playlist", func(t *testing.T) {
		missing := primitive.NewObjectID()
		mine, _ := store.Create(ctx, constants.PlaylistCollection, storage.Document{
			"name": "mine", "owner": actor, "videos": []primitive.ObjectID{missing},
		})
		store.Create(ctx, constants.PlaylistCollection, storage.Document{
			"name": "theirs", "owner": primitive.NewObjectID(), "videos": []primitive.ObjectID{missing},
		})

		_, err := svc.RemoveVideo(mine["_id"].(primitive.ObjectID).Hex(), missing.Hex(), actor)
		if code := errCode(t, err); code != errno.NotFoundErrCode {
			t.Errorf("code = %d, want %d", code, errno.NotFoundErrCode)
		}
		if n := store.Count(constants.PlaylistCollection, bson.M{"videos": missing}); n != 0 {
			t.Errorf("%d playlists still hold the dangling reference", n)
		}
	})
}

func TestGetForUserChecksTheUser(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()
	svc := NewPlaylistService(ctx, store)

	_, err := svc.GetForUser(primitive.NewObjectID().Hex(), actor)
	if code := errCode(t, err); code != errno.NotFoundErrCode {
		t.Errorf("code = %d, want %d", code, errno.NotFoundErrCode)
	}
}

func TestGetByIDProjection(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()
	svc := NewPlaylistService(ctx, store)

	playlist, _ := svc.Create("mix", "", actor)
	store.SeedAggregate(constants.PlaylistCollection, []storage.Document{
		{"_id": playlist.ID, "name": "mix", "videos": primitive.A{}},
	})

	if _, err := svc.GetByID(playlist.ID.Hex(), actor); err != nil {
		t.Fatalf("get: %v", err)
	}

	call := store.AggregateCalls[len(store.AggregateCalls)-1]
	sawFilter := false
	for _, stage := range call.Stages {
		if stage[0].Key != "$project" {
			continue
		}
		project, ok := stage[0].Value.(bson.M)
		if !ok {
			continue
		}
		if cond, ok := project["videos"].(bson.M); ok {
			if _, ok := cond["$cond"]; ok {
				sawFilter = true
			}
		}
	}
	if !sawFilter {
		t.Error("projection never switches on ownership for the videos field")
	}
}
