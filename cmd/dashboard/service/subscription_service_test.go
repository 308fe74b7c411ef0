package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/storage"
)

func seedUser(t *testing.T, store *storage.MemoryClient) primitive.ObjectID {
	t.Helper()
	doc, err := store.Create(context.Background(), constants.UserCollection, storage.Document{
		"username": "channel",
		"fullName": "A Channel",
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

func TestToggleSubscription(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()
	svc := NewSubscriptionService(ctx, store)

	t.Run("self-subscription is rejected", func(t *testing.T) {
		_, err := svc.Toggle(actor.Hex(), actor)
		if code := errCode(t, err); code != errno.ParamErrCode {
			t.Errorf("code = %d, want %d", code, errno.ParamErrCode)
		}
	})

	t.Run("unknown channel is NotFound", func(t *testing.T) {
		_, err := svc.Toggle(primitive.NewObjectID().Hex(), actor)
		if code := errCode(t, err); code != errno.NotFoundErrCode {
			t.Errorf("code = %d, want %d", code, errno.NotFoundErrCode)
		}
	})

	t.Run("toggle subscribes then unsubscribes", func(t *testing.T) {
		channel := seedUser(t, store)

		first, err := svc.Toggle(channel.Hex(), actor)
		if err != nil {
			t.Fatalf("first toggle: %v", err)
		}
		if !first.Subscribed || first.Subscription == nil {
			t.Fatalf("first toggle should subscribe, got %+v", first)
		}
		if n := store.Count(constants.SubscriptionCollection, bson.M{"subscriber": actor, "channel": channel}); n != 1 {
			t.Fatalf("subscriptions = %d, want 1", n)
		}

		second, err := svc.Toggle(channel.Hex(), actor)
		if err != nil {
			t.Fatalf("second toggle: %v", err)
		}
		if second.Subscribed {
			t.Error("second toggle should unsubscribe")
		}
		if n := store.Count(constants.SubscriptionCollection, bson.M{"subscriber": actor, "channel": channel}); n != 0 {
			t.Errorf("subscriptions = %d, want 0", n)
		}
	})
}
