package service

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/storage"
)

func TestChannelStatsEmptyChannel(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()

	stats, err := NewDashboardService(ctx, store).ChannelStats(actor)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVideos != 0 || stats.TotalViews != 0 || stats.TotalSubscribers != 0 || stats.TotalLikes != 0 {
		t.Errorf("empty channel stats = %+v, want all zeroes", stats)
	}
}

func TestChannelStatsPipeline(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()

	store.SeedAggregate(constants.VideoCollection, []storage.Document{
		{"totalVideos": int64(2), "totalViews": int64(40), "totalSubscribers": int64(3), "totalLikes": int64(7)},
	})

	stats, err := NewDashboardService(ctx, store).ChannelStats(actor)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVideos != 2 || stats.TotalViews != 40 || stats.TotalSubscribers != 3 || stats.TotalLikes != 7 {
		t.Errorf("stats = %+v", stats)
	}

	if len(store.AggregateCalls) != 1 {
		t.Fatalf("aggregate calls = %d, want 1", len(store.AggregateCalls))
	}
	call := store.AggregateCalls[0]
	if call.Collection != constants.VideoCollection {
		t.Errorf("pipeline ran on %q, want %q", call.Collection, constants.VideoCollection)
	}

	// match on the owner first, group last; likes are summed per video, never
	// taken from a single row.
	if call.Stages[0][0].Key != "$match" {
		t.Fatalf("first stage = %q, want $match", call.Stages[0][0].Key)
	}
	match := call.Stages[0][0].Value.(bson.M)
	if match["owner"] != actor {
		t.Errorf("match owner = %v, want %v", match["owner"], actor)
	}

	last := call.Stages[len(call.Stages)-1]
	if last[0].Key != "$group" {
		t.Fatalf("last stage = %q, want $group", last[0].Key)
	}
	group := last[0].Value.(bson.M)
	likes, ok := group["totalLikes"].(bson.M)
	if !ok {
		t.Fatal("group has no totalLikes accumulator")
	}
	if _, ok := likes["$sum"]; !ok {
		t.Error("totalLikes is not a $sum accumulator")
	}
}

func TestChannelVideosIncludeUnpublished(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryClient()
	actor := primitive.NewObjectID()

	store.SeedAggregate(constants.VideoCollection, []storage.Document{
		{"title": "published", "isPublished": true},
		{"title": "draft", "isPublished": false},
	})

	docs, err := NewDashboardService(ctx, store).ChannelVideos(actor)
	if err != nil {
		t.Fatalf("videos: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}

	// The dashboard shows drafts too: the pipeline may filter on the owner
	// only, never on the publish flag.
	call := store.AggregateCalls[len(store.AggregateCalls)-1]
	for _, stage := range call.Stages {
		if stage[0].Key != "$match" {
			continue
		}
		m := stage[0].Value.(bson.M)
		if _, ok := m["isPublished"]; ok {
			t.Error("dashboard pipeline filters on isPublished")
		}
		if m["owner"] != actor {
			t.Errorf("match owner = %v, want %v", m["owner"], actor)
		}
	}
}
