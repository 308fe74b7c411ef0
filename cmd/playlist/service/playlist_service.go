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

type PlaylistService struct {
	ctx   context.Context
	store storage.Client
}

func NewPlaylistService(ctx context.Context, store storage.Client) *PlaylistService {
	return &PlaylistService{ctx: ctx, store: store}
}

// Create makes an empty playlist. Only the name is mandatory.
func (s *PlaylistService) Create(name, description string, actor primitive.ObjectID) (*model.Playlist, error) {
	if name == "" {
		return nil, errno.ParamErr.WithMessage("name is required to create the playlist")
	}

	now := time.Now()
	doc, err := s.store.Create(s.ctx, constants.PlaylistCollection, storage.Document{
		"name":        name,
		"description": description,
		"owner":       actor,
		"videos":      []primitive.ObjectID{},
		"createdAt":   now,
		"updatedAt":   now,
	})
	if err != nil {
		return nil, err
	}

	playlist := new(model.Playlist)
	if err := storage.Decode(doc, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) load(playlistID string) (*model.Playlist, error) {
	oid, err := utils.ParseID(playlistID)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.FindByID(s.ctx, constants.PlaylistCollection, oid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.NotFoundErr.WithMessage("playlist doesn't exist")
	}
	playlist := new(model.Playlist)
	if err := storage.Decode(doc, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Update renames a playlist; owner only, both fields required.
func (s *PlaylistService) Update(playlistID, name, description string, actor primitive.ObjectID) (*model.Playlist, error) {
	if name == "" || description == "" {
		return nil, errno.ParamErr.WithMessage("name and description are both required")
	}
	playlist, err := s.load(playlistID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(playlist.Owner, actor) {
		return nil, errno.UnauthorizedErr
	}

	doc, err := s.store.UpdateByID(s.ctx, constants.PlaylistCollection, playlist.ID, bson.M{
		"$set": bson.M{"name": name, "description": description, "updatedAt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errno.ServiceErr.WithMessage("unable to update the playlist")
	}

	updated := new(model.Playlist)
	if err := storage.Decode(doc, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the playlist; owner only.
func (s *PlaylistService) Delete(playlistID string, actor primitive.ObjectID) error {
	playlist, err := s.load(playlistID)
	if err != nil {
		return err
	}
	if !policy.CanMutate(playlist.Owner, actor) {
		return errno.UnauthorizedErr
	}

	deleted, err := s.store.DeleteByID(s.ctx, constants.PlaylistCollection, playlist.ID)
	if err != nil {
		return err
	}
	if deleted == nil {
		return errno.ServiceErr.WithMessage("unable to delete the playlist")
	}
	return nil
}

func containsVideo(videos []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range videos {
		if v == id {
			return true
		}
	}
	return false
}

// AddVideo appends a video reference; owner only, idempotent. The video must
// exist and be visible to the actor.
func (s *PlaylistService) AddVideo(playlistID, videoID string, actor primitive.ObjectID) (*model.Playlist, error) {
	playlist, err := s.load(playlistID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(playlist.Owner, actor) {
		return nil, errno.UnauthorizedErr
	}

	vid, err := utils.ParseID(videoID)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.FindByID(s.ctx, constants.VideoCollection, vid)
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

	// Adding an already-present video is a no-op, never a duplicate.
	if containsVideo(playlist.Videos, vid) {
		return playlist, nil
	}

	updated, err := s.store.UpdateByID(s.ctx, constants.PlaylistCollection, playlist.ID, bson.M{
		"$push": bson.M{"videos": vid},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errno.ServiceErr.WithMessage("unable to add the video to the playlist")
	}

	out := new(model.Playlist)
	if err := storage.Decode(updated, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveVideoResult distinguishes a real removal from a stale-reference
// correction (the referenced video is gone or unpublished).
type RemoveVideoResult struct {
	Removed bool `json:"removed"`
	Stale   bool `json:"stale"`
}

// RemoveVideo pulls a video reference; owner only. The reference must be
// present. A reference to a missing video is repaired everywhere and
// reported NotFound; a reference to an unpublished video is dropped as a
// stale-entry correction.
func (s *PlaylistService) RemoveVideo(playlistID, videoID string, actor primitive.ObjectID) (*RemoveVideoResult, error) {
	playlist, err := s.load(playlistID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(playlist.Owner, actor) {
		return nil, errno.UnauthorizedErr
	}

	vid, err := utils.ParseID(videoID)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.FindByID(s.ctx, constants.VideoCollection, vid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		// Dangling reference: repair every playlist pointing at it.
		if _, err := s.store.UpdateMany(s.ctx, constants.PlaylistCollection,
			bson.M{"videos": vid},
			bson.M{"$pull": bson.M{"videos": vid}}); err != nil {
			return nil, err
		}
		return nil, errno.NotFoundErr.WithMessage("video doesn't exist; stale references were removed")
	}

	if !containsVideo(playlist.Videos, vid) {
		return nil, errno.NotFoundErr.WithMessage("no video found in the playlist")
	}

	video := new(model.Video)
	if err := storage.Decode(doc, video); err != nil {
		return nil, err
	}

	if _, err := s.store.UpdateByID(s.ctx, constants.PlaylistCollection, playlist.ID, bson.M{
		"$pull": bson.M{"videos": vid},
		"$set":  bson.M{"updatedAt": time.Now()},
	}); err != nil {
		return nil, err
	}

	if !video.IsPublished {
		return &RemoveVideoResult{Stale: true}, nil
	}
	return &RemoveVideoResult{Removed: true}, nil
}

// playlistProjection keeps the playlist fields and replaces the id list with
// the joined video documents, filtered to published ones for non-owners.
func playlistProjection(actor primitive.ObjectID) bson.M {
	return bson.M{
		"_id":         1,
		"name":        1,
		"description": 1,
		"owner":       1,
		"createdAt":   1,
		"updatedAt":   1,
		"videos": bson.M{
			"$cond": bson.M{
				"if":   bson.M{"$eq": []interface{}{"$owner", actor}},
				"then": "$videoDocs",
				"else": bson.M{"$filter": bson.M{
					"input": "$videoDocs",
					"as":    "video",
					"cond":  bson.M{"$eq": []interface{}{"$$video.isPublished", true}},
				}},
			},
		},
	}
}

func (s *PlaylistService) aggregate(match bson.M, actor primitive.ObjectID) ([]storage.Document, error) {
	stages := []bson.D{
		query.Match(match),
		query.Lookup{
			From:         constants.VideoCollection,
			LocalField:   "videos",
			ForeignField: "_id",
			As:           "videoDocs",
		}.Stage(),
		query.Project(playlistProjection(actor)),
	}
	return s.store.Aggregate(s.ctx, constants.PlaylistCollection, stages)
}

// GetByID returns one playlist with its videos resolved and visibility
// filtered.
func (s *PlaylistService) GetByID(playlistID string, actor primitive.ObjectID) (storage.Document, error) {
	oid, err := utils.ParseID(playlistID)
	if err != nil {
		return nil, err
	}
	docs, err := s.aggregate(bson.M{"_id": oid}, actor)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, errno.NotFoundErr.WithMessage("playlist not found")
	}
	return docs[0], nil
}

// GetForUser returns all of a user's playlists under the same projection.
func (s *PlaylistService) GetForUser(userID string, actor primitive.ObjectID) ([]storage.Document, error) {
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
	return s.aggregate(bson.M{"owner": oid}, actor)
}
