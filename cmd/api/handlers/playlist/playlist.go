package handlers

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"VidTube.com/cmd/playlist/service"
	jwt "VidTube.com/pkg"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/storage"
)

func CreatePlaylist(ctx context.Context, c *app.RequestContext) {
	var param PlaylistParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	playlist, err := service.NewPlaylistService(ctx, storage.Store()).
		Create(param.Name, param.Description, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("playlist created successfully"), playlist)
}

func UpdatePlaylist(ctx context.Context, c *app.RequestContext) {
	var param PlaylistParam
	if err := c.BindAndValidate(&param); err != nil {
		hlog.Info(err)
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	playlist, err := service.NewPlaylistService(ctx, storage.Store()).
		Update(c.Param("playlist_id"), param.Name, param.Description, actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("playlist updated successfully"), playlist)
}

func DeletePlaylist(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	if err := service.NewPlaylistService(ctx, storage.Store()).
		Delete(c.Param("playlist_id"), actor); err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("playlist deleted successfully"), nil)
}

func AddVideoToPlaylist(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	playlist, err := service.NewPlaylistService(ctx, storage.Store()).
		AddVideo(c.Param("playlist_id"), c.Param("video_id"), actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("video added to the playlist"), playlist)
}

func RemoveVideoFromPlaylist(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	result, err := service.NewPlaylistService(ctx, storage.Store()).
		RemoveVideo(c.Param("playlist_id"), c.Param("video_id"), actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	message := "video removed from the playlist"
	if result.Stale {
		message = "stale video reference removed from the playlist"
	}
	SendResponse(c, errno.Success.WithMessage(message), result)
}

func GetPlaylist(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	doc, err := service.NewPlaylistService(ctx, storage.Store()).
		GetByID(c.Param("playlist_id"), actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("playlist fetched successfully"), doc)
}

func GetUserPlaylists(ctx context.Context, c *app.RequestContext) {
	actor, err := jwt.GetActorID(ctx, c)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}

	docs, err := service.NewPlaylistService(ctx, storage.Store()).
		GetForUser(c.Param("user_id"), actor)
	if err != nil {
		SendResponse(c, errno.ConvertErr(err), nil)
		return
	}
	SendResponse(c, errno.Success.WithMessage("playlists fetched successfully"), docs)
}
