// Package router wires the /api/v1 surface. Every group sits behind the
// access-token middleware; the services receive the authenticated actor and
// enforce visibility and ownership themselves.
package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	dashboard "VidTube.com/cmd/api/handlers/dashboard"
	interaction "VidTube.com/cmd/api/handlers/interaction"
	playlist "VidTube.com/cmd/api/handlers/playlist"
	tweet "VidTube.com/cmd/api/handlers/tweet"
	video "VidTube.com/cmd/api/handlers/video"
	jwt "VidTube.com/pkg"
)

func Register(r *server.Hertz) {
	v1 := r.Group("/api/v1")
	v1.Use(jwt.AccessTokenJwt.MiddlewareFunc())

	videos := v1.Group("/videos")
	{
		videos.GET("/", video.ListVideos)
		videos.POST("/", video.PublishVideo)
		videos.GET("/:video_id", video.GetVideo)
		videos.PATCH("/:video_id", video.UpdateVideo)
		videos.DELETE("/:video_id", video.DeleteVideo)
		videos.PATCH("/toggle/publish/:video_id", video.TogglePublishStatus)
	}

	comments := v1.Group("/comments")
	{
		comments.GET("/:video_id", interaction.ListComments)
		comments.POST("/:video_id", interaction.AddComment)
		comments.PATCH("/c/:comment_id", interaction.UpdateComment)
		comments.DELETE("/c/:comment_id", interaction.DeleteComment)
	}

	likes := v1.Group("/likes")
	{
		likes.POST("/toggle/v/:video_id", interaction.ToggleVideoLike)
		likes.POST("/toggle/c/:comment_id", interaction.ToggleCommentLike)
		likes.POST("/toggle/t/:tweet_id", interaction.ToggleTweetLike)
		likes.GET("/videos", interaction.GetLikedVideos)
	}

	tweets := v1.Group("/tweets")
	{
		tweets.POST("/", tweet.CreateTweet)
		tweets.GET("/user/:user_id", tweet.GetUserTweets)
		tweets.PATCH("/:tweet_id", tweet.UpdateTweet)
		tweets.DELETE("/:tweet_id", tweet.DeleteTweet)
	}

	playlists := v1.Group("/playlist")
	{
		playlists.POST("/", playlist.CreatePlaylist)
		playlists.GET("/:playlist_id", playlist.GetPlaylist)
		playlists.PATCH("/:playlist_id", playlist.UpdatePlaylist)
		playlists.DELETE("/:playlist_id", playlist.DeletePlaylist)
		playlists.PATCH("/add/:video_id/:playlist_id", playlist.AddVideoToPlaylist)
		playlists.PATCH("/remove/:video_id/:playlist_id", playlist.RemoveVideoFromPlaylist)
		playlists.GET("/user/:user_id", playlist.GetUserPlaylists)
	}

	dash := v1.Group("/dashboard")
	{
		dash.GET("/stats", dashboard.GetChannelStats)
		dash.GET("/videos", dashboard.GetChannelVideos)
	}

	subscriptions := v1.Group("/subscriptions")
	{
		subscriptions.POST("/c/:channel_id", dashboard.ToggleSubscription)
	}
}
