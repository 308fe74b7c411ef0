package constants

// Collection names used by the entity store.
const (
	VideoCollection        = "videos"
	CommentCollection      = "comments"
	LikeCollection         = "likes"
	TweetCollection        = "tweets"
	PlaylistCollection     = "playlists"
	UserCollection         = "users"
	SubscriptionCollection = "subscriptions"
)

// Paging defaults and bounds.
const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 10
	MaxLimit     int64 = 20
)

// Default sort key when a listing does not specify one.
const DefaultSortField = "createdAt"
