package mq

// CascadeEvent is published after a video delete so the external reconciler
// can verify that the comment/like/playlist cleanup finished. Cascades run
// without a transaction; a crash mid-sequence leaves partial cleanup that the
// reconciler repairs from this event.
type CascadeEvent struct {
	VideoID         string `json:"video_id"`
	DeletedComments int64  `json:"deleted_comments"`
	DeletedLikes    int64  `json:"deleted_likes"`
	PlaylistPulls   int64  `json:"playlist_pulls"`
	Timestamp       int64  `json:"timestamp"`
	EventID         string `json:"event_id"`
}

// RepairEvent is published when a service finds comments pointing at a video
// that no longer exists and purges them opportunistically.
type RepairEvent struct {
	VideoID        string `json:"video_id"`
	PurgedComments int64  `json:"purged_comments"`
	Timestamp      int64  `json:"timestamp"`
	EventID        string `json:"event_id"`
}
