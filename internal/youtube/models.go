// Package youtube talks to the YouTube Data API v3: channel-id resolution,
// channel metadata, recent uploads, and API-key failover.
package youtube

import (
	"time"
)

// ChannelInfo is the decoded channel metadata the merger needs.
type ChannelInfo struct {
	ID          string
	Title       string
	Description string
	// SubscriberCount is meaningful only when HasSubscribers is true; channels
	// may hide their count.
	SubscriberCount int64
	HasSubscribers  bool
	// ThumbnailURL is the high-resolution channel avatar.
	ThumbnailURL string
	// CustomURL is the channel's handle, e.g. "@nikechan", if it has one.
	CustomURL string
	// UploadsPlaylistID points at the channel's uploads collection.
	UploadsPlaylistID string
}

// UploadItem is one entry of the uploads playlist, newest first.
type UploadItem struct {
	VideoID       string
	Title         string
	ThumbnailURL  string
	PublishedAt   time.Time
	PrivacyStatus string
}

// VideoDetails carries the per-video fields not present on playlist items.
type VideoDetails struct {
	PrivacyStatus string
	// ScheduledStartAt is set for premieres and scheduled live streams.
	ScheduledStartAt time.Time
}

// CandidateVideo is one upload considered for the featured slot.
type CandidateVideo struct {
	VideoID      string
	Title        string
	ThumbnailURL string
	// PublishedAt is the actual publish (or upload) time.
	PublishedAt time.Time
	// ScheduledStartAt is the scheduled debut of a premiere.
	ScheduledStartAt time.Time
	IsPremiere       bool
	IsPublic         bool
}

// EffectiveAt is the time the video becomes (or became) watchable: the
// scheduled start for premieres, the publish time otherwise.
func (c CandidateVideo) EffectiveAt() time.Time {
	if c.IsPremiere && !c.ScheduledStartAt.IsZero() {
		return c.ScheduledStartAt
	}
	return c.PublishedAt
}

// WatchURL is the canonical watch page for the video.
func (c CandidateVideo) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + c.VideoID
}

// PrivacyPublic is the privacy status of publicly listed videos.
const PrivacyPublic = "public"
