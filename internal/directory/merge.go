// Package directory applies channel metadata and featured-video selections to
// stored entries and guards the channel-id uniqueness of the directory.
package directory

import (
	"strings"
	"time"

	"aitubersync/internal/featured"
	"aitubersync/internal/storage"
	"aitubersync/internal/youtube"
)

// ChannelURLPrefix is the base of rendered channel URLs.
const ChannelURLPrefix = "https://www.youtube.com/@"

// Merge returns entry updated from info and sel. Either may be nil.
//
// The subscriber count is replaced when the channel exposes one. The channel
// URL is filled only when empty. The image is replaced only when it is empty
// or already a remote URL; anything else is a curated local asset. Without a
// selection the featured fields are left as they are.
func Merge(entry storage.Entry, info *youtube.ChannelInfo, sel *featured.Selection, loc *time.Location) storage.Entry {
	if loc == nil {
		loc = time.UTC
	}

	if info != nil {
		if info.HasSubscribers && info.SubscriberCount >= 0 {
			entry.SubscriberCount = info.SubscriberCount
		}
		if entry.ChannelURL == "" {
			entry.ChannelURL = ChannelURL(info.CustomURL)
		}
		if info.ThumbnailURL != "" && replaceableImage(entry.ImageURL) {
			entry.ImageURL = info.ThumbnailURL
		}
	}

	if sel != nil {
		entry.FeaturedVideoTitle = sel.Video.Title
		entry.FeaturedVideoThumbnail = sel.Video.ThumbnailURL
		entry.FeaturedVideoURL = sel.Video.WatchURL()
		entry.FeaturedVideoPublishedAt = sel.EffectiveAt.In(loc).Format(time.RFC3339)
		entry.IsUpcoming = sel.IsUpcoming
	}
	return entry
}

// ChannelURL renders a channel handle such as "@nikechan" as a channel URL.
// It returns "" for an empty handle.
func ChannelURL(handle string) string {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return ""
	}
	return ChannelURLPrefix + handle
}

func replaceableImage(current string) bool {
	return current == "" || strings.HasPrefix(current, "http")
}
