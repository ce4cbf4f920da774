package storage

import (
	"strings"
	"time"
)

// Entry is one tracked AITuber. JSON names match the published aitubers.json.
type Entry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	SocialHandle string   `json:"twitterID"`
	ChannelID    string   `json:"youtubeChannelID"` // unique when non-empty
	ChannelURL   string   `json:"youtubeURL"`
	ImageURL     string   `json:"imageUrl"` // URL, or a curated local asset name

	SubscriberCount int64 `json:"youtubeSubscribers"`

	FeaturedVideoTitle       string `json:"latestVideoTitle"`
	FeaturedVideoThumbnail   string `json:"latestVideoThumbnail"`
	FeaturedVideoURL         string `json:"latestVideoUrl"`
	FeaturedVideoPublishedAt string `json:"latestVideoDate"` // RFC 3339 with offset
	IsUpcoming               bool   `json:"isUpcoming"`
}

// Label identifies the entry in logs and reports.
func (e Entry) Label() string {
	if name := strings.TrimSpace(e.Name); name != "" {
		return name
	}
	if e.ChannelID != "" {
		return e.ChannelID
	}
	return "unknown"
}

// HasFeaturedVideo reports whether a featured video has been recorded.
func (e Entry) HasFeaturedVideo() bool {
	return e.FeaturedVideoURL != ""
}

// FeaturedAt parses FeaturedVideoPublishedAt. ok is false when the field is
// empty or not RFC 3339.
func (e Entry) FeaturedAt() (t time.Time, ok bool) {
	if e.FeaturedVideoPublishedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, e.FeaturedVideoPublishedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Directory is the persisted document: every entry plus the time of the last
// synchronization pass. LastUpdated is left out of the file until a pass has
// run.
type Directory struct {
	LastUpdated time.Time `json:"lastUpdated,omitzero"`
	Entries     []Entry   `json:"aitubers"`
}

// Clone returns a deep copy so callers can mutate entries without touching
// the loaded document.
func (d *Directory) Clone() *Directory {
	out := &Directory{LastUpdated: d.LastUpdated, Entries: make([]Entry, len(d.Entries))}
	for i, e := range d.Entries {
		if e.Tags != nil {
			e.Tags = append([]string(nil), e.Tags...)
		}
		out.Entries[i] = e
	}
	return out
}
