package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// maxPageSize is the largest maxResults the list endpoints accept.
const maxPageSize = 50

// Backend is the capability set the engine needs from the video platform.
// Implementations return ErrNotFound for empty results.
type Backend interface {
	ResolveHandle(ctx context.Context, handle string) (string, error)
	SearchByName(ctx context.Context, name string) (string, error)
	GetChannel(ctx context.Context, channelID string) (*ChannelInfo, error)
	ListUploads(ctx context.Context, playlistID string, limit int) ([]UploadItem, error)
	GetVideoDetails(ctx context.Context, videoIDs []string) (map[string]VideoDetails, error)
}

// DataAPI implements Backend with the YouTube Data API v3 client.
type DataAPI struct {
	service *youtube.Service
}

var _ Backend = (*DataAPI)(nil)

// NewDataAPI creates a Data API backend authenticated with apiKey.
func NewDataAPI(ctx context.Context, apiKey string, opts ...option.ClientOption) (*DataAPI, error) {
	if apiKey == "" {
		return nil, ErrNoCredentials
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &DataAPI{service: service}, nil
}

// DataAPIFactory returns a BackendFactory building DataAPI clients with the
// given extra client options.
func DataAPIFactory(opts ...option.ClientOption) BackendFactory {
	return func(ctx context.Context, apiKey string) (Backend, error) {
		return NewDataAPI(ctx, apiKey, opts...)
	}
}

// ResolveHandle looks up a channel by its @handle (without the @).
func (d *DataAPI) ResolveHandle(ctx context.Context, handle string) (string, error) {
	resp, err := d.service.Channels.List([]string{"id"}).
		ForHandle(handle).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapAPIError("channels.list", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Id == "" {
		return "", ErrNotFound
	}
	return resp.Items[0].Id, nil
}

// SearchByName returns the first channel matching a free-text query.
func (d *DataAPI) SearchByName(ctx context.Context, name string) (string, error) {
	resp, err := d.service.Search.List([]string{"snippet"}).
		Q(name).
		Type("channel").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapAPIError("search.list", err)
	}
	if len(resp.Items) == 0 {
		return "", ErrNotFound
	}
	item := resp.Items[0]
	switch {
	case item.Id != nil && item.Id.ChannelId != "":
		return item.Id.ChannelId, nil
	case item.Snippet != nil && item.Snippet.ChannelId != "":
		return item.Snippet.ChannelId, nil
	}
	return "", malformed("search.list", "result without channel id")
}

// GetChannel fetches snippet, statistics and content details for a channel.
func (d *DataAPI) GetChannel(ctx context.Context, channelID string) (*ChannelInfo, error) {
	resp, err := d.service.Channels.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("channels.list", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrNotFound
	}

	ch := resp.Items[0]
	info := &ChannelInfo{ID: ch.Id}
	if info.ID == "" {
		info.ID = channelID
	}
	if ch.Snippet != nil {
		info.Title = ch.Snippet.Title
		info.Description = ch.Snippet.Description
		info.CustomURL = ch.Snippet.CustomUrl
		info.ThumbnailURL = bestThumbnail(ch.Snippet.Thumbnails)
	}
	if ch.Statistics != nil && !ch.Statistics.HiddenSubscriberCount {
		info.SubscriberCount = int64(ch.Statistics.SubscriberCount)
		info.HasSubscribers = true
	}
	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		info.UploadsPlaylistID = ch.ContentDetails.RelatedPlaylists.Uploads
	}
	return info, nil
}

// ListUploads returns up to limit items of the uploads playlist, newest first.
func (d *DataAPI) ListUploads(ctx context.Context, playlistID string, limit int) ([]UploadItem, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	resp, err := d.service.PlaylistItems.List([]string{"snippet", "contentDetails", "status"}).
		PlaylistId(playlistID).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("playlistItems.list", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrNotFound
	}

	items := make([]UploadItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		item := UploadItem{}
		var published string
		if it.ContentDetails != nil {
			item.VideoID = it.ContentDetails.VideoId
			published = it.ContentDetails.VideoPublishedAt
		}
		if it.Snippet != nil {
			item.Title = it.Snippet.Title
			item.ThumbnailURL = bestThumbnail(it.Snippet.Thumbnails)
			if item.VideoID == "" && it.Snippet.ResourceId != nil {
				item.VideoID = it.Snippet.ResourceId.VideoId
			}
			if published == "" {
				published = it.Snippet.PublishedAt
			}
		}
		if it.Status != nil {
			item.PrivacyStatus = it.Status.PrivacyStatus
		}
		if item.VideoID == "" {
			return nil, malformed("playlistItems.list", "item without video id")
		}
		t, err := time.Parse(time.RFC3339, published)
		if err != nil {
			return nil, malformed("playlistItems.list", "video %s: bad publishedAt %q", item.VideoID, published)
		}
		item.PublishedAt = t
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

// GetVideoDetails fetches privacy status and scheduled start for videoIDs in
// one call. Videos the API does not return are absent from the map.
func (d *DataAPI) GetVideoDetails(ctx context.Context, videoIDs []string) (map[string]VideoDetails, error) {
	if len(videoIDs) == 0 {
		return nil, ErrNotFound
	}
	resp, err := d.service.Videos.List([]string{"status", "liveStreamingDetails"}).
		Id(videoIDs...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError("videos.list", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrNotFound
	}

	details := make(map[string]VideoDetails, len(resp.Items))
	for _, v := range resp.Items {
		var det VideoDetails
		if v.Status != nil {
			det.PrivacyStatus = v.Status.PrivacyStatus
		}
		if v.LiveStreamingDetails != nil && v.LiveStreamingDetails.ScheduledStartTime != "" {
			t, err := time.Parse(time.RFC3339, v.LiveStreamingDetails.ScheduledStartTime)
			if err != nil {
				return nil, malformed("videos.list", "video %s: bad scheduledStartTime %q", v.Id, v.LiveStreamingDetails.ScheduledStartTime)
			}
			det.ScheduledStartAt = t
		}
		details[v.Id] = det
	}
	return details, nil
}

// bestThumbnail prefers the high-resolution rendition.
func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && strings.TrimSpace(th.Url) != "" {
			return th.Url
		}
	}
	return ""
}
