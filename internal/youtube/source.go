package youtube

import (
	"context"
	"errors"
)

// DefaultUploadWindow is how many recent uploads are considered per channel.
const DefaultUploadWindow = 5

// Source fetches channel metadata and recent uploads through an Invoker.
type Source struct {
	api Invoker
}

// NewSource creates a Source issuing calls through api.
func NewSource(api Invoker) *Source {
	return &Source{api: api}
}

// FetchChannel returns metadata for channelID, or ErrNotFound.
func (s *Source) FetchChannel(ctx context.Context, channelID string) (*ChannelInfo, error) {
	var info *ChannelInfo
	err := s.api.Do(ctx, func(ctx context.Context, b Backend) error {
		var err error
		info, err = b.GetChannel(ctx, channelID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, ErrNotFound
	}
	return info, nil
}

// FetchRecentUploads resolves the channel's uploads collection and returns up
// to limit candidates, most recently uploaded first.
func (s *Source) FetchRecentUploads(ctx context.Context, channelID string, limit int) ([]CandidateVideo, error) {
	info, err := s.FetchChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return s.Uploads(ctx, info, limit)
}

// Uploads is FetchRecentUploads for a channel whose metadata is already known.
// Privacy status and premiere schedules come from one batched details call;
// a video missing from that response is treated as a normal upload with its
// playlist privacy status.
func (s *Source) Uploads(ctx context.Context, info *ChannelInfo, limit int) ([]CandidateVideo, error) {
	if info == nil || info.UploadsPlaylistID == "" {
		return nil, ErrNotFound
	}
	if limit <= 0 {
		limit = DefaultUploadWindow
	}

	var items []UploadItem
	err := s.api.Do(ctx, func(ctx context.Context, b Backend) error {
		var err error
		items, err = b.ListUploads(ctx, info.UploadsPlaylistID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	if len(items) > limit {
		items = items[:limit]
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.VideoID
	}

	var details map[string]VideoDetails
	err = s.api.Do(ctx, func(ctx context.Context, b Backend) error {
		var err error
		details, err = b.GetVideoDetails(ctx, ids)
		return err
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	candidates := make([]CandidateVideo, 0, len(items))
	for _, it := range items {
		c := CandidateVideo{
			VideoID:      it.VideoID,
			Title:        it.Title,
			ThumbnailURL: it.ThumbnailURL,
			PublishedAt:  it.PublishedAt,
		}
		privacy := it.PrivacyStatus
		if det, ok := details[it.VideoID]; ok {
			if det.PrivacyStatus != "" {
				privacy = det.PrivacyStatus
			}
			if !det.ScheduledStartAt.IsZero() {
				c.IsPremiere = true
				c.ScheduledStartAt = det.ScheduledStartAt
			}
		}
		c.IsPublic = privacy == PrivacyPublic
		candidates = append(candidates, c)
	}
	return candidates, nil
}
