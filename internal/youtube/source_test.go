package youtube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sourceNow = time.Date(2024, 8, 26, 12, 0, 0, 0, time.UTC)

func newSourceFixture() (*Source, *fakeBackend) {
	fb := newFakeBackend()
	fb.channels["UCnike"] = &ChannelInfo{
		ID:                "UCnike",
		Title:             "ニケちゃん",
		SubscriberCount:   272,
		HasSubscribers:    true,
		ThumbnailURL:      "https://yt3.ggpht.com/nike=s800",
		CustomURL:         "@nikechan",
		UploadsPlaylistID: "UUnike",
	}
	fb.uploads["UUnike"] = []UploadItem{
		{VideoID: "premiere", Title: "Premiere", PublishedAt: sourceNow.Add(-time.Hour), PrivacyStatus: "public"},
		{VideoID: "private", Title: "Private video", PublishedAt: sourceNow.Add(-2 * time.Hour), PrivacyStatus: "private"},
		{VideoID: "normal", Title: "Normal", PublishedAt: sourceNow.Add(-24 * time.Hour), PrivacyStatus: "public"},
		{VideoID: "nodetails", Title: "No details", PublishedAt: sourceNow.Add(-48 * time.Hour), PrivacyStatus: "public"},
		{VideoID: "unlisted", Title: "Unlisted", PublishedAt: sourceNow.Add(-72 * time.Hour), PrivacyStatus: "public"},
		{VideoID: "old", Title: "Old", PublishedAt: sourceNow.Add(-96 * time.Hour), PrivacyStatus: "public"},
	}
	fb.details["premiere"] = VideoDetails{PrivacyStatus: "public", ScheduledStartAt: sourceNow.Add(2 * time.Hour)}
	fb.details["private"] = VideoDetails{PrivacyStatus: "private"}
	fb.details["normal"] = VideoDetails{PrivacyStatus: "public"}
	fb.details["unlisted"] = VideoDetails{PrivacyStatus: "unlisted"}
	return NewSource(fakeInvoker{backend: fb}), fb
}

func TestFetchChannel(t *testing.T) {
	src, _ := newSourceFixture()

	info, err := src.FetchChannel(context.Background(), "UCnike")
	require.NoError(t, err)
	assert.Equal(t, "UUnike", info.UploadsPlaylistID)
	assert.Equal(t, int64(272), info.SubscriberCount)

	_, err = src.FetchChannel(context.Background(), "UCmissing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchRecentUploads(t *testing.T) {
	src, fb := newSourceFixture()

	got, err := src.FetchRecentUploads(context.Background(), "UCnike", 5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.VideoID
	}
	assert.Equal(t, []string{"premiere", "private", "normal", "nodetails", "unlisted"}, ids)

	assert.True(t, got[0].IsPremiere)
	assert.True(t, got[0].IsPublic)
	assert.Equal(t, sourceNow.Add(2*time.Hour), got[0].EffectiveAt())

	assert.False(t, got[1].IsPublic)

	assert.False(t, got[2].IsPremiere)
	assert.Equal(t, sourceNow.Add(-24*time.Hour), got[2].EffectiveAt())

	// Missing from the details response: normal upload, playlist privacy.
	assert.False(t, got[3].IsPremiere)
	assert.True(t, got[3].IsPublic)

	// Details privacy wins over the playlist item.
	assert.False(t, got[4].IsPublic)

	assert.Equal(t, 1, fb.count("GetVideoDetails"))
}

func TestUploads_DetailsNotFoundTolerated(t *testing.T) {
	src, fb := newSourceFixture()
	fb.detailsErr = ErrNotFound
	info, err := src.FetchChannel(context.Background(), "UCnike")
	require.NoError(t, err)

	got, err := src.Uploads(context.Background(), info, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.False(t, c.IsPremiere)
	}
	assert.True(t, got[0].IsPublic)
	assert.False(t, got[1].IsPublic)
}

func TestUploads_DetailsErrorPropagates(t *testing.T) {
	src, fb := newSourceFixture()
	boom := errors.New("boom")
	fb.detailsErr = boom
	info, err := src.FetchChannel(context.Background(), "UCnike")
	require.NoError(t, err)

	_, err = src.Uploads(context.Background(), info, 3)
	assert.ErrorIs(t, err, boom)
}

func TestUploads_NotFound(t *testing.T) {
	src, fb := newSourceFixture()

	_, err := src.Uploads(context.Background(), &ChannelInfo{ID: "UCx"}, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, fb.total())

	_, err = src.Uploads(context.Background(), &ChannelInfo{ID: "UCx", UploadsPlaylistID: "UUempty"}, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.Uploads(context.Background(), nil, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploads_DefaultWindow(t *testing.T) {
	src, _ := newSourceFixture()
	info, err := src.FetchChannel(context.Background(), "UCnike")
	require.NoError(t, err)

	got, err := src.Uploads(context.Background(), info, 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultUploadWindow)
}

func TestCandidateEffectiveAt(t *testing.T) {
	c := CandidateVideo{PublishedAt: sourceNow, ScheduledStartAt: sourceNow.Add(time.Hour)}
	assert.Equal(t, sourceNow, c.EffectiveAt(), "not a premiere")

	c.IsPremiere = true
	assert.Equal(t, sourceNow.Add(time.Hour), c.EffectiveAt())

	c.ScheduledStartAt = time.Time{}
	assert.Equal(t, sourceNow, c.EffectiveAt(), "premiere without schedule")

	assert.Equal(t, "https://www.youtube.com/watch?v=abc", CandidateVideo{VideoID: "abc"}.WatchURL())
}
