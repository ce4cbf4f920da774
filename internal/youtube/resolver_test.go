package youtube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolverFixture() (*Resolver, *fakeBackend) {
	fb := newFakeBackend()
	fb.handles["nikechan"] = "UCj94TVhN0op8xZX9r-sTvSA"
	fb.handles["legacyname"] = "UClegacy000000000000000a"
	fb.names["音紡いま AI VTuber"] = "UCSHXPmFvDM32bLm0OgHblsA"
	fb.names["someuser"] = "UCuser0000000000000000aa"
	return NewResolver(fakeInvoker{backend: fb}, "platform.example"), fb
}

func TestResolve_NoNetwork(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"platform channel URL", "https://platform.example/channel/ABC123", "ABC123"},
		{"youtube channel URL", "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw", "UCuAXFkgsw1L7xaCfnd5JJOw"},
		{"trailing slash", "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw/", "UCuAXFkgsw1L7xaCfnd5JJOw"},
		{"query params", "https://youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw?sub_confirmation=1", "UCuAXFkgsw1L7xaCfnd5JJOw"},
		{"subpage", "https://m.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw/videos", "UCuAXFkgsw1L7xaCfnd5JJOw"},
		{"no scheme", "youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw", "UCuAXFkgsw1L7xaCfnd5JJOw"},
		{"bare channel id", "UCSHXPmFvDM32bLm0OgHblsA", "UCSHXPmFvDM32bLm0OgHblsA"},
		{"surrounding space", "  UCSHXPmFvDM32bLm0OgHblsA\n", "UCSHXPmFvDM32bLm0OgHblsA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fb := newResolverFixture()
			got, err := r.Resolve(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, fb.total(), "expected no API calls")
		})
	}
}

func TestResolve_Lookups(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		method string
	}{
		{"bare handle", "@nikechan", "UCj94TVhN0op8xZX9r-sTvSA", "ResolveHandle"},
		{"handle URL", "https://www.youtube.com/@nikechan", "UCj94TVhN0op8xZX9r-sTvSA", "ResolveHandle"},
		{"handle URL subpage", "https://www.youtube.com/@nikechan/streams", "UCj94TVhN0op8xZX9r-sTvSA", "ResolveHandle"},
		{"custom URL", "https://www.youtube.com/c/nikechan", "UCj94TVhN0op8xZX9r-sTvSA", "ResolveHandle"},
		{"user URL", "https://www.youtube.com/user/someuser", "UCuser0000000000000000aa", "SearchByName"},
		{"vanity URL", "https://www.youtube.com/someuser", "UCuser0000000000000000aa", "SearchByName"},
		{"free text name", "音紡いま AI VTuber", "UCSHXPmFvDM32bLm0OgHblsA", "SearchByName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fb := newResolverFixture()
			got, err := r.Resolve(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, fb.count(tt.method))
			assert.Equal(t, 1, fb.total())
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	tests := []struct {
		name  string
		input string
		calls int
	}{
		{"empty", "", 0},
		{"whitespace", "   ", 0},
		{"bare at sign", "@", 0},
		{"unknown handle", "@nobody", 1},
		{"unknown custom URL", "https://www.youtube.com/c/nobody", 1},
		{"unknown name", "no such streamer", 1},
		{"platform root", "https://www.youtube.com/", 0},
		{"channel without id", "https://www.youtube.com/channel/", 0},
		{"custom URL without name", "https://www.youtube.com/c/", 0},
		{"user URL without name", "https://www.youtube.com/user", 0},
		{"watch page", "https://www.youtube.com/watch?v=RCHDZ7BRTYQ", 0},
		{"shorts page", "https://youtube.com/shorts/abcdefghijk", 0},
		{"playlist page", "https://www.youtube.com/playlist?list=PL123", 0},
		{"search results", "https://www.youtube.com/results?search_query=aituber", 0},
		{"feed page", "https://www.youtube.com/feed/subscriptions", 0},
		{"live page", "https://www.youtube.com/live/abcdefghijk", 0},
		{"embed page", "https://www.youtube.com/embed/abcdefghijk", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fb := newResolverFixture()
			for _, word := range []string{"watch", "channel", "shorts", "playlist", "results", "feed", "live", "embed", "c", "user"} {
				fb.names[word] = "UCwrongchannel0000000000"
			}
			_, err := r.Resolve(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Equal(t, tt.calls, fb.total())
		})
	}
}

func TestResolve_ForeignURLIsSearchedAsText(t *testing.T) {
	r, fb := newResolverFixture()
	fb.names["https://twitter.com/tegnike"] = "UCj94TVhN0op8xZX9r-sTvSA"

	got, err := r.Resolve(context.Background(), "https://twitter.com/tegnike")
	require.NoError(t, err)
	assert.Equal(t, "UCj94TVhN0op8xZX9r-sTvSA", got)
	assert.Equal(t, 1, fb.count("SearchByName"))
}

func TestResolve_PropagatesAPIErrors(t *testing.T) {
	r, fb := newResolverFixture()
	fb.err = forbidden()

	_, err := r.Resolve(context.Background(), "@nikechan")
	assert.True(t, IsQuotaExceeded(err))
}
