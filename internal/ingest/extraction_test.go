package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nikeJSON = `{
    "name": "ニケちゃん",
    "description": "歌って踊れるAIアイドル",
    "tags": ["アイドル", "歌手", "ダンサー"],
    "twitterID": "tegnike",
    "youtubeChannelID": "UCj94TVhN0op8xZX9r-sTvSA",
    "youtubeURL": "https://www.youtube.com/c/nikechan",
    "imageUrl": "nikechan_icon.jpg",
    "youtubeSubscribers": 272,
    "latestVideoTitle": "アップデートしたのでちゃんと動くか試す配信【AITuberKit】",
    "latestVideoThumbnail": "https://i.ytimg.com/vi/RCHDZ7BRTYQ/hqdefault.jpg",
    "latestVideoUrl": "https://www.youtube.com/watch?v=RCHDZ7BRTYQ",
    "latestVideoDate": "2024-08-26T18:38:55+09:00"
}`

func TestParseExtraction_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"array", "[" + nikeJSON + "]", 1},
		{"single object", nikeJSON, 1},
		{"wrapped", `{"aitubers": [` + nikeJSON + `,` + nikeJSON + `]}`, 2},
		{"fenced json", "```json\n[" + nikeJSON + "]\n```", 1},
		{"bare fence", "```\n" + nikeJSON + "\n```", 1},
		{"empty array", "[]", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExtraction([]byte(tt.input))
			require.NoError(t, err)
			require.Len(t, got, tt.want)
			for _, e := range got {
				assert.Equal(t, "ニケちゃん", e.Name)
				assert.Equal(t, "UCj94TVhN0op8xZX9r-sTvSA", e.ChannelID)
				assert.Equal(t, int64(272), e.SubscriberCount)
				assert.Equal(t, []string{"アイドル", "歌手", "ダンサー"}, e.Tags)
				assert.Equal(t, "tegnike", e.SocialHandle)
				assert.Equal(t, "nikechan_icon.jpg", e.ImageURL)
				assert.Equal(t, "2024-08-26T18:38:55+09:00", e.FeaturedVideoPublishedAt)
			}
		})
	}
}

func TestParseExtraction_LenientFields(t *testing.T) {
	input := `[{
		"name": " 音紡いま AI VTuber ",
		"tags": "歌, 雑談、ゲーム",
		"twitterID": "@ima_ai",
		"youtubeChannelID": " UCSHXPmFvDM32bLm0OgHblsA ",
		"youtubeSubscribers": "1,234"
	}, {
		"name": "empty fields",
		"tags": null,
		"youtubeSubscribers": ""
	}]`

	got, err := ParseExtraction([]byte(input))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "音紡いま AI VTuber", got[0].Name)
	assert.Equal(t, []string{"歌", "雑談", "ゲーム"}, got[0].Tags)
	assert.Equal(t, "ima_ai", got[0].SocialHandle)
	assert.Equal(t, "UCSHXPmFvDM32bLm0OgHblsA", got[0].ChannelID)
	assert.Equal(t, int64(1234), got[0].SubscriberCount)

	assert.Equal(t, []string{}, got[1].Tags)
	assert.Zero(t, got[1].SubscriberCount)
	assert.Empty(t, got[1].ChannelID)
}

func TestParseExtraction_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "  \n "},
		{"prose", "Sorry, I could not find any channel."},
		{"truncated", `[{"name": "x"`},
		{"bad count", `[{"name": "x", "youtubeSubscribers": "many"}]`},
		{"negative count", `[{"name": "x", "youtubeSubscribers": -3}]`},
		{"bad tags", `[{"name": "x", "tags": 7}]`},
		{"scalar", `"just a string"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExtraction([]byte(tt.input))
			assert.ErrorIs(t, err, ErrMalformedExtraction)
		})
	}
}

func TestReadExtraction(t *testing.T) {
	got, err := ReadExtraction(strings.NewReader(nikeJSON))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSplitBatch(t *testing.T) {
	input := `# channels to add
https://www.youtube.com/@nikechan

  @ima_ai  
UCSHXPmFvDM32bLm0OgHblsA
# trailing comment
音紡いま AI VTuber
`
	got, err := SplitBatch(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.youtube.com/@nikechan",
		"@ima_ai",
		"UCSHXPmFvDM32bLm0OgHblsA",
		"音紡いま AI VTuber",
	}, got)

	got, err = SplitBatch(strings.NewReader("\n\n# nothing\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
