// Package ingest turns external input into directory candidates: the JSON
// emitted by the LLM extraction step and newline-delimited identifier batches.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"aitubersync/internal/storage"
)

// ErrMalformedExtraction rejects a whole extraction batch.
var ErrMalformedExtraction = errors.New("ingest: malformed extraction output")

// extracted mirrors storage.Entry with lenient field types; models emit
// counts as strings and tags as a single comma-separated string often enough.
type extracted struct {
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Tags                 flexTags  `json:"tags"`
	TwitterID            string    `json:"twitterID"`
	YoutubeChannelID     string    `json:"youtubeChannelID"`
	YoutubeURL           string    `json:"youtubeURL"`
	ImageURL             string    `json:"imageUrl"`
	YoutubeSubscribers   flexCount `json:"youtubeSubscribers"`
	LatestVideoTitle     string    `json:"latestVideoTitle"`
	LatestVideoThumbnail string    `json:"latestVideoThumbnail"`
	LatestVideoURL       string    `json:"latestVideoUrl"`
	LatestVideoDate      string    `json:"latestVideoDate"`
}

func (x extracted) entry() storage.Entry {
	tags := []string(x.Tags)
	if tags == nil {
		tags = []string{}
	}
	return storage.Entry{
		Name:                     strings.TrimSpace(x.Name),
		Description:              strings.TrimSpace(x.Description),
		Tags:                     tags,
		SocialHandle:             strings.TrimPrefix(strings.TrimSpace(x.TwitterID), "@"),
		ChannelID:                strings.TrimSpace(x.YoutubeChannelID),
		ChannelURL:               strings.TrimSpace(x.YoutubeURL),
		ImageURL:                 strings.TrimSpace(x.ImageURL),
		SubscriberCount:          int64(x.YoutubeSubscribers),
		FeaturedVideoTitle:       x.LatestVideoTitle,
		FeaturedVideoThumbnail:   x.LatestVideoThumbnail,
		FeaturedVideoURL:         x.LatestVideoURL,
		FeaturedVideoPublishedAt: x.LatestVideoDate,
	}
}

// ParseExtraction decodes LLM output into candidate entries. It accepts a JSON
// array of entries, a single entry object, or an object wrapping the array
// under "aitubers", optionally inside a Markdown code fence.
func ParseExtraction(data []byte) ([]storage.Entry, error) {
	data = bytes.TrimSpace(stripFence(data))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedExtraction)
	}

	var items []extracted
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
		}
	case '{':
		var wrapper struct {
			Aitubers []extracted `json:"aitubers"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
		}
		if wrapper.Aitubers != nil {
			items = wrapper.Aitubers
			break
		}
		var single extracted
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
		}
		items = []extracted{single}
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrMalformedExtraction)
	}

	entries := make([]storage.Entry, len(items))
	for i, it := range items {
		entries[i] = it.entry()
	}
	return entries, nil
}

// ReadExtraction is ParseExtraction over a reader.
func ReadExtraction(r io.Reader) ([]storage.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read extraction: %w", err)
	}
	return ParseExtraction(data)
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "```") {
		return data
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(s)
}

// SplitBatch returns the identifiers of a newline-delimited batch, skipping
// blank lines and lines starting with '#'.
func SplitBatch(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return ids, nil
}

// flexCount accepts a number, a numeric string, "" or null.
type flexCount int64

func (c *flexCount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*c = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(unq), ",", "")
	}
	if s == "" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("invalid subscriber count %s", b)
	}
	*c = flexCount(f)
	return nil
}

// flexTags accepts an array of strings or a single comma-separated string.
type flexTags []string

func (t *flexTags) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = cleanTags(list)
		return nil
	}
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid tags %s", b)
	}
	if s == nil {
		*t = nil
		return nil
	}
	*t = cleanTags(strings.FieldsFunc(*s, func(r rune) bool { return r == ',' || r == '、' }))
	return nil
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, tag := range in {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
