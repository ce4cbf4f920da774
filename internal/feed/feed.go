// Package feed exports the directory's featured videos as a syndication feed.
package feed

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/samber/lo"
	"github.com/samber/oops"

	"aitubersync/internal/storage"
)

// Format is a feed serialization.
type Format string

const (
	FormatAtom Format = "atom"
	FormatRSS  Format = "rss"
	FormatJSON Format = "json"
)

// ParseFormat accepts "atom", "rss" or "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAtom, FormatRSS, FormatJSON:
		return f, nil
	}
	return "", oops.With("format", s).Errorf("unsupported feed format %q", s)
}

// Options describe the feed itself.
type Options struct {
	Title       string
	Link        string
	Description string
	// Limit caps the number of items; 0 means all.
	Limit int
}

type featuredEntry struct {
	entry storage.Entry
	at    time.Time
}

// Build returns a feed with one item per entry that has a featured video,
// newest first. Entries whose featured time does not parse are listed last.
func Build(dir *storage.Directory, opts Options) *feeds.Feed {
	featured := lo.FilterMap(dir.Entries, func(e storage.Entry, _ int) (featuredEntry, bool) {
		if !e.HasFeaturedVideo() {
			return featuredEntry{}, false
		}
		at, _ := e.FeaturedAt()
		return featuredEntry{entry: e, at: at}, true
	})
	slices.SortStableFunc(featured, func(a, b featuredEntry) int {
		return b.at.Compare(a.at)
	})
	if opts.Limit > 0 && len(featured) > opts.Limit {
		featured = featured[:opts.Limit]
	}

	f := &feeds.Feed{
		Title:       opts.Title,
		Link:        &feeds.Link{Href: opts.Link},
		Description: opts.Description,
		Updated:     dir.LastUpdated,
		Created:     dir.LastUpdated,
		Items:       lo.Map(featured, func(fe featuredEntry, _ int) *feeds.Item { return toItem(fe) }),
	}
	if f.Title == "" {
		f.Title = "AITuber featured videos"
	}
	return f
}

func toItem(fe featuredEntry) *feeds.Item {
	e := fe.entry
	title := e.FeaturedVideoTitle
	if e.IsUpcoming {
		title = "[upcoming] " + title
	}
	item := &feeds.Item{
		Id:          e.FeaturedVideoURL,
		Title:       title,
		Link:        &feeds.Link{Href: e.FeaturedVideoURL},
		Description: fmt.Sprintf("%s: %s", e.Label(), e.FeaturedVideoTitle),
		Author:      &feeds.Author{Name: e.Label()},
		Created:     fe.at,
		Updated:     fe.at,
	}
	if e.FeaturedVideoThumbnail != "" {
		item.Enclosure = &feeds.Enclosure{Url: e.FeaturedVideoThumbnail, Type: "image/jpeg", Length: "0"}
	}
	return item
}

// Write serializes f to w in format.
func Write(w io.Writer, f *feeds.Feed, format Format) error {
	var err error
	switch format {
	case FormatAtom:
		err = f.WriteAtom(w)
	case FormatRSS:
		err = f.WriteRss(w)
	case FormatJSON:
		err = f.WriteJSON(w)
	default:
		return oops.With("format", format).Errorf("unsupported feed format %q", format)
	}
	if err != nil {
		return oops.With("format", format, "context", "failed to write feed").Wrap(err)
	}
	return nil
}
