// Package syncer runs synchronization passes over the directory and admits
// new entries into it.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"aitubersync/internal/directory"
	"aitubersync/internal/featured"
	"aitubersync/internal/storage"
	"aitubersync/internal/youtube"
)

// Resolver maps an identifier (URL, handle, name or id) to a channel id.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (string, error)
}

// VideoSource provides channel metadata and recent uploads.
type VideoSource interface {
	FetchChannel(ctx context.Context, channelID string) (*youtube.ChannelInfo, error)
	Uploads(ctx context.Context, info *youtube.ChannelInfo, limit int) ([]youtube.CandidateVideo, error)
}

// Availability reports whether API credentials are configured.
type Availability interface {
	Available() bool
}

// Config tunes an Engine. Zero values select defaults.
type Config struct {
	// UploadWindow is the number of recent uploads considered per channel.
	UploadWindow int
	// Workers > 1 syncs entries in parallel.
	Workers int
	// Location is the zone for lastUpdated and featured video times.
	Location *time.Location
	Selector featured.Selector
	// Access, when set, is checked before any API work.
	Access Availability
	Now    func() time.Time
	Logger *slog.Logger
}

// Engine applies fresh channel data to the entries of a DirectoryStore.
type Engine struct {
	resolver Resolver
	source   VideoSource
	store    storage.DirectoryStore
	selector featured.Selector
	access   Availability
	loc      *time.Location
	window   int
	workers  int
	now      func() time.Time
	logger   *slog.Logger
}

// New creates an Engine.
func New(resolver Resolver, source VideoSource, store storage.DirectoryStore, cfg Config) *Engine {
	e := &Engine{
		resolver: resolver,
		source:   source,
		store:    store,
		selector: cfg.Selector,
		access:   cfg.Access,
		loc:      cfg.Location,
		window:   cfg.UploadWindow,
		workers:  cfg.Workers,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}
	if e.loc == nil {
		e.loc = DefaultLocation
	}
	if e.window <= 0 {
		e.window = youtube.DefaultUploadWindow
	}
	if e.workers < 1 {
		e.workers = 1
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// DefaultLocation is the fixed +09:00 offset the directory is published in.
var DefaultLocation = time.FixedZone("+09:00", 9*60*60)

// Status is the outcome of syncing one entry.
type Status int

const (
	// StatusUpdated means fresh channel data was merged.
	StatusUpdated Status = iota
	// StatusSkipped means the entry has no resolvable channel or the channel
	// no longer exists; the entry is unchanged.
	StatusSkipped
	// StatusFailed means an error occurred; the entry is unchanged.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Failure records an entry whose sync failed.
type Failure struct {
	Name      string
	ChannelID string
	Err       error
}

// PassReport summarizes a synchronization pass.
type PassReport struct {
	RunID     string
	StartedAt time.Time
	Updated   int
	Skipped   int
	Failures  []Failure
	// DuplicateIDs lists channel ids already held by more than one entry
	// when the directory was loaded.
	DuplicateIDs []string
}

type entryResult struct {
	entry  storage.Entry
	info   *youtube.ChannelInfo
	status Status
	err    error
}

// RunPass syncs every entry of the directory and saves it once. A failing
// entry keeps its previous values and never aborts the pass. The directory's
// lastUpdated is set to the pass start time.
func (e *Engine) RunPass(ctx context.Context) (*PassReport, error) {
	if e.access != nil && !e.access.Available() {
		return nil, youtube.ErrNoCredentials
	}

	report := &PassReport{RunID: uuid.NewString(), StartedAt: e.now().In(e.loc)}
	logger := e.logger.With("run_id", report.RunID)

	dir, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	work := dir.Clone()
	logger.Info("sync pass started", "entries", len(work.Entries), "workers", e.workers)
	if dups := directory.DuplicateIDs(work.Entries); len(dups) > 0 {
		report.DuplicateIDs = dups
		logger.Warn("directory holds duplicate channel ids", "channel_ids", dups)
	}

	results, err := e.syncAll(ctx, logger, work.Entries, report.StartedAt)
	if err != nil {
		return nil, err
	}

	held := make(map[string]bool, len(work.Entries))
	for _, entry := range work.Entries {
		if entry.ChannelID != "" {
			held[entry.ChannelID] = true
		}
	}
	for i, r := range results {
		prev := work.Entries[i]
		switch r.status {
		case StatusFailed:
			report.Failures = append(report.Failures, Failure{Name: prev.Label(), ChannelID: prev.ChannelID, Err: r.err})
			continue
		case StatusSkipped:
			report.Skipped++
			continue
		}
		if prev.ChannelID == "" && r.entry.ChannelID != "" {
			if held[r.entry.ChannelID] {
				logger.Warn("resolved channel already tracked", "name", prev.Label(), "channel_id", r.entry.ChannelID)
				report.Skipped++
				continue
			}
			held[r.entry.ChannelID] = true
		}
		work.Entries[i] = r.entry
		report.Updated++
	}

	work.LastUpdated = report.StartedAt
	if err := e.store.Save(ctx, work); err != nil {
		return nil, err
	}
	logger.Info("sync pass finished",
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", len(report.Failures),
	)
	return report, nil
}

// syncAll syncs entries with up to e.workers in flight. Results are indexed
// like entries.
func (e *Engine) syncAll(ctx context.Context, logger *slog.Logger, entries []storage.Entry, now time.Time) ([]entryResult, error) {
	results := make([]entryResult, len(entries))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = e.syncEntry(ctx, logger, entries[i], now)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// syncEntry refreshes one entry at now without touching the store. Entries
// without a channel id are resolved from their channel URL first.
func (e *Engine) syncEntry(ctx context.Context, logger *slog.Logger, entry storage.Entry, now time.Time) entryResult {
	unchanged := func(status Status, err error) entryResult {
		return entryResult{entry: entry, status: status, err: err}
	}
	logger = logger.With("name", entry.Label(), "channel_id", entry.ChannelID)

	channelID := entry.ChannelID
	if channelID == "" {
		if entry.ChannelURL == "" {
			logger.Debug("entry has no channel, skipping")
			return unchanged(StatusSkipped, nil)
		}
		id, err := e.resolver.Resolve(ctx, entry.ChannelURL)
		switch {
		case errors.Is(err, youtube.ErrNotFound):
			logger.Info("channel url did not resolve", "url", entry.ChannelURL)
			return unchanged(StatusSkipped, nil)
		case err != nil:
			logger.Error("resolve channel", "error", err)
			return unchanged(StatusFailed, err)
		}
		channelID = id
		logger = logger.With("resolved_id", id)
	}

	info, err := e.source.FetchChannel(ctx, channelID)
	switch {
	case errors.Is(err, youtube.ErrNotFound):
		logger.Warn("channel not found")
		return unchanged(StatusSkipped, nil)
	case err != nil:
		logger.Error("fetch channel", "error", err)
		return unchanged(StatusFailed, err)
	}

	var sel *featured.Selection
	candidates, err := e.source.Uploads(ctx, info, e.window)
	switch {
	case errors.Is(err, youtube.ErrNotFound):
		logger.Debug("channel has no uploads")
	case err != nil:
		logger.Error("fetch uploads", "error", err)
		return unchanged(StatusFailed, err)
	default:
		if s, ok := e.selector.Select(candidates, now); ok {
			sel = &s
		}
	}

	merged := directory.Merge(entry, info, sel, e.loc)
	merged.ChannelID = channelID
	if sel != nil {
		logger.Info("entry updated", "video_id", sel.Video.VideoID, "upcoming", sel.IsUpcoming)
	} else {
		logger.Info("entry updated without featured video")
	}
	return entryResult{entry: merged, info: info, status: StatusUpdated}
}
