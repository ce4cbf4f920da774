package syncer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"aitubersync/internal/directory"
	"aitubersync/internal/storage"
	"aitubersync/internal/youtube"
)

// ReasonUnresolved rejects a candidate whose channel could not be found.
const ReasonUnresolved = "channel not found"

// AddReport summarizes an admission run.
type AddReport struct {
	RunID    string
	Added    []storage.Entry
	Rejected []directory.Rejected
}

// AddCandidates admits extracted entries. Candidates without a channel id
// are resolved from their channel URL, or from their name when no URL was
// extracted. Admitted entries are synced right away
// and the directory is saved once, only if something was added.
func (e *Engine) AddCandidates(ctx context.Context, candidates []storage.Entry) (*AddReport, error) {
	if e.access != nil && !e.access.Available() {
		return nil, youtube.ErrNoCredentials
	}
	report := &AddReport{RunID: uuid.NewString()}
	logger := e.logger.With("run_id", report.RunID)

	var resolved []storage.Entry
	for _, c := range candidates {
		if c.ChannelID == "" {
			ident := c.ChannelURL
			if ident == "" {
				ident = c.Name
			}
			if ident == "" {
				resolved = append(resolved, c)
				continue
			}
			id, err := e.resolver.Resolve(ctx, ident)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				report.Rejected = append(report.Rejected, rejection(c, err))
				continue
			}
			c.ChannelID = id
		}
		resolved = append(resolved, c)
	}
	return e.admit(ctx, report, resolved, logger)
}

// AddIdentifiers resolves each identifier and admits the channels not yet
// tracked. Names and descriptions are taken from the channel.
func (e *Engine) AddIdentifiers(ctx context.Context, identifiers []string) (*AddReport, error) {
	if e.access != nil && !e.access.Available() {
		return nil, youtube.ErrNoCredentials
	}
	report := &AddReport{RunID: uuid.NewString()}
	logger := e.logger.With("run_id", report.RunID)

	var candidates []storage.Entry
	for _, ident := range identifiers {
		id, err := e.resolver.Resolve(ctx, ident)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			report.Rejected = append(report.Rejected, rejection(storage.Entry{Name: ident}, err))
			continue
		}
		candidates = append(candidates, storage.Entry{ChannelID: id, Tags: []string{}})
	}
	return e.admit(ctx, report, candidates, logger)
}

func (e *Engine) admit(ctx context.Context, report *AddReport, candidates []storage.Entry, logger *slog.Logger) (*AddReport, error) {
	dir, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	work := dir.Clone()
	base := len(work.Entries)

	admitted := directory.Admit(work, candidates)
	report.Rejected = append(report.Rejected, admitted.Rejected...)
	for _, r := range admitted.Rejected {
		logger.Info("candidate rejected", "name", r.Entry.Label(), "channel_id", r.Entry.ChannelID, "reason", r.Reason)
	}
	if len(admitted.Added) == 0 {
		logger.Info("nothing to add", "rejected", len(report.Rejected))
		return report, nil
	}

	now := e.now()
	results, err := e.syncAll(ctx, logger, work.Entries[base:], now)
	if err != nil {
		return nil, err
	}
	for i, r := range results {
		entry := work.Entries[base+i]
		if r.status == StatusUpdated {
			entry = r.entry
		}
		if r.info != nil {
			if entry.Name == "" {
				entry.Name = r.info.Title
			}
			if entry.Description == "" {
				entry.Description = r.info.Description
			}
		}
		if r.status == StatusFailed {
			logger.Warn("new entry not synced", "name", entry.Label(), "channel_id", entry.ChannelID, "error", r.err)
		}
		work.Entries[base+i] = entry
		report.Added = append(report.Added, entry)
		logger.Info("entry added", "name", entry.Label(), "channel_id", entry.ChannelID)
	}

	if err := e.store.Save(ctx, work); err != nil {
		return nil, err
	}
	return report, nil
}

func rejection(c storage.Entry, err error) directory.Rejected {
	reason := ReasonUnresolved
	if !errors.Is(err, youtube.ErrNotFound) {
		reason = err.Error()
	}
	return directory.Rejected{Entry: c, Reason: reason}
}
