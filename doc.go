// Package aitubersync keeps an AITuber directory's featured videos current.
//
// Each directory entry is anchored to a YouTube channel. A synchronization
// pass fetches every channel's recent uploads through the YouTube Data API
// v3, picks the single video that represents the channel right now, and
// merges it into the stored entry without disturbing curated fields.
//
// Overview
//
// The work is split across internal packages:
//
//   - youtube: channel-id resolution, channel metadata, recent uploads and
//     API-key failover on quota exhaustion
//   - featured: the featured-video selection rules
//   - directory: merging selections into entries, channel-id dedup
//   - storage: the locked, atomically replaced aitubers.json file
//   - syncer: the synchronization pass and admission of new channels
//   - ingest: LLM extraction output and identifier batches
//   - feed: Atom, RSS and JSON Feed export of featured videos
//
// The aitubersync command drives them:
//
//	aitubersync sync --workers 4
//	aitubersync add https://www.youtube.com/@nikechan
//	aitubersync import extraction.json
//	aitubersync feed --format rss --out public/feed.xml
//
// Selection
//
// Non-public uploads are ignored. A premiere counts at its scheduled start,
// any other upload at its publish time. Anything more than 24 hours ahead is
// ignored. The soonest upcoming video wins; failing that, the most recent
// past one.
//
// Configuration
//
// Settings load from defaults, then aitubersync.{yaml,yml,json,toml}, then
// the environment:
//
//   - AITUBERSYNC_DATA_PATH: directory file (default app/data/aitubers.json)
//   - AITUBERSYNC_YOUTUBE_API_KEY or YOUTUBE_API_KEY: primary key
//   - AITUBERSYNC_YOUTUBE_API_KEY_SECONDARY or YOUTUBE_API_KEY_SECONDARY:
//     used after the primary key is rejected with 403
//   - AITUBERSYNC_WORKERS: entries synced in parallel
//   - AITUBERSYNC_TIMEZONE_OFFSET: offset of published times (default +09:00)
//
// Error Handling
//
// Checking for sentinel errors:
//
//	if errors.Is(err, aitubersync.ErrNoCredentials) {
//		fmt.Println("set YOUTUBE_API_KEY")
//	}
//
// Extracting wrapped error details:
//
//	var apiErr *aitubersync.APIError
//	if errors.As(err, &apiErr) {
//		fmt.Printf("%s failed with status %d\n", apiErr.Op, apiErr.StatusCode)
//	}
package aitubersync
