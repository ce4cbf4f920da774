// Package featured picks the single video that represents a channel right now.
package featured

import (
	"time"

	"aitubersync/internal/youtube"
)

// DefaultFutureCutoff is how far ahead of now a scheduled video may be and
// still be featured.
const DefaultFutureCutoff = 24 * time.Hour

// Selection is the featured video chosen for a channel.
type Selection struct {
	Video youtube.CandidateVideo
	// EffectiveAt is the scheduled start for premieres, the publish time
	// otherwise.
	EffectiveAt time.Time
	// IsUpcoming is true when EffectiveAt is after the selection time.
	IsUpcoming bool
}

// Selector chooses among candidate videos.
type Selector struct {
	// FutureCutoff drops candidates whose effective time is later than
	// now+FutureCutoff. Zero means DefaultFutureCutoff.
	FutureCutoff time.Duration
}

// Select returns the representative video of candidates at now.
//
// Non-public candidates are ignored, as are candidates beyond the future
// cutoff (a candidate exactly at the cutoff is kept). If any remaining
// candidate lies in the future, the soonest one is selected as upcoming;
// otherwise the most recent past one. Ties go to the candidate seen first.
// ok is false when nothing qualifies.
func (s Selector) Select(candidates []youtube.CandidateVideo, now time.Time) (Selection, bool) {
	cutoff := s.FutureCutoff
	if cutoff <= 0 {
		cutoff = DefaultFutureCutoff
	}
	limit := now.Add(cutoff)

	var (
		future, past       youtube.CandidateVideo
		futureAt, pastAt   time.Time
		hasFuture, hasPast bool
	)
	for _, c := range candidates {
		if !c.IsPublic {
			continue
		}
		at := c.EffectiveAt()
		if at.After(limit) {
			continue
		}
		if at.After(now) {
			if !hasFuture || at.Before(futureAt) {
				future, futureAt, hasFuture = c, at, true
			}
			continue
		}
		if !hasPast || at.After(pastAt) {
			past, pastAt, hasPast = c, at, true
		}
	}

	switch {
	case hasFuture:
		return Selection{Video: future, EffectiveAt: futureAt, IsUpcoming: true}, true
	case hasPast:
		return Selection{Video: past, EffectiveAt: pastAt}, true
	}
	return Selection{}, false
}

// Select runs a Selector with the default cutoff.
func Select(candidates []youtube.CandidateVideo, now time.Time) (Selection, bool) {
	return Selector{}.Select(candidates, now)
}
