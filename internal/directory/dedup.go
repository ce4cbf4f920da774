package directory

import (
	"strings"

	"github.com/samber/lo"

	"aitubersync/internal/storage"
)

// Rejection reasons reported by Admit.
const (
	ReasonMissingChannelID = "missing channel id"
	ReasonDuplicate        = "duplicate channel id"
)

// Rejected is a candidate Admit refused.
type Rejected struct {
	Entry  storage.Entry
	Reason string
}

// AdmitReport summarizes one Admit call.
type AdmitReport struct {
	Added    []storage.Entry
	Rejected []Rejected
}

// IsDuplicate reports whether candidate's channel id is already present in
// entries. Entries without a channel id never collide.
func IsDuplicate(entries []storage.Entry, candidate storage.Entry) bool {
	id := normalizeID(candidate.ChannelID)
	if id == "" {
		return false
	}
	return lo.ContainsBy(entries, func(e storage.Entry) bool {
		return normalizeID(e.ChannelID) == id
	})
}

// Admit appends candidates to dir in order. A candidate is admitted only when
// it carries a channel id not already in dir, including ids admitted earlier
// in the same call.
func Admit(dir *storage.Directory, candidates []storage.Entry) AdmitReport {
	var report AdmitReport
	for _, c := range candidates {
		c.ChannelID = normalizeID(c.ChannelID)
		switch {
		case c.ChannelID == "":
			report.Rejected = append(report.Rejected, Rejected{Entry: c, Reason: ReasonMissingChannelID})
		case IsDuplicate(dir.Entries, c):
			report.Rejected = append(report.Rejected, Rejected{Entry: c, Reason: ReasonDuplicate})
		default:
			if c.Tags == nil {
				c.Tags = []string{}
			}
			dir.Entries = append(dir.Entries, c)
			report.Added = append(report.Added, c)
		}
	}
	return report
}

// DuplicateIDs returns every non-empty channel id held by more than one entry.
func DuplicateIDs(entries []storage.Entry) []string {
	ids := lo.FilterMap(entries, func(e storage.Entry, _ int) (string, bool) {
		id := normalizeID(e.ChannelID)
		return id, id != ""
	})
	return lo.FindDuplicates(ids)
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
