package dedup

import "github.com/agentstation/skusweep/pkg/catalog"

// Reason records why a record was chosen as canonical.
type Reason string

// Selection reasons, strongest first.
const (
	ReasonActiveComplete  Reason = "active_complete"
	ReasonActive          Reason = "active"
	ReasonLatestPublished Reason = "latest_published"
	ReasonFirst           Reason = "first"
)

// tier ranks a record for selection. Higher wins; equal tiers keep the
// earlier record except among inactive records, where publish time decides.
func tier(r catalog.Record) int {
	switch {
	case r.IsActive() && r.Complete():
		return 2
	case r.IsActive():
		return 1
	default:
		return 0
	}
}

// SelectCanonical picks the record to keep from records, in catalog return
// order, with a single left-to-right fold:
//
//   - the first ACTIVE record that is complete, else
//   - the first ACTIVE record, else
//   - the record with the latest PublishedAt (earliest of equal times, and a
//     record without a publish time never beats one with), else
//   - the first record.
//
// It returns the index of the kept record and the reason. An empty slice
// yields -1.
func SelectCanonical(records []catalog.Record) (int, Reason) {
	if len(records) == 0 {
		return -1, ""
	}

	best := 0
	for i := 1; i < len(records); i++ {
		cur, top := tier(records[i]), tier(records[best])
		switch {
		case cur > top:
			best = i
		case cur == 0 && top == 0 && records[i].PublishedAfter(records[best]):
			best = i
		}
	}

	kept := records[best]
	switch tier(kept) {
	case 2:
		return best, ReasonActiveComplete
	case 1:
		return best, ReasonActive
	}
	if kept.PublishedAt != nil && !kept.PublishedAt.Time.IsZero() {
		return best, ReasonLatestPublished
	}
	return best, ReasonFirst
}
