package report

import (
	"github.com/agentstation/utc"

	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/dedup"
	"github.com/agentstation/skusweep/pkg/resolve"
)

// Status classifies how an identifier ended up.
type Status string

// Entry statuses.
const (
	// StatusNoop means fewer than two records matched; nothing to do.
	StatusNoop Status = "noop"
	// StatusResolved means every dropped record is gone.
	StatusResolved Status = "resolved"
	// StatusDetected means a duplicate was found in detection-only mode.
	StatusDetected Status = "detected"
	// StatusPlanned means a dry run planned deletions without making them.
	StatusPlanned Status = "planned"
	// StatusErrored means the lookup or at least one delete failed.
	StatusErrored Status = "errored"
)

// Error kinds recorded on an entry.
const (
	KindLookup   = "lookup"
	KindDeletion = "deletion"
)

// EntryError is a failure recorded against an identifier or one of its records.
type EntryError struct {
	Kind     string `json:"kind" yaml:"kind"`
	RecordID string `json:"record_id,omitempty" yaml:"record_id,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

// Entry is the audit record for one processed identifier.
type Entry struct {
	Identifier    catalog.Identifier `json:"sku" yaml:"sku"`
	GroupSize     int                `json:"group_size" yaml:"group_size"`
	Status        Status             `json:"status" yaml:"status"`
	Kept          string             `json:"kept,omitempty" yaml:"kept,omitempty"`
	Reason        dedup.Reason       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Deleted       []string           `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	AlreadyAbsent []string           `json:"already_absent,omitempty" yaml:"already_absent,omitempty"`
	Planned       []string           `json:"planned,omitempty" yaml:"planned,omitempty"`
	Errors        []EntryError       `json:"errors,omitempty" yaml:"errors,omitempty"`
	Time          utc.Time           `json:"time" yaml:"time"`
}

// EntryFor builds the entry for an engine result. out is nil when nothing
// was executed for the result, as in detection-only mode.
func EntryFor(res dedup.Result, out *resolve.Outcome) Entry {
	e := Entry{
		Identifier: res.Identifier,
		GroupSize:  res.Group.Size(),
	}

	if res.Err != nil {
		e.Status = StatusErrored
		e.Errors = []EntryError{{Kind: KindLookup, Message: res.Err.Error()}}
		return e
	}
	if res.Plan == nil {
		e.Status = StatusNoop
		return e
	}

	e.Kept = res.Plan.Keep
	e.Reason = res.Plan.Reason
	if out == nil {
		e.Status = StatusDetected
		e.Planned = append([]string(nil), res.Plan.Drop...)
		return e
	}

	for _, r := range out.Records {
		switch r.Status {
		case resolve.StatusDeleted:
			e.Deleted = append(e.Deleted, r.ID)
		case resolve.StatusAlreadyAbsent:
			e.AlreadyAbsent = append(e.AlreadyAbsent, r.ID)
		case resolve.StatusPlanned:
			e.Planned = append(e.Planned, r.ID)
		case resolve.StatusFailed:
			e.Errors = append(e.Errors, EntryError{Kind: KindDeletion, RecordID: r.ID, Message: r.Reason})
		}
	}

	switch {
	case len(e.Errors) > 0:
		e.Status = StatusErrored
	case len(e.Planned) > 0:
		e.Status = StatusPlanned
	default:
		e.Status = StatusResolved
	}
	return e
}
