package resolve

import "github.com/agentstation/skusweep/pkg/catalog"

// Status is the result of handling one dropped record.
type Status string

// Record statuses.
const (
	StatusDeleted       Status = "deleted"
	StatusAlreadyAbsent Status = "already_absent"
	StatusFailed        Status = "failed"
	StatusPlanned       Status = "planned"
)

// RecordOutcome is what happened to one record listed for deletion.
type RecordOutcome struct {
	ID       string `json:"id" yaml:"id"`
	Status   Status `json:"status" yaml:"status"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Attempts int    `json:"attempts" yaml:"attempts"`
}

// Outcome is the result of executing one plan. Records follow the plan's
// drop order.
type Outcome struct {
	Identifier catalog.Identifier `json:"identifier" yaml:"identifier"`
	Keep       string             `json:"keep" yaml:"keep"`
	Records    []RecordOutcome    `json:"records" yaml:"records"`
}

// IDs returns the IDs of records with the given status, in drop order.
func (o Outcome) IDs(status Status) []string {
	ids := []string{}
	for _, r := range o.Records {
		if r.Status == status {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Failures returns the failed record outcomes.
func (o Outcome) Failures() []RecordOutcome {
	var failed []RecordOutcome
	for _, r := range o.Records {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// OK reports whether no record failed.
func (o Outcome) OK() bool {
	return len(o.Failures()) == 0
}
