package dedup

import (
	"fmt"

	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/errors"
)

// Group is the set of records sharing one identifier, in catalog return order.
type Group struct {
	Identifier catalog.Identifier `json:"identifier" yaml:"identifier"`
	Records    []catalog.Record   `json:"records" yaml:"records"`
}

// Size returns the number of records in the group.
func (g Group) Size() int {
	return len(g.Records)
}

// IsDuplicate reports whether the group needs resolving.
func (g Group) IsDuplicate() bool {
	return len(g.Records) > 1
}

// Plan says which record of a duplicate group to keep and which to delete.
type Plan struct {
	Identifier catalog.Identifier `json:"identifier" yaml:"identifier"`
	Keep       string             `json:"keep" yaml:"keep"`
	Drop       []string           `json:"drop" yaml:"drop"`
	GroupSize  int                `json:"group_size" yaml:"group_size"`
	Reason     Reason             `json:"reason" yaml:"reason"`
}

// NewPlan applies SelectCanonical to a group. Groups with fewer than two
// records need no plan and yield nil.
func NewPlan(g Group) *Plan {
	if !g.IsDuplicate() {
		return nil
	}

	keep, reason := SelectCanonical(g.Records)
	plan := &Plan{
		Identifier: g.Identifier,
		Keep:       g.Records[keep].ID,
		Drop:       make([]string, 0, len(g.Records)-1),
		GroupSize:  len(g.Records),
		Reason:     reason,
	}
	for i, r := range g.Records {
		if i != keep {
			plan.Drop = append(plan.Drop, r.ID)
		}
	}
	return plan
}

// Validate checks the plan shape: one keep, size-1 drops, keep never dropped.
func (p Plan) Validate() error {
	if p.Keep == "" {
		return errors.NewValidationError("keep", p.Keep, "plan has no kept record")
	}
	if len(p.Drop) != p.GroupSize-1 {
		return errors.NewValidationError("drop", len(p.Drop),
			fmt.Sprintf("expected %d drops for a group of %d", p.GroupSize-1, p.GroupSize))
	}
	for _, id := range p.Drop {
		if id == p.Keep {
			return errors.NewValidationError("drop", id, "kept record is listed for deletion")
		}
	}
	return nil
}
