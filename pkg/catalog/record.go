// Package catalog defines the catalog records that duplicate resolution works
// on and the narrow client interfaces used to find and delete them.
package catalog

import (
	"strings"

	"github.com/agentstation/utc"
)

// Identifier is the deduplication key read from the extract, typically a SKU.
// Identifiers are opaque and case-sensitive.
type Identifier string

// String returns the identifier as a plain string.
func (id Identifier) String() string {
	return string(id)
}

// LifecycleState is the publication state of a catalog record.
type LifecycleState string

// Lifecycle states. Values outside this set are normalized to StateOther.
const (
	StateActive   LifecycleState = "ACTIVE"
	StateDraft    LifecycleState = "DRAFT"
	StateArchived LifecycleState = "ARCHIVED"
	StateOther    LifecycleState = "OTHER"
)

// ParseLifecycleState normalizes a state reported by the catalog API.
// Matching ignores case and surrounding whitespace, so "active" and "ACTIVE"
// are the same state.
func ParseLifecycleState(s string) LifecycleState {
	switch LifecycleState(strings.ToUpper(strings.TrimSpace(s))) {
	case StateActive:
		return StateActive
	case StateDraft:
		return StateDraft
	case StateArchived:
		return StateArchived
	default:
		return StateOther
	}
}

// String returns the state name.
func (s LifecycleState) String() string {
	return string(s)
}

// Record is one catalog entry that may match an identifier.
type Record struct {
	ID              string         `json:"id" yaml:"id"`
	IdentifierValue string         `json:"identifier_value" yaml:"identifier_value"`
	Title           string         `json:"title,omitempty" yaml:"title,omitempty"`
	Description     string         `json:"description,omitempty" yaml:"description,omitempty"`
	State           LifecycleState `json:"state" yaml:"state"`
	UpdatedAt       *utc.Time      `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	PublishedAt     *utc.Time      `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	VariantCount    int            `json:"variant_count" yaml:"variant_count"`
}

// IsActive reports whether the record is live.
func (r Record) IsActive() bool {
	return r.State == StateActive
}

// Complete reports whether the record has a title, a description and at least one variant.
// A title or description of only whitespace counts as missing.
func (r Record) Complete() bool {
	return strings.TrimSpace(r.Title) != "" &&
		strings.TrimSpace(r.Description) != "" &&
		r.VariantCount > 0
}

// PublishedAfter reports whether r was published strictly later than other.
// A record without a publish time is never later than anything.
func (r Record) PublishedAfter(other Record) bool {
	if r.PublishedAt == nil || r.PublishedAt.Time.IsZero() {
		return false
	}
	if other.PublishedAt == nil || other.PublishedAt.Time.IsZero() {
		return true
	}
	return r.PublishedAt.Time.After(other.PublishedAt.Time)
}
