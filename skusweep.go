// Package skusweep finds catalog products that share a SKU and removes the
// duplicates, keeping one canonical product per SKU.
//
// A run reads identifiers from an extract, looks each distinct identifier up
// once, picks the record to keep and, in resolve mode, deletes the others.
// Every processed identifier is recorded in the run report as it happens.
//
//	client := shopify.New(tr, endpoint)
//	reader := extract.NewReader(f)
//	rep, err := skusweep.Run(ctx, client, reader,
//		skusweep.WithMode(skusweep.ModeResolve),
//		skusweep.WithSinks(auditSink),
//	)
package skusweep

import (
	"context"

	"github.com/agentstation/skusweep/pkg/catalog"
)

// Mode selects what a run does with duplicate groups.
type Mode string

const (
	// ModeFind only reports duplicates.
	ModeFind Mode = "find"
	// ModeResolve deletes every duplicate except the canonical record.
	ModeResolve Mode = "resolve"
)

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Source yields the ordered identifiers of a run. An error may accompany
// identifiers read before extraction stopped.
type Source interface {
	Identifiers() ([]catalog.Identifier, error)
}

// IdentifierList is a Source over a fixed slice.
type IdentifierList []catalog.Identifier

// Identifiers implements Source.
func (l IdentifierList) Identifiers() ([]catalog.Identifier, error) {
	return l, nil
}

// AccessChecker is implemented by catalog clients that can verify access
// before a run starts.
type AccessChecker interface {
	CheckAccess(ctx context.Context) (string, error)
}
