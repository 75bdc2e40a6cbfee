package catalog

import "context"

// DeleteResult distinguishes a performed delete from one with nothing to delete.
type DeleteResult int

const (
	// Deleted means the record existed and was removed.
	Deleted DeleteResult = iota
	// NotFound means the record was already absent.
	NotFound
)

// String returns a readable name for the result.
func (r DeleteResult) String() string {
	switch r {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Finder looks up the records matching an identifier.
type Finder interface {
	// FindByIdentifier returns matching records in catalog order.
	// Zero matches is an empty slice, not an error.
	FindByIdentifier(ctx context.Context, id Identifier) ([]Record, error)
}

// Deleter removes records from the catalog.
type Deleter interface {
	// Delete removes the record. A record that no longer exists yields
	// NotFound with a nil error; structured rejections are returned as
	// *errors.DeletionError.
	Delete(ctx context.Context, recordID string) (DeleteResult, error)
}

// Client is the full catalog adapter used by a resolution run.
type Client interface {
	Finder
	Deleter
}
