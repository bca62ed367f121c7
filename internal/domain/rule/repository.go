package rule

import (
	"context"
)

// UpdateFunc derives the next collection from the currently persisted one.
// Returning an error aborts the update without saving.
type UpdateFunc func(current []*Rule) ([]*Rule, error)

// Repository persists the whole rule collection as a single blob.
// Save always rewrites the full collection. Update loads, applies fn and
// saves as one step that excludes other writers of the same backend,
// including writers in other processes.
type Repository interface {
	Load(ctx context.Context) ([]*Rule, error)
	Save(ctx context.Context, rules []*Rule) error
	Update(ctx context.Context, fn UpdateFunc) error
}
