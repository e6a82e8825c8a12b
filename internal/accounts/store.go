package accounts

import "context"

// Page carries pagination bounds for FindMany. A nil *Page returns all
// matches.
type Page struct {
	Limit  int
	Offset int
}

// Store is the contract every identity operation uses to talk to the users
// relation. Implementations must bind every caller-supplied value as a query
// parameter and must surface driver failures instead of swallowing them.
// Single-row lookups return common.ErrNotFound when no row matches.
type Store interface {
	// FindByField does a single-row exact-match lookup on one column.
	FindByField(ctx context.Context, field string, value any) (*Account, error)

	// FindByID looks an account up by primary key.
	FindByID(ctx context.Context, id string) (*Account, error)

	// FindMany returns every account matching the exact-match conjunction of
	// the filter fields, plus the total match count independent of paging.
	FindMany(ctx context.Context, filter map[string]any, page *Page) ([]*Account, int, error)

	// Insert creates an account, applying defaults for Status and Role when
	// the caller omits them, and returns the persisted row.
	Insert(ctx context.Context, fields map[string]any) (*Account, error)

	// Update applies a partial update and returns the post-update row. An
	// empty field map degrades to a plain fetch. A nil value writes NULL.
	Update(ctx context.Context, id string, fields map[string]any) (*Account, error)

	// Delete removes the row and returns the pre-deletion snapshot.
	Delete(ctx context.Context, id string) (*Account, error)
}
