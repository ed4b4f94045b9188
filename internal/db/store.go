package db

import "context"

// Store is the interface for all database operations. Both SQLite (local) and
// PostgreSQL (server) backends implement this interface.
//
// The methods are primitive: insert, select by filter, update,
// delete. Anything that combines several of them (tag resolution, tag
// intersection, hydration) lives in the trainlog package.
type Store interface {
	// Close closes the database connection.
	Close() error

	// WithTx runs fn as one unit of work. All calls inside fn must go through
	// the Store it receives.
	WithTx(ctx context.Context, fn func(Store) error) error

	// --- Training pages ---

	InsertPage(ctx context.Context, page *TrainingPage) error
	GetPage(ctx context.Context, id string) (*TrainingPage, error)
	UpdatePage(ctx context.Context, patch PagePatch) (*TrainingPage, error)
	SelectPages(ctx context.Context, filter PageFilter) ([]*TrainingPage, error)

	// --- User tags ---

	// InsertTag inserts tag. If a row with the same (user, name, category)
	// already exists, that row is returned instead and tag is left unused.
	InsertTag(ctx context.Context, tag *UserTag) (*UserTag, error)
	// FindTag returns the tag matching (user, name, category), or nil.
	FindTag(ctx context.Context, userID, name string, category Category) (*UserTag, error)
	SelectTags(ctx context.Context, filter TagFilter) ([]*UserTag, error)

	// --- Page/tag associations ---

	InsertPageTags(ctx context.Context, links []PageTag) error
	SelectPageTags(ctx context.Context, filter PageTagFilter) ([]PageTag, error)
	// SelectTagsForPages joins associations with their tags for the given
	// pages, ordered by page then category then name.
	SelectTagsForPages(ctx context.Context, pageIDs []string) ([]PageTagRow, error)
	DeletePageTags(ctx context.Context, pageID string) error
}
