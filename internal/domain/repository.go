package domain

import (
	"context"

	"github.com/google/uuid"
)

// ScrollerRepository defines the operations for managing scrollers.
type ScrollerRepository interface {
	// Create persists a new scroller.
	Create(ctx context.Context, scroller *Scroller) error

	// GetBySlug retrieves a scroller by its slug.
	// Returns nil, nil if not found.
	GetBySlug(ctx context.Context, slug string) (*Scroller, error)

	// IsSlugTaken reports whether a slug is already in use.
	IsSlugTaken(ctx context.Context, slug string) (bool, error)

	// ListRecent retrieves up to limit scrollers, newest first.
	ListRecent(ctx context.Context, limit int) ([]Scroller, error)
}

// ContentItemRepository defines the operations for managing feed items.
// Items are append-only: there is no update and no delete.
type ContentItemRepository interface {
	// ListByScroller retrieves all items for a scroller in chronological
	// order (CreatedAt ascending, ties broken by insertion order).
	ListByScroller(ctx context.Context, scrollerID uuid.UUID) ([]ContentItem, error)

	// CountByScroller reports how many items exist for a scroller.
	CountByScroller(ctx context.Context, scrollerID uuid.UUID) (int, error)

	// AppendItems inserts a batch, assigning ID, CreatedAt and Seq.
	// Returns the rows as inserted.
	AppendItems(ctx context.Context, items []ContentItem) ([]ContentItem, error)
}

// TransactionManager defines the interface for handling database transactions.
type TransactionManager interface {
	// RunInTx executes the given function within a transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
