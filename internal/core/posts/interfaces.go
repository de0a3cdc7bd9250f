package posts

import "context"

// Repository defines the data access interface for tuits.
// Stats are only ever written by the reaction reconciler; the post store
// exposes UpdateStats for repair jobs that run outside a toggle.
type Repository interface {
	// GetByID returns ErrNotFound for missing or soft-deleted tuits
	GetByID(ctx context.Context, id string) (*Post, error)

	// UpdateStats overwrites the stats block of a tuit
	UpdateStats(ctx context.Context, id string, stats Stats) error

	// ListIDs pages through live tuit IDs in ascending order, starting
	// after afterID ("" for the first page)
	ListIDs(ctx context.Context, afterID string, limit int) ([]string, error)
}
