package reactions

import (
	"context"

	"Tuiter/internal/core/posts"
	"Tuiter/internal/core/users"
)

// Service defines the reaction reconciler: the toggle protocol plus the
// read-only projections over the like and dislike relations
type Service interface {
	// ToggleDislike applies the dislike transition for the user on the tuit:
	//   - Disliked -> Neutral (remove dislike)
	//   - Liked    -> Disliked (remove like, add dislike)
	//   - Neutral  -> Disliked (add dislike)
	// The tuit's like counter is rewritten from likes − dislikes in the same transaction.
	ToggleDislike(ctx context.Context, userID, postID string) (*ToggleResult, error)

	// ToggleLike is the mirror image of ToggleDislike
	ToggleLike(ctx context.Context, userID, postID string) (*ToggleResult, error)

	// Unlike removes the user's like if present. Idempotent.
	Unlike(ctx context.Context, userID, postID string) (*ToggleResult, error)

	// Undislike removes the user's dislike if present. Idempotent.
	Undislike(ctx context.Context, userID, postID string) (*ToggleResult, error)

	// GetReactionState returns Liked, Disliked or Neutral.
	// Unknown users or tuits are Neutral.
	GetReactionState(ctx context.Context, userID, postID string) (State, error)

	// GetCounts returns the like and dislike relation sizes for a tuit
	GetCounts(ctx context.Context, postID string) (*Counts, error)

	// ListDislikersOfPost returns the users who dislike the tuit, newest first
	ListDislikersOfPost(ctx context.Context, postID string) ([]*users.User, error)

	// ListPostsDislikedByUser returns live tuits the user dislikes, newest first.
	// Tuits deleted after the dislike was recorded are omitted.
	ListPostsDislikedByUser(ctx context.Context, userID string) ([]*posts.Post, error)

	// ListLikersOfPost returns the users who like the tuit, newest first
	ListLikersOfPost(ctx context.Context, postID string) ([]*users.User, error)

	// ListPostsLikedByUser returns live tuits the user likes, newest first
	ListPostsLikedByUser(ctx context.Context, userID string) ([]*posts.Post, error)

	// ReconcileCounter rewrites the tuit's like counter from the relations.
	// Used by the repair job; toggles already keep the counter consistent.
	ReconcileCounter(ctx context.Context, postID string) (*ReconcileResult, error)
}

// Repository defines the data access interface for the like and dislike relations
type Repository interface {
	HasLike(ctx context.Context, userID, postID string) (bool, error)
	HasDislike(ctx context.Context, userID, postID string) (bool, error)

	// AddLike inserts a like record.
	// Returns ErrDuplicateReaction if the user already likes the tuit.
	AddLike(ctx context.Context, userID, postID string) error

	// RemoveLike deletes the like record; no-op if absent
	RemoveLike(ctx context.Context, userID, postID string) error

	// AddDislike inserts a dislike record.
	// Returns ErrDuplicateReaction if the user already dislikes the tuit.
	AddDislike(ctx context.Context, userID, postID string) error

	// RemoveDislike deletes the dislike record; no-op if absent
	RemoveDislike(ctx context.Context, userID, postID string) error

	CountLikes(ctx context.Context, postID string) (int, error)
	CountDislikes(ctx context.Context, postID string) (int, error)

	// ListDislikersOfPost resolves the disliking users. Records whose user no
	// longer exists are skipped.
	ListDislikersOfPost(ctx context.Context, postID string) ([]*users.User, error)

	// ListPostsDislikedByUser resolves the disliked tuits and their authors,
	// skipping tuits that are missing or soft-deleted
	ListPostsDislikedByUser(ctx context.Context, userID string) ([]*posts.Post, error)

	ListLikersOfPost(ctx context.Context, postID string) ([]*users.User, error)
	ListPostsLikedByUser(ctx context.Context, userID string) ([]*posts.Post, error)
}

// TxRepository is a Repository bound to one transaction, plus the post and
// user lookups a toggle needs
type TxRepository interface {
	Repository

	// GetPostForUpdate loads the tuit and claims it for the rest of the
	// transaction; concurrent transactions on the same tuit are serialized
	// behind this call. Returns posts.ErrNotFound for missing or deleted tuits.
	GetPostForUpdate(ctx context.Context, postID string) (*posts.Post, error)

	// UserExists reports whether the user is known to the store
	UserExists(ctx context.Context, userID string) (bool, error)

	// UpdatePostStats overwrites the tuit's stats block
	UpdatePostStats(ctx context.Context, postID string, stats posts.Stats) error
}

// Store is a Repository that can run a unit of work atomically.
// If fn returns an error nothing it wrote is visible afterwards.
// Implementations may invoke fn more than once when the backend asks for a retry.
type Store interface {
	Repository
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// EventPublisher delivers committed reaction changes to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
