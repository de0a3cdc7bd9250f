package reactions

import (
	"context"
	"time"
)

// Event operation names
const (
	OpToggleLike    = "toggle_like"
	OpToggleDislike = "toggle_dislike"
	OpUnlike        = "unlike"
	OpUndislike     = "undislike"
	OpReconcile     = "reconcile"
)

// Event is emitted after a reaction change has been committed
type Event struct {
	OccurredAt time.Time `json:"occurredAt"`
	Op         string    `json:"op"`
	UserID     string    `json:"userId"`
	PostID     string    `json:"postId"`
	Previous   State     `json:"previous"`
	State      State     `json:"state"`
	LikeCount  int       `json:"likeCount"`
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
