package reactions

import (
	"time"
)

// Kind distinguishes the two reaction relations
type Kind string

const (
	KindLike    Kind = "like"
	KindDislike Kind = "dislike"
)

// State is a user's derived reaction to a tuit.
// It is never stored; it follows from which records exist for the pair.
type State string

const (
	StateNeutral  State = "neutral"
	StateLiked    State = "liked"
	StateDisliked State = "disliked"
)

// Reaction is a LikeRecord or DislikeRecord.
// At most one record of each kind exists per (UserID, PostID).
type Reaction struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ID        string    `json:"id" db:"id"`
	Kind      Kind      `json:"kind" db:"-"`
	UserID    string    `json:"userId" db:"user_id"`
	PostID    string    `json:"postId" db:"tuit_id"`
}

// ToggleResult describes the outcome of a committed toggle
type ToggleResult struct {
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	Previous  State  `json:"previous"`
	State     State  `json:"state"`
	LikeCount int    `json:"likeCount"`
}

// Changed reports whether the toggle moved the user to a different state
func (r *ToggleResult) Changed() bool {
	return r.Previous != r.State
}

// Counts holds the raw relation sizes for a tuit
type Counts struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Net is the value the aggregate like counter must converge to
func (c Counts) Net() int {
	return c.Likes - c.Dislikes
}

// ReconcileResult reports a counter repair
type ReconcileResult struct {
	PostID   string `json:"postId"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}

// Drifted reports whether the stored counter had to be corrected
func (r *ReconcileResult) Drifted() bool {
	return r.Previous != r.Current
}

// stateOf derives the reaction state from record presence.
// Both records present breaks mutual exclusivity and is never mapped to a state.
func stateOf(liked, disliked bool) (State, error) {
	switch {
	case liked && disliked:
		return "", ErrInvariantViolation
	case liked:
		return StateLiked, nil
	case disliked:
		return StateDisliked, nil
	default:
		return StateNeutral, nil
	}
}

// transition is one row of a toggle table: the record changes to apply and
// the resulting state
type transition struct {
	next          State
	removeLike    bool
	removeDislike bool
	addLike       bool
	addDislike    bool
}

// delta is the change to likes − dislikes caused by the record changes
func (t transition) delta() int {
	d := 0
	if t.addLike {
		d++
	}
	if t.removeLike {
		d--
	}
	if t.addDislike {
		d--
	}
	if t.removeDislike {
		d++
	}
	return d
}

// planner picks the transition for the current state
type planner func(current State) transition

// dislikeToggle:
//
//	Disliked -> Neutral   (remove dislike)              +1
//	Liked    -> Disliked  (remove like, add dislike)    -2
//	Neutral  -> Disliked  (add dislike)                 -1
func dislikeToggle(current State) transition {
	switch current {
	case StateDisliked:
		return transition{next: StateNeutral, removeDislike: true}
	case StateLiked:
		return transition{next: StateDisliked, removeLike: true, addDislike: true}
	default:
		return transition{next: StateDisliked, addDislike: true}
	}
}

// likeToggle mirrors dislikeToggle
func likeToggle(current State) transition {
	switch current {
	case StateLiked:
		return transition{next: StateNeutral, removeLike: true}
	case StateDisliked:
		return transition{next: StateLiked, removeDislike: true, addLike: true}
	default:
		return transition{next: StateLiked, addLike: true}
	}
}

func unlike(current State) transition {
	if current == StateLiked {
		return transition{next: StateNeutral, removeLike: true}
	}
	return transition{next: current}
}

func undislike(current State) transition {
	if current == StateDisliked {
		return transition{next: StateNeutral, removeDislike: true}
	}
	return transition{next: current}
}
