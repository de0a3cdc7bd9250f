package users

import (
	"time"
)

// User represents a Tuiter account.
// Only the ID matters to reaction bookkeeping; the profile fields are returned
// when likers and dislikers of a tuit are resolved.
type User struct {
	CreatedAt    time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	ID           string    `json:"id" db:"id" bson:"_id"`
	Username     string    `json:"username" db:"username" bson:"username"`
	Email        string    `json:"email,omitempty" db:"email" bson:"email,omitempty"`
	FirstName    string    `json:"firstName,omitempty" db:"first_name" bson:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty" db:"last_name" bson:"lastName,omitempty"`
	ProfilePhoto string    `json:"profilePhoto,omitempty" db:"profile_photo" bson:"profilePhoto,omitempty"`
	Biography    string    `json:"biography,omitempty" db:"biography" bson:"biography,omitempty"`
}
