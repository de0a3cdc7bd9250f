package posts

import (
	"time"

	"Tuiter/internal/core/users"
)

// Stats is the denormalized counter block stored on each tuit.
// Likes holds likes minus dislikes and may be negative.
type Stats struct {
	Replies int `json:"replies" db:"replies" bson:"replies"`
	Retuits int `json:"retuits" db:"retuits" bson:"retuits"`
	Likes   int `json:"likes" db:"likes" bson:"likes"`
}

// Post represents a tuit.
// Author is only populated by queries that resolve the postedBy relation.
type Post struct {
	PostedOn     time.Time   `json:"postedOn" db:"posted_on" bson:"postedOn"`
	DeletedAt    *time.Time  `json:"deletedAt,omitempty" db:"deleted_at" bson:"deletedAt,omitempty"`
	Author       *users.User `json:"author,omitempty" db:"-" bson:"-"`
	Image        *string     `json:"image,omitempty" db:"image" bson:"image,omitempty"`
	Youtube      *string     `json:"youtube,omitempty" db:"youtube" bson:"youtube,omitempty"`
	AvatarLogo   *string     `json:"avatarLogo,omitempty" db:"avatar_logo" bson:"avatarLogo,omitempty"`
	ImageOverlay *string     `json:"imageOverlay,omitempty" db:"image_overlay" bson:"imageOverlay,omitempty"`
	ID           string      `json:"id" db:"id" bson:"_id"`
	Tuit         string      `json:"tuit" db:"tuit" bson:"tuit"`
	PostedBy     string      `json:"postedBy" db:"posted_by" bson:"postedBy"`
	Stats        Stats       `json:"stats" db:"-" bson:"stats"`
}

// IsDeleted reports whether the tuit has been soft-deleted
func (p *Post) IsDeleted() bool {
	return p.DeletedAt != nil
}
