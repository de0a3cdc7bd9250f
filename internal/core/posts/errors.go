package posts

import "errors"

// ErrNotFound is returned when a tuit does not exist or has been deleted
var ErrNotFound = errors.New("post not found")
