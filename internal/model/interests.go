package model

import "time"

// UserInterests holds the free-text interest labels for one owner.
// There is at most one row per owner; writes replace the whole list.
type UserInterests struct {
	ID        int64     `json:"id"`
	OwnerKey  string    `json:"-"`
	Interests []string  `json:"interests"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats counts an owner's records per resource.
type Stats struct {
	Bookmarks   int `json:"bookmarks"`
	Tags        int `json:"tags"`
	Collections int `json:"collections"`
}
