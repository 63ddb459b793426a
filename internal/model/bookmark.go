// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Bookmark is a saved URL, note or image, owned by exactly one user key.
//
// Tags and Collections are denormalised label names, not foreign keys:
// renaming a tag does not touch bookmarks that carry it.
//
// The two embeddings are stored verbatim from the provider. They are
// excluded from JSON because a 1536-float vector per field would dwarf
// the rest of a library response.
type Bookmark struct {
	ID               int64     `json:"id"`
	OwnerKey         string    `json:"-"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	URL              string    `json:"url,omitempty"`
	Image            string    `json:"image,omitempty"`
	Tags             []string  `json:"tags"`
	Collections      []string  `json:"collections"`
	EmbeddingTitle   []float32 `json:"-"`
	EmbeddingSummary []float32 `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}
