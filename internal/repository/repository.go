// Package repository declares the storage contracts the services depend on.
//
// Every method is scoped by an owner key: no query ever returns rows that
// belong to another owner. Two backends implement these interfaces,
// repository/sqlite (default) and repository/postgres.
package repository

import (
	"context"

	"github.com/sakif/savebox/internal/model"
)

// Tables lists every table the schema-ensure step knows how to create.
var Tables = []string{"bookmarks", "tags", "collections", "user_interests"}

type BookmarkRepository interface {
	// CreateBookmark inserts b and fills in b.ID and b.CreatedAt.
	CreateBookmark(ctx context.Context, b *model.Bookmark) error
	// ListBookmarks returns the owner's bookmarks, newest first.
	ListBookmarks(ctx context.Context, ownerKey string) ([]model.Bookmark, error)
}

type LabelRepository interface {
	CreateLabel(ctx context.Context, l *model.Label) error
	ListLabels(ctx context.Context, kind model.LabelKind, ownerKey string) ([]model.Label, error)
}

type InterestRepository interface {
	// UpsertInterests replaces the owner's interest list in full.
	UpsertInterests(ctx context.Context, in *model.UserInterests) error
	// GetInterests returns apperror.ErrNotFound when the owner has never saved any.
	GetInterests(ctx context.Context, ownerKey string) (*model.UserInterests, error)
}

type StatsRepository interface {
	CountByOwner(ctx context.Context, ownerKey string) (model.Stats, error)
}

// Store is everything a backend provides. The composition root holds a
// Store; services only receive the narrow interface they need.
type Store interface {
	BookmarkRepository
	LabelRepository
	InterestRepository
	StatsRepository

	EnsureSchema(ctx context.Context, table string) error
	Ping(ctx context.Context) error
	Close() error
}
