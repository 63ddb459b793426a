package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/savebox/internal/model"
)

// CreateBookmark inserts a bookmark and fills in its generated ID and timestamp.
//
// The embeddings are written exactly as given; their length is not checked here.
//
// PARAMETERIZED QUERIES (the ? placeholders):
// NEVER build SQL strings with fmt.Sprintf or string concatenation!
// The driver safely binds every value, including the JSON-encoded lists.
func (db *DB) CreateBookmark(ctx context.Context, b *model.Bookmark) error {
	tags, err := encodeList(b.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: creating bookmark: %w", err)
	}
	collections, err := encodeList(b.Collections)
	if err != nil {
		return fmt.Errorf("sqlite: creating bookmark: %w", err)
	}
	embTitle, err := encodeVector(b.EmbeddingTitle)
	if err != nil {
		return fmt.Errorf("sqlite: creating bookmark: %w", err)
	}
	embSummary, err := encodeVector(b.EmbeddingSummary)
	if err != nil {
		return fmt.Errorf("sqlite: creating bookmark: %w", err)
	}

	b.CreatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO bookmarks
		   (owner_key, title, summary, url, image, tags, collections,
		    embedding_title, embedding_summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.OwnerKey,
		b.Title,
		b.Summary,
		b.URL,
		b.Image,
		tags,
		collections,
		embTitle,
		embSummary,
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating bookmark: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading bookmark id: %w", err)
	}
	b.ID = id

	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.Collections == nil {
		b.Collections = []string{}
	}

	return nil
}

// ListBookmarks returns every bookmark the owner has saved, newest first.
// Rows created in the same instant come back highest id first.
func (db *DB) ListBookmarks(ctx context.Context, ownerKey string) ([]model.Bookmark, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, owner_key, title, summary, url, image, tags, collections,
		        embedding_title, embedding_summary, created_at
		 FROM bookmarks
		 WHERE owner_key = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerKey,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing bookmarks: %w", err)
	}
	// CRITICAL: always close rows when done!
	defer rows.Close()

	bookmarks := make([]model.Bookmark, 0)

	for rows.Next() {
		var (
			b                    model.Bookmark
			tags, collections    string
			embTitle, embSummary sql.NullString
		)
		if err := rows.Scan(
			&b.ID, &b.OwnerKey, &b.Title, &b.Summary, &b.URL, &b.Image,
			&tags, &collections, &embTitle, &embSummary, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning bookmark row: %w", err)
		}

		if b.Tags, err = decodeList(tags); err != nil {
			return nil, fmt.Errorf("sqlite: bookmark %d tags: %w", b.ID, err)
		}
		if b.Collections, err = decodeList(collections); err != nil {
			return nil, fmt.Errorf("sqlite: bookmark %d collections: %w", b.ID, err)
		}
		if b.EmbeddingTitle, err = decodeVector(embTitle); err != nil {
			return nil, fmt.Errorf("sqlite: bookmark %d title embedding: %w", b.ID, err)
		}
		if b.EmbeddingSummary, err = decodeVector(embSummary); err != nil {
			return nil, fmt.Errorf("sqlite: bookmark %d summary embedding: %w", b.ID, err)
		}

		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating bookmarks: %w", err)
	}

	return bookmarks, nil
}
