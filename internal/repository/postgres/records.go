package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/sakif/savebox/internal/apperror"
	"github.com/sakif/savebox/internal/model"
)

// nullVector maps a nil embedding to SQL NULL.
func nullVector(v []float32) any {
	if v == nil {
		return nil
	}
	return pgvector.NewVector(v)
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func (db *DB) CreateBookmark(ctx context.Context, b *model.Bookmark) error {
	b.Tags = orEmpty(b.Tags)
	b.Collections = orEmpty(b.Collections)

	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO bookmarks
		   (owner_key, title, summary, url, image, tags, collections,
		    embedding_title, embedding_summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		b.OwnerKey,
		b.Title,
		b.Summary,
		b.URL,
		b.Image,
		pq.Array(b.Tags),
		pq.Array(b.Collections),
		nullVector(b.EmbeddingTitle),
		nullVector(b.EmbeddingSummary),
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: creating bookmark: %w", err)
	}
	return nil
}

func (db *DB) ListBookmarks(ctx context.Context, ownerKey string) ([]model.Bookmark, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, owner_key, title, summary, url, image, tags, collections,
		        embedding_title, embedding_summary, created_at
		 FROM bookmarks
		 WHERE owner_key = $1
		 ORDER BY created_at DESC, id DESC`,
		ownerKey,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]model.Bookmark, 0)
	for rows.Next() {
		var (
			b                    model.Bookmark
			embTitle, embSummary pgvector.Vector
			hasTitle, hasSummary sql.NullString
		)
		// Vectors are scanned as text first so NULL columns stay nil.
		if err := rows.Scan(
			&b.ID, &b.OwnerKey, &b.Title, &b.Summary, &b.URL, &b.Image,
			pq.Array(&b.Tags), pq.Array(&b.Collections),
			&hasTitle, &hasSummary, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scanning bookmark row: %w", err)
		}
		if hasTitle.Valid {
			if err := embTitle.Scan(hasTitle.String); err != nil {
				return nil, fmt.Errorf("postgres: bookmark %d title embedding: %w", b.ID, err)
			}
			b.EmbeddingTitle = embTitle.Slice()
		}
		if hasSummary.Valid {
			if err := embSummary.Scan(hasSummary.String); err != nil {
				return nil, fmt.Errorf("postgres: bookmark %d summary embedding: %w", b.ID, err)
			}
			b.EmbeddingSummary = embSummary.Slice()
		}
		b.Tags = orEmpty(b.Tags)
		b.Collections = orEmpty(b.Collections)
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating bookmarks: %w", err)
	}
	return bookmarks, nil
}

func (db *DB) CreateLabel(ctx context.Context, l *model.Label) error {
	if !l.Kind.Valid() {
		return fmt.Errorf("postgres: unknown label kind %q", l.Kind)
	}
	err := db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (owner_key, name, color) VALUES ($1, $2, $3) RETURNING id, created_at`, l.Kind),
		l.OwnerKey, l.Name, l.Color,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: creating %s: %w", l.Kind.Singular(), err)
	}
	return nil
}

func (db *DB) ListLabels(ctx context.Context, kind model.LabelKind, ownerKey string) ([]model.Label, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("postgres: unknown label kind %q", kind)
	}
	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, owner_key, name, color, created_at
		 FROM %s WHERE owner_key = $1
		 ORDER BY created_at DESC, id DESC`, kind),
		ownerKey,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing %s: %w", kind, err)
	}
	defer rows.Close()

	labels := make([]model.Label, 0)
	for rows.Next() {
		l := model.Label{Kind: kind}
		if err := rows.Scan(&l.ID, &l.OwnerKey, &l.Name, &l.Color, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning %s row: %w", kind.Singular(), err)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating %s: %w", kind, err)
	}
	return labels, nil
}

func (db *DB) UpsertInterests(ctx context.Context, in *model.UserInterests) error {
	in.Interests = orEmpty(in.Interests)
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO user_interests (owner_key, interests)
		 VALUES ($1, $2)
		 ON CONFLICT (owner_key) DO UPDATE SET
		   interests  = EXCLUDED.interests,
		   updated_at = now()
		 RETURNING id, created_at, updated_at`,
		in.OwnerKey, pq.Array(in.Interests),
	).Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upserting interests for %s: %w", in.OwnerKey, err)
	}
	return nil
}

func (db *DB) GetInterests(ctx context.Context, ownerKey string) (*model.UserInterests, error) {
	var in model.UserInterests
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_key, interests, created_at, updated_at
		 FROM user_interests WHERE owner_key = $1`,
		ownerKey,
	).Scan(&in.ID, &in.OwnerKey, pq.Array(&in.Interests), &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("interests", ownerKey)
		}
		return nil, fmt.Errorf("postgres: getting interests for %s: %w", ownerKey, err)
	}
	in.Interests = orEmpty(in.Interests)
	return &in, nil
}

func (db *DB) CountByOwner(ctx context.Context, ownerKey string) (model.Stats, error) {
	var s model.Stats
	err := db.conn.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM bookmarks   WHERE owner_key = $1),
		   (SELECT COUNT(*) FROM tags        WHERE owner_key = $1),
		   (SELECT COUNT(*) FROM collections WHERE owner_key = $1)`,
		ownerKey,
	).Scan(&s.Bookmarks, &s.Tags, &s.Collections)
	if err != nil {
		return model.Stats{}, fmt.Errorf("postgres: counting records for %s: %w", ownerKey, err)
	}
	return s, nil
}
