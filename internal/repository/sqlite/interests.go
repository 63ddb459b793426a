package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/savebox/internal/apperror"
	"github.com/sakif/savebox/internal/model"
)

// UpsertInterests writes the owner's interest list, replacing any previous
// list in full.
//
// ON CONFLICT ... DO UPDATE keeps the original row (and its id and
// created_at) and only swaps the list. The UNIQUE constraint on owner_key
// makes concurrent first writes converge on a single row.
func (db *DB) UpsertInterests(ctx context.Context, in *model.UserInterests) error {
	list, err := encodeList(in.Interests)
	if err != nil {
		return fmt.Errorf("sqlite: upserting interests: %w", err)
	}

	now := time.Now().UTC()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO user_interests (owner_key, interests, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_key) DO UPDATE SET
		   interests  = excluded.interests,
		   updated_at = excluded.updated_at`,
		in.OwnerKey,
		list,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting interests for %s: %w", in.OwnerKey, err)
	}

	stored, err := db.GetInterests(ctx, in.OwnerKey)
	if err != nil {
		return err
	}
	*in = *stored

	return nil
}

// GetInterests returns the owner's interests or apperror.ErrNotFound.
func (db *DB) GetInterests(ctx context.Context, ownerKey string) (*model.UserInterests, error) {
	var (
		in   model.UserInterests
		list string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_key, interests, created_at, updated_at
		 FROM user_interests
		 WHERE owner_key = ?`,
		ownerKey,
	).Scan(&in.ID, &in.OwnerKey, &list, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("interests", ownerKey)
		}
		return nil, fmt.Errorf("sqlite: getting interests for %s: %w", ownerKey, err)
	}

	if in.Interests, err = decodeList(list); err != nil {
		return nil, fmt.Errorf("sqlite: interests for %s: %w", ownerKey, err)
	}

	return &in, nil
}
