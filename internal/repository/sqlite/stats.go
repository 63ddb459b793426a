package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/savebox/internal/model"
)

// CountByOwner counts the owner's bookmarks, tags and collections.
// A brand-new owner gets zeros, not an error.
func (db *DB) CountByOwner(ctx context.Context, ownerKey string) (model.Stats, error) {
	var s model.Stats

	err := db.conn.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM bookmarks   WHERE owner_key = ?),
		   (SELECT COUNT(*) FROM tags        WHERE owner_key = ?),
		   (SELECT COUNT(*) FROM collections WHERE owner_key = ?)`,
		ownerKey, ownerKey, ownerKey,
	).Scan(&s.Bookmarks, &s.Tags, &s.Collections)
	if err != nil {
		return model.Stats{}, fmt.Errorf("sqlite: counting records for %s: %w", ownerKey, err)
	}

	return s, nil
}
