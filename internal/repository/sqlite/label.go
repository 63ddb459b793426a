package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/savebox/internal/model"
)

// CreateLabel inserts a tag or collection. No uniqueness is enforced on
// (owner, name); saving the same name twice yields two rows.
//
// The table name comes from l.Kind, which is checked against the two known
// kinds before it is spliced into the statement.
func (db *DB) CreateLabel(ctx context.Context, l *model.Label) error {
	if !l.Kind.Valid() {
		return fmt.Errorf("sqlite: unknown label kind %q", l.Kind)
	}

	l.CreatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (owner_key, name, color, created_at) VALUES (?, ?, ?, ?)`, l.Kind),
		l.OwnerKey,
		l.Name,
		l.Color,
		l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating %s: %w", l.Kind.Singular(), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading %s id: %w", l.Kind.Singular(), err)
	}
	l.ID = id

	return nil
}

// ListLabels returns the owner's tags or collections, newest first.
func (db *DB) ListLabels(ctx context.Context, kind model.LabelKind, ownerKey string) ([]model.Label, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("sqlite: unknown label kind %q", kind)
	}

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, owner_key, name, color, created_at
		 FROM %s
		 WHERE owner_key = ?
		 ORDER BY created_at DESC, id DESC`, kind),
		ownerKey,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s: %w", kind, err)
	}
	defer rows.Close()

	labels := make([]model.Label, 0)
	for rows.Next() {
		l := model.Label{Kind: kind}
		if err := rows.Scan(&l.ID, &l.OwnerKey, &l.Name, &l.Color, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", kind.Singular(), err)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s: %w", kind, err)
	}

	return labels, nil
}
