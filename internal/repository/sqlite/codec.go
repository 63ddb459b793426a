package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// encodeList stores a string slice as a JSON array. nil becomes "[]" so the
// NOT NULL columns never see NULL.
func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	items := []string{}
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	return items, nil
}

// encodeVector stores an embedding as a JSON array; a nil vector is NULL.
func encodeVector(v []float32) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding vector: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeVector(raw sql.NullString) ([]float32, error) {
	if !raw.Valid {
		return nil, nil
	}
	var v []float32
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		return nil, fmt.Errorf("decoding vector: %w", err)
	}
	return v, nil
}
