package model

import "time"

// LabelKind selects which of the two label resources a Label belongs to.
// The value doubles as the table name, so only the constants below are valid.
type LabelKind string

const (
	KindTag        LabelKind = "tags"
	KindCollection LabelKind = "collections"
)

// Valid reports whether k names a known label table.
func (k LabelKind) Valid() bool {
	return k == KindTag || k == KindCollection
}

// Singular is used in log lines and error messages ("tag", "collection").
func (k LabelKind) Singular() string {
	switch k {
	case KindTag:
		return "tag"
	case KindCollection:
		return "collection"
	default:
		return string(k)
	}
}

// Label is a Tag or a Collection. Both resources have the same shape:
// a name and a free-text colour. Duplicate names per owner are allowed.
type Label struct {
	ID        int64     `json:"id"`
	Kind      LabelKind `json:"-"`
	OwnerKey  string    `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}
