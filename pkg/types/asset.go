package types

import "time"

// Asset is one record conforming to an asset type. Data maps column db names
// to semantic values; after depth-bounded resolution a reference column holds
// a *Asset (or []*Asset) instead of the bare id. ExtendedByID links a record
// to the super-type record carrying the fields this type does not own.
type Asset struct {
	ID           int64          `json:"id"`
	Data         map[string]any `json:"data"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ExtendedByID int64          `json:"extended_by_id"`
}
