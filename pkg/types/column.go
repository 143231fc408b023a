package types

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Column describes one typed field of an asset type. DBName is the physical
// field identifier; Label is for presentation. Columns of type AssetRef or
// AssetList carry the id of the asset type they point at in RefTypeID.
type Column struct {
	Label     string   `json:"label"`
	DBName    string   `json:"db_name"`
	Type      DataType `json:"type"`
	Required  bool     `json:"required"`
	Unique    bool     `json:"unique,omitempty"`
	RefTypeID int64    `json:"ref_type_id,omitempty"`
}

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdent reports whether s is usable as a physical table or column name.
func ValidIdent(s string) bool {
	return identPattern.MatchString(s)
}

// Validate checks that the column is well-formed.
func (c Column) Validate() error {
	if c.Label == "" {
		return fmt.Errorf("%w: column label must not be empty", ErrInvalidArgument)
	}
	if !ValidIdent(c.DBName) {
		return fmt.Errorf("%w: column name %q", ErrInvalidIdent, c.DBName)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: column %s has unknown type %q", ErrInvalidArgument, c.DBName, string(c.Type))
	}
	if c.Type.IsReference() && c.RefTypeID <= 0 {
		return fmt.Errorf("%w: reference column %s needs a referenced type id", ErrInvalidArgument, c.DBName)
	}
	return nil
}

// columnBlob is the versioned catalog encoding of a column set. The version
// field allows the encoding to evolve without breaking stored catalogs.
type columnBlob struct {
	Version int      `json:"v"`
	Columns []Column `json:"columns"`
}

const columnBlobVersion = 1

// EncodeColumns serializes a column set into the single text field stored in
// the catalog. DecodeColumns is the exact inverse; column order is preserved.
func EncodeColumns(cols []Column) (string, error) {
	raw, err := json.Marshal(columnBlob{Version: columnBlobVersion, Columns: cols})
	if err != nil {
		return "", fmt.Errorf("encoding columns: %w", err)
	}
	return string(raw), nil
}

// DecodeColumns restores a column set from its catalog encoding.
func DecodeColumns(blob string) ([]Column, error) {
	var b columnBlob
	if err := json.Unmarshal([]byte(blob), &b); err != nil {
		return nil, fmt.Errorf("decoding columns: %w", err)
	}
	if b.Version != columnBlobVersion {
		return nil, fmt.Errorf("%w: unsupported column encoding version %d", ErrInvalidArgument, b.Version)
	}
	return b.Columns, nil
}
