package types

import (
	"strings"
	"time"
)

// AssetType defines a record shape and the table backing it. SuperTypeID,
// OwnerID and BookingTypeID hold plain identifiers, never direct references;
// tree walks resolve them by repeated catalog lookup.
type AssetType struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Columns       []Column  `json:"columns"`
	TableName     string    `json:"table_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	SuperTypeID   int64     `json:"super_type_id"`
	IsSlave       bool      `json:"is_slave"`
	OwnerID       int64     `json:"owner_id"`
	Bookable      bool      `json:"bookable"`
	BookingTypeID int64     `json:"booking_type_id"`
}

// assetTablePrefix marks every backing table created for an asset type.
const assetTablePrefix = "shelf_asset_"

// AssetTableName derives the physical backing table name from a type name:
// lower-cased, spaces replaced by underscores, fixed prefix. Both the
// registry and the asset manager rely on this single implementation.
func AssetTableName(name string) string {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	return assetTablePrefix + normalized
}

// System column db names present on every backing table, next to the
// declared columns and the implicit id primary key.
const (
	SysCreated    = "sys_created"
	SysUpdated    = "sys_updated"
	SysExtendedBy = "sys_extended_by_id"
	SysSubType    = "sys_sub_type_id"
	SysSubID      = "sys_sub_id"
)

// SystemColumns returns the five system columns appended to every backing
// table. The returned slice is a fresh copy.
func SystemColumns() []Column {
	return []Column{
		{Label: "Created", DBName: SysCreated, Type: DateTime, Required: true},
		{Label: "Updated", DBName: SysUpdated, Type: DateTime, Required: true},
		{Label: "Extended By", DBName: SysExtendedBy, Type: Integer, Required: true},
		{Label: "Sub Type", DBName: SysSubType, Type: Integer, Required: true},
		{Label: "Sub Asset", DBName: SysSubID, Type: Integer, Required: true},
	}
}
