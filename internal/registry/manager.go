// Package registry keeps the catalog of asset types and the physical tables
// backing them. Creating a type creates its table; updating a type migrates
// the table; deleting a type drops it. The catalog itself is one more table
// managed through the same Store contract.
package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// CatalogTable holds one row per registered asset type.
const CatalogTable = "shelf_asset_types"

// Catalog column db names.
const (
	colName        = "name"
	colColumns     = "columns"
	colTableName   = "table_name"
	colCreated     = "created"
	colUpdated     = "updated"
	colSuperType   = "super_type"
	colIsSlave     = "is_slave"
	colOwnerID     = "owner_id"
	colBookingType = "booking_type_id"
)

var catalogColumns = []types.Column{
	{Label: "Name", DBName: colName, Type: types.Text, Required: true, Unique: true},
	{Label: "Columns", DBName: colColumns, Type: types.Text, Required: true},
	{Label: "Table Name", DBName: colTableName, Type: types.Text, Required: true, Unique: true},
	{Label: "Created", DBName: colCreated, Type: types.DateTime, Required: true},
	{Label: "Updated", DBName: colUpdated, Type: types.DateTime, Required: true},
	{Label: "Super Type", DBName: colSuperType, Type: types.Integer, Required: true},
	{Label: "Is Slave", DBName: colIsSlave, Type: types.Boolean, Required: true},
	{Label: "Owner", DBName: colOwnerID, Type: types.Integer, Required: true},
	{Label: "Booking Type", DBName: colBookingType, Type: types.Integer, Required: true},
}

var catalogHeaders = []string{
	colName, colColumns, colTableName, colCreated, colUpdated,
	colSuperType, colIsSlave, colOwnerID, colBookingType,
}

// Manager is the asset type registry. It owns the catalog table and every
// backing table derived from it.
type Manager struct {
	store types.Store
	log   zerolog.Logger
}

// New builds a registry on store, creating the catalog table if needed.
func New(store types.Store, log zerolog.Logger) (*Manager, error) {
	m := &Manager{
		store: store,
		log:   log.With().Str("component", "registry").Logger(),
	}
	if err := store.CreateTable(CatalogTable, catalogColumns); err != nil {
		return nil, fmt.Errorf("creating catalog table: %w", err)
	}
	return m, nil
}

// Create registers at and creates its backing table. For a bookable type the
// booking companion type is created first and linked through BookingTypeID.
// The returned copy carries the assigned id and timestamps; at is not
// modified.
func (m *Manager) Create(at *types.AssetType) (*types.AssetType, error) {
	if at.Name == "" {
		return nil, fmt.Errorf("%w: asset type name must not be empty", types.ErrInvalidArgument)
	}
	// Reject names whose derived table name is not a usable identifier
	// before anything is written to the catalog.
	if !types.ValidIdent(types.AssetTableName(at.Name)) {
		return nil, fmt.Errorf("%w: type name %q derives table name %q",
			types.ErrInvalidIdent, at.Name, types.AssetTableName(at.Name))
	}
	for _, c := range at.Columns {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	exists, err := m.ExistsName(at.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", types.ErrAlreadyExists, at.Name)
	}

	created := time.Now().Truncate(time.Second)
	fresh := *at
	fresh.Columns = append([]types.Column(nil), at.Columns...)
	fresh.TableName = types.AssetTableName(at.Name)
	fresh.CreatedAt = created
	fresh.UpdatedAt = created

	if at.Bookable {
		booking, err := m.Create(bookingCompanion(at.Name))
		if err != nil {
			return nil, fmt.Errorf("creating booking companion for %s: %w", at.Name, err)
		}
		fresh.BookingTypeID = booking.ID
		defer func() {
			if fresh.ID == 0 {
				return
			}
			// Back-link the companion to its owner.
			booking.OwnerID = fresh.ID
			if _, err := m.Update(booking, false); err != nil {
				m.log.Error().Err(err).Str("type", booking.Name).Msg("linking booking companion")
			}
		}()
	}

	blob, err := types.EncodeColumns(fresh.Columns)
	if err != nil {
		return nil, err
	}
	id, err := m.store.InsertRow(CatalogTable, types.Row{
		colName:        fresh.Name,
		colColumns:     blob,
		colTableName:   fresh.TableName,
		colCreated:     created.Unix(),
		colUpdated:     created.Unix(),
		colSuperType:   fresh.SuperTypeID,
		colIsSlave:     boolToInt(fresh.IsSlave),
		colOwnerID:     fresh.OwnerID,
		colBookingType: fresh.BookingTypeID,
	})
	if err != nil {
		return nil, fmt.Errorf("registering asset type %s: %w", fresh.Name, err)
	}
	fresh.ID = id

	cols := append(append([]types.Column(nil), fresh.Columns...), types.SystemColumns()...)
	if err := m.store.CreateTable(fresh.TableName, cols); err != nil {
		return nil, fmt.Errorf("creating backing table for %s: %w", fresh.Name, err)
	}
	m.log.Info().Str("type", fresh.Name).Int64("id", id).Msg("asset type created")
	return &fresh, nil
}

// bookingCompanion shapes the slave type holding the bookings of a bookable
// type. Companions are never bookable themselves.
func bookingCompanion(ownerName string) *types.AssetType {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(ownerName)), " ", "_")
	return &types.AssetType{
		Name:    "bookings_" + normalized,
		IsSlave: true,
		Columns: []types.Column{
			{Label: "From", DBName: "from_time", Type: types.DateTime, Required: true},
			{Label: "Until", DBName: "until_time", Type: types.DateTime, Required: true},
			{Label: "Booker Type", DBName: "booker_type_id", Type: types.Integer, Required: true},
			{Label: "Booker", DBName: "booker_id", Type: types.Integer, Required: true},
			{Label: "Booked Asset", DBName: "booked_asset_id", Type: types.Integer, Required: true},
		},
	}
}

// Delete removes at from the catalog and drops its backing table. Records of
// child types extending at are not touched.
func (m *Manager) Delete(at *types.AssetType) error {
	if at.ID == 0 {
		return fmt.Errorf("%w: asset type id", types.ErrMissingID)
	}
	if err := m.store.DeleteRows(CatalogTable, []types.Filter{types.Eq(types.IDColumn, at.ID)}); err != nil {
		return fmt.Errorf("removing asset type %s from catalog: %w", at.Name, err)
	}
	table := at.TableName
	if table == "" {
		table = types.AssetTableName(at.Name)
	}
	if err := m.store.DeleteTable(table); err != nil {
		return fmt.Errorf("dropping backing table of %s: %w", at.Name, err)
	}
	m.log.Info().Str("type", at.Name).Int64("id", at.ID).Msg("asset type deleted")
	return nil
}

// Update rewrites the stored definition of at. A rename moves the backing
// table; a column change migrates it. The column count must stay the same.
// Returns ErrConflict when the stored definition is newer than at (stale
// copy), ErrAlreadyExists when a rename collides with another type.
func (m *Manager) Update(at *types.AssetType, extendColumns bool) (*types.AssetType, error) {
	if at.ID == 0 {
		return nil, fmt.Errorf("%w: asset type id", types.ErrMissingID)
	}
	for _, c := range at.Columns {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	stored, err := m.GetOneByID(at.ID, false)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: id %d", types.ErrTypeNotFound, at.ID)
	}
	if stored.UpdatedAt.After(at.UpdatedAt) {
		return nil, fmt.Errorf("%w: %s updated at %s", types.ErrConflict, stored.Name, stored.UpdatedAt)
	}
	if len(at.Columns) != len(stored.Columns) {
		return nil, fmt.Errorf("%w: %s has %d columns, got %d",
			types.ErrColumnCountChanged, stored.Name, len(stored.Columns), len(at.Columns))
	}

	tableName := stored.TableName
	if at.Name != stored.Name {
		taken, err := m.ExistsName(at.Name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: %s", types.ErrAlreadyExists, at.Name)
		}
		newTable := types.AssetTableName(at.Name)
		if err := m.store.RenameTable(tableName, newTable); err != nil {
			return nil, fmt.Errorf("renaming backing table of %s: %w", stored.Name, err)
		}
		tableName = newTable
	}

	cols := append(append([]types.Column(nil), at.Columns...), types.SystemColumns()...)
	if err := m.store.EvolveColumns(tableName, cols); err != nil {
		return nil, fmt.Errorf("migrating backing table of %s: %w", at.Name, err)
	}

	blob, err := types.EncodeColumns(at.Columns)
	if err != nil {
		return nil, err
	}
	updated := time.Now().Truncate(time.Second)
	err = m.store.UpdateRow(CatalogTable, types.Row{
		types.IDColumn: at.ID,
		colName:        at.Name,
		colColumns:     blob,
		colTableName:   tableName,
		colCreated:     stored.CreatedAt.Unix(),
		colUpdated:     updated.Unix(),
		colSuperType:   at.SuperTypeID,
		colIsSlave:     boolToInt(at.IsSlave),
		colOwnerID:     at.OwnerID,
		colBookingType: at.BookingTypeID,
	})
	if err != nil {
		return nil, fmt.Errorf("updating asset type %s: %w", at.Name, err)
	}
	m.log.Info().Str("type", at.Name).Int64("id", at.ID).Msg("asset type updated")
	return m.GetOneByID(at.ID, extendColumns)
}

// Exists reports whether at is registered with a live backing table.
func (m *Manager) Exists(at *types.AssetType) (bool, error) {
	if at == nil {
		return false, nil
	}
	return m.ExistsName(at.Name)
}

// ExistsName reports whether a type of the given name is registered and its
// backing table physically exists.
func (m *Manager) ExistsName(name string) (bool, error) {
	n, err := m.store.Count(CatalogTable, []types.Filter{types.Eq(colName, name)})
	if err != nil {
		return false, fmt.Errorf("checking asset type %s: %w", name, err)
	}
	if n == 0 {
		return false, nil
	}
	return m.store.TableExists(types.AssetTableName(name))
}

// GetOneByID returns the type with the given id, or nil when absent. With
// extend set, columns inherited from the super-type chain are appended.
func (m *Manager) GetOneByID(id int64, extend bool) (*types.AssetType, error) {
	return m.getOne([]types.Filter{types.Eq(types.IDColumn, id)}, extend, map[int64]bool{})
}

// GetOneByName returns the type with the given name, or nil when absent.
func (m *Manager) GetOneByName(name string, extend bool) (*types.AssetType, error) {
	return m.getOne([]types.Filter{types.Eq(colName, name)}, extend, map[int64]bool{})
}

func (m *Manager) getOne(and []types.Filter, extend bool, visited map[int64]bool) (*types.AssetType, error) {
	rows, err := m.store.Read(CatalogTable, catalogHeaders, types.Query{And: and})
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	if len(rows) > 1 {
		return nil, fmt.Errorf("%w: %d catalog rows match", types.ErrConstraintViolation, len(rows))
	}
	if len(rows) == 0 {
		return nil, nil
	}
	at, err := typeFromRow(rows[0])
	if err != nil {
		return nil, err
	}
	// visited guards against a super-type cycle in the catalog.
	if extend && at.SuperTypeID > 0 && !visited[at.ID] {
		visited[at.ID] = true
		super, err := m.getOne([]types.Filter{types.Eq(types.IDColumn, at.SuperTypeID)}, true, visited)
		if err != nil {
			return nil, err
		}
		if super == nil {
			return nil, fmt.Errorf("%w: id %d", types.ErrSuperTypeNotFound, at.SuperTypeID)
		}
		at.Columns = append(at.Columns, super.Columns...)
	}
	return at, nil
}

func typeFromRow(row types.Row) (*types.AssetType, error) {
	name, err := asString(row[colName])
	if err != nil {
		return nil, err
	}
	blob, err := asString(row[colColumns])
	if err != nil {
		return nil, err
	}
	cols, err := types.DecodeColumns(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding columns of %s: %w", name, err)
	}
	tableName, err := asString(row[colTableName])
	if err != nil {
		return nil, err
	}
	id, err := asInt(row[types.IDColumn])
	if err != nil {
		return nil, err
	}
	created, err := asInt(row[colCreated])
	if err != nil {
		return nil, err
	}
	updated, err := asInt(row[colUpdated])
	if err != nil {
		return nil, err
	}
	superType, err := asInt(row[colSuperType])
	if err != nil {
		return nil, err
	}
	isSlave, err := asInt(row[colIsSlave])
	if err != nil {
		return nil, err
	}
	owner, err := asInt(row[colOwnerID])
	if err != nil {
		return nil, err
	}
	bookingType, err := asInt(row[colBookingType])
	if err != nil {
		return nil, err
	}
	return &types.AssetType{
		ID:            id,
		Name:          name,
		Columns:       cols,
		TableName:     tableName,
		CreatedAt:     time.Unix(created, 0).UTC(),
		UpdatedAt:     time.Unix(updated, 0).UTC(),
		SuperTypeID:   superType,
		IsSlave:       isSlave != 0,
		OwnerID:       owner,
		Bookable:      bookingType > 0,
		BookingTypeID: bookingType,
	}, nil
}

// GetAll lists every registered type. With ignoreSlaves set, types that are
// owned or marked slave are filtered out.
func (m *Manager) GetAll(ignoreSlaves bool) ([]*types.AssetType, error) {
	return m.GetAllFiltered(nil, nil, ignoreSlaves)
}

// GetAllFiltered lists registered types matching the conjunction of and plus
// the disjunction of or.
func (m *Manager) GetAllFiltered(and, or []types.Filter, ignoreSlaves bool) ([]*types.AssetType, error) {
	return m.GetBatch(and, or, 0, 0, ignoreSlaves)
}

// GetBatch lists a page of registered types matching the filters, ordered by id.
func (m *Manager) GetBatch(and, or []types.Filter, offset, limit int, ignoreSlaves bool) ([]*types.AssetType, error) {
	if ignoreSlaves {
		and = append(append([]types.Filter(nil), and...),
			types.Filter{Field: colOwnerID, Op: types.OpLe, Value: 0},
			types.Eq(colIsSlave, 0),
		)
	}
	rows, err := m.store.Read(CatalogTable, catalogHeaders, types.Query{And: and, Or: or, Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	result := make([]*types.AssetType, 0, len(rows))
	for _, row := range rows {
		at, err := typeFromRow(row)
		if err != nil {
			return nil, err
		}
		result = append(result, at)
	}
	return result, nil
}

// Children lists the types descending from at. depth bounds the walk: 0
// returns direct children only, each level costs one. Negative depth walks
// the whole subtree.
func (m *Manager) Children(at *types.AssetType, depth int, ignoreSlaves bool) ([]*types.AssetType, error) {
	if at.ID == 0 {
		return nil, fmt.Errorf("%w: asset type id", types.ErrMissingID)
	}
	var result []*types.AssetType
	// visited guards against a super-type cycle in the catalog.
	visited := map[int64]bool{at.ID: true}
	frontier := []int64{at.ID}
	for len(frontier) > 0 {
		var next []int64
		for _, id := range frontier {
			children, err := m.GetAllFiltered([]types.Filter{types.Eq(colSuperType, id)}, nil, ignoreSlaves)
			if err != nil {
				return nil, err
			}
			for _, c := range children {
				if visited[c.ID] {
					continue
				}
				visited[c.ID] = true
				result = append(result, c)
				next = append(next, c.ID)
			}
		}
		if depth == 0 {
			break
		}
		depth--
		frontier = next
	}
	return result, nil
}

// Slaves lists the slave types owned by at. With pubSlaves set, unowned
// slave types are included as well.
func (m *Manager) Slaves(at *types.AssetType, pubSlaves bool) ([]*types.AssetType, error) {
	if at.ID == 0 {
		return nil, fmt.Errorf("%w: asset type id", types.ErrMissingID)
	}
	and := []types.Filter{types.Eq(colIsSlave, 1)}
	q := types.Query{And: and, Or: nil}
	if pubSlaves {
		q.Or = []types.Filter{types.Eq(colOwnerID, at.ID), types.Eq(colOwnerID, 0)}
	} else {
		q.And = append(q.And, types.Eq(colOwnerID, at.ID))
	}
	rows, err := m.store.Read(CatalogTable, catalogHeaders, q)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	result := make([]*types.AssetType, 0, len(rows))
	for _, row := range rows {
		st, err := typeFromRow(row)
		if err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, nil
}

// Count returns the number of registered types. ignoreChildTypes drops types
// with a super-type; ignoreSlaves drops owned slave companions.
func (m *Manager) Count(ignoreChildTypes, ignoreSlaves bool) (int, error) {
	var and []types.Filter
	if ignoreChildTypes {
		and = append(and, types.Eq(colSuperType, 0))
	}
	if ignoreSlaves {
		and = append(and, types.Eq(colOwnerID, 0), types.Eq(colIsSlave, 0))
	}
	n, err := m.store.Count(CatalogTable, and)
	if err != nil {
		return 0, fmt.Errorf("counting asset types: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func asInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: expected integer, got %T", types.ErrInvalidArgument, v)
	}
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("%w: expected text, got %T", types.ErrInvalidArgument, v)
	}
}
