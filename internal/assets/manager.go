// Package assets implements typed record CRUD over the backing tables the
// registry maintains. Values convert between their semantic and stored forms
// through the column's data type; reference columns resolve into nested
// records up to a caller-chosen depth.
package assets

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelf/internal/registry"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Manager reads and writes asset records. Type definitions come from the
// registry; rows go through the Store.
type Manager struct {
	store    types.Store
	registry *registry.Manager
	log      zerolog.Logger
}

// New builds an asset manager over store and reg.
func New(store types.Store, reg *registry.Manager, log zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		registry: reg,
		log:      log.With().Str("component", "assets").Logger(),
	}
}

var systemHeaders = []string{types.SysCreated, types.SysUpdated, types.SysExtendedBy}

func headers(at *types.AssetType) []string {
	h := make([]string, 0, len(at.Columns)+len(systemHeaders))
	for _, c := range at.Columns {
		h = append(h, c.DBName)
	}
	return append(h, systemHeaders...)
}

// Create stores a as a new record of at and returns the stored copy. When at
// extends a super type, the fields the super-type chain owns are split off
// into a linked record of that type first. Returns nil when at is not
// registered.
func (m *Manager) Create(at *types.AssetType, a *types.Asset) (*types.Asset, error) {
	exists, err := m.registry.Exists(at)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var extendedBy int64
	data := a.Data
	if at.SuperTypeID > 0 {
		super, err := m.registry.GetOneByID(at.SuperTypeID, false)
		if err != nil {
			return nil, err
		}
		if super == nil {
			return nil, fmt.Errorf("%w: id %d", types.ErrSuperTypeNotFound, at.SuperTypeID)
		}
		own := make(map[string]bool, len(at.Columns))
		for _, c := range at.Columns {
			own[c.DBName] = true
		}
		ownData := make(map[string]any)
		superData := make(map[string]any)
		for k, v := range data {
			if own[k] {
				ownData[k] = v
			} else {
				superData[k] = v
			}
		}
		superAsset, err := m.Create(super, &types.Asset{Data: superData})
		if err != nil {
			return nil, err
		}
		if superAsset == nil {
			return nil, fmt.Errorf("%w: %s", types.ErrSuperTypeNotFound, super.Name)
		}
		extendedBy = superAsset.ID
		data = ownData
	}

	created := time.Now().Truncate(time.Second)
	row, err := dataToRow(data, at.Columns)
	if err != nil {
		return nil, err
	}
	row[types.SysCreated] = created.Unix()
	row[types.SysUpdated] = created.Unix()
	row[types.SysExtendedBy] = extendedBy
	row[types.SysSubType] = int64(0)
	row[types.SysSubID] = int64(0)

	id, err := m.store.InsertRow(types.AssetTableName(at.Name), row)
	if err != nil {
		return nil, fmt.Errorf("storing %s record: %w", at.Name, err)
	}
	m.log.Debug().Str("type", at.Name).Int64("id", id).Msg("asset created")
	return &types.Asset{
		ID:           id,
		Data:         data,
		CreatedAt:    created,
		UpdatedAt:    created,
		ExtendedByID: extendedBy,
	}, nil
}

// dataToRow converts semantic values into their stored form, one entry per
// declared column. Absent optional values store as nil; an absent required
// value is an error.
func dataToRow(data map[string]any, cols []types.Column) (types.Row, error) {
	row := make(types.Row, len(cols))
	for _, c := range cols {
		v, ok := data[c.DBName]
		if !ok || v == nil {
			if c.Required {
				return nil, fmt.Errorf("%w: %s", types.ErrMissingRequiredField, c.DBName)
			}
			row[c.DBName] = nil
			continue
		}
		stored, err := c.Type.ToStored(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.DBName, err)
		}
		row[c.DBName] = stored
	}
	return row, nil
}

// rowToData converts stored values back into semantic ones. Reference columns
// resolve into nested records while depth lasts; at depth zero they keep
// their bare ids.
func (m *Manager) rowToData(row types.Row, cols []types.Column, depth int) (map[string]any, error) {
	data := make(map[string]any, len(cols))
	for _, c := range cols {
		v, err := c.Type.FromStored(row[c.DBName])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.DBName, err)
		}
		if v == nil && c.Required {
			return nil, fmt.Errorf("%w: %s", types.ErrMissingRequiredField, c.DBName)
		}
		if depth > 0 && v != nil {
			switch c.Type {
			case types.AssetRef:
				id := v.(int64)
				if id > 0 {
					ref, err := m.resolveRef(c.RefTypeID, id, depth-1)
					if err != nil {
						return nil, err
					}
					v = ref
				}
			case types.AssetList:
				ids := v.([]int64)
				refs := make([]*types.Asset, 0, len(ids))
				for _, id := range ids {
					ref, err := m.resolveRef(c.RefTypeID, id, depth-1)
					if err != nil {
						return nil, err
					}
					refs = append(refs, ref)
				}
				v = refs
			}
		}
		data[c.DBName] = v
	}
	return data, nil
}

func (m *Manager) resolveRef(typeID, assetID int64, depth int) (*types.Asset, error) {
	rt, err := m.registry.GetOneByID(typeID, false)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, fmt.Errorf("%w: referenced type id %d", types.ErrTypeNotFound, typeID)
	}
	return m.GetOne(assetID, rt, depth)
}

// GetOne returns the record of at with the given id, or nil when absent.
// depth bounds reference resolution.
func (m *Manager) GetOne(id int64, at *types.AssetType, depth int) (*types.Asset, error) {
	rows, err := m.store.Read(types.AssetTableName(at.Name), headers(at),
		types.Query{And: []types.Filter{types.Eq(types.IDColumn, id)}})
	if err != nil {
		return nil, fmt.Errorf("reading %s record: %w", at.Name, err)
	}
	if len(rows) > 1 {
		return nil, fmt.Errorf("%w: %d rows share id %d", types.ErrConstraintViolation, len(rows), id)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return m.assetFromRow(rows[0], at, depth)
}

func (m *Manager) assetFromRow(row types.Row, at *types.AssetType, depth int) (*types.Asset, error) {
	data, err := m.rowToData(row, at.Columns, depth)
	if err != nil {
		return nil, err
	}
	id, err := asInt(row[types.IDColumn])
	if err != nil {
		return nil, err
	}
	created, err := asInt(row[types.SysCreated])
	if err != nil {
		return nil, err
	}
	updated, err := asInt(row[types.SysUpdated])
	if err != nil {
		return nil, err
	}
	extendedBy, err := asInt(row[types.SysExtendedBy])
	if err != nil {
		return nil, err
	}
	return &types.Asset{
		ID:           id,
		Data:         data,
		CreatedAt:    time.Unix(created, 0).UTC(),
		UpdatedAt:    time.Unix(updated, 0).UTC(),
		ExtendedByID: extendedBy,
	}, nil
}

// GetAll lists every record of at.
func (m *Manager) GetAll(at *types.AssetType, depth int) ([]*types.Asset, error) {
	return m.GetBatch(at, nil, nil, 0, 0, depth)
}

// GetAllFiltered lists the records of at matching the conjunction of and plus
// the disjunction of or.
func (m *Manager) GetAllFiltered(at *types.AssetType, and, or []types.Filter, depth int) ([]*types.Asset, error) {
	return m.GetBatch(at, and, or, 0, 0, depth)
}

// GetBatch lists a page of records of at matching the filters, ordered by id.
func (m *Manager) GetBatch(at *types.AssetType, and, or []types.Filter, offset, limit, depth int) ([]*types.Asset, error) {
	exists, err := m.registry.Exists(at)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", types.ErrTypeNotFound, at.Name)
	}
	rows, err := m.store.Read(types.AssetTableName(at.Name), headers(at),
		types.Query{And: and, Or: or, Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("reading %s records: %w", at.Name, err)
	}
	result := make([]*types.Asset, 0, len(rows))
	for _, row := range rows {
		a, err := m.assetFromRow(row, at, depth)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

// Count returns the number of records of at matching the conjunction of and.
func (m *Manager) Count(at *types.AssetType, and []types.Filter) (int, error) {
	exists, err := m.registry.Exists(at)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %s", types.ErrTypeNotFound, at.Name)
	}
	n, err := m.store.Count(types.AssetTableName(at.Name), and)
	if err != nil {
		return 0, fmt.Errorf("counting %s records: %w", at.Name, err)
	}
	return n, nil
}

// Delete removes a from at's table. Linked super-type records are kept.
func (m *Manager) Delete(at *types.AssetType, a *types.Asset) error {
	if a.ID == 0 {
		return fmt.Errorf("%w: asset id", types.ErrMissingID)
	}
	err := m.store.DeleteRows(types.AssetTableName(at.Name),
		[]types.Filter{types.Eq(types.IDColumn, a.ID)})
	if err != nil {
		return fmt.Errorf("deleting %s record: %w", at.Name, err)
	}
	m.log.Debug().Str("type", at.Name).Int64("id", a.ID).Msg("asset deleted")
	return nil
}

// Update rewrites the stored record of a.
func (m *Manager) Update(at *types.AssetType, a *types.Asset) (*types.Asset, error) {
	if a.ID == 0 {
		return nil, fmt.Errorf("%w: asset id", types.ErrMissingID)
	}
	if at.TableName == "" {
		return nil, fmt.Errorf("%w: type %s has no backing table name", types.ErrMissingID, at.Name)
	}
	exists, err := m.registry.Exists(at)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", types.ErrTypeNotFound, at.Name)
	}
	row, err := dataToRow(a.Data, at.Columns)
	if err != nil {
		return nil, err
	}
	updated := time.Now().Truncate(time.Second)
	row[types.IDColumn] = a.ID
	row[types.SysExtendedBy] = a.ExtendedByID
	row[types.SysUpdated] = updated.Unix()
	if err := m.store.UpdateRow(at.TableName, row); err != nil {
		return nil, fmt.Errorf("updating %s record: %w", at.Name, err)
	}
	m.log.Debug().Str("type", at.Name).Int64("id", a.ID).Msg("asset updated")
	return m.GetOne(a.ID, at, 0)
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
