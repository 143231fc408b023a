package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func setupRegistry(t *testing.T) (*Manager, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m, err := New(store, zerolog.Nop())
	require.NoError(t, err)
	return m, store
}

func bookType() *types.AssetType {
	return &types.AssetType{
		Name: "Book",
		Columns: []types.Column{
			{Label: "Title", DBName: "title", Type: types.Text, Required: true},
			{Label: "Pages", DBName: "pages", Type: types.Integer},
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	m, store := setupRegistry(t)

	created, err := m.Create(bookType())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "shelf_asset_book", created.TableName)
	assert.False(t, created.UpdatedAt.Before(created.CreatedAt))

	exists, err := store.TableExists("shelf_asset_book")
	require.NoError(t, err)
	assert.True(t, exists, "backing table must exist")

	byID, err := m.GetOneByID(created.ID, false)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, created.Name, byID.Name)
	assert.Equal(t, created.Columns, byID.Columns)

	byName, err := m.GetOneByName("Book", false)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, created.ID, byName.ID)
}

func TestCreateDuplicate(t *testing.T) {
	m, _ := setupRegistry(t)

	_, err := m.Create(bookType())
	require.NoError(t, err)

	_, err = m.Create(bookType())
	assert.ErrorIs(t, err, types.ErrAlreadyExists)
}

func TestCreateRejectsBadColumns(t *testing.T) {
	m, _ := setupRegistry(t)

	at := bookType()
	at.Columns[0].DBName = "bad name"
	_, err := m.Create(at)
	assert.ErrorIs(t, err, types.ErrInvalidIdent)

	_, err = m.Create(&types.AssetType{})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestCreateRejectsBadName(t *testing.T) {
	m, _ := setupRegistry(t)

	at := bookType()
	at.Name = "Foo-Bar"
	_, err := m.Create(at)
	assert.ErrorIs(t, err, types.ErrInvalidIdent)

	// The rejected type must leave no trace in the catalog.
	exists, err := m.ExistsName("Foo-Bar")
	require.NoError(t, err)
	assert.False(t, exists)

	n, err := m.Count(false, false)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetMissingReturnsNil(t *testing.T) {
	m, _ := setupRegistry(t)

	at, err := m.GetOneByID(99, false)
	require.NoError(t, err)
	assert.Nil(t, at)

	at, err = m.GetOneByName("Nothing", false)
	require.NoError(t, err)
	assert.Nil(t, at)
}

func TestBookableCreatesCompanion(t *testing.T) {
	m, _ := setupRegistry(t)

	room, err := m.Create(&types.AssetType{
		Name:     "Room",
		Bookable: true,
		Columns: []types.Column{
			{Label: "Label", DBName: "label", Type: types.Text, Required: true},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, room.BookingTypeID)
	assert.True(t, room.Bookable)

	booking, err := m.GetOneByID(room.BookingTypeID, false)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, "bookings_room", booking.Name)
	assert.True(t, booking.IsSlave)
	assert.Equal(t, room.ID, booking.OwnerID, "companion must be owned by the bookable type")
	assert.False(t, booking.Bookable, "companions are never bookable")
	assert.Len(t, booking.Columns, 5)

	t.Run("hidden from default listing", func(t *testing.T) {
		list, err := m.GetAll(true)
		require.NoError(t, err)
		names := typeNames(list)
		assert.Contains(t, names, "Room")
		assert.NotContains(t, names, "bookings_room")
	})

	t.Run("visible with slaves included", func(t *testing.T) {
		list, err := m.GetAll(false)
		require.NoError(t, err)
		assert.Contains(t, typeNames(list), "bookings_room")
	})

	t.Run("listed as slave of owner", func(t *testing.T) {
		slaves, err := m.Slaves(room, false)
		require.NoError(t, err)
		require.Len(t, slaves, 1)
		assert.Equal(t, "bookings_room", slaves[0].Name)
	})
}

func typeNames(list []*types.AssetType) []string {
	names := make([]string, len(list))
	for i, at := range list {
		names[i] = at.Name
	}
	return names
}

func TestUpdateRename(t *testing.T) {
	m, store := setupRegistry(t)

	created, err := m.Create(bookType())
	require.NoError(t, err)

	created.Name = "Novel"
	updated, err := m.Update(created, false)
	require.NoError(t, err)
	assert.Equal(t, "Novel", updated.Name)
	assert.Equal(t, "shelf_asset_novel", updated.TableName)

	exists, err := store.TableExists("shelf_asset_book")
	require.NoError(t, err)
	assert.False(t, exists, "old backing table must be gone")

	exists, err = store.TableExists("shelf_asset_novel")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateRenameCollision(t *testing.T) {
	m, _ := setupRegistry(t)

	book, err := m.Create(bookType())
	require.NoError(t, err)
	_, err = m.Create(&types.AssetType{Name: "Novel", Columns: bookType().Columns})
	require.NoError(t, err)

	book.Name = "Novel"
	_, err = m.Update(book, false)
	assert.ErrorIs(t, err, types.ErrAlreadyExists)
}

func TestUpdateColumnCountChange(t *testing.T) {
	m, _ := setupRegistry(t)

	created, err := m.Create(bookType())
	require.NoError(t, err)

	created.Columns = created.Columns[:1]
	_, err = m.Update(created, false)
	assert.ErrorIs(t, err, types.ErrColumnCountChanged)
}

func TestUpdateColumnRenameKeepsData(t *testing.T) {
	m, store := setupRegistry(t)

	created, err := m.Create(bookType())
	require.NoError(t, err)

	_, err = store.InsertRow(created.TableName, types.Row{
		"title":             "Dune",
		"pages":             int64(412),
		types.SysCreated:    int64(0),
		types.SysUpdated:    int64(0),
		types.SysExtendedBy: int64(0),
		types.SysSubType:    int64(0),
		types.SysSubID:      int64(0),
	})
	require.NoError(t, err)

	created.Columns[0].DBName = "name"
	updated, err := m.Update(created, false)
	require.NoError(t, err)
	assert.Equal(t, "name", updated.Columns[0].DBName)

	rows, err := store.Read(updated.TableName, []string{"name"}, types.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune", rows[0]["name"])
}

func TestUpdateStaleCopyConflicts(t *testing.T) {
	m, _ := setupRegistry(t)

	created, err := m.Create(bookType())
	require.NoError(t, err)

	stale := *created
	// Simulate a copy fetched before a later update.
	stale.UpdatedAt = stale.UpdatedAt.Add(-2 * time.Second)

	_, err = m.Update(&stale, false)
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestUpdateMissing(t *testing.T) {
	m, _ := setupRegistry(t)

	_, err := m.Update(&types.AssetType{ID: 42, Columns: nil}, false)
	assert.ErrorIs(t, err, types.ErrTypeNotFound)

	_, err = m.Update(&types.AssetType{}, false)
	assert.ErrorIs(t, err, types.ErrMissingID)
}

func TestDeleteDropsTable(t *testing.T) {
	m, store := setupRegistry(t)

	created, err := m.Create(bookType())
	require.NoError(t, err)

	require.NoError(t, m.Delete(created))

	exists, err := m.ExistsName("Book")
	require.NoError(t, err)
	assert.False(t, exists)

	tableThere, err := store.TableExists(created.TableName)
	require.NoError(t, err)
	assert.False(t, tableThere)
}

func TestDeleteWithoutID(t *testing.T) {
	m, _ := setupRegistry(t)
	assert.ErrorIs(t, m.Delete(&types.AssetType{Name: "x"}), types.ErrMissingID)
}

func TestSuperTypeExtension(t *testing.T) {
	m, _ := setupRegistry(t)

	parent, err := m.Create(bookType())
	require.NoError(t, err)

	child, err := m.Create(&types.AssetType{
		Name:        "Novel",
		SuperTypeID: parent.ID,
		Columns: []types.Column{
			{Label: "Genre", DBName: "genre", Type: types.Text},
		},
	})
	require.NoError(t, err)

	t.Run("plain get keeps own columns", func(t *testing.T) {
		got, err := m.GetOneByID(child.ID, false)
		require.NoError(t, err)
		assert.Len(t, got.Columns, 1)
	})

	t.Run("extended get appends inherited columns", func(t *testing.T) {
		got, err := m.GetOneByID(child.ID, true)
		require.NoError(t, err)
		require.Len(t, got.Columns, 3)
		assert.Equal(t, "genre", got.Columns[0].DBName)
		assert.Equal(t, "title", got.Columns[1].DBName)
		assert.Equal(t, "pages", got.Columns[2].DBName)
	})
}

func TestChildren(t *testing.T) {
	m, _ := setupRegistry(t)

	root, err := m.Create(bookType())
	require.NoError(t, err)
	child, err := m.Create(&types.AssetType{Name: "Novel", SuperTypeID: root.ID,
		Columns: []types.Column{{Label: "Genre", DBName: "genre", Type: types.Text}}})
	require.NoError(t, err)
	_, err = m.Create(&types.AssetType{Name: "Mystery", SuperTypeID: child.ID,
		Columns: []types.Column{{Label: "Detective", DBName: "detective", Type: types.Text}}})
	require.NoError(t, err)

	t.Run("depth zero lists direct children", func(t *testing.T) {
		got, err := m.Children(root, 0, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"Novel"}, typeNames(got))
	})

	t.Run("depth one reaches grandchildren", func(t *testing.T) {
		got, err := m.Children(root, 1, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"Novel", "Mystery"}, typeNames(got))
	})

	t.Run("negative depth walks the whole subtree", func(t *testing.T) {
		got, err := m.Children(root, -1, true)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestChildrenTerminatesOnCycle(t *testing.T) {
	m, _ := setupRegistry(t)

	a, err := m.Create(&types.AssetType{Name: "Alpha",
		Columns: []types.Column{{Label: "X", DBName: "x", Type: types.Text}}})
	require.NoError(t, err)
	b, err := m.Create(&types.AssetType{Name: "Beta", SuperTypeID: a.ID,
		Columns: []types.Column{{Label: "Y", DBName: "y", Type: types.Text}}})
	require.NoError(t, err)

	// Close the loop: Alpha now extends Beta, Beta extends Alpha.
	a.SuperTypeID = b.ID
	a, err = m.Update(a, false)
	require.NoError(t, err)

	got, err := m.Children(a, -1, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta"}, typeNames(got), "each type appears once")

	got, err = m.Children(a, 5, true)
	require.NoError(t, err)
	assert.Len(t, got, 1, "bounded depth must not revisit the cycle")
}

func TestCount(t *testing.T) {
	m, _ := setupRegistry(t)

	root, err := m.Create(bookType())
	require.NoError(t, err)
	_, err = m.Create(&types.AssetType{Name: "Novel", SuperTypeID: root.ID,
		Columns: []types.Column{{Label: "Genre", DBName: "genre", Type: types.Text}}})
	require.NoError(t, err)
	_, err = m.Create(&types.AssetType{Name: "Room", Bookable: true,
		Columns: []types.Column{{Label: "Label", DBName: "label", Type: types.Text}}})
	require.NoError(t, err)

	all, err := m.Count(false, false)
	require.NoError(t, err)
	assert.Equal(t, 4, all, "Book, Novel, Room and the booking companion")

	noChildren, err := m.Count(true, false)
	require.NoError(t, err)
	assert.Equal(t, 3, noChildren)

	noSlaves, err := m.Count(false, true)
	require.NoError(t, err)
	assert.Equal(t, 3, noSlaves)
}

func TestGetBatchPaging(t *testing.T) {
	m, _ := setupRegistry(t)

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := m.Create(&types.AssetType{Name: name,
			Columns: []types.Column{{Label: "X", DBName: "x", Type: types.Text}}})
		require.NoError(t, err)
	}

	page, err := m.GetBatch(nil, nil, 1, 1, true)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Beta", page[0].Name)

	either, err := m.GetAllFiltered(nil, []types.Filter{
		types.Eq(colName, "Alpha"),
		types.Eq(colName, "Gamma"),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Gamma"}, typeNames(either))
}
