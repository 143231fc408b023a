package types

// IDColumn is the reserved identifier field. Every row a Store returns
// carries the row id under this key; tables get it as an auto-assigned
// integer primary key.
const IDColumn = "id"

// Row is one stored record keyed by physical column name. Values use the raw
// stored representation (int64, float64, string, nil).
type Row map[string]any

// Store is the table-oriented storage contract required by the registry and
// the asset manager. Any persistent tabular store satisfying it is
// acceptable; the sqlite package provides the default implementation.
type Store interface {
	// Read returns the rows of table matching q, restricted to the given
	// columns plus the id. Row order follows the id.
	Read(table string, columns []string, q Query) ([]Row, error)

	// InsertRow writes values as a new row and returns the assigned id.
	// Returns ErrTableNotFound if the table does not exist.
	InsertRow(table string, values Row) (int64, error)

	// UpdateRow rewrites the row identified by values[IDColumn].
	UpdateRow(table string, values Row) error

	// DeleteRows removes all rows matching the conjunction of and.
	DeleteRows(table string, and []Filter) error

	// CreateTable creates table with the given columns plus the id primary
	// key. Idempotent: no error if the table already exists.
	CreateTable(table string, columns []Column) error

	// DeleteTable drops table. No error if it is absent.
	DeleteTable(table string) error

	// RenameTable renames oldName to newName. Returns ErrTableNotFound if
	// oldName is missing and ErrTableExists if newName is taken.
	RenameTable(oldName, newName string) error

	// EvolveColumns migrates table to the given column set via
	// create-temp/copy/swap. Columns not previously present are treated as
	// optional regardless of their declared requiredness.
	EvolveColumns(table string, columns []Column) error

	// TableExists reports whether table physically exists.
	TableExists(table string) (bool, error)

	// Count returns the number of rows matching the conjunction of and.
	Count(table string, and []Filter) (int, error)

	// Close releases the underlying connection.
	Close() error
}
