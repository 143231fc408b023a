// Package sqlite implements the Store contract over a SQLite database using
// the pure-Go modernc.org/sqlite driver. All values travel through
// parametrized statements; table and column identifiers are validated
// against an identifier pattern before being spliced into SQL text.
package sqlite

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Store holds the shared database handle. A single RWMutex serializes access;
// transactional isolation beyond that is the database's concern.
type Store struct {
	mu  sync.RWMutex
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the database file at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}
	return &Store{
		db:  db,
		log: log.With().Str("component", "sqlite").Logger(),
	}, nil
}

// Close releases the database handle. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Read returns the rows of table matching q, restricted to columns plus the
// row id, ordered by id.
func (s *Store) Read(table string, columns []string, q types.Query) ([]types.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := checkIdent(table); err != nil {
		return nil, err
	}

	selected := []string{types.IDColumn}
	seen := map[string]bool{types.IDColumn: true}
	for _, c := range columns {
		if seen[c] {
			continue
		}
		if err := checkIdent(c); err != nil {
			return nil, err
		}
		selected = append(selected, c)
		seen[c] = true
	}

	query := "SELECT " + strings.Join(selected, ", ") + " FROM " + table
	where, args, err := buildWhere(q.And, q.Or)
	if err != nil {
		return nil, err
	}
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + types.IDColumn
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	} else if q.Offset > 0 {
		// SQLite needs a LIMIT clause before OFFSET; -1 means unlimited.
		query += " LIMIT -1"
	}
	if q.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, q.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading from %s: %w", table, err)
	}
	defer rows.Close()

	var result []types.Row
	for rows.Next() {
		vals := make([]any, len(selected))
		ptrs := make([]any, len(selected))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row from %s: %w", table, err)
		}
		row := make(types.Row, len(selected))
		for i, name := range selected {
			row[name] = normalize(vals[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// InsertRow writes values as a new row of table and returns the assigned id.
func (s *Store) InsertRow(table string, values types.Row) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkIdent(table); err != nil {
		return 0, err
	}
	exists, err := s.tableExistsLocked(table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: %s", types.ErrTableNotFound, table)
	}

	names, args, err := orderedValues(values, false)
	if err != nil {
		return 0, err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := "INSERT INTO " + table + " (" + strings.Join(names, ", ") + ") VALUES (" + placeholders + ")"

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new row id: %w", err)
	}
	return id, nil
}

// UpdateRow rewrites the row of table identified by values[IDColumn].
func (s *Store) UpdateRow(table string, values types.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkIdent(table); err != nil {
		return err
	}
	id, ok := values[types.IDColumn]
	if !ok || id == nil {
		return fmt.Errorf("%w: row id", types.ErrMissingID)
	}
	exists, err := s.tableExistsLocked(table)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", types.ErrTableNotFound, table)
	}

	names, args, err := orderedValues(values, false)
	if err != nil {
		return err
	}
	assignments := make([]string, len(names))
	for i, name := range names {
		assignments[i] = name + " = ?"
	}
	args = append(args, id)
	query := "UPDATE " + table + " SET " + strings.Join(assignments, ", ") +
		" WHERE " + types.IDColumn + " = ?"

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("updating %s: %w", table, err)
	}
	return nil
}

// DeleteRows removes all rows of table matching the conjunction of and.
func (s *Store) DeleteRows(table string, and []types.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkIdent(table); err != nil {
		return err
	}
	where, args, err := buildWhere(and, nil)
	if err != nil {
		return err
	}
	query := "DELETE FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	return nil
}

// CreateTable creates table with the given columns plus the id primary key.
// Idempotent.
func (s *Store) CreateTable(table string, columns []types.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTableLocked(table, columns)
}

func (s *Store) createTableLocked(table string, columns []types.Column) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	parts := []string{types.IDColumn + " INTEGER PRIMARY KEY AUTOINCREMENT"}
	for _, c := range columns {
		if err := checkIdent(c.DBName); err != nil {
			return err
		}
		def := c.DBName + " " + c.Type.StorageKind()
		if c.Required {
			def += " NOT NULL"
		}
		if c.Unique {
			def += " UNIQUE"
		}
		parts = append(parts, def)
	}
	query := "CREATE TABLE IF NOT EXISTS " + table + " (" + strings.Join(parts, ", ") + ")"
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	s.log.Debug().Str("table", table).Int("columns", len(columns)).Msg("table ensured")
	return nil
}

// DeleteTable drops table. No error if it is absent.
func (s *Store) DeleteTable(table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkIdent(table); err != nil {
		return err
	}
	if _, err := s.db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
		return fmt.Errorf("dropping table %s: %w", table, err)
	}
	return nil
}

// RenameTable renames oldName to newName.
func (s *Store) RenameTable(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renameTableLocked(oldName, newName)
}

func (s *Store) renameTableLocked(oldName, newName string) error {
	if err := checkIdent(oldName); err != nil {
		return err
	}
	if err := checkIdent(newName); err != nil {
		return err
	}
	exists, err := s.tableExistsLocked(oldName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", types.ErrTableNotFound, oldName)
	}
	exists, err = s.tableExistsLocked(newName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", types.ErrTableExists, newName)
	}
	if _, err := s.db.Exec("ALTER TABLE " + oldName + " RENAME TO " + newName); err != nil {
		return fmt.Errorf("renaming table %s: %w", oldName, err)
	}
	return nil
}

// EvolveColumns migrates table to the given column set via a temp-table
// copy-and-swap. When the new set has the same width as the old one, values
// are carried over positionally so column renames keep their data; otherwise
// only columns sharing a name are copied. Columns not previously present are
// created optional: historical rows cannot be backfilled.
func (s *Store) EvolveColumns(table string, columns []types.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkIdent(table); err != nil {
		return err
	}
	exists, err := s.tableExistsLocked(table)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", types.ErrTableNotFound, table)
	}

	oldNames, err := s.columnNamesLocked(table)
	if err != nil {
		return err
	}
	existing := make(map[string]bool, len(oldNames))
	for _, n := range oldNames {
		existing[n] = true
	}

	cols := make([]types.Column, len(columns))
	copy(cols, columns)
	for i := range cols {
		if !existing[cols[i].DBName] {
			cols[i].Required = false
		}
	}

	tmp := "evolve_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.createTableLocked(tmp, cols); err != nil {
		return err
	}

	newNames := make([]string, len(cols))
	for i, c := range cols {
		newNames[i] = c.DBName
	}

	var dst, src []string
	if len(newNames) == len(oldNames) {
		dst, src = newNames, oldNames
	} else {
		for _, n := range newNames {
			if existing[n] {
				dst = append(dst, n)
				src = append(src, n)
			}
		}
	}
	dst = append(dst, types.IDColumn)
	src = append(src, types.IDColumn)

	query := "INSERT INTO " + tmp + " (" + strings.Join(dst, ", ") + ") SELECT " +
		strings.Join(src, ", ") + " FROM " + table
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("copying rows into %s: %w", tmp, err)
	}

	if _, err := s.db.Exec("DROP TABLE " + table); err != nil {
		return fmt.Errorf("dropping table %s: %w", table, err)
	}
	if err := s.renameTableLocked(tmp, table); err != nil {
		return err
	}
	s.log.Debug().Str("table", table).Msg("columns evolved")
	return nil
}

// TableExists reports whether table physically exists.
func (s *Store) TableExists(table string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tableExistsLocked(table)
}

func (s *Store) tableExistsLocked(table string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", table, err)
	}
	return n > 0, nil
}

// Count returns the number of rows of table matching the conjunction of and.
func (s *Store) Count(table string, and []types.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := checkIdent(table); err != nil {
		return 0, err
	}
	where, args, err := buildWhere(and, nil)
	if err != nil {
		return 0, err
	}
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// columnNamesLocked returns table's physical column names in declaration
// order, excluding the id primary key.
func (s *Store) columnNamesLocked(table string) ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, fmt.Errorf("reading table info for %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table info for %s: %w", table, err)
		}
		if name == types.IDColumn {
			continue
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// buildWhere renders structured filters into a parametrized WHERE body. And
// filters are conjoined; or filters form one parenthesized disjunction
// conjoined with the rest.
func buildWhere(and, or []types.Filter) (string, []any, error) {
	var args []any

	render := func(filters []types.Filter, sep string) (string, error) {
		parts := make([]string, 0, len(filters))
		for _, f := range filters {
			if err := checkIdent(f.Field); err != nil {
				return "", err
			}
			if !f.Op.Valid() {
				return "", fmt.Errorf("%w: operator %q", types.ErrInvalidArgument, string(f.Op))
			}
			parts = append(parts, f.Field+" "+string(f.Op)+" ?")
			args = append(args, f.Value)
		}
		return strings.Join(parts, sep), nil
	}

	andClause, err := render(and, " AND ")
	if err != nil {
		return "", nil, err
	}
	orClause, err := render(or, " OR ")
	if err != nil {
		return "", nil, err
	}

	switch {
	case andClause != "" && orClause != "":
		return andClause + " AND (" + orClause + ")", args, nil
	case orClause != "":
		return "(" + orClause + ")", args, nil
	default:
		return andClause, args, nil
	}
}

// orderedValues flattens a Row into deterministic (sorted) name and value
// slices, skipping the id unless includeID is set.
func orderedValues(values types.Row, includeID bool) ([]string, []any, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		if name == types.IDColumn && !includeID {
			continue
		}
		if err := checkIdent(name); err != nil {
			return nil, nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = values[name]
	}
	return names, args, nil
}

// normalize maps driver scan values onto the stored representation used in
// Row: int64, float64, string or nil.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func checkIdent(s string) error {
	if !types.ValidIdent(s) {
		return fmt.Errorf("%w: %q", types.ErrInvalidIdent, s)
	}
	return nil
}
