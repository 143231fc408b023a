package types

import "path/filepath"

// DefaultDBFile is the database file name used when Config.DBFile is empty.
const DefaultDBFile = "shelf.db"

// Config holds storage location parameters for opening a Store.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`
	DBFile  string `json:"db_file" yaml:"db_file"`
}

// DBPath returns the full path of the database file.
func (c Config) DBPath() string {
	dir := c.DataDir
	if dir == "" {
		dir = "."
	}
	file := c.DBFile
	if file == "" {
		file = DefaultDBFile
	}
	return filepath.Join(dir, file)
}
