// Shared helpers for shelf CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelf/internal/assets"
	"github.com/mesh-intelligence/shelf/internal/registry"
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// newLogger builds the CLI logger. Quiet by default; --verbose enables debug
// output on stderr.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// openManagers resolves the data directory, opens the database and wires the
// registry and asset managers. The caller must defer store.Close().
func openManagers() (*sqlite.Store, *registry.Manager, *assets.Manager, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	log := newLogger()
	cfg := types.Config{DataDir: dataDir}
	store, err := sqlite.Open(cfg.DBPath(), log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database %s: %w", filepath.Base(cfg.DBPath()), err)
	}

	reg, err := registry.New(store, log)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return store, reg, assets.New(store, reg, log), nil
}

// lookupType fetches an asset type by --id or --name, whichever is set.
func lookupType(reg *registry.Manager, id int64, name string, extend bool) (*types.AssetType, error) {
	var at *types.AssetType
	var err error
	switch {
	case id > 0:
		at, err = reg.GetOneByID(id, extend)
	case name != "":
		at, err = reg.GetOneByName(name, extend)
	default:
		return nil, fmt.Errorf("%w: give --id or --name", types.ErrInvalidArgument)
	}
	if err != nil {
		return nil, err
	}
	if at == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrTypeNotFound, typeRef(id, name))
	}
	return at, nil
}

func typeRef(id int64, name string) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("id %d", id)
}

// parseColumnSpec parses one --column value of the form
// "Label:db_name:type[:required][:unique][:ref=ID]".
func parseColumnSpec(spec string) (types.Column, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 {
		return types.Column{}, fmt.Errorf("%w: column spec %q wants Label:db_name:type", types.ErrInvalidArgument, spec)
	}
	c := types.Column{
		Label:  parts[0],
		DBName: parts[1],
		Type:   types.DataType(strings.ToLower(parts[2])),
	}
	for _, opt := range parts[3:] {
		switch {
		case opt == "required":
			c.Required = true
		case opt == "unique":
			c.Unique = true
		case strings.HasPrefix(opt, "ref="):
			id, err := strconv.ParseInt(strings.TrimPrefix(opt, "ref="), 10, 64)
			if err != nil {
				return types.Column{}, fmt.Errorf("%w: bad ref in column spec %q", types.ErrInvalidArgument, spec)
			}
			c.RefTypeID = id
		default:
			return types.Column{}, fmt.Errorf("%w: unknown column option %q", types.ErrInvalidArgument, opt)
		}
	}
	if err := c.Validate(); err != nil {
		return types.Column{}, err
	}
	return c, nil
}

// parseSetValues turns --set key=value pairs into semantic data using the
// type's column declarations.
func parseSetValues(at *types.AssetType, pairs []string) (map[string]any, error) {
	byName := make(map[string]types.Column, len(at.Columns))
	for _, c := range at.Columns {
		byName[c.DBName] = c
	}
	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: --set wants key=value, got %q", types.ErrInvalidArgument, pair)
		}
		c, ok := byName[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no column %q", types.ErrInvalidArgument, at.Name, key)
		}
		v, err := c.Type.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", key, err)
		}
		data[key] = v
	}
	return data, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
