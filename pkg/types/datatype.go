package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DataType names the semantic kind of a column value. The physical storage
// kind and the stored/semantic conversions are fixed per type; a column's
// declared DataType must convert both ways.
type DataType string

// The available data types.
const (
	Text      DataType = "text"      // string
	Number    DataType = "number"    // float64
	Integer   DataType = "integer"   // int64
	Boolean   DataType = "boolean"   // bool, stored as 0/1
	DateTime  DataType = "datetime"  // time.Time, stored as unix seconds
	Date      DataType = "date"      // time.Time truncated to midnight UTC
	AssetRef  DataType = "asset"     // id of a record of another asset type
	AssetList DataType = "assetlist" // ids of records, stored ";"-joined
)

// Physical storage kinds understood by the Store.
const (
	KindText    = "TEXT"
	KindReal    = "REAL"
	KindInteger = "INTEGER"
)

// listSeparator joins asset ids in the stored form of an AssetList value.
const listSeparator = ";"

var storageKinds = map[DataType]string{
	Text:      KindText,
	Number:    KindReal,
	Integer:   KindInteger,
	Boolean:   KindInteger,
	DateTime:  KindInteger,
	Date:      KindInteger,
	AssetRef:  KindInteger,
	AssetList: KindText,
}

// Valid reports whether d is one of the recognized data types.
func (d DataType) Valid() bool {
	_, ok := storageKinds[d]
	return ok
}

// StorageKind returns the physical column kind used to persist values of d.
func (d DataType) StorageKind() string {
	return storageKinds[d]
}

// IsReference reports whether values of d point at records of another asset
// type and are subject to depth-bounded resolution on read.
func (d DataType) IsReference() bool {
	return d == AssetRef || d == AssetList
}

// FromStored converts a raw stored value into the semantic value of d.
// A nil raw value converts to nil.
func (d DataType) FromStored(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch d {
	case Text:
		return toString(raw)
	case Number:
		return toFloat(raw)
	case Integer, AssetRef:
		return toInt(raw)
	case Boolean:
		n, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		return n != 0, nil
	case DateTime:
		n, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		return time.Unix(n, 0).UTC(), nil
	case Date:
		n, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		return time.Unix(n, 0).UTC().Truncate(24 * time.Hour), nil
	case AssetList:
		s, err := toString(raw)
		if err != nil {
			return nil, err
		}
		return parseIDList(s)
	default:
		return nil, fmt.Errorf("%w: unknown data type %q", ErrInvalidArgument, string(d))
	}
}

// ToStored converts a semantic value into the raw form persisted by the
// Store. A nil value stores as nil.
func (d DataType) ToStored(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch d {
	case Text:
		return toString(v)
	case Number:
		return toFloat(v)
	case Integer:
		return toInt(v)
	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: boolean column wants bool, got %T", ErrInvalidArgument, v)
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	case DateTime:
		return timeToUnix(v, false)
	case Date:
		return timeToUnix(v, true)
	case AssetRef:
		if a, ok := v.(*Asset); ok {
			return a.ID, nil
		}
		return toInt(v)
	case AssetList:
		return joinIDList(v)
	default:
		return nil, fmt.Errorf("%w: unknown data type %q", ErrInvalidArgument, string(d))
	}
}

// Parse converts the textual form of a value (as entered on a command line)
// into the semantic value of d. DateTime and Date accept RFC 3339 or unix
// seconds; AssetList accepts a ";"-separated id list.
func (d DataType) Parse(s string) (any, error) {
	switch d {
	case Text:
		return s, nil
	case Number:
		return strconv.ParseFloat(s, 64)
	case Integer, AssetRef:
		return strconv.ParseInt(s, 10, 64)
	case Boolean:
		return strconv.ParseBool(s)
	case DateTime, Date:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return d.FromStored(n)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not RFC 3339 or unix seconds", ErrInvalidArgument, s)
		}
		return d.FromStored(t.Unix())
	case AssetList:
		return parseIDList(s)
	default:
		return nil, fmt.Errorf("%w: unknown data type %q", ErrInvalidArgument, string(d))
	}
}

func timeToUnix(v any, truncateDay bool) (int64, error) {
	switch t := v.(type) {
	case time.Time:
		if truncateDay {
			t = t.UTC().Truncate(24 * time.Hour)
		}
		return t.Unix(), nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("%w: time column wants time.Time or unix seconds, got %T", ErrInvalidArgument, v)
	}
}

func parseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, listSeparator)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad id %q in list", ErrInvalidArgument, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func joinIDList(v any) (string, error) {
	var ids []int64
	switch list := v.(type) {
	case []int64:
		ids = list
	case []*Asset:
		for _, a := range list {
			ids = append(ids, a.ID)
		}
	case string:
		// Already in stored form; validate and pass through.
		if _, err := parseIDList(list); err != nil {
			return "", err
		}
		return list, nil
	default:
		return "", fmt.Errorf("%w: asset list column wants []int64 or []*Asset, got %T", ErrInvalidArgument, v)
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, listSeparator), nil
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("%w: text column wants string, got %T", ErrInvalidArgument, v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: number column wants float, got %T", ErrInvalidArgument, v)
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: integer column wants int, got %T", ErrInvalidArgument, v)
	}
}
