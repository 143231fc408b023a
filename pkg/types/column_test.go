package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnValidate(t *testing.T) {
	tests := []struct {
		name    string
		col     Column
		wantErr error
	}{
		{
			name: "valid text column",
			col:  Column{Label: "Title", DBName: "title", Type: Text, Required: true},
		},
		{
			name: "valid reference column",
			col:  Column{Label: "Author", DBName: "author_id", Type: AssetRef, RefTypeID: 2},
		},
		{
			name:    "empty label",
			col:     Column{DBName: "title", Type: Text},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "bad identifier",
			col:     Column{Label: "Title", DBName: "my title", Type: Text},
			wantErr: ErrInvalidIdent,
		},
		{
			name:    "identifier starting with digit",
			col:     Column{Label: "Title", DBName: "1title", Type: Text},
			wantErr: ErrInvalidIdent,
		},
		{
			name:    "unknown type",
			col:     Column{Label: "Title", DBName: "title", Type: "blob"},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "reference without target",
			col:     Column{Label: "Author", DBName: "author_id", Type: AssetRef},
			wantErr: ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.col.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeColumns(t *testing.T) {
	cols := []Column{
		{Label: "Title", DBName: "title", Type: Text, Required: true, Unique: true},
		{Label: "Pages", DBName: "pages", Type: Integer},
		{Label: "Author", DBName: "author_id", Type: AssetRef, RefTypeID: 3},
	}

	blob, err := EncodeColumns(cols)
	require.NoError(t, err)

	got, err := DecodeColumns(blob)
	require.NoError(t, err)
	assert.Equal(t, cols, got, "decode must be the exact inverse of encode")
}

func TestDecodeColumnsRejectsUnknownVersion(t *testing.T) {
	_, err := DecodeColumns(`{"v":99,"columns":[]}`)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDecodeColumnsRejectsGarbage(t *testing.T) {
	_, err := DecodeColumns("not json")
	assert.Error(t, err)
}

func TestValidIdent(t *testing.T) {
	assert.True(t, ValidIdent("title"))
	assert.True(t, ValidIdent("_private"))
	assert.True(t, ValidIdent("col_2"))
	assert.False(t, ValidIdent(""))
	assert.False(t, ValidIdent("2cols"))
	assert.False(t, ValidIdent("name; DROP TABLE x"))
}

func TestAssetTableName(t *testing.T) {
	assert.Equal(t, "shelf_asset_book", AssetTableName("Book"))
	assert.Equal(t, "shelf_asset_reading_room", AssetTableName("Reading Room"))
	assert.Equal(t, "shelf_asset_book", AssetTableName("  Book  "))
}

func TestSystemColumnsAreFreshCopies(t *testing.T) {
	a := SystemColumns()
	b := SystemColumns()
	require.Len(t, a, 5)
	a[0].DBName = "mutated"
	assert.Equal(t, SysCreated, b[0].DBName)
}
