package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
)

// assertCommandRecords checks the records declared by every testdata/command.* file.
func assertCommandRecords(t *testing.T, records []*descriptor.TypeDescriptor) {
	t.Helper()
	require.Len(t, records, 2)

	cmd := records[0]
	assert.Equal(t, "Command", cmd.Name)
	assert.Equal(t, "pub", cmd.Visibility)
	assert.Equal(t, []string{"Builder", "CustomDebug"}, cmd.Derives)
	require.Len(t, cmd.Fields, 4)
	assert.Equal(t, "args", cmd.Fields[1].Name)
	assert.Equal(t, "Vec<String>", cmd.Fields[1].Type.String())
	require.Len(t, cmd.Fields[1].Annotations, 1)
	assert.Equal(t, `builder(each = "arg")`, cmd.Fields[1].Annotations[0].Raw)
	assert.Equal(t, "Command.args", cmd.Fields[1].Location.Path)
	assert.Equal(t, "Option<String>", cmd.Fields[3].Type.String())

	field := records[1]
	assert.Equal(t, "Field", field.Name)
	assert.Equal(t, "", field.Visibility)
	require.Len(t, field.Generics, 1)
	assert.Equal(t, descriptor.GenericParam{Kind: descriptor.TypeParam, Name: "T"}, field.Generics[0])
	require.Len(t, field.Annotations, 1)
	assert.Equal(t, `debug(bound = "T: ::std::fmt::Display")`, field.Annotations[0].Raw)
}

func TestLoadFormats(t *testing.T) {
	for _, name := range []string{"command.yaml", "command.toml", "command.json"} {
		t.Run(name, func(t *testing.T) {
			records, err := Load(context.Background(), filepath.Join("testdata", name))
			require.NoError(t, err)
			assertCommandRecords(t, records)
		})
	}
}

func TestYAMLPositions(t *testing.T) {
	records, err := Load(context.Background(), filepath.Join("testdata", "command.yaml"))
	require.NoError(t, err)

	file := filepath.Join("testdata", "command.yaml")
	assert.Equal(t, descriptor.Location{File: file, Line: 2, Column: 11, Path: "Command"}, records[0].Location)
	assert.Equal(t, descriptor.Location{File: file, Line: 8, Column: 15, Path: "Command.args"}, records[0].Fields[1].Location)
	assert.Equal(t, descriptor.Location{File: file, Line: 11, Column: 13, Path: "Command.args"}, records[0].Fields[1].Annotations[0].Location)
	assert.Equal(t, file+":11:13", records[0].Fields[1].Annotations[0].Location.String())
}

func TestTOMLAndJSONUseLogicalPaths(t *testing.T) {
	for _, name := range []string{"command.toml", "command.json"} {
		records, err := Load(context.Background(), filepath.Join("testdata", name))
		require.NoError(t, err)
		loc := records[0].Fields[1].Annotations[0].Location
		assert.Equal(t, filepath.Join("testdata", name)+": Command.args", loc.String(), name)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name        string
		decode      func(string, []byte) ([]*descriptor.TypeDescriptor, error)
		src         string
		errContains string
	}{
		{
			name:        "yaml unknown key",
			decode:      DecodeYAML,
			src:         "records:\n  - name: A\n    feilds: []\n",
			errContains: "feilds",
		},
		{
			name:        "yaml non-string name",
			decode:      DecodeYAML,
			src:         "records:\n  - name: [A]\n",
			errContains: "expected a string",
		},
		{
			name:        "toml unknown key",
			decode:      DecodeTOML,
			src:         "[[records]]\nname = \"A\"\nderives = [\"Builder\"]\n",
			errContains: "unknown keys: records.derives",
		},
		{
			name:        "json unknown key",
			decode:      DecodeJSON,
			src:         `{"records": [{"name": "A", "visible": "pub"}]}`,
			errContains: "visible",
		},
		{
			name:        "missing name",
			decode:      DecodeYAML,
			src:         "records:\n  - fields: []\n",
			errContains: "records[0]",
		},
		{
			name:        "missing type",
			decode:      DecodeYAML,
			src:         "records:\n  - name: A\n    fields:\n      - name: x\n",
			errContains: `field "x" has no type`,
		},
		{
			name:        "bad type",
			decode:      DecodeYAML,
			src:         "records:\n  - name: A\n    fields:\n      - name: x\n        type: Vec<u8\n",
			errContains: "s.yaml:5:15",
		},
		{
			name:        "bad generic",
			decode:      DecodeJSON,
			src:         `{"records": [{"name": "A", "generics": ["T U"]}]}`,
			errContains: "generic parameter",
		},
		{
			name:        "bad where",
			decode:      DecodeJSON,
			src:         `{"records": [{"name": "A", "where": ["T"]}]}`,
			errContains: "where clause",
		},
		{
			name:        "duplicate field",
			decode:      DecodeYAML,
			src:         "records:\n  - name: A\n    fields:\n      - {name: x, type: u8}\n      - {name: x, type: u8}\n",
			errContains: "duplicate field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.decode("s.yaml", []byte(tt.src))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidSchemaError(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestDecodeEmptyYAML(t *testing.T) {
	records, err := DecodeYAML("empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.xml")
	require.NoError(t, os.WriteFile(path, []byte("<records/>"), 0o644))

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidSchemaError(err))
	assert.Contains(t, errors.FlattenHints(err), ".toml")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join("testdata", "nope.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.UnwrapAll(err)))
}
