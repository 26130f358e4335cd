package generate

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/teranos/derivegen/builder"
	"github.com/teranos/derivegen/debugfmt"
	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/diag"
	"github.com/teranos/derivegen/errors"
)

// stub returns "<name> for <record>" or a diagnostic for records named in fail.
type stub struct {
	name  string
	fail  map[string]bool
	calls atomic.Int32
}

func (s *stub) Name() string { return s.name }

func (s *stub) Generate(td *descriptor.TypeDescriptor) (string, error) {
	s.calls.Add(1)
	if s.fail[td.Name] {
		return "partial", diag.Errorf(diag.ConflictingOverride, td.Location, "%s rejected %s", s.name, td.Name)
	}
	return "// " + s.name + " for " + td.Name + "\n", nil
}

func record(name string, derives ...string) *descriptor.TypeDescriptor {
	return &descriptor.TypeDescriptor{
		Name:     name,
		Derives:  derives,
		Location: descriptor.Location{File: "records.yaml", Path: name},
		Fields: []descriptor.Field{
			{Name: "value", Type: descriptor.Path("u8")},
		},
	}
}

func TestRunOrdersSections(t *testing.T) {
	a, b := &stub{name: "Alpha"}, &stub{name: "Beta"}
	records := []*descriptor.TypeDescriptor{
		record("One", "beta", "Alpha"),
		record("Two", "Beta"),
		record("Three"),
	}

	res, err := Run(context.Background(), records, Options{
		Generators: []Generator{a, b},
		Default:    []string{"Alpha"},
		Jobs:       2,
	})
	require.NoError(t, err)

	var got []string
	for _, s := range res.Sections {
		got = append(got, s.Record+"/"+s.Generator)
	}
	assert.Equal(t, []string{"One/Alpha", "One/Beta", "Two/Beta", "Three/Alpha"}, got,
		"records in input order, generators in registration order")
	assert.Equal(t, "// Beta for Two\n", res.Sections[2].Code)
	assert.EqualValues(t, 2, a.calls.Load())
	assert.EqualValues(t, 2, b.calls.Load())
}

func TestRunKeepsOtherSectionsOnFailure(t *testing.T) {
	a := &stub{name: "Alpha", fail: map[string]bool{"Two": true}}
	records := []*descriptor.TypeDescriptor{record("One", "Alpha"), record("Two", "Alpha"), record("Three", "Alpha")}

	res, err := Run(context.Background(), records, Options{Generators: []Generator{a}})
	require.Error(t, err)
	require.NotNil(t, res)

	assert.True(t, errors.Is(err, errors.ErrGeneration))
	assert.True(t, errors.IsGenerationError(err))

	var failures Failures
	require.True(t, errors.As(err, &failures))
	require.Len(t, failures, 1)
	assert.Equal(t, "Two", failures[0].Record)
	assert.Contains(t, err.Error(), "1 generation call failed")
	assert.Contains(t, err.Error(), "Alpha rejected Two")

	require.Len(t, res.Sections, 3)
	assert.Empty(t, res.Sections[1].Code, "a failed call never yields a partial artifact")
	assert.Error(t, res.Sections[1].Err)
	assert.NoError(t, res.Sections[0].Err)
	assert.NoError(t, res.Sections[2].Err)
}

func TestRunRejectsInvalidInput(t *testing.T) {
	gens := []Generator{&stub{name: "Alpha"}}

	tests := []struct {
		name        string
		record      *descriptor.TypeDescriptor
		errContains string
	}{
		{
			name:        "unknown derive",
			record:      record("One", "Serialize"),
			errContains: `unknown derive "Serialize" on One`,
		},
		{
			name:        "invalid record",
			record:      record("9lives", "Alpha"),
			errContains: "invalid record name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(context.Background(), []*descriptor.TypeDescriptor{tt.record}, Options{Generators: gens})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.IsInvalidSchemaError(err))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &stub{name: "Alpha"}
	_, err := Run(ctx, []*descriptor.TypeDescriptor{record("One", "Alpha")}, Options{Generators: []Generator{a}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.EqualValues(t, 0, a.calls.Load())
}

func TestRunNoRecords(t *testing.T) {
	res, err := Run(context.Background(), nil, Options{Generators: []Generator{&stub{name: "Alpha"}}})
	require.NoError(t, err)
	assert.Empty(t, res.Sections)
	assert.NoError(t, res.Err())
}

func TestRenderGolden(t *testing.T) {
	ar, err := txtar.ParseFile(filepath.Join("testdata", "pair.txtar"))
	require.NoError(t, err)
	require.Len(t, ar.Files, 1)

	pair := &descriptor.TypeDescriptor{
		Name:       "Pair",
		Visibility: "pub",
		Derives:    []string{"Builder", "CustomDebug"},
		Fields: []descriptor.Field{
			{Name: "left", Type: descriptor.MustParseType("String")},
			{
				Name: "right",
				Type: descriptor.MustParseType("Option<u8>"),
				Annotations: []descriptor.Annotation{
					{Raw: `debug = "{:?}"`},
				},
			},
		},
	}
	loc := descriptor.Location{File: "bad.yaml", Path: "Bad.items"}
	bad := &descriptor.TypeDescriptor{
		Name:    "Bad",
		Derives: []string{"Builder"},
		Fields: []descriptor.Field{
			{
				Name:        "items",
				Type:        descriptor.MustParseType("Vec<u8>"),
				Annotations: []descriptor.Annotation{{Raw: `builder(eac = "item")`, Location: loc}},
				Location:    loc,
			},
		},
	}

	res, err := Run(context.Background(), []*descriptor.TypeDescriptor{pair, bad}, Options{
		Generators: []Generator{builder.New(), debugfmt.New()},
	})
	require.Error(t, err)

	assert.Equal(t, ar.Files[0].Name, OutputName("schemas/pair.yaml"))
	assert.Equal(t, string(ar.Files[0].Data), Render("schemas/pair.yaml", res))
}

func TestRenderWithoutSource(t *testing.T) {
	out := Render("", &Result{Sections: []Section{{Record: "A", Generator: "Alpha", Code: "struct A;"}}})
	assert.Equal(t, Header+"\n\nstruct A;\n", out)
	assert.False(t, strings.Contains(out, "Source:"))
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{source: "command.yaml", expected: "command.rs"},
		{source: "schemas/nested/command.toml", expected: "command.rs"},
		{source: "models.go", expected: "models.rs"},
		{source: "noext", expected: "noext.rs"},
		{source: ".hidden", expected: ".hidden.rs"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, OutputName(tt.source), tt.source)
	}
}
