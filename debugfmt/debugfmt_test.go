package debugfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/diag"
)

func field(name, typ string, raws ...string) descriptor.Field {
	f := descriptor.Field{Name: name, Type: descriptor.MustParseType(typ)}
	for _, r := range raws {
		f.Annotations = append(f.Annotations, descriptor.Annotation{Raw: r})
	}
	return f
}

func record(name string, params []string, fields ...descriptor.Field) *descriptor.TypeDescriptor {
	td := &descriptor.TypeDescriptor{Name: name, Visibility: "pub", Fields: fields}
	for _, p := range params {
		gp, err := descriptor.ParseGenericParam(p)
		if err != nil {
			panic(err)
		}
		td.Generics = append(td.Generics, gp)
	}
	return td
}

func TestPlainRecord(t *testing.T) {
	td := record("Field", nil,
		field("name", "&'static str"),
		field("bitmask", "u8"),
	)
	out, err := New().Generate(td)
	require.NoError(t, err)

	want := `impl ::std::fmt::Debug for Field {
    fn fmt(&self, f: &mut ::std::fmt::Formatter<'_>) -> ::std::fmt::Result {
        f.debug_struct("Field")
            .field("name", &self.name)
            .field("bitmask", &self.bitmask)
            .finish()
    }
}
`
	assert.Equal(t, want, out)
}

func TestFormatTemplate(t *testing.T) {
	td := record("Field", nil,
		field("name", "&'static str"),
		field("bitmask", "u8", `debug = "0b{:08b}"`),
	)
	out, err := New().Generate(td)
	require.NoError(t, err)
	assert.Contains(t, out, `            .field("name", &self.name)`+"\n")
	assert.Contains(t, out, `            .field("bitmask", &::std::format_args!("0b{:08b}", self.bitmask))`+"\n")
}

func TestTemplateIsRequoted(t *testing.T) {
	td := record("Quoted", nil, field("v", "u8", `debug = r#"say "{}"\n"#`))
	out, err := New().Generate(td)
	require.NoError(t, err)
	assert.Contains(t, out, `&::std::format_args!("say \"{}\"\\n", self.v)`)
}

func TestBoundInference(t *testing.T) {
	tests := []struct {
		name     string
		td       *descriptor.TypeDescriptor
		strategy Strategy
		preds    []string
	}{
		{
			name: "type parameter",
			td: record("Field", []string{"T"},
				field("value", "T"),
				field("bitmask", "u8", `debug = "0b{:08b}"`),
			),
			preds: []string{"T: ::std::fmt::Debug"},
		},
		{
			name: "phantom marker",
			td: record("Field", []string{"T"},
				field("marker", "PhantomData<T>"),
				field("string", "S"),
			),
			preds: nil,
		},
		{
			name: "qualified phantom marker",
			td: record("Field", []string{"T"},
				field("marker", "::std::marker::PhantomData<fn() -> T>"),
			),
			preds: nil,
		},
		{
			name: "phantom and direct use",
			td: record("Field", []string{"T"},
				field("marker", "PhantomData<T>"),
				field("value", "Vec<T>"),
			),
			preds: []string{"T: ::std::fmt::Debug"},
		},
		{
			name: "recursive record bounds the leaf",
			td: record("One", []string{"T"},
				field("value", "T"),
				field("two", "Option<Box<Two<T>>>"),
			),
			preds: []string{"T: ::std::fmt::Debug"},
		},
		{
			name: "associated type",
			td: record("Field", []string{"T: Trait"},
				field("values", "Vec<T::Value>"),
			),
			preds: []string{"T::Value: ::std::fmt::Debug"},
		},
		{
			name: "associated predicates deduplicated",
			td: record("Field", []string{"T: Trait"},
				field("values", "Vec<T::Value>"),
				field("first", "Option<T::Value>"),
				field("key", "T::Key"),
			),
			preds: []string{"T::Value: ::std::fmt::Debug", "T::Key: ::std::fmt::Debug"},
		},
		{
			name: "parameters before associated types",
			td: record("Mixed", []string{"T: Trait", "U"},
				field("values", "Vec<T::Value>"),
				field("u", "U"),
				field("t", "T"),
			),
			preds: []string{"T: ::std::fmt::Debug", "U: ::std::fmt::Debug", "T::Value: ::std::fmt::Debug"},
		},
		{
			name: "lifetimes and consts are never bounded",
			td: record("Ref", []string{"'a", "T", "const N: usize"},
				field("v", "&'a [T; N]"),
			),
			preds: []string{"T: ::std::fmt::Debug"},
		},
		{
			name: "qualified self path bounds the parameter",
			td: record("Q", []string{"T: Trait"},
				field("v", "<T as Trait>::Value"),
			),
			preds: []string{"T: ::std::fmt::Debug"},
		},
		{
			name: "unused parameter",
			td: record("Unused", []string{"T"},
				field("n", "u8"),
			),
			preds: nil,
		},
		{
			name: "field override replaces only that field",
			td: record("Pair", []string{"T: Trait", "U: Trait"},
				field("a", "T"),
				field("b", "Field<U>", `debug(bound = "U::Value: Debug")`),
			),
			preds: []string{"T: ::std::fmt::Debug", "U::Value: Debug"},
		},
		{
			name: "field override keeps parameter bound from other fields",
			td: record("Pair", []string{"T: Trait"},
				field("a", "T"),
				field("b", "Field<T>", `debug(bound = "T::Value: Debug")`),
			),
			preds: []string{"T: ::std::fmt::Debug", "T::Value: Debug"},
		},
		{
			name: "field override with several predicates",
			td: record("Pair", []string{"T", "U"},
				field("b", "Map<T, U>", `debug(bound = "T: Debug, U: Debug")`),
			),
			preds: []string{"T: Debug", "U: Debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := New().Plan(tt.td)
			require.NoError(t, err)
			assert.Equal(t, Inferred, plan.Bounds.Strategy)
			assert.Equal(t, tt.preds, plan.Bounds.Predicates)
		})
	}
}

func TestEscapeHatch(t *testing.T) {
	td := record("Wrapper", []string{"T: Trait"}, field("field", "Field<T>"))
	td.Annotations = []descriptor.Annotation{{Raw: `debug(bound = "T::Value: Debug")`}}

	plan, err := New().Plan(td)
	require.NoError(t, err)
	assert.Equal(t, Overridden, plan.Bounds.Strategy)
	assert.Equal(t, []string{"T::Value: Debug"}, plan.Bounds.Predicates)

	out := New().Emit(td, plan)
	want := `impl<T: Trait> ::std::fmt::Debug for Wrapper<T>
where
    T::Value: Debug,
{
    fn fmt(&self, f: &mut ::std::fmt::Formatter<'_>) -> ::std::fmt::Result {
        f.debug_struct("Wrapper")
            .field("field", &self.field)
            .finish()
    }
}
`
	assert.Equal(t, want, out)
}

func TestEscapeHatchIgnoresFieldInference(t *testing.T) {
	td := record("Wrapper", []string{"T", "U"},
		field("t", "T"),
		field("u", "U", `debug(bound = "U: Clone")`),
	)
	td.Annotations = []descriptor.Annotation{{Raw: `debug(bound = "T: Debug")`}}

	plan, err := New().Plan(td)
	require.NoError(t, err)
	assert.Equal(t, []string{"T: Debug"}, plan.Bounds.Predicates)
}

func TestDeclaredPredicatesComeFirst(t *testing.T) {
	td := record("Field", []string{"T"}, field("value", "T"))
	td.Where = []string{"T: Clone"}

	plan, err := New().Plan(td)
	require.NoError(t, err)
	assert.Equal(t, []string{"T: Clone", "T: ::std::fmt::Debug"}, plan.Bounds.Predicates)

	td.Annotations = []descriptor.Annotation{{Raw: `debug(bound = "T: Debug")`}}
	plan, err = New().Plan(td)
	require.NoError(t, err)
	assert.Equal(t, []string{"T: Clone", "T: Debug"}, plan.Bounds.Predicates)
}

func TestCustomCapability(t *testing.T) {
	td := record("Field", []string{"T"},
		field("value", "T"),
		field("bits", "u8", `debug = "{:b}"`),
	)
	out, err := New(WithCapability("::core::fmt::Debug")).Generate(td)
	require.NoError(t, err)
	assert.Contains(t, out, "impl<T> ::core::fmt::Debug for Field<T>\nwhere\n    T: ::core::fmt::Debug,\n{\n")
	assert.Contains(t, out, "fn fmt(&self, f: &mut ::core::fmt::Formatter<'_>) -> ::core::fmt::Result {")
	assert.Contains(t, out, `&::core::format_args!("{:b}", self.bits)`)
}

func TestRawIdentifiers(t *testing.T) {
	td := record("Token", nil, field("r#type", "u8"))
	out, err := New().Generate(td)
	require.NoError(t, err)
	assert.Contains(t, out, `.field("type", &self.r#type)`)
}

func TestEmptyRecord(t *testing.T) {
	out, err := New().Generate(record("Unit", nil))
	require.NoError(t, err)
	assert.Contains(t, out, "        f.debug_struct(\"Unit\")\n            .finish()\n")
}

func TestPlanErrors(t *testing.T) {
	tests := []struct {
		name string
		td   *descriptor.TypeDescriptor
		typ  []string
		kind diag.Kind
		hint string
	}{
		{
			name: "numeric template",
			td:   record("F", nil, field("v", "u8", `debug = 5`)),
			kind: diag.MalformedAnnotationValue,
		},
		{
			name: "template on the type",
			td:   record("F", nil, field("v", "u8")),
			typ:  []string{`debug = "{:?}"`},
			kind: diag.UnrecognizedAnnotationKey,
		},
		{
			name: "misspelled bound",
			td:   record("F", []string{"T"}, field("v", "T", `debug(bond = "T: Debug")`)),
			kind: diag.UnrecognizedAnnotationKey,
			hint: "did you mean `bound`?",
		},
		{
			name: "unparsable bound",
			td:   record("F", []string{"T"}, field("v", "T")),
			typ:  []string{`debug(bound = "T Debug")`},
			kind: diag.MalformedAnnotationValue,
		},
		{
			name: "two templates",
			td:   record("F", nil, field("v", "u8", `debug = "{}"`, `debug = "{:x}"`)),
			kind: diag.ConflictingOverride,
			hint: `first set to "{}"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, raw := range tt.typ {
				tt.td.Annotations = append(tt.td.Annotations, descriptor.Annotation{Raw: raw})
			}
			out, err := New().Generate(tt.td)
			require.Error(t, err)
			assert.Empty(t, out)

			de, ok := diag.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, de.Kind)
			assert.Equal(t, tt.hint, de.Hint)
		})
	}
}
