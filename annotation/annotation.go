// Package annotation extracts generator directives from raw attribute
// payloads such as `builder(each = "arg")` or `debug = "0b{:08b}"`.
//
// Payloads whose attribute name is not the one being extracted are ignored.
// Under a recognized attribute every key is validated eagerly, and a key
// given twice in one scope is a conflict rather than a silent overwrite.
package annotation

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/diag"
)

// Directive keys.
const (
	// KeyEach names the per-element append method of a repeated field.
	KeyEach = "each"
	// KeyBound overrides inferred generic bounds.
	KeyBound = "bound"
	// KeyFormat is the per-field format template, written `debug = "..."`.
	KeyFormat = "format"
)

// Scope is where an annotation is attached.
type Scope int

const (
	FieldScope Scope = iota
	TypeScope
)

func (s Scope) String() string {
	if s == TypeScope {
		return "type"
	}
	return "field"
}

// Grammar describes the legal forms of one attribute in one scope.
type Grammar struct {
	Attr  string
	Scope Scope
	// ValueKey is the key recorded for the `attr = "lit"` form; empty when
	// that form is not legal.
	ValueKey string
	// ListKeys are the keys legal inside `attr(key = "lit", ...)`.
	ListKeys []string
}

// BuilderGrammar is the builder attribute: `each` on fields, nothing on the
// type.
func BuilderGrammar(attr string, scope Scope) Grammar {
	g := Grammar{Attr: attr, Scope: scope}
	if scope == FieldScope {
		g.ListKeys = []string{KeyEach}
	}
	return g
}

// DebugGrammar is the debug attribute: a format template and a bound on
// fields, only a bound on the type.
func DebugGrammar(attr string, scope Scope) Grammar {
	g := Grammar{Attr: attr, Scope: scope, ListKeys: []string{KeyBound}}
	if scope == FieldScope {
		g.ValueKey = KeyFormat
	}
	return g
}

func (g Grammar) legal(key string) bool {
	for _, k := range g.ListKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Directive is one validated key/value pair.
type Directive struct {
	Key      string
	Value    string
	Location descriptor.Location
}

// Directives is the ordered set of directives found in one scope.
type Directives []Directive

// Get returns the directive for key.
func (d Directives) Get(key string) (Directive, bool) {
	for _, dir := range d {
		if dir.Key == key {
			return dir, true
		}
	}
	return Directive{}, false
}

// Has reports whether key is present.
func (d Directives) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Extract returns the directives of g.Attr found in anns. The error, when
// not nil, is always a *diag.Error.
func Extract(anns []descriptor.Annotation, g Grammar) (Directives, error) {
	var out Directives
	for _, ann := range anns {
		if AttrName(ann.Raw) != g.Attr {
			continue
		}
		m, err := ParseMeta(ann.Raw)
		if err != nil {
			return nil, diag.Errorf(diag.MalformedAnnotationValue, ann.Location,
				"cannot parse `%s` attribute: %v", g.Attr, err)
		}
		dirs, err := g.directives(m, ann.Location)
		if err != nil {
			return nil, err
		}
		for _, d := range dirs {
			if prev, ok := out.Get(d.Key); ok {
				err := diag.Errorf(diag.ConflictingOverride, d.Location,
					"duplicate `%s` in %s attribute on this %s", d.Key, g.Attr, g.Scope)
				if loc := prev.Location.String(); loc != "" {
					return nil, err.WithHint("first set to %q at %s", prev.Value, loc)
				}
				return nil, err.WithHint("first set to %q", prev.Value)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

func (g Grammar) directives(m *Meta, loc descriptor.Location) ([]Directive, error) {
	switch m.Kind {
	case MetaNameValue:
		if g.ValueKey == "" {
			return nil, g.unrecognized(loc, "`%s = ...` is not supported on a %s", g.Attr, g.Scope)
		}
		if !m.Value.String {
			return nil, diag.Errorf(diag.MalformedAnnotationValue, loc,
				"expected string literal in `%s = ...`, found %s", g.Attr, m.Value.Text)
		}
		return []Directive{{Key: g.ValueKey, Value: m.Value.Value, Location: loc}}, nil

	case MetaList:
		var out []Directive
		for _, item := range m.List {
			d, err := g.item(item, loc)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
		return out, nil
	}
	return nil, diag.Errorf(diag.MalformedAnnotationValue, loc, "expected %s", g.expected())
}

func (g Grammar) item(m *Meta, loc descriptor.Location) (Directive, error) {
	if m.Kind == MetaLiteral {
		return Directive{}, diag.Errorf(diag.MalformedAnnotationValue, loc,
			"unexpected literal %s in `%s(...)`", m.Value.Text, g.Attr)
	}
	if !g.legal(m.Path) {
		return Directive{}, suggest(
			g.unrecognized(loc, "unrecognized key `%s` in `%s(...)` on a %s", m.Path, g.Attr, g.Scope),
			m.Path, g.ListKeys)
	}
	switch m.Kind {
	case MetaPath:
		return Directive{}, diag.Errorf(diag.MalformedAnnotationValue, loc,
			"`%s` needs a value: expected %s", m.Path, g.expected())
	case MetaList:
		return Directive{}, diag.Errorf(diag.MalformedAnnotationValue, loc,
			"`%s` takes a string literal, not a list", m.Path)
	}
	if !m.Value.String {
		return Directive{}, diag.Errorf(diag.MalformedAnnotationValue, loc,
			"expected string literal for `%s`, found %s", m.Path, m.Value.Text)
	}
	if err := validate(m.Path, m.Value.Value); err != nil {
		return Directive{}, diag.Errorf(diag.MalformedAnnotationValue, loc, "invalid `%s` value %q: %v", m.Path, m.Value.Value, err)
	}
	return Directive{Key: m.Path, Value: m.Value.Value, Location: loc}, nil
}

// expected spells the legal forms for error messages.
func (g Grammar) expected() string {
	var forms []string
	for _, k := range g.ListKeys {
		forms = append(forms, "`"+g.Attr+"("+k+" = \"...\")`")
	}
	if g.ValueKey != "" {
		forms = append(forms, "`"+g.Attr+" = \"...\"`")
	}
	switch len(forms) {
	case 0:
		return "no `" + g.Attr + "` attribute on a " + g.Scope.String()
	case 1:
		return forms[0]
	}
	sort.Strings(forms)
	out := forms[0]
	for _, f := range forms[1 : len(forms)-1] {
		out += ", " + f
	}
	return out + " or " + forms[len(forms)-1]
}

func (g Grammar) unrecognized(loc descriptor.Location, format string, args ...interface{}) *diag.Error {
	return diag.Errorf(diag.UnrecognizedAnnotationKey, loc, format, args...)
}

// suggest adds a "did you mean" hint when a legal key is within two edits of
// the one written.
func suggest(err *diag.Error, key string, legal []string) *diag.Error {
	best, bestDist := "", 3
	for _, k := range legal {
		if d := fuzzy.LevenshteinDistance(key, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	if best != "" {
		return err.WithHint("did you mean `%s`?", best)
	}
	return err
}
