// Package descriptor holds the structural description of a record that the
// generators consume: ordered fields with syntactic type expressions, raw
// annotations, and generic parameters.
//
// Nothing in this package resolves names. A TypeExpr is exactly what was
// written, parsed into a small syntax tree.
package descriptor

import (
	"fmt"
	"strings"

	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/rust"
)

// Location identifies where a record, field, or annotation was declared.
// Line and Column are 1-based; zero means unknown.
type Location struct {
	File   string
	Line   int
	Column int
	// Path is the logical position, e.g. "Command.args".
	Path string
}

// String renders file:line:col, falling back to the logical path.
func (l Location) String() string {
	switch {
	case l.File != "" && l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	case l.File != "" && l.Line > 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	case l.File != "" && l.Path != "":
		return l.File + ": " + l.Path
	case l.File != "":
		return l.File
	default:
		return l.Path
	}
}

// Annotation is one raw attribute payload, the text inside #[...].
type Annotation struct {
	Raw      string
	Location Location
}

// Field is one named field of a record.
type Field struct {
	Name        string
	Type        *TypeExpr
	Annotations []Annotation
	Location    Location
}

// ParamKind distinguishes the three kinds of generic parameters.
type ParamKind int

const (
	TypeParam ParamKind = iota
	LifetimeParam
	ConstParam
)

// GenericParam is one entry of a record's generic parameter list.
type GenericParam struct {
	Kind ParamKind
	// Name includes the leading quote for lifetimes ('a).
	Name string
	// Bounds is the raw text after ':' for type and lifetime params.
	Bounds string
	// ConstType is the declared type of a const param.
	ConstType string
	// Default is the raw text after '='.
	Default string
}

// Declaration renders the parameter as it appears in an impl header
// (defaults are not allowed there and are omitted).
func (p GenericParam) Declaration() string {
	switch p.Kind {
	case ConstParam:
		return "const " + p.Name + ": " + p.ConstType
	default:
		if p.Bounds == "" {
			return p.Name
		}
		return p.Name + ": " + p.Bounds
	}
}

// TypeDescriptor describes one record under generation.
type TypeDescriptor struct {
	Name string
	// Visibility is the record's visibility qualifier ("pub", "pub(crate)", "").
	Visibility  string
	Generics    []GenericParam
	Where       []string
	Fields      []Field
	Annotations []Annotation
	// Derives lists the generators requested for this record.
	Derives  []string
	Location Location
}

// TypeParamNames returns the names of type (not lifetime or const) parameters.
func (td *TypeDescriptor) TypeParamNames() []string {
	var names []string
	for _, p := range td.Generics {
		if p.Kind == TypeParam {
			names = append(names, p.Name)
		}
	}
	return names
}

// HasTypeParams reports whether the record declares any type parameter.
func (td *TypeDescriptor) HasTypeParams() bool {
	return len(td.TypeParamNames()) > 0
}

// ImplGenerics renders the parameter list for an impl header: <'a, T: Bound>.
func (td *TypeDescriptor) ImplGenerics() string {
	if len(td.Generics) == 0 {
		return ""
	}
	parts := make([]string, len(td.Generics))
	for i, p := range td.Generics {
		parts[i] = p.Declaration()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// TypeGenerics renders the argument list used to name the type: <'a, T>.
func (td *TypeDescriptor) TypeGenerics() string {
	if len(td.Generics) == 0 {
		return ""
	}
	parts := make([]string, len(td.Generics))
	for i, p := range td.Generics {
		parts[i] = p.Name
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// DeclGenerics renders the parameter list for the type declaration itself,
// defaults included.
func (td *TypeDescriptor) DeclGenerics() string {
	if len(td.Generics) == 0 {
		return ""
	}
	parts := make([]string, len(td.Generics))
	for i, p := range td.Generics {
		parts[i] = p.Declaration()
		if p.Default != "" {
			parts[i] += " = " + p.Default
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// SelfType names the record with its generic arguments: Field<T>.
func (td *TypeDescriptor) SelfType() string {
	return td.Name + td.TypeGenerics()
}

// Derive reports whether the record requested the named generator.
// Comparison ignores case.
func (td *TypeDescriptor) Derive(name string) bool {
	for _, d := range td.Derives {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// Validate checks the input contract: valid identifiers, unique field and
// parameter names, and a type on every field.
func (td *TypeDescriptor) Validate() error {
	if !IsIdent(td.Name) || rust.IsReserved(rust.Unraw(td.Name)) {
		return errors.NewInvalidSchemaError("%s: invalid record name %q", td.Location, td.Name)
	}

	params := make(map[string]bool, len(td.Generics))
	for _, p := range td.Generics {
		name := strings.TrimPrefix(p.Name, "'")
		if !IsIdent(name) {
			return errors.NewInvalidSchemaError("%s: invalid generic parameter %q", td.Location, p.Name)
		}
		if params[p.Name] {
			return errors.NewInvalidSchemaError("%s: duplicate generic parameter %q", td.Location, p.Name)
		}
		params[p.Name] = true
	}

	fields := make(map[string]bool, len(td.Fields))
	for _, f := range td.Fields {
		if !IsIdent(f.Name) {
			return errors.NewInvalidSchemaError("%s: invalid field name %q", f.Location, f.Name)
		}
		// self, super, crate and Self have no raw form.
		if rust.IsReserved(rust.Unraw(f.Name)) {
			return errors.WithHint(
				errors.NewInvalidSchemaError("%s: reserved field name %q", f.Location, f.Name),
				"rename the field; self, Self, super and crate cannot be escaped with r#")
		}
		if fields[f.Name] {
			return errors.NewInvalidSchemaError("%s: duplicate field %q in %s", f.Location, f.Name, td.Name)
		}
		if f.Type == nil {
			return errors.NewInvalidSchemaError("%s: field %q has no type", f.Location, f.Name)
		}
		fields[f.Name] = true
	}
	return nil
}

// IsIdent reports whether s is a valid identifier, raw identifiers (r#type)
// included.
func IsIdent(s string) bool {
	s = strings.TrimPrefix(s, "r#")
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r, i == 0) {
			return false
		}
	}
	return s != "_"
}
