package schema

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/logger"
	"github.com/teranos/derivegen/rust"
)

// Go source conventions.
const (
	// MarkerPrefix starts the doc-comment line that selects a struct and
	// lists its derives: //derive:Builder,CustomDebug
	MarkerPrefix = "//derive:"
	// AttrDirective attaches one annotation payload from a doc comment:
	// //derive:attr debug(bound = "T: Clone")
	AttrDirective = "//derive:attr "
	// AttrTag is the struct tag holding field annotations, separated by ';'.
	AttrTag = "derive"
	// TypeTag overrides the mapped type of a field; "-" skips the field.
	TypeTag = "rusttype"
)

// TypeMapping maps Go type names to their Rust spelling.
var TypeMapping = map[string]string{
	"string":          "String",
	"int":             "i64",
	"int8":            "i8",
	"int16":           "i16",
	"int32":           "i32",
	"int64":           "i64",
	"uint":            "u64",
	"uint8":           "u8",
	"uint16":          "u16",
	"uint32":          "u32",
	"uint64":          "u64",
	"uintptr":         "usize",
	"float32":         "f32",
	"float64":         "f64",
	"byte":            "u8",
	"rune":            "char",
	"bool":            "bool",
	"error":           "::std::boxed::Box<dyn ::std::error::Error>",
	"time.Time":       "::std::time::SystemTime",
	"time.Duration":   "::std::time::Duration",
	"json.RawMessage": "::std::vec::Vec<u8>",
	"sql.NullString":  "Option<String>",
	"sql.NullInt64":   "Option<i64>",
	"sql.NullInt32":   "Option<i32>",
	"sql.NullBool":    "Option<bool>",
	"sql.NullTime":    "Option<::std::time::SystemTime>",
}

// unknownType stands in for interface types, which have no direct Rust
// counterpart.
const unknownType = "::std::boxed::Box<dyn ::std::any::Any>"

// LoadPackage loads the Go package in dir and returns its marked structs.
func LoadPackage(ctx context.Context, dir string) ([]*descriptor.TypeDescriptor, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load package %s", dir)
	}
	if len(pkgs) == 0 {
		return nil, errors.NewInvalidSchemaError("%s: no Go package found", dir)
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, errors.NewInvalidSchemaError("%s: package errors: %v", dir, pkg.Errors)
	}

	var records []*descriptor.TypeDescriptor
	for _, file := range pkg.Syntax {
		rs, err := fromFile(pkg.Fset, file)
		if err != nil {
			return nil, err
		}
		records = append(records, rs...)
	}
	logger.Debugw("Loaded Go package", logger.FieldFile, dir, logger.FieldCount, len(records))
	return records, nil
}

// ParseGo extracts marked structs from one Go source file.
func ParseGo(file string, src []byte) ([]*descriptor.TypeDescriptor, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, src, parser.ParseComments)
	if err != nil {
		return nil, errors.NewInvalidSchemaError("%v", err)
	}
	return fromFile(fset, f)
}

func fromFile(fset *token.FileSet, file *ast.File) ([]*descriptor.TypeDescriptor, error) {
	var records []*descriptor.TypeDescriptor
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}
			derives, marked := marker(doc)
			if !marked {
				continue
			}
			td, err := structRecord(fset, ts, st, doc, derives)
			if err != nil {
				return nil, err
			}
			records = append(records, td)
		}
	}
	return records, nil
}

// marker finds the derive line in a doc comment.
func marker(doc *ast.CommentGroup) ([]string, bool) {
	if doc == nil {
		return nil, false
	}
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, MarkerPrefix) || strings.HasPrefix(c.Text, AttrDirective) {
			continue
		}
		var derives []string
		for _, d := range strings.Split(strings.TrimPrefix(c.Text, MarkerPrefix), ",") {
			if d = strings.TrimSpace(d); d != "" {
				derives = append(derives, d)
			}
		}
		return derives, true
	}
	return nil, false
}

func structRecord(fset *token.FileSet, ts *ast.TypeSpec, st *ast.StructType, doc *ast.CommentGroup, derives []string) (*descriptor.TypeDescriptor, error) {
	name := ts.Name.Name
	loc := position(fset, ts.Name.Pos(), name)

	td := &descriptor.TypeDescriptor{
		Name:        name,
		Derives:     derives,
		Annotations: docAnnotations(fset, doc, name),
		Location:    loc,
	}
	if ts.Name.IsExported() {
		td.Visibility = "pub"
	}
	if ts.TypeParams != nil {
		for _, field := range ts.TypeParams.List {
			for _, n := range field.Names {
				td.Generics = append(td.Generics, descriptor.GenericParam{Kind: descriptor.TypeParam, Name: n.Name})
			}
		}
	}

	for _, field := range st.Fields.List {
		// Embedded fields have no name to generate accessors for.
		if len(field.Names) == 0 {
			continue
		}
		tags, err := fieldTags(fset, field)
		if err != nil {
			return nil, err
		}
		if tags.Get(TypeTag) == "-" {
			continue
		}

		for _, ident := range field.Names {
			if !ident.IsExported() {
				continue
			}
			fname := rust.Ident(rust.SnakeCase(ident.Name))
			path := name + "." + fname
			floc := position(fset, ident.Pos(), path)

			src := tags.Get(TypeTag)
			if src == "" {
				src = goTypeToRust(field.Type)
			}
			ty, err := descriptor.ParseType(src)
			if err != nil {
				return nil, errors.NewInvalidSchemaError("%s: field type %q: %v", floc, src, err)
			}

			anns := docAnnotations(fset, field.Doc, path)
			tagLoc := floc
			if field.Tag != nil {
				tagLoc = position(fset, field.Tag.Pos(), path)
			}
			for _, raw := range splitPayloads(tags.Get(AttrTag)) {
				anns = append(anns, descriptor.Annotation{Raw: raw, Location: tagLoc})
			}

			td.Fields = append(td.Fields, descriptor.Field{
				Name:        fname,
				Type:        ty,
				Annotations: anns,
				Location:    floc,
			})
		}
	}
	if err := td.Validate(); err != nil {
		return nil, err
	}
	return td, nil
}

func fieldTags(fset *token.FileSet, field *ast.Field) (reflect.StructTag, error) {
	if field.Tag == nil {
		return "", nil
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return "", errors.NewInvalidSchemaError("%s: malformed struct tag", fset.Position(field.Tag.Pos()))
	}
	return reflect.StructTag(raw), nil
}

// docAnnotations collects //derive:attr lines.
func docAnnotations(fset *token.FileSet, doc *ast.CommentGroup, path string) []descriptor.Annotation {
	if doc == nil {
		return nil
	}
	var out []descriptor.Annotation
	for _, c := range doc.List {
		if payload, ok := strings.CutPrefix(c.Text, AttrDirective); ok {
			out = append(out, descriptor.Annotation{
				Raw:      strings.TrimSpace(payload),
				Location: position(fset, c.Pos(), path),
			})
		}
	}
	return out
}

// splitPayloads splits a tag value on ';' outside string literals.
func splitPayloads(s string) []string {
	var out []string
	var quoted, escaped bool
	start := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case escaped:
			escaped = false
		case c == '\\' && quoted:
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == ';' && !quoted:
			if p := strings.TrimSpace(s[start:i]); p != "" {
				out = append(out, p)
			}
			start = i + 1
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		out = append(out, p)
	}
	return out
}

func position(fset *token.FileSet, pos token.Pos, path string) descriptor.Location {
	p := fset.Position(pos)
	return descriptor.Location{File: p.Filename, Line: p.Line, Column: p.Column, Path: path}
}

// goTypeToRust spells a Go type expression as a Rust type. Pointers become
// Option, slices Vec, maps HashMap; names not in TypeMapping are kept.
func goTypeToRust(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		if t.Name == "any" {
			return unknownType
		}
		if mapped, ok := TypeMapping[t.Name]; ok {
			return mapped
		}
		return t.Name

	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			if mapped, ok := TypeMapping[ident.Name+"."+t.Sel.Name]; ok {
				return mapped
			}
		}
		return t.Sel.Name

	case *ast.StarExpr:
		return "Option<" + goTypeToRust(t.X) + ">"

	case *ast.ArrayType:
		elem := goTypeToRust(t.Elt)
		if t.Len == nil {
			return "Vec<" + elem + ">"
		}
		if lit, ok := t.Len.(*ast.BasicLit); ok {
			return "[" + elem + "; " + lit.Value + "]"
		}
		return "Vec<" + elem + ">"

	case *ast.MapType:
		return "::std::collections::HashMap<" + goTypeToRust(t.Key) + ", " + goTypeToRust(t.Value) + ">"

	case *ast.IndexExpr:
		return goTypeToRust(t.X) + "<" + goTypeToRust(t.Index) + ">"

	case *ast.IndexListExpr:
		args := make([]string, len(t.Indices))
		for i, idx := range t.Indices {
			args[i] = goTypeToRust(idx)
		}
		return goTypeToRust(t.X) + "<" + strings.Join(args, ", ") + ">"

	case *ast.ParenExpr:
		return goTypeToRust(t.X)

	default:
		return unknownType
	}
}
