// Package schema turns schema documents and annotated Go sources into record
// descriptors.
//
// A document lists records under a top-level "records" key:
//
//	records:
//	  - name: Command
//	    visibility: pub
//	    derive: [Builder, CustomDebug]
//	    fields:
//	      - name: executable
//	        type: String
//	      - name: args
//	        type: Vec<String>
//	        annotations: ['builder(each = "arg")']
//
// The same shape is accepted as YAML, TOML and JSON. Unknown keys are
// rejected in every format.
package schema

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/logger"
)

// Document is the decoded form of a schema file.
type Document struct {
	Records []Record `yaml:"records" toml:"records" json:"records"`
}

// Record describes one record type.
type Record struct {
	Name       Text   `yaml:"name" toml:"name" json:"name"`
	Visibility string `yaml:"visibility" toml:"visibility" json:"visibility"`
	// Generics holds parameter declarations such as "T: Clone" or "'a".
	Generics    []string `yaml:"generics" toml:"generics" json:"generics"`
	Where       []string `yaml:"where" toml:"where" json:"where"`
	Derive      []string `yaml:"derive" toml:"derive" json:"derive"`
	Annotations []Text   `yaml:"annotations" toml:"annotations" json:"annotations"`
	Fields      []Field  `yaml:"fields" toml:"fields" json:"fields"`
}

// Field describes one field of a record.
type Field struct {
	Name        Text   `yaml:"name" toml:"name" json:"name"`
	Type        Text   `yaml:"type" toml:"type" json:"type"`
	Annotations []Text `yaml:"annotations" toml:"annotations" json:"annotations"`
}

// Text is a scalar that remembers where it was written. Only the YAML
// decoder records positions.
type Text struct {
	Value  string
	Line   int
	Column int
}

// UnmarshalText lets TOML and JSON decode a Text from a plain string.
func (t *Text) UnmarshalText(b []byte) error {
	t.Value = string(b)
	return nil
}

// Load reads the records declared in path. The format is chosen by file
// extension; a directory is loaded as a Go package.
func Load(ctx context.Context, path string) ([]*descriptor.TypeDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema %s", path)
	}
	if info.IsDir() {
		return LoadPackage(ctx, path)
	}

	var records []*descriptor.TypeDescriptor
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		records, err = readWith(path, DecodeYAML)
	case ".toml":
		records, err = readWith(path, DecodeTOML)
	case ".json":
		records, err = readWith(path, DecodeJSON)
	case ".go":
		records, err = readWith(path, ParseGo)
	default:
		return nil, errors.WithHint(
			errors.NewInvalidSchemaError("%s: unsupported schema format %q", path, ext),
			"use .yaml, .yml, .toml, .json or .go")
	}
	if err != nil {
		return nil, err
	}
	logger.Debugw("Loaded schema", logger.FieldFile, path, logger.FieldCount, len(records))
	return records, nil
}

func readWith(path string, decode func(string, []byte) ([]*descriptor.TypeDescriptor, error)) ([]*descriptor.TypeDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema %s", path)
	}
	return decode(path, data)
}

// descriptors converts a decoded document into descriptors. file names the
// source in locations.
func (d *Document) descriptors(file string) ([]*descriptor.TypeDescriptor, error) {
	out := make([]*descriptor.TypeDescriptor, 0, len(d.Records))
	for i := range d.Records {
		td, err := d.Records[i].descriptor(file, i)
		if err != nil {
			return nil, err
		}
		out = append(out, td)
	}
	return out, nil
}

func (r *Record) descriptor(file string, index int) (*descriptor.TypeDescriptor, error) {
	name := r.Name.Value
	loc := location(file, r.Name, name)
	if name == "" {
		loc.Path = "records[" + strconv.Itoa(index) + "]"
		return nil, errors.NewInvalidSchemaError("%s: record has no name", loc)
	}

	td := &descriptor.TypeDescriptor{
		Name:       name,
		Visibility: r.Visibility,
		Where:      r.Where,
		Derives:    r.Derive,
		Location:   loc,
	}
	for _, g := range r.Generics {
		p, err := descriptor.ParseGenericParam(g)
		if err != nil {
			return nil, errors.NewInvalidSchemaError("%s: generic parameter: %v", loc, err)
		}
		td.Generics = append(td.Generics, p)
	}
	for _, w := range r.Where {
		if _, err := descriptor.ParsePredicates(w); err != nil {
			return nil, errors.NewInvalidSchemaError("%s: where clause: %v", loc, err)
		}
	}
	td.Annotations = annotations(file, name, r.Annotations)

	for _, f := range r.Fields {
		path := name + "." + f.Name.Value
		floc := location(file, f.Name, path)
		if f.Type.Value == "" {
			return nil, errors.NewInvalidSchemaError("%s: field %q has no type", floc, f.Name.Value)
		}
		ty, err := descriptor.ParseType(f.Type.Value)
		if err != nil {
			return nil, errors.NewInvalidSchemaError("%s: field type: %v", location(file, f.Type, path), err)
		}
		td.Fields = append(td.Fields, descriptor.Field{
			Name:        f.Name.Value,
			Type:        ty,
			Annotations: annotations(file, path, f.Annotations),
			Location:    floc,
		})
	}
	if err := td.Validate(); err != nil {
		return nil, err
	}
	return td, nil
}

func annotations(file, path string, texts []Text) []descriptor.Annotation {
	var out []descriptor.Annotation
	for _, t := range texts {
		out = append(out, descriptor.Annotation{Raw: t.Value, Location: location(file, t, path)})
	}
	return out
}

func location(file string, t Text, path string) descriptor.Location {
	return descriptor.Location{File: file, Line: t.Line, Column: t.Column, Path: path}
}
