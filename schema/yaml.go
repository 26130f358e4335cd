package schema

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
)

// UnmarshalYAML records the scalar's position.
func (t *Text) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return errors.Newf("line %d: expected a string", n.Line)
	}
	t.Value, t.Line, t.Column = n.Value, n.Line, n.Column
	return nil
}

// DecodeYAML decodes a YAML schema document.
func DecodeYAML(file string, data []byte) ([]*descriptor.TypeDescriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.NewInvalidSchemaError("%s: %v", file, err)
	}
	return doc.descriptors(file)
}
