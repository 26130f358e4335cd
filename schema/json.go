package schema

import (
	"bytes"
	"encoding/json"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
)

// DecodeJSON decodes a JSON schema document.
func DecodeJSON(file string, data []byte) ([]*descriptor.TypeDescriptor, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.NewInvalidSchemaError("%s: %v", file, err)
	}
	return doc.descriptors(file)
}
