package schema

import (
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
)

// DecodeTOML decodes a TOML schema document, where records are written as
// [[records]] tables and fields as [[records.fields]].
func DecodeTOML(file string, data []byte) ([]*descriptor.TypeDescriptor, error) {
	var doc Document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.NewInvalidSchemaError("%s: %v", file, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.NewInvalidSchemaError("%s: unknown keys: %s", file, strings.Join(keys, ", "))
	}
	return doc.descriptors(file)
}
