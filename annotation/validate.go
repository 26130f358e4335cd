package annotation

import (
	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/rust"
)

// validate checks the literal of keys whose value has structure.
func validate(key, value string) error {
	switch key {
	case KeyEach:
		if !descriptor.IsIdent(value) {
			return errors.New("not an identifier")
		}
		if rust.IsReserved(rust.Unraw(value)) {
			return errors.Newf("%s cannot be used as a method name", value)
		}
	case KeyBound:
		if _, err := descriptor.ParsePredicates(value); err != nil {
			return errors.Wrap(err, "expected where-clause predicates such as \"T::Value: Debug\"")
		}
	}
	return nil
}
