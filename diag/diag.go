// Package diag turns generation-time failures into located diagnostics and
// into the alternate artifact emitted in place of generated code.
package diag

import (
	"fmt"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
)

// Kind categorizes generation errors for programmatic handling
type Kind string

const (
	UnrecognizedAnnotationKey Kind = "unrecognized annotation key"
	MalformedAnnotationValue  Kind = "malformed annotation value"
	ConflictingOverride       Kind = "conflicting override"
)

// Error is a generation-time failure. It is always fatal to the generation
// call that produced it.
type Error struct {
	Kind     Kind
	Message  string
	Location descriptor.Location
	// Hint is an optional suggestion, e.g. the closest legal key.
	Hint string
}

// Errorf creates a located error of the given kind.
func Errorf(kind Kind, loc descriptor.Location, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// WithHint sets the hint and returns the error for chaining.
func (e *Error) WithHint(format string, args ...interface{}) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// Error implements error. The location prefix is omitted when unknown.
func (e *Error) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	if loc := e.Location.String(); loc != "" {
		return loc + ": " + msg
	}
	return msg
}

// Is matches ErrGeneration so callers can test any generation failure with
// errors.Is.
func (e *Error) Is(target error) bool {
	return target == errors.ErrGeneration
}

// As extracts a generation error from a wrapped chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
