// Package errors provides error handling for derivegen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints that the CLI prints under a failure
//
// Usage:
//
//	if err := loadSchema(path); err != nil {
//	    return errors.Wrapf(err, "failed to load %s", path)
//	}
//
//	return errors.WithHint(err, "run 'derivegen generate' to refresh the output")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
	Join           = crdb.Join
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors shared across derivegen.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrInvalidSchema indicates a schema document or Go source could not be
	// turned into record descriptors.
	ErrInvalidSchema = New("invalid schema")

	// ErrGeneration indicates at least one generation call failed with a
	// diagnostic.
	ErrGeneration = New("generation failed")

	// ErrOutOfDate indicates generated files on disk differ from a fresh run.
	ErrOutOfDate = New("generated code is out of date")
)

// IsInvalidSchemaError checks if an error is or wraps ErrInvalidSchema
func IsInvalidSchemaError(err error) bool {
	return err != nil && Is(err, ErrInvalidSchema)
}

// IsGenerationError checks if an error is or wraps ErrGeneration
func IsGenerationError(err error) bool {
	return err != nil && Is(err, ErrGeneration)
}

// NewInvalidSchemaError creates an invalid-schema error with a formatted message
func NewInvalidSchemaError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidSchema, Newf(format, args...).Error())
}
