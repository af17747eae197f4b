// Package errors provides error handling for CoDA.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrDataInconsistency) {
//	    // keep the previous tables
//	}
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
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions and panics
var (
	AssertionFailedf                 = crdb.AssertionFailedf
	NewAssertionErrorWithWrappedErrf = crdb.NewAssertionErrorWithWrappedErrf
)

// Sentinel errors for the error taxonomy used across CoDA.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrConfiguration indicates an invalid construction-time configuration,
	// e.g. an empty factor palette or an unknown assignment mode. Fatal, never
	// swallowed.
	ErrConfiguration = New("invalid configuration")

	// ErrDataInconsistency indicates the provider produced tables that do not
	// fit together, e.g. a vertex/edge row-count mismatch. The current reload
	// is aborted and the last known-good state is kept.
	ErrDataInconsistency = New("inconsistent data")

	// ErrUndetectedColumns indicates the edge source/target columns could not
	// be auto-detected and were not configured explicitly.
	ErrUndetectedColumns = New("source/target columns not detected")

	// ErrStaleEpoch indicates a derived artifact was about to be served for a
	// table epoch it was not computed against. This must never occur if the
	// reload invariants hold; any sighting is a defect.
	ErrStaleEpoch = New("stale table epoch")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = New("not found")
)

// IsConfigurationError checks if an error is or wraps ErrConfiguration.
func IsConfigurationError(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsDataInconsistencyError checks if an error is or wraps ErrDataInconsistency.
func IsDataInconsistencyError(err error) bool {
	return err != nil && Is(err, ErrDataInconsistency)
}

// NewConfigurationError creates a configuration error with a formatted message.
func NewConfigurationError(format string, args ...interface{}) error {
	return Wrap(ErrConfiguration, Newf(format, args...).Error())
}

// NewDataInconsistencyError creates a data-inconsistency error with a
// formatted message.
func NewDataInconsistencyError(format string, args ...interface{}) error {
	return Wrap(ErrDataInconsistency, Newf(format, args...).Error())
}
