package compile

import (
	"errors"
	"fmt"
)

// Compile-time failures are ordinary typed errors: a record type that cannot
// be compiled is a programming error in the declaration, never a transient
// condition, so these always propagate to the Compile caller.

// UnsupportedTypeError reports a type expression whose shape matched no
// recognized case and no registered override.
type UnsupportedTypeError struct {
	Shape  string // Rendered type expression.
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("compile: unsupported type %s", e.Shape)
	}
	return fmt.Sprintf("compile: unsupported type %s: %s", e.Shape, e.Reason)
}

// DuplicateFieldError reports two declared fields resolving to the same
// serialized name without explicit disambiguation.
type DuplicateFieldError struct {
	Record string
	Key    string
	Fields [2]string // The colliding field names, declaration order.
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("compile: record %s: fields %s and %s both serialize to %q",
		e.Record, e.Fields[0], e.Fields[1], e.Key)
}

// UnknownRecordError reports a Record reference the introspector cannot
// satisfy.
type UnknownRecordError struct {
	Record string
}

func (e *UnknownRecordError) Error() string {
	return fmt.Sprintf("compile: unknown record type %q", e.Record)
}

// ErrRegistryFrozen is returned by RegisterAlias once compilation has begun.
// The alias registry is populate-then-freeze: declare every alias during
// startup, before the first Compile.
var ErrRegistryFrozen = errors.New("compile: alias registry is frozen after first compile")

// ErrAliasExists is returned when an alias name is registered twice.
var ErrAliasExists = errors.New("compile: alias already registered")
