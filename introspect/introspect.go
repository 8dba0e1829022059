// Package introspect supplies record declarations to the compiler. Runtime
// reflection is deliberately absent: records are declared through an
// explicit registration API (a Set with a chaining builder) or any other
// TypeIntrospector implementation, such as generated code.
package introspect

import (
	"sync"

	"github.com/recodec/recodec"
	"github.com/recodec/recodec/typeexpr"
)

// Field is one declared field: name, type expression and use-site metadata.
type Field struct {
	Name string
	Type typeexpr.Type
	Meta recodec.Meta
}

// Record is a declared record type. Base names a parent record whose fields
// are inherited (base fields first; a same-named field in the derived record
// replaces the inherited one in place).
type Record struct {
	Name   string
	Base   string
	Fields []Field
}

// TypeIntrospector exposes record declarations by name. Implementations must
// be safe for concurrent reads once populated.
type TypeIntrospector interface {
	Record(name string) (Record, bool)
}

// Set is the registration-based TypeIntrospector. Populate during startup,
// then hand it to compile.New; registration after compilation has begun is
// not supported.
type Set struct {
	mu      sync.RWMutex
	records map[string]*RecordBuilder
}

// NewSet returns an empty registration set.
func NewSet() *Set {
	return &Set{records: map[string]*RecordBuilder{}}
}

// Declare registers (or returns the builder of) a record declaration.
func (s *Set) Declare(name string) *RecordBuilder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rb, ok := s.records[name]; ok {
		return rb
	}
	rb := &RecordBuilder{name: name}
	s.records[name] = rb
	return rb
}

// Record implements TypeIntrospector.
func (s *Set) Record(name string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rb, ok := s.records[name]
	if !ok {
		return Record{}, false
	}
	return rb.snapshot(), true
}

var _ TypeIntrospector = (*Set)(nil)

// RecordBuilder declares fields of one record with chaining calls.
type RecordBuilder struct {
	name   string
	base   string
	fields []Field
}

// Field appends a field declaration. Declaration order is preserved and
// drives load/dump iteration under OrderDeclared.
func (rb *RecordBuilder) Field(name string, t typeexpr.Type, meta recodec.Meta) *RecordBuilder {
	rb.fields = append(rb.fields, Field{Name: name, Type: t, Meta: meta})
	return rb
}

// Extends names the base record whose fields this record inherits.
func (rb *RecordBuilder) Extends(base string) *RecordBuilder {
	rb.base = base
	return rb
}

func (rb *RecordBuilder) snapshot() Record {
	return Record{Name: rb.name, Base: rb.base, Fields: append([]Field(nil), rb.fields...)}
}
