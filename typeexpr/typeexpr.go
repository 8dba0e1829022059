// Package typeexpr models declared field types as an immutable expression
// tree. A Type is one of a closed set of shapes; the compile package
// dispatches on Kind so resolution is an exhaustive switch rather than
// open-ended instance checks.
//
// Record and Alias nodes reference their target by name only. Cycles through
// a Record reference are legal (self- or mutually-recursive record graphs)
// and are resolved lazily at compile time; structural nesting can never
// cycle because constructors copy their arguments into fresh nodes.
package typeexpr

// Kind identifies the shape of a Type.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindBytes
	KindDecimal
	KindUUID
	KindTime
	KindDate
	KindOptional
	KindUnion
	KindLiteral
	KindSequence
	KindSet
	KindFrozenSet
	KindMapping
	KindTuple
	KindVarTuple
	KindRecord
	KindAlias
	KindDynamic
)

// IsPrimitive reports whether k names a scalar primitive shape.
func (k Kind) IsPrimitive() bool { return k >= KindString && k <= KindDate }

// IsContainer reports whether k names a generic container shape.
func (k Kind) IsContainer() bool { return k >= KindSequence && k <= KindVarTuple }

// String returns the lowercase shape name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindDecimal:
		return "decimal"
	case KindUUID:
		return "uuid"
	case KindTime:
		return "time"
	case KindDate:
		return "date"
	case KindOptional:
		return "optional"
	case KindUnion:
		return "union"
	case KindLiteral:
		return "literal"
	case KindSequence:
		return "sequence"
	case KindSet:
		return "set"
	case KindFrozenSet:
		return "frozenset"
	case KindMapping:
		return "mapping"
	case KindTuple:
		return "tuple"
	case KindVarTuple:
		return "vartuple"
	case KindRecord:
		return "record"
	case KindAlias:
		return "alias"
	case KindDynamic:
		return "dynamic"
	}
	return "unknown"
}

// Type is an immutable description of a declared field type. Accessors return
// the zero value when they do not apply to the node's Kind.
type Type struct {
	kind     Kind
	elems    []Type // Optional/Union/container element types
	literals []any  // Literal constant set
	name     string // Record/Alias target name
}

// Kind returns the shape tag.
func (t Type) Kind() Kind { return t.kind }

// Elems returns the element types of Optional/Union/container nodes.
// The returned slice must not be mutated.
func (t Type) Elems() []Type { return t.elems }

// Elem returns the sole element type and false when none is declared
// (bare container).
func (t Type) Elem() (Type, bool) {
	if len(t.elems) == 0 {
		return Type{}, false
	}
	return t.elems[0], true
}

// Literals returns the constant set of a Literal node.
func (t Type) Literals() []any { return t.literals }

// Name returns the referenced record or alias name.
func (t Type) Name() string { return t.name }

// String renders a compact human-readable form for diagnostics.
func (t Type) String() string {
	switch t.kind {
	case KindRecord, KindAlias:
		return t.kind.String() + "<" + t.name + ">"
	case KindOptional, KindUnion, KindSequence, KindSet, KindFrozenSet, KindMapping, KindTuple, KindVarTuple:
		s := t.kind.String() + "<"
		for i, e := range t.elems {
			if i > 0 {
				s += ","
			}
			s += e.String()
		}
		return s + ">"
	default:
		return t.kind.String()
	}
}

// ---- constructors ----

// String returns the string primitive.
func String() Type { return Type{kind: KindString} }

// Int returns the integer primitive.
func Int() Type { return Type{kind: KindInt} }

// Float returns the floating point primitive.
func Float() Type { return Type{kind: KindFloat} }

// Bool returns the boolean primitive.
func Bool() Type { return Type{kind: KindBool} }

// Bytes returns the binary primitive (base64 text on the wire).
func Bytes() Type { return Type{kind: KindBytes} }

// Decimal returns the arbitrary-precision number primitive. Values keep
// their textual representation (json.Number) through load and dump.
func Decimal() Type { return Type{kind: KindDecimal} }

// UUID returns the UUID primitive.
func UUID() Type { return Type{kind: KindUUID} }

// Time returns the RFC3339 timestamp primitive.
func Time() Type { return Type{kind: KindTime} }

// Date returns the calendar date primitive ("2006-01-02" on the wire).
func Date() Type { return Type{kind: KindDate} }

// Optional wraps t so that null is an accepted value.
func Optional(t Type) Type { return Type{kind: KindOptional, elems: []Type{t}} }

// Union declares a sum over the given alternatives. Declared order matters:
// at load time alternatives are tried in order and the first match wins.
func Union(alts ...Type) Type {
	return Type{kind: KindUnion, elems: append([]Type(nil), alts...)}
}

// Literal declares a fixed constant set. Values should be string, bool or
// int64; matching is by exact kind and value, never by coercion.
func Literal(values ...any) Type {
	return Type{kind: KindLiteral, literals: append([]any(nil), values...)}
}

// Sequence declares an order-preserving list of elem.
func Sequence(elem Type) Type { return Type{kind: KindSequence, elems: []Type{elem}} }

// Set declares an unordered collection of elem; duplicates collapse on load.
func Set(elem Type) Type { return Type{kind: KindSet, elems: []Type{elem}} }

// FrozenSet declares an immutable unordered collection of elem.
func FrozenSet(elem Type) Type { return Type{kind: KindFrozenSet, elems: []Type{elem}} }

// Mapping declares a key/value mapping. Keys arrive as text on the wire and
// are handed to the key descriptor for conversion.
func Mapping(key, value Type) Type { return Type{kind: KindMapping, elems: []Type{key, value}} }

// Tuple declares a fixed-arity tuple with one element type per position.
func Tuple(elems ...Type) Type {
	return Type{kind: KindTuple, elems: append([]Type(nil), elems...)}
}

// VarTuple declares a homogeneous variable-length tuple of elem.
func VarTuple(elem Type) Type { return Type{kind: KindVarTuple, elems: []Type{elem}} }

// BareSequence returns a sequence with no declared element type; it resolves
// as a sequence of Dynamic.
func BareSequence() Type { return Type{kind: KindSequence} }

// BareMapping returns a mapping with no declared key/value types.
func BareMapping() Type { return Type{kind: KindMapping} }

// Record references a structured record type by name. Resolution happens at
// compile time by introspector lookup, never by eager expansion, so records
// may reference themselves or each other.
func Record(name string) Type { return Type{kind: KindRecord, name: name} }

// Alias references a registered type alias by name.
func Alias(name string) Type { return Type{kind: KindAlias, name: name} }

// Dynamic accepts any value.
func Dynamic() Type { return Type{kind: KindDynamic} }
