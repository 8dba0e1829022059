package typeexpr

import "testing"

func TestKindClassification(t *testing.T) {
	prims := []Kind{KindString, KindInt, KindFloat, KindBool, KindBytes, KindDecimal, KindUUID, KindTime, KindDate}
	for _, k := range prims {
		if !k.IsPrimitive() {
			t.Fatalf("%v should be primitive", k)
		}
		if k.IsContainer() {
			t.Fatalf("%v should not be a container", k)
		}
	}
	containers := []Kind{KindSequence, KindSet, KindFrozenSet, KindMapping, KindTuple, KindVarTuple}
	for _, k := range containers {
		if !k.IsContainer() {
			t.Fatalf("%v should be a container", k)
		}
	}
	for _, k := range []Kind{KindOptional, KindUnion, KindLiteral, KindRecord, KindAlias, KindDynamic} {
		if k.IsPrimitive() || k.IsContainer() {
			t.Fatalf("%v misclassified", k)
		}
	}
}

func TestTypeString(t *testing.T) {
	cases := map[string]Type{
		"string":                       String(),
		"optional<string>":             Optional(String()),
		"union<int,string>":            Union(Int(), String()),
		"sequence<record<City>>":       Sequence(Record("City")),
		"mapping<string,int>":          Mapping(String(), Int()),
		"tuple<string,int,bool>":       Tuple(String(), Int(), Bool()),
		"alias<Url>":                   Alias("Url"),
		"sequence<>":                   BareSequence(),
		"frozenset<uuid>":              FrozenSet(UUID()),
		"vartuple<int>":                VarTuple(Int()),
	}
	for want, tt := range cases {
		if got := tt.String(); got != want {
			t.Fatalf("String() = %q, want %q", got, want)
		}
	}
}

func TestElemAccessors(t *testing.T) {
	if _, ok := BareSequence().Elem(); ok {
		t.Fatalf("bare sequence has no element")
	}
	e, ok := Sequence(Int()).Elem()
	if !ok || e.Kind() != KindInt {
		t.Fatalf("unexpected elem: %v %v", e, ok)
	}
	m := Mapping(Int(), String())
	if es := m.Elems(); len(es) != 2 || es[0].Kind() != KindInt || es[1].Kind() != KindString {
		t.Fatalf("unexpected mapping elems: %v", es)
	}
	if Record("R").Name() != "R" || Alias("A").Name() != "A" {
		t.Fatalf("name accessor broken")
	}
}

func TestConstructorsCopyArguments(t *testing.T) {
	alts := []Type{Int(), String()}
	u := Union(alts...)
	alts[0] = Bool()
	if u.Elems()[0].Kind() != KindInt {
		t.Fatalf("union must copy alternatives")
	}
	vals := []any{"a", "b"}
	l := Literal(vals...)
	vals[0] = "z"
	if l.Literals()[0] != "a" {
		t.Fatalf("literal must copy values")
	}
}
