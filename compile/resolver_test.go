package compile_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/recodec/recodec"
	"github.com/recodec/recodec/compile"
	"github.com/recodec/recodec/introspect"
	"github.com/recodec/recodec/typeexpr"
)

func newCompiler() *compile.Compiler { return compile.New(introspect.NewSet()) }

func mustResolve(t *testing.T, c *compile.Compiler, tt typeexpr.Type, meta recodec.Meta) *recodec.FieldDescriptor {
	t.Helper()
	fd, err := c.Resolve(tt, meta)
	if err != nil {
		t.Fatalf("resolve %s: %v", tt, err)
	}
	return fd
}

func TestResolve_Primitives(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()

	cases := []struct {
		typ  typeexpr.Type
		in   any
		want any
	}{
		{typeexpr.String(), "hi", "hi"},
		{typeexpr.Int(), json.Number("42"), int64(42)},
		{typeexpr.Float(), json.Number("1.5"), 1.5},
		{typeexpr.Bool(), true, true},
		{typeexpr.Decimal(), json.Number("10.230"), json.Number("10.230")},
	}
	for _, tc := range cases {
		fd := mustResolve(t, c, tc.typ, recodec.Meta{})
		got, err := fd.Load(ctx, tc.in)
		if err != nil {
			t.Fatalf("%s load err: %v", tc.typ, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %#v want %#v", tc.typ, got, tc.want)
		}
	}
}

func TestResolve_IntRejectsStringAndFraction(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.Int(), recodec.Meta{})
	if _, err := fd.Load(ctx, "5"); err == nil {
		t.Fatalf("int must reject string input")
	}
	if _, err := fd.Load(ctx, json.Number("5.5")); err == nil {
		t.Fatalf("int must reject fractional input")
	}
}

func TestResolve_BytesRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.Bytes(), recodec.Meta{})
	got, err := fd.Load(ctx, "aGVsbG8=")
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	if string(got.([]byte)) != "hello" {
		t.Fatalf("unexpected bytes: %q", got)
	}
	out, err := fd.Dump(ctx, got)
	if err != nil {
		t.Fatalf("dump err: %v", err)
	}
	if out != "aGVsbG8=" {
		t.Fatalf("unexpected dump: %q", out)
	}
}

func TestResolve_UUID(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.UUID(), recodec.Meta{})
	id := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	got, err := fd.Load(ctx, id)
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	if got.(uuid.UUID).String() != id {
		t.Fatalf("unexpected uuid: %v", got)
	}
	if _, err := fd.Load(ctx, "not-a-uuid"); err == nil {
		t.Fatalf("expected invalid_format")
	}
}

func TestResolve_TimeAndDate(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()

	ft := mustResolve(t, c, typeexpr.Time(), recodec.Meta{})
	got, err := ft.Load(ctx, "2025-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("time load err: %v", err)
	}
	if !got.(time.Time).Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}

	fdDate := mustResolve(t, c, typeexpr.Date(), recodec.Meta{})
	d, err := fdDate.Load(ctx, "2025-06-30")
	if err != nil {
		t.Fatalf("date load err: %v", err)
	}
	out, err := fdDate.Dump(ctx, d)
	if err != nil {
		t.Fatalf("date dump err: %v", err)
	}
	if out != "2025-06-30" {
		t.Fatalf("unexpected date dump: %v", out)
	}
}

func TestResolve_OptionalAcceptsNull(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.Optional(typeexpr.String()), recodec.Meta{})
	if fd.Required {
		t.Fatalf("optional should not be required by default")
	}
	got, err := fd.Load(ctx, nil)
	if err != nil || got != nil {
		t.Fatalf("optional should accept null: %v %v", got, err)
	}
	if _, err := fd.Load(ctx, json.Number("1")); err == nil {
		t.Fatalf("optional<string> must still reject numbers")
	}
}

func TestResolve_OptionalButRequired(t *testing.T) {
	// Optional<T> with required=true: field absence is rejected at record
	// level, but explicit null still loads.
	ctx := context.Background()
	set := introspect.NewSet()
	set.Declare("R").
		Field("v", typeexpr.Optional(typeexpr.String()), recodec.Meta{Required: recodec.RequireYes})
	c := compile.New(set)
	rd, err := c.Compile("R", nil)
	if err != nil {
		t.Fatalf("compile err: %v", err)
	}
	if _, err := rd.Load(ctx, map[string]any{}); err == nil {
		t.Fatalf("absence must be rejected")
	}
	inst, err := rd.Load(ctx, map[string]any{"v": nil})
	if err != nil {
		t.Fatalf("explicit null must be accepted: %v", err)
	}
	if v, ok := inst["v"]; !ok || v != nil {
		t.Fatalf("unexpected instance: %#v", inst)
	}
}

func TestResolve_LiteralExactness(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.Literal(int64(1), "one"), recodec.Meta{})

	if got, err := fd.Load(ctx, json.Number("1")); err != nil || got != int64(1) {
		t.Fatalf("literal 1 should load: %v %v", got, err)
	}
	if got, err := fd.Load(ctx, "one"); err != nil || got != "one" {
		t.Fatalf("literal \"one\" should load: %v %v", got, err)
	}
	// boolean true is not integer 1
	if _, err := fd.Load(ctx, true); err == nil {
		t.Fatalf("bool true must not match literal 1")
	}
	if _, err := fd.Load(ctx, json.Number("1.0")); err == nil {
		t.Fatalf("1.0 must not match integer literal 1")
	}
	if _, err := fd.Load(ctx, "two"); err == nil {
		t.Fatalf("unlisted value must fail")
	}
}

func TestResolve_SequencePreservesOrderAndPaths(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.Sequence(typeexpr.Int()), recodec.Meta{})
	got, err := fd.Load(ctx, []any{json.Number("3"), json.Number("1"), json.Number("2")})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	want := []int64{3, 1, 2}
	for i, v := range got.([]any) {
		if v != want[i] {
			t.Fatalf("order not preserved: %#v", got)
		}
	}
	_, err = fd.Load(ctx, []any{json.Number("3"), "x"})
	iss, ok := recodec.AsIssues(err)
	if !ok || len(iss.At("/1")) == 0 {
		t.Fatalf("expected issue at /1, got %v", err)
	}
}

func TestResolve_SetDeduplicates(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.Set(typeexpr.String()), recodec.Meta{})
	got, err := fd.Load(ctx, []any{"a", "b", "a"})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	if len(got.([]any)) != 2 {
		t.Fatalf("duplicates should collapse: %#v", got)
	}
}

func TestResolve_TupleArity(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.Tuple(typeexpr.String(), typeexpr.Int()), recodec.Meta{})
	got, err := fd.Load(ctx, []any{"x", json.Number("2")})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	pair := got.([]any)
	if pair[0] != "x" || pair[1] != int64(2) {
		t.Fatalf("unexpected tuple: %#v", pair)
	}
	_, err = fd.Load(ctx, []any{"x"})
	iss, ok := recodec.AsIssues(err)
	if !ok || iss[0].Code != recodec.CodeWrongArity {
		t.Fatalf("expected wrong_arity, got %v", err)
	}
}

func TestResolve_VarTuple(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.VarTuple(typeexpr.Int()), recodec.Meta{})
	got, err := fd.Load(ctx, []any{json.Number("1"), json.Number("2"), json.Number("3")})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	if len(got.([]any)) != 3 {
		t.Fatalf("unexpected: %#v", got)
	}
}

func TestResolve_MappingValuesAndKeys(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.Mapping(typeexpr.Int(), typeexpr.String()), recodec.Meta{})
	got, err := fd.Load(ctx, map[string]any{"1": "one", "2": "two"})
	if err != nil {
		t.Fatalf("load err: %v", err)
	}
	if got.(map[string]any)["1"] != "one" {
		t.Fatalf("unexpected mapping: %#v", got)
	}
	// non-numeric key fails the Int key descriptor
	if _, err := fd.Load(ctx, map[string]any{"x": "bad"}); err == nil {
		t.Fatalf("expected key validation failure")
	}
	// value errors carry the key in the path
	_, err = fd.Load(ctx, map[string]any{"1": json.Number("5")})
	iss, ok := recodec.AsIssues(err)
	if !ok || len(iss.At("/1")) == 0 {
		t.Fatalf("expected issue at /1, got %v", err)
	}
}

func TestResolve_BareContainerIsDynamic(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.BareSequence(), recodec.Meta{})
	got, err := fd.Load(ctx, []any{"a", json.Number("1"), true, nil})
	if err != nil {
		t.Fatalf("bare sequence should accept anything: %v", err)
	}
	if len(got.([]any)) != 4 {
		t.Fatalf("unexpected: %#v", got)
	}
}

func TestResolve_DynamicNullRule(t *testing.T) {
	ctx := context.Background()
	c := newCompiler()
	fd := mustResolve(t, c, typeexpr.Dynamic(), recodec.Meta{})
	if _, err := fd.Load(ctx, nil); err != nil {
		t.Fatalf("dynamic should accept null by default: %v", err)
	}
	fd2 := mustResolve(t, c, typeexpr.Dynamic(), recodec.Meta{DisallowNull: true})
	_, err := fd2.Load(ctx, nil)
	iss, ok := recodec.AsIssues(err)
	if !ok || iss[0].Code != recodec.CodeNullDisallowed {
		t.Fatalf("expected null_disallowed, got %v", err)
	}
}

func TestResolve_UnsupportedShapes(t *testing.T) {
	c := newCompiler()
	if _, err := c.Resolve(typeexpr.Alias("nope"), recodec.Meta{}); err == nil {
		t.Fatalf("unregistered alias must fail")
	}
	if _, err := c.Resolve(typeexpr.Union(), recodec.Meta{}); err == nil {
		t.Fatalf("empty union must fail")
	}
	if _, err := c.Resolve(typeexpr.Literal(), recodec.Meta{}); err == nil {
		t.Fatalf("empty literal must fail")
	}
}
