// Package recodec derives reusable descriptors from declared record types.
// A record is described once (named fields with type expressions, defaults
// and per-field metadata) and the compile package turns that declaration
// into a RecordDescriptor able to load untyped input into an instance and
// dump an instance back into untyped form.
//
// Design policy:
//   - The runtime model (descriptors, metadata, error model, executor) lives
//     in the root package; the compiler sits under compile/ and collaborators
//     under introspect/, check/, codec/, configfile/.
//   - Type expressions live in typeexpr/ as a closed tagged variant, so
//     resolution is an exhaustive switch.
//   - Load-time failures are reported as Issues (JSON Pointer, code, message);
//     compile-time failures are ordinary typed errors from compile/.
//
// Typical usage:
//
//	set := introspect.NewSet()
//	set.Declare("Building").
//		Field("height", typeexpr.Float(), recodec.Meta{Constraints: []recodec.Constraint{check.Min(0)}}).
//		Field("name", typeexpr.String(), recodec.Meta{Default: "anonymous"})
//
//	c := compile.New(set)
//	rd, err := c.Compile("Building", nil)
//	inst, err := recodec.LoadJSON(ctx, rd, data)
//	out, err := recodec.DumpJSON(ctx, rd, inst)
package recodec
