package recodec

import "context"

// FieldDescriptor is the compiled, executable unit for one field: name,
// serialized name, required/default policy, direction, and the resolved
// load/dump behavior as closures. Descriptors are immutable once the
// compiler returns them; Load and Dump are safe for concurrent use.
type FieldDescriptor struct {
	Name      string // Attribute name in the instance.
	Key       string // Serialized name in the raw tree.
	Required  bool
	Direction Direction
	// TypeName records the resolved type expression (or alias name) for
	// diagnostics.
	TypeName string

	// LoadFunc converts and validates a raw value. DumpFunc converts an
	// instance value back to raw form. AcceptsFunc is the dump-side type
	// test used for union dispatch. DefaultFunc produces the default when
	// the key is absent from the input.
	LoadFunc    func(ctx context.Context, v any) (any, error)
	DumpFunc    func(ctx context.Context, v any) (any, error)
	AcceptsFunc func(v any) bool
	DefaultFunc func(ctx context.Context) (any, error)
}

// Load converts a raw value into its instance form, running the field's
// constraint chain. Paths in returned issues are relative to the value.
func (fd *FieldDescriptor) Load(ctx context.Context, v any) (any, error) {
	if fd.LoadFunc == nil {
		return v, nil
	}
	return fd.LoadFunc(ctx, v)
}

// Dump converts an instance value back into raw form.
func (fd *FieldDescriptor) Dump(ctx context.Context, v any) (any, error) {
	if fd.DumpFunc == nil {
		return v, nil
	}
	return fd.DumpFunc(ctx, v)
}

// Accepts reports whether the runtime value looks like this field's instance
// type. Union descriptors use it to pick a dump alternative.
func (fd *FieldDescriptor) Accepts(v any) bool {
	if fd.AcceptsFunc == nil {
		return true
	}
	return fd.AcceptsFunc(v)
}

// HasDefault reports whether an absent key has a declared default.
func (fd *FieldDescriptor) HasDefault() bool { return fd.DefaultFunc != nil }

// ApplyDefault produces the field's default value.
func (fd *FieldDescriptor) ApplyDefault(ctx context.Context) (any, error) {
	if fd.DefaultFunc == nil {
		return nil, nil
	}
	return fd.DefaultFunc(ctx)
}
