package compile

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"

	"github.com/recodec/recodec"
	"github.com/recodec/recodec/i18n"
	"github.com/recodec/recodec/typeexpr"
)

// resolve is the recursive type-to-descriptor compiler. Dispatch priority:
// container overrides, then alias entries (custom constructor or underlying
// type plus stacked constraints), then the built-in shape cases.
func (s *session) resolve(t typeexpr.Type, meta recodec.Meta, cfg *recodec.Config) (*recodec.FieldDescriptor, error) {
	if meta.Config != nil {
		// A nested-record config override covers the whole subtree, so a
		// record wrapped in Optional or a container picks it up too.
		cfg = meta.Config
	}

	if ctor, ok := s.c.overrides.lookup(t.Kind()); ok && t.Kind().IsContainer() {
		elems, err := s.resolveElems(t, cfg)
		if err != nil {
			return nil, err
		}
		// An override replaces the conversion core for the shape; use-site
		// constraints, requiredness and defaults still layer on top.
		fd, err := ctor(elems, meta)
		if err != nil {
			return nil, err
		}
		s.finish(fd, t, meta, false)
		return fd, nil
	}

	if t.Kind() == typeexpr.KindAlias {
		entry, ok := s.c.registry.lookup(t.Name())
		if !ok {
			return nil, &UnsupportedTypeError{Shape: t.String(), Reason: "alias not registered"}
		}
		merged := meta
		// Alias constraints run first, use-site constraints appended.
		merged.Constraints = recodec.MergeConstraints(entry.constraints, meta.Constraints)
		if entry.custom != nil {
			fd, err := entry.custom(merged)
			if err != nil {
				return nil, err
			}
			if fd.TypeName == "" {
				fd.TypeName = t.Name()
			}
			return fd, nil
		}
		fd, err := s.resolve(entry.underlying, merged, cfg)
		if err != nil {
			return nil, err
		}
		fd.TypeName = t.Name()
		return fd, nil
	}

	fd, optionalShape, err := s.resolveBase(t, meta, cfg)
	if err != nil {
		return nil, err
	}
	s.finish(fd, t, meta, optionalShape)
	return fd, nil
}

// resolveBase builds the conversion core for a shape; finish layers
// constraints, requiredness and defaults on top.
func (s *session) resolveBase(t typeexpr.Type, meta recodec.Meta, cfg *recodec.Config) (*recodec.FieldDescriptor, bool, error) {
	k := t.Kind()
	switch {
	case k.IsPrimitive():
		fd, err := primitiveDescriptor(k)
		return fd, false, err
	case k == typeexpr.KindOptional:
		elem, ok := t.Elem()
		if !ok {
			return nil, false, &UnsupportedTypeError{Shape: t.String(), Reason: "optional requires an element type"}
		}
		inner, err := s.resolve(elem, recodec.Meta{}, cfg)
		if err != nil {
			return nil, false, err
		}
		return optionalDescriptor(inner), true, nil
	case k == typeexpr.KindUnion:
		alts := t.Elems()
		if len(alts) == 0 {
			return nil, false, &UnsupportedTypeError{Shape: t.String(), Reason: "union requires alternatives"}
		}
		resolved := make([]*recodec.FieldDescriptor, 0, len(alts))
		for _, alt := range alts {
			fd, err := s.resolve(alt, recodec.Meta{}, cfg)
			if err != nil {
				return nil, false, err
			}
			resolved = append(resolved, fd)
		}
		return unionDescriptor(resolved), false, nil
	case k == typeexpr.KindLiteral:
		vals := t.Literals()
		if len(vals) == 0 {
			return nil, false, &UnsupportedTypeError{Shape: t.String(), Reason: "literal requires a constant set"}
		}
		return literalDescriptor(vals), false, nil
	case k == typeexpr.KindSequence, k == typeexpr.KindVarTuple:
		elem, err := s.resolveElemOrDynamic(t, cfg)
		if err != nil {
			return nil, false, err
		}
		return sequenceDescriptor(elem), false, nil
	case k == typeexpr.KindSet, k == typeexpr.KindFrozenSet:
		elem, err := s.resolveElemOrDynamic(t, cfg)
		if err != nil {
			return nil, false, err
		}
		return setDescriptor(elem), false, nil
	case k == typeexpr.KindMapping:
		elems, err := s.resolveElems(t, cfg)
		if err != nil {
			return nil, false, err
		}
		return mappingDescriptor(elems[0], elems[1]), false, nil
	case k == typeexpr.KindTuple:
		elems, err := s.resolveElems(t, cfg)
		if err != nil {
			return nil, false, err
		}
		return tupleDescriptor(elems), false, nil
	case k == typeexpr.KindRecord:
		rd, err := s.record(t.Name(), cfg)
		if err != nil {
			return nil, false, err
		}
		return nestedDescriptor(rd), false, nil
	case k == typeexpr.KindDynamic:
		return dynamicDescriptor(meta.DisallowNull), false, nil
	}
	return nil, false, &UnsupportedTypeError{Shape: t.String()}
}

// resolveElems resolves every declared element type of a container,
// substituting Dynamic for element types left undeclared (bare containers).
func (s *session) resolveElems(t typeexpr.Type, cfg *recodec.Config) ([]*recodec.FieldDescriptor, error) {
	declared := t.Elems()
	want := len(declared)
	if want == 0 {
		switch t.Kind() {
		case typeexpr.KindMapping:
			want = 2
		default:
			want = 1
		}
	}
	out := make([]*recodec.FieldDescriptor, 0, want)
	for i := 0; i < want; i++ {
		et := typeexpr.Dynamic()
		if i < len(declared) {
			et = declared[i]
		}
		fd, err := s.resolve(et, recodec.Meta{}, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, fd)
	}
	return out, nil
}

func (s *session) resolveElemOrDynamic(t typeexpr.Type, cfg *recodec.Config) (*recodec.FieldDescriptor, error) {
	elem, ok := t.Elem()
	if !ok {
		elem = typeexpr.Dynamic()
	}
	return s.resolve(elem, recodec.Meta{}, cfg)
}

// finish layers use-site behavior over the conversion core: the merged
// constraint chain, the required flag, defaults (raw-form defaults are
// loaded through the field itself, so they are validated too) and the
// direction restriction.
func (s *session) finish(fd *recodec.FieldDescriptor, t typeexpr.Type, meta recodec.Meta, optionalShape bool) {
	if len(meta.Constraints) > 0 {
		load := fd.LoadFunc
		cons := meta.Constraints
		fd.LoadFunc = func(ctx context.Context, v any) (any, error) {
			out := v
			if load != nil {
				var err error
				out, err = load(ctx, v)
				if err != nil {
					return nil, err
				}
			}
			if iss := recodec.RunConstraints(ctx, cons, out); len(iss) > 0 {
				return nil, iss
			}
			return out, nil
		}
	}

	switch meta.Required {
	case recodec.RequireYes:
		fd.Required = true
	case recodec.RequireNo:
		fd.Required = false
	default:
		fd.Required = !meta.HasDefault() && !optionalShape
	}

	switch {
	case meta.DefaultFunc != nil:
		factory := meta.DefaultFunc
		fd.DefaultFunc = func(ctx context.Context) (any, error) { return fd.Load(ctx, factory()) }
	case meta.Default != nil:
		dv := meta.Default
		fd.DefaultFunc = func(ctx context.Context) (any, error) { return fd.Load(ctx, dv) }
	case optionalShape && meta.Required != recodec.RequireYes:
		// Optional fields default to explicit null when absent.
		fd.DefaultFunc = func(ctx context.Context) (any, error) { return nil, nil }
	}

	fd.Direction = meta.Direction
	if fd.TypeName == "" {
		fd.TypeName = t.String()
	}
}

// ---- shape descriptors ----

func optionalDescriptor(inner *recodec.FieldDescriptor) *recodec.FieldDescriptor {
	return &recodec.FieldDescriptor{
		LoadFunc: func(ctx context.Context, v any) (any, error) {
			if v == nil {
				return nil, nil
			}
			return inner.Load(ctx, v)
		},
		DumpFunc: func(ctx context.Context, v any) (any, error) {
			if v == nil {
				return nil, nil
			}
			return inner.Dump(ctx, v)
		},
		AcceptsFunc: func(v any) bool { return v == nil || inner.Accepts(v) },
	}
}

// unionDescriptor tries alternatives in declared order at load time; the
// first that converts without error wins. Changing declaration order can
// change which alternative accepts an ambiguous value, deliberately. At dump
// time the first alternative whose instance type accepts the value is used.
func unionDescriptor(alts []*recodec.FieldDescriptor) *recodec.FieldDescriptor {
	return &recodec.FieldDescriptor{
		LoadFunc: func(ctx context.Context, v any) (any, error) {
			altErrs := make([]error, 0, len(alts))
			failures := make([]string, 0, len(alts))
			for _, alt := range alts {
				out, err := alt.Load(ctx, v)
				if err == nil {
					return out, nil
				}
				altErrs = append(altErrs, err)
				failures = append(failures, alt.TypeName+": "+err.Error())
			}
			return nil, recodec.Issues{{
				Path:    "/",
				Code:    recodec.CodeUnionNoMatch,
				Message: i18n.T(recodec.CodeUnionNoMatch, nil),
				Cause:   errors.Join(altErrs...),
				Params:  map[string]any{"failures": failures},
			}}
		},
		DumpFunc: func(ctx context.Context, v any) (any, error) {
			for _, alt := range alts {
				if alt.Accepts(v) {
					return alt.Dump(ctx, v)
				}
			}
			return nil, invalidType("no union alternative matches value")
		},
		AcceptsFunc: func(v any) bool {
			for _, alt := range alts {
				if alt.Accepts(v) {
					return true
				}
			}
			return false
		},
	}
}

// literalDescriptor validates by set membership with exact kind+value
// equality: integer 1 and boolean true are distinct, and "1" matches neither.
func literalDescriptor(values []any) *recodec.FieldDescriptor {
	match := func(v any) (any, bool) {
		for _, lit := range values {
			if out, ok := literalEq(lit, v); ok {
				return out, true
			}
		}
		return nil, false
	}
	fail := func() recodec.Issues {
		return recodec.Issues{{Path: "/", Code: recodec.CodeInvalidEnum, Message: i18n.T(recodec.CodeInvalidEnum, nil), Hint: "not a declared literal"}}
	}
	return &recodec.FieldDescriptor{
		LoadFunc: func(ctx context.Context, v any) (any, error) {
			if out, ok := match(v); ok {
				return out, nil
			}
			return nil, fail()
		},
		DumpFunc: func(ctx context.Context, v any) (any, error) {
			if _, ok := match(v); ok {
				return v, nil
			}
			return nil, fail()
		},
		AcceptsFunc: func(v any) bool { _, ok := match(v); return ok },
	}
}

// literalEq compares a declared constant with a raw or instance value,
// returning the canonical instance form on success. No implicit coercion:
// kinds must line up exactly.
func literalEq(lit, v any) (any, bool) {
	switch l := lit.(type) {
	case string:
		if s, ok := v.(string); ok && s == l {
			return s, true
		}
	case bool:
		if b, ok := v.(bool); ok && b == l {
			return b, true
		}
	case int:
		return literalEq(int64(l), v)
	case int64:
		switch n := v.(type) {
		case int64:
			if n == l {
				return n, true
			}
		case int:
			if int64(n) == l {
				return int64(n), true
			}
		case json.Number:
			if i, err := strconv.ParseInt(string(n), 10, 64); err == nil && i == l {
				return i, true
			}
		}
	case float64:
		switch n := v.(type) {
		case float64:
			if n == l {
				return n, true
			}
		case json.Number:
			if f, err := strconv.ParseFloat(string(n), 64); err == nil && f == l {
				return f, true
			}
		}
	}
	return nil, false
}

// sequenceDescriptor applies the element descriptor to every element,
// preserving order. Issues are rebased under the element index.
func sequenceDescriptor(elem *recodec.FieldDescriptor) *recodec.FieldDescriptor {
	return &recodec.FieldDescriptor{
		LoadFunc: func(ctx context.Context, v any) (any, error) {
			src, ok := v.([]any)
			if !ok {
				return nil, invalidType("expected array")
			}
			return mapElems(ctx, src, elem.Load)
		},
		DumpFunc: func(ctx context.Context, v any) (any, error) {
			src, ok := v.([]any)
			if !ok {
				return nil, invalidType("expected array")
			}
			return mapElems(ctx, src, elem.Dump)
		},
		AcceptsFunc: func(v any) bool { _, ok := v.([]any); return ok },
	}
}

// setDescriptor is sequenceDescriptor plus duplicate collapsing on load;
// order carries no meaning and dump emits members in stored order.
func setDescriptor(elem *recodec.FieldDescriptor) *recodec.FieldDescriptor {
	seq := sequenceDescriptor(elem)
	load := seq.LoadFunc
	seq.LoadFunc = func(ctx context.Context, v any) (any, error) {
		out, err := load(ctx, v)
		if err != nil {
			return nil, err
		}
		return dedupe(out.([]any)), nil
	}
	return seq
}

func dedupe(elems []any) []any {
	out := make([]any, 0, len(elems))
	for _, e := range elems {
		dup := false
		for _, seen := range out {
			if reflect.DeepEqual(e, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	return out
}

func mapElems(ctx context.Context, src []any, f func(context.Context, any) (any, error)) (any, error) {
	out := make([]any, 0, len(src))
	var iss recodec.Issues
	for i, e := range src {
		ev, err := f(ctx, e)
		if err != nil {
			iss = recodec.AppendIssues(iss, recodec.Rebase("/"+strconv.Itoa(i), recodec.IssuesFromErr("/", err))...)
			if recodec.IsFailFast(ctx) {
				return nil, iss
			}
			continue
		}
		out = append(out, ev)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// tupleDescriptor enforces fixed arity with one element descriptor per
// position.
func tupleDescriptor(elems []*recodec.FieldDescriptor) *recodec.FieldDescriptor {
	apply := func(ctx context.Context, v any, f func(*recodec.FieldDescriptor) func(context.Context, any) (any, error)) (any, error) {
		src, ok := v.([]any)
		if !ok {
			return nil, invalidType("expected array")
		}
		if len(src) != len(elems) {
			return nil, recodec.Issues{{Path: "/", Code: recodec.CodeWrongArity, Message: i18n.T(recodec.CodeWrongArity, nil), Params: map[string]any{"want": len(elems), "got": len(src)}}}
		}
		out := make([]any, 0, len(src))
		var iss recodec.Issues
		for i, e := range src {
			ev, err := f(elems[i])(ctx, e)
			if err != nil {
				iss = recodec.AppendIssues(iss, recodec.Rebase("/"+strconv.Itoa(i), recodec.IssuesFromErr("/", err))...)
				if recodec.IsFailFast(ctx) {
					return nil, iss
				}
				continue
			}
			out = append(out, ev)
		}
		if len(iss) > 0 {
			return nil, iss
		}
		return out, nil
	}
	return &recodec.FieldDescriptor{
		LoadFunc: func(ctx context.Context, v any) (any, error) {
			return apply(ctx, v, func(fd *recodec.FieldDescriptor) func(context.Context, any) (any, error) { return fd.Load })
		},
		DumpFunc: func(ctx context.Context, v any) (any, error) {
			return apply(ctx, v, func(fd *recodec.FieldDescriptor) func(context.Context, any) (any, error) { return fd.Dump })
		},
		AcceptsFunc: func(v any) bool {
			src, ok := v.([]any)
			return ok && len(src) == len(elems)
		},
	}
}

// mappingDescriptor applies the value descriptor to every entry. Keys stay
// in their wire (text) form in the instance; the key descriptor validates
// them, retrying numeric text as a number for numeric key types.
func mappingDescriptor(key, value *recodec.FieldDescriptor) *recodec.FieldDescriptor {
	checkKey := func(ctx context.Context, k string) error {
		if _, err := key.Load(ctx, k); err == nil {
			return nil
		}
		if _, err := key.Load(ctx, json.Number(k)); err == nil {
			return nil
		}
		return recodec.Issues{{Path: "/" + k, Code: recodec.CodeInvalidType, Message: i18n.T(recodec.CodeInvalidType, nil), Hint: "invalid mapping key"}}
	}
	return &recodec.FieldDescriptor{
		LoadFunc: func(ctx context.Context, v any) (any, error) {
			src, ok := v.(map[string]any)
			if !ok {
				return nil, invalidType("expected object")
			}
			out := make(map[string]any, len(src))
			var iss recodec.Issues
			for k, e := range src {
				if err := checkKey(ctx, k); err != nil {
					iss = recodec.AppendIssues(iss, recodec.IssuesFromErr("/"+k, err)...)
					if recodec.IsFailFast(ctx) {
						return nil, iss
					}
					continue
				}
				ev, err := value.Load(ctx, e)
				if err != nil {
					iss = recodec.AppendIssues(iss, recodec.Rebase("/"+k, recodec.IssuesFromErr("/", err))...)
					if recodec.IsFailFast(ctx) {
						return nil, iss
					}
					continue
				}
				out[k] = ev
			}
			if len(iss) > 0 {
				return nil, iss
			}
			return out, nil
		},
		DumpFunc: func(ctx context.Context, v any) (any, error) {
			src, ok := v.(map[string]any)
			if !ok {
				return nil, invalidType("expected object")
			}
			out := make(map[string]any, len(src))
			var iss recodec.Issues
			for k, e := range src {
				ev, err := value.Dump(ctx, e)
				if err != nil {
					iss = recodec.AppendIssues(iss, recodec.Rebase("/"+k, recodec.IssuesFromErr("/", err))...)
					if recodec.IsFailFast(ctx) {
						return nil, iss
					}
					continue
				}
				out[k] = ev
			}
			if len(iss) > 0 {
				return nil, iss
			}
			return out, nil
		},
		AcceptsFunc: func(v any) bool { _, ok := v.(map[string]any); return ok },
	}
}

// nestedDescriptor wraps a record descriptor as a field. The pointer may be
// an in-progress placeholder during compilation of recursive record graphs;
// it is complete before any load/dump can run.
func nestedDescriptor(rd *recodec.RecordDescriptor) *recodec.FieldDescriptor {
	return &recodec.FieldDescriptor{
		TypeName: "record<" + rd.Name + ">",
		LoadFunc: func(ctx context.Context, v any) (any, error) {
			return rd.Load(ctx, v)
		},
		DumpFunc: func(ctx context.Context, v any) (any, error) {
			m, ok := v.(map[string]any)
			if !ok {
				return nil, invalidType("expected record instance")
			}
			return rd.Dump(ctx, m)
		},
		AcceptsFunc: func(v any) bool { _, ok := v.(map[string]any); return ok },
	}
}
