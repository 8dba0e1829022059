package recodec

import (
	"context"
	"sort"

	"github.com/recodec/recodec/i18n"
)

// RecordDescriptor is the compiled, executable unit for a whole record type:
// an ordered collection of field descriptors plus record-level configuration.
// Instances are the untyped-but-validated form map[string]any keyed by field
// (attribute) name; the raw side is keyed by serialized name.
//
// A RecordDescriptor is created by the compile package, finalized once, and
// never mutated afterward. Load and Dump are stateless and safe for
// concurrent use. The compiler may hand out a descriptor pointer before its
// fields are filled (recursive record graphs); such a placeholder is only
// ever executed after the outer compilation back-fills it.
type RecordDescriptor struct {
	Name   string
	Fields []*FieldDescriptor // Declaration order, inherited fields first.
	Config *Config            // Effective configuration; nil means defaults.

	byKey   map[string]*FieldDescriptor
	ordered []*FieldDescriptor
}

// Finalize caches key lookup and iteration order. The compile package calls
// it exactly once, after all fields are resolved.
func (rd *RecordDescriptor) Finalize() {
	rd.byKey = make(map[string]*FieldDescriptor, len(rd.Fields))
	for _, fd := range rd.Fields {
		rd.byKey[fd.Key] = fd
	}
	rd.ordered = rd.Fields
	if rd.config().Ordering == OrderLexical {
		ord := append([]*FieldDescriptor(nil), rd.Fields...)
		sort.Slice(ord, func(i, j int) bool { return ord[i].Key < ord[j].Key })
		rd.ordered = ord
	}
}

func (rd *RecordDescriptor) config() *Config {
	if rd.Config == nil {
		return &defaultConfig
	}
	return rd.Config
}

var defaultConfig Config

// FieldByKey returns the field descriptor bound to a serialized name.
func (rd *RecordDescriptor) FieldByKey(key string) (*FieldDescriptor, bool) {
	fd, ok := rd.byKey[key]
	return fd, ok
}

// Load validates an untyped tree into an instance. Validation failures are
// returned as Issues with paths relative to the record root; the caller
// decides whether they are recoverable. Compile state is never touched: a
// descriptor can serve concurrent loads.
func (rd *RecordDescriptor) Load(ctx context.Context, raw any) (map[string]any, error) {
	src, ok := raw.(map[string]any)
	if !ok {
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Hint: "expected object"}}
	}
	out := make(map[string]any, len(rd.ordered))
	var iss Issues
	for _, fd := range rd.ordered {
		if fd.Direction == DirDumpOnly {
			continue
		}
		if val, exists := src[fd.Key]; exists {
			parsed, err := fd.Load(ctx, val)
			if err != nil {
				iss = AppendIssues(iss, Rebase("/"+fd.Key, IssuesFromErr("/", err))...)
				if IsFailFast(ctx) {
					return nil, iss
				}
				continue
			}
			out[fd.Name] = parsed
			continue
		}
		// missing: apply default if provided, otherwise enforce required
		if fd.HasDefault() {
			dv, err := fd.ApplyDefault(ctx)
			if err != nil {
				iss = AppendIssues(iss, Rebase("/"+fd.Key, IssuesFromErr("/", err))...)
				if IsFailFast(ctx) {
					return nil, iss
				}
				continue
			}
			out[fd.Name] = dv
			continue
		}
		if fd.Required {
			iss = AppendIssues(iss, Issue{Path: "/" + fd.Key, Code: CodeRequired, Message: i18n.T(CodeRequired, nil), Hint: "required field missing"})
			if IsFailFast(ctx) {
				return nil, iss
			}
		}
	}
	iss = AppendIssues(iss, rd.collectUnknown(src, out)...)
	if len(iss) > 0 {
		return nil, iss
	}
	if hook := rd.config().PostLoad; hook != nil {
		inst, err := hook(ctx, out)
		if err != nil {
			return nil, IssuesFromErr("/", err)
		}
		return inst, nil
	}
	return out, nil
}

// collectUnknown processes undeclared keys according to the unknown policy.
// Keys are visited in sorted order for deterministic issue emission.
func (rd *RecordDescriptor) collectUnknown(src, out map[string]any) Issues {
	var iss Issues
	uks := make([]string, 0, len(src))
	for k := range src {
		if _, known := rd.byKey[k]; !known {
			uks = append(uks, k)
		}
	}
	sort.Strings(uks)
	cfg := rd.config()
	for _, k := range uks {
		switch cfg.Unknown {
		case UnknownReject:
			iss = AppendIssues(iss, Issue{Path: "/" + k, Code: CodeUnknownKey, Message: i18n.T(CodeUnknownKey, nil)})
		case UnknownIgnore:
			// drop
		case UnknownCollect:
			if cfg.UnknownTarget == "" {
				iss = AppendIssues(iss, Issue{Path: "/" + k, Code: CodeUnknownKey, Message: i18n.T(CodeUnknownKey, nil)})
				continue
			}
			extra, _ := out[cfg.UnknownTarget].(map[string]any)
			if extra == nil {
				extra = map[string]any{}
			}
			extra[k] = src[k]
			out[cfg.UnknownTarget] = extra
		}
	}
	return iss
}

// Dump converts an instance back into an untyped tree keyed by serialized
// names. Fields absent from the instance are omitted; load-only fields are
// skipped.
func (rd *RecordDescriptor) Dump(ctx context.Context, inst map[string]any) (map[string]any, error) {
	if hook := rd.config().PreDump; hook != nil {
		var err error
		inst, err = hook(ctx, inst)
		if err != nil {
			return nil, IssuesFromErr("/", err)
		}
	}
	out := make(map[string]any, len(rd.ordered))
	var iss Issues
	for _, fd := range rd.ordered {
		if fd.Direction == DirLoadOnly {
			continue
		}
		v, ok := inst[fd.Name]
		if !ok {
			continue
		}
		dumped, err := fd.Dump(ctx, v)
		if err != nil {
			iss = AppendIssues(iss, Rebase("/"+fd.Key, IssuesFromErr("/", err))...)
			if IsFailFast(ctx) {
				return nil, iss
			}
			continue
		}
		out[fd.Key] = dumped
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}
