package recodec

import (
	"context"
	"errors"

	"github.com/recodec/recodec/i18n"
	"github.com/recodec/recodec/internal/rawjson"
)

// LoadJSON decodes JSON bytes into an untyped tree and validates it into an
// instance of the record. Raw-layer findings (duplicate keys, depth) surface
// as Issues with the corresponding codes.
func LoadJSON(ctx context.Context, rd *RecordDescriptor, data []byte, opts ...LoadOpt) (map[string]any, error) {
	if rd == nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "nil descriptor"}}
	}
	var opt LoadOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	raw, findings, err := rawjson.Decode(data, rawjson.Options{
		OnDuplicate: toRawDup(opt.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
	})
	if err != nil {
		if errors.Is(err, rawjson.ErrDuplicateKey) {
			return nil, Issues{{Path: "/", Code: CodeDuplicateKey, Message: i18n.T(CodeDuplicateKey, nil), Cause: err}}
		}
		if errors.Is(err, rawjson.ErrMaxDepth) {
			return nil, Issues{{Path: "/", Code: CodeTruncated, Message: i18n.T(CodeTruncated, nil), Cause: err}}
		}
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	var iss Issues
	for _, f := range findings {
		iss = AppendIssues(iss, Issue{Path: f.Path, Code: CodeDuplicateKey, Message: i18n.T(CodeDuplicateKey, nil)})
	}
	inst, err := rd.Load(ctx, raw)
	if err != nil {
		if more, ok := AsIssues(err); ok {
			return nil, AppendIssues(iss, more...)
		}
		return nil, err
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return inst, nil
}

// DumpJSON converts an instance back into raw form and renders it as JSON.
func DumpJSON(ctx context.Context, rd *RecordDescriptor, inst map[string]any) ([]byte, error) {
	if rd == nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "nil descriptor"}}
	}
	raw, err := rd.Dump(ctx, inst)
	if err != nil {
		return nil, err
	}
	return rawjson.Encode(raw)
}

func toRawDup(s Severity) rawjson.DuplicateMode {
	switch s {
	case Error:
		return rawjson.DupError
	case Warn:
		return rawjson.DupWarn
	default:
		return rawjson.DupIgnore
	}
}
