package compile

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/recodec/recodec"
	"github.com/recodec/recodec/codec"
	"github.com/recodec/recodec/i18n"
	"github.com/recodec/recodec/typeexpr"
)

// Primitive conversion table. Raw-side values come from the rawjson layer
// (string, bool, json.Number, nil); instance-side values are the Go types
// listed per kind. Strings never coerce to numbers and numbers never coerce
// to booleans; the union tests depend on that strictness.

func invalidType(hint string) recodec.Issues {
	return recodec.Issues{{Path: "/", Code: recodec.CodeInvalidType, Message: i18n.T(recodec.CodeInvalidType, nil), Hint: hint}}
}

func invalidFormat(hint string, cause error) recodec.Issues {
	return recodec.Issues{{Path: "/", Code: recodec.CodeInvalidFormat, Message: i18n.T(recodec.CodeInvalidFormat, nil), Hint: hint, Cause: cause}}
}

// primitiveDescriptor returns a fresh base descriptor for a scalar kind.
// Fresh per call: the resolver mutates the returned value while finishing.
func primitiveDescriptor(k typeexpr.Kind) (*recodec.FieldDescriptor, error) {
	switch k {
	case typeexpr.KindString:
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				if s, ok := v.(string); ok {
					return s, nil
				}
				return nil, invalidType("expected string")
			},
			DumpFunc: func(ctx context.Context, v any) (any, error) {
				if s, ok := v.(string); ok {
					return s, nil
				}
				return nil, invalidType("expected string")
			},
			AcceptsFunc: func(v any) bool { _, ok := v.(string); return ok },
		}, nil
	case typeexpr.KindInt:
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				switch n := v.(type) {
				case json.Number:
					i, err := strconv.ParseInt(string(n), 10, 64)
					if err != nil {
						return nil, invalidType("expected integer")
					}
					return i, nil
				case int:
					return int64(n), nil
				case int64:
					return n, nil
				}
				return nil, invalidType("expected integer")
			},
			DumpFunc: func(ctx context.Context, v any) (any, error) {
				switch n := v.(type) {
				case int:
					return int64(n), nil
				case int64:
					return n, nil
				}
				return nil, invalidType("expected integer")
			},
			AcceptsFunc: func(v any) bool {
				switch v.(type) {
				case int, int64:
					return true
				}
				return false
			},
		}, nil
	case typeexpr.KindFloat:
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				switch n := v.(type) {
				case json.Number:
					f, err := strconv.ParseFloat(string(n), 64)
					if err != nil {
						return nil, invalidType("expected number")
					}
					return f, nil
				case float64:
					return n, nil
				case int:
					return float64(n), nil
				case int64:
					return float64(n), nil
				}
				return nil, invalidType("expected number")
			},
			DumpFunc: func(ctx context.Context, v any) (any, error) {
				if f, ok := v.(float64); ok {
					return f, nil
				}
				return nil, invalidType("expected number")
			},
			AcceptsFunc: func(v any) bool { _, ok := v.(float64); return ok },
		}, nil
	case typeexpr.KindBool:
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				if b, ok := v.(bool); ok {
					return b, nil
				}
				return nil, invalidType("expected boolean")
			},
			DumpFunc: func(ctx context.Context, v any) (any, error) {
				if b, ok := v.(bool); ok {
					return b, nil
				}
				return nil, invalidType("expected boolean")
			},
			AcceptsFunc: func(v any) bool { _, ok := v.(bool); return ok },
		}, nil
	case typeexpr.KindBytes:
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				s, ok := v.(string)
				if !ok {
					return nil, invalidType("expected base64 string")
				}
				b, err := base64.StdEncoding.DecodeString(s)
				if err != nil {
					return nil, invalidFormat("base64", err)
				}
				return b, nil
			},
			DumpFunc: func(ctx context.Context, v any) (any, error) {
				if b, ok := v.([]byte); ok {
					return base64.StdEncoding.EncodeToString(b), nil
				}
				return nil, invalidType("expected bytes")
			},
			AcceptsFunc: func(v any) bool { _, ok := v.([]byte); return ok },
		}, nil
	case typeexpr.KindDecimal:
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				switch n := v.(type) {
				case json.Number:
					return n, nil
				case int:
					return json.Number(strconv.Itoa(n)), nil
				case int64:
					return json.Number(strconv.FormatInt(n, 10)), nil
				case float64:
					return json.Number(strconv.FormatFloat(n, 'g', -1, 64)), nil
				}
				return nil, invalidType("expected number")
			},
			DumpFunc: func(ctx context.Context, v any) (any, error) {
				if n, ok := v.(json.Number); ok {
					return n, nil
				}
				return nil, invalidType("expected decimal")
			},
			AcceptsFunc: func(v any) bool { _, ok := v.(json.Number); return ok },
		}, nil
	case typeexpr.KindUUID:
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				s, ok := v.(string)
				if !ok {
					return nil, invalidType("expected UUID string")
				}
				id, err := uuid.Parse(s)
				if err != nil {
					return nil, invalidFormat("uuid", err)
				}
				return id, nil
			},
			DumpFunc: func(ctx context.Context, v any) (any, error) {
				if id, ok := v.(uuid.UUID); ok {
					return id.String(), nil
				}
				return nil, invalidType("expected UUID")
			},
			AcceptsFunc: func(v any) bool { _, ok := v.(uuid.UUID); return ok },
		}, nil
	case typeexpr.KindTime:
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				s, ok := v.(string)
				if !ok {
					return nil, invalidType("expected RFC3339 string")
				}
				t, err := codec.ParseRFC3339(s)
				if err != nil {
					return nil, invalidFormat("rfc3339", err)
				}
				return t, nil
			},
			DumpFunc: func(ctx context.Context, v any) (any, error) {
				if t, ok := v.(time.Time); ok {
					return codec.FormatRFC3339(t), nil
				}
				return nil, invalidType("expected time")
			},
			AcceptsFunc: func(v any) bool { _, ok := v.(time.Time); return ok },
		}, nil
	case typeexpr.KindDate:
		return &recodec.FieldDescriptor{
			LoadFunc: func(ctx context.Context, v any) (any, error) {
				s, ok := v.(string)
				if !ok {
					return nil, invalidType("expected date string")
				}
				t, err := codec.ParseDate(s)
				if err != nil {
					return nil, invalidFormat("date", err)
				}
				return t, nil
			},
			DumpFunc: func(ctx context.Context, v any) (any, error) {
				if t, ok := v.(time.Time); ok {
					return codec.FormatDate(t), nil
				}
				return nil, invalidType("expected date")
			},
			AcceptsFunc: func(v any) bool { _, ok := v.(time.Time); return ok },
		}, nil
	}
	return nil, &UnsupportedTypeError{Shape: k.String()}
}

// dynamicDescriptor accepts any value. Explicit null is rejected only when
// the use-site metadata disallows it.
func dynamicDescriptor(disallowNull bool) *recodec.FieldDescriptor {
	return &recodec.FieldDescriptor{
		LoadFunc: func(ctx context.Context, v any) (any, error) {
			if v == nil && disallowNull {
				return nil, recodec.Issues{{Path: "/", Code: recodec.CodeNullDisallowed, Message: i18n.T(recodec.CodeNullDisallowed, nil)}}
			}
			return v, nil
		},
		DumpFunc:    func(ctx context.Context, v any) (any, error) { return v, nil },
		AcceptsFunc: func(v any) bool { return true },
	}
}
