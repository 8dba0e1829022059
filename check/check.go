// Package check is the built-in validator library: constraint constructors
// whose results plug into field metadata and type aliases. Each constraint
// receives the already-converted value; type mismatches are not its concern
// and pass silently (the resolver's conversion step reports those).
package check

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"

	"github.com/recodec/recodec"
	"github.com/recodec/recodec/i18n"
)

// Min returns a numeric minimum (inclusive) constraint.
func Min(min float64) recodec.Constraint {
	return func(ctx context.Context, v any) error {
		f, ok := asFloat(v)
		if !ok {
			return nil
		}
		if f < min {
			return recodec.Issues{{Path: "/", Code: recodec.CodeTooSmall, Message: i18n.T(recodec.CodeTooSmall, nil), Params: map[string]any{"min": min, "got": f}}}
		}
		return nil
	}
}

// Max returns a numeric maximum (inclusive) constraint.
func Max(max float64) recodec.Constraint {
	return func(ctx context.Context, v any) error {
		f, ok := asFloat(v)
		if !ok {
			return nil
		}
		if f > max {
			return recodec.Issues{{Path: "/", Code: recodec.CodeTooBig, Message: i18n.T(recodec.CodeTooBig, nil), Params: map[string]any{"max": max, "got": f}}}
		}
		return nil
	}
}

// MinLen constrains the length of strings, byte slices and sequences.
func MinLen(n int) recodec.Constraint {
	return func(ctx context.Context, v any) error {
		l, ok := length(v)
		if !ok {
			return nil
		}
		if l < n {
			return recodec.Issues{{Path: "/", Code: recodec.CodeTooShort, Message: i18n.T(recodec.CodeTooShort, nil), Params: map[string]any{"min": n, "got": l}}}
		}
		return nil
	}
}

// MaxLen constrains the length of strings, byte slices and sequences.
func MaxLen(n int) recodec.Constraint {
	return func(ctx context.Context, v any) error {
		l, ok := length(v)
		if !ok {
			return nil
		}
		if l > n {
			return recodec.Issues{{Path: "/", Code: recodec.CodeTooLong, Message: i18n.T(recodec.CodeTooLong, nil), Params: map[string]any{"max": n, "got": l}}}
		}
		return nil
	}
}

// Pattern constrains strings to match an anchored regular expression.
// The pattern is compiled once at declaration time; a bad pattern panics,
// matching the declaration-time nature of constraint construction.
func Pattern(expr string) recodec.Constraint {
	re := regexp.MustCompile(expr)
	return func(ctx context.Context, v any) error {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		if !re.MatchString(s) {
			return recodec.Issues{{Path: "/", Code: recodec.CodePattern, Message: i18n.T(recodec.CodePattern, nil), Hint: expr}}
		}
		return nil
	}
}

// OneOf constrains the value to a fixed allowed set, compared with
// reflect.DeepEqual.
func OneOf(allowed ...any) recodec.Constraint {
	return func(ctx context.Context, v any) error {
		for _, a := range allowed {
			if reflect.DeepEqual(v, a) {
				return nil
			}
		}
		return recodec.Issues{{Path: "/", Code: recodec.CodeInvalidEnum, Message: i18n.T(recodec.CodeInvalidEnum, nil), Params: map[string]any{"got": fmt.Sprintf("%v", v)}}}
	}
}

// ---- helpers ----

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8, int16, int32, int64:
		return float64(reflect.ValueOf(n).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(n).Uint()), true
	case float32, float64:
		return reflect.ValueOf(n).Float(), true
	case json.Number:
		if f, err := strconv.ParseFloat(string(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func length(v any) (int, bool) {
	switch s := v.(type) {
	case string:
		return len(s), true
	case []byte:
		return len(s), true
	case []any:
		return len(s), true
	case map[string]any:
		return len(s), true
	}
	return 0, false
}
