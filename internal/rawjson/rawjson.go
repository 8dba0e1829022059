// Package rawjson decodes JSON bytes into the untyped tree consumed by
// record descriptors: map[string]any, []any, json.Number, string, bool, nil.
// Numbers keep their textual form so decimal fields never lose precision.
// The decoder also reports duplicate object keys and enforces a maximum
// nesting depth. This package is internal and not part of the public API.
package rawjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
)

// DuplicateMode controls duplicate-key handling during decode.
type DuplicateMode int

const (
	DupIgnore DuplicateMode = iota // Last value wins, silently.
	DupWarn                        // Last value wins, finding recorded.
	DupError                       // Decode fails on the first duplicate.
)

// Finding is a raw-layer observation (currently only duplicate keys).
type Finding struct {
	Path string // JSON Pointer of the duplicated key.
	Code string // "duplicate_key"
}

// ErrMaxDepth is returned when the input nests deeper than Options.MaxDepth.
var ErrMaxDepth = errors.New("rawjson: max depth exceeded")

// ErrDuplicateKey is returned in DupError mode.
var ErrDuplicateKey = errors.New("rawjson: duplicate key")

// Options configures Decode.
type Options struct {
	OnDuplicate DuplicateMode
	MaxDepth    int // 0 means unlimited.
}

// Decode parses data into an untyped tree. Findings are returned alongside
// the value in DupWarn mode.
func Decode(data []byte, opt Options) (any, []Finding, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	d := &decoder{dec: dec, opt: opt}
	tok, err := d.next()
	if err != nil {
		return nil, nil, fmt.Errorf("rawjson: %w", err)
	}
	v, err := d.value(tok, "", 1)
	if err != nil {
		return nil, d.findings, err
	}
	// trailing garbage after the top-level value is an error
	if _, err := d.dec.Token(); err != io.EOF {
		return nil, d.findings, errors.New("rawjson: trailing data after value")
	}
	return v, d.findings, nil
}

type decoder struct {
	dec      *j.Decoder
	opt      Options
	findings []Finding
}

func (d *decoder) next() (j.Token, error) { return d.dec.Token() }

func (d *decoder) value(tok j.Token, path string, depth int) (any, error) {
	if d.opt.MaxDepth > 0 && depth > d.opt.MaxDepth {
		return nil, ErrMaxDepth
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return d.object(path, depth)
		case '[':
			return d.array(path, depth)
		}
		return nil, fmt.Errorf("rawjson: unexpected delimiter %q", v)
	case string:
		return v, nil
	case json.Number:
		return v, nil
	case bool:
		return v, nil
	case nil:
		return nil, nil
	case float64:
		// UseNumber makes this unreachable; kept as a guard for driver swaps.
		return json.Number(fmt.Sprintf("%v", v)), nil
	}
	return nil, fmt.Errorf("rawjson: unexpected token %T", tok)
}

func (d *decoder) object(path string, depth int) (any, error) {
	m := make(map[string]any)
	for {
		tok, err := d.next()
		if err != nil {
			return nil, fmt.Errorf("rawjson: %w", err)
		}
		if delim, ok := tok.(j.Delim); ok && delim == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("rawjson: expected object key, got %T", tok)
		}
		kp := path + "/" + key
		if _, dup := m[key]; dup {
			switch d.opt.OnDuplicate {
			case DupError:
				return nil, fmt.Errorf("%w at %s", ErrDuplicateKey, kp)
			case DupWarn:
				d.findings = append(d.findings, Finding{Path: kp, Code: "duplicate_key"})
			}
		}
		vt, err := d.next()
		if err != nil {
			return nil, fmt.Errorf("rawjson: %w", err)
		}
		v, err := d.value(vt, kp, depth+1)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func (d *decoder) array(path string, depth int) (any, error) {
	arr := []any{}
	for i := 0; ; i++ {
		tok, err := d.next()
		if err != nil {
			return nil, fmt.Errorf("rawjson: %w", err)
		}
		if delim, ok := tok.(j.Delim); ok && delim == ']' {
			return arr, nil
		}
		v, err := d.value(tok, fmt.Sprintf("%s/%d", path, i), depth+1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// Encode renders an untyped tree back to JSON bytes.
func Encode(v any) ([]byte, error) {
	return j.Marshal(v)
}
