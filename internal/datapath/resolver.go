// Package datapath resolves dot-notation paths against arbitrary nested
// data trees, the way a field's data_source.path selects a value from
// taxpayer data. Resolution is pure: failures are returned as typed
// errors, never panics, because one form binds hundreds of paths and a
// missing value must not abort the rest.
package datapath

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxPathSegments bounds path depth defensively. Deeper paths fail with
// ErrKindTooDeep instead of walking an unbounded tree.
const MaxPathSegments = 64

// Kind is the observed runtime kind of a resolved leaf value.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
	KindComplex Kind = "complex" // mappings and sequences
)

// ErrorKind distinguishes the ways resolution can fail.
type ErrorKind string

const (
	// ErrKindNotFound means a key was absent from the mapping at that
	// step, or the path was empty.
	ErrKindNotFound ErrorKind = "path_not_found"
	// ErrKindTypeMismatch means the walk hit a non-mapping node (a
	// scalar or sequence) before the path was exhausted.
	ErrKindTypeMismatch ErrorKind = "path_type_mismatch"
	// ErrKindTooDeep means the path exceeded MaxPathSegments.
	ErrKindTooDeep ErrorKind = "path_too_deep"
)

// PathError reports why a path failed to resolve and how far it got.
type PathError struct {
	Kind     ErrorKind
	Path     string
	FailedAt string // the key at which the walk stopped
}

// Error renders the failure with the offending key when known.
func (e *PathError) Error() string {
	if e.FailedAt != "" {
		return fmt.Sprintf("%s: %q at key %q", e.Kind, e.Path, e.FailedAt)
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.Path)
}

// NotFound reports whether err is a PathError with ErrKindNotFound.
func NotFound(err error) bool {
	pe, ok := err.(*PathError)
	return ok && pe.Kind == ErrKindNotFound
}

// TypeMismatch reports whether err is a PathError with ErrKindTypeMismatch.
func TypeMismatch(err error) bool {
	pe, ok := err.(*PathError)
	return ok && pe.Kind == ErrKindTypeMismatch
}

// Value is a resolved leaf together with its observed runtime kind.
type Value struct {
	Raw  any
	Kind Kind
}

// String renders the value the way a renderer would print it. Numbers
// keep their source representation when they arrived as json.Number.
func (v Value) String() string {
	switch raw := v.Raw.(type) {
	case nil:
		return ""
	case string:
		return raw
	case json.Number:
		return raw.String()
	case float64:
		return strconv.FormatFloat(raw, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(raw)
	default:
		return fmt.Sprintf("%v", raw)
	}
}

// IsIntegral reports whether a number-kind value carries no fractional
// component. Non-number values are never integral.
func (v Value) IsIntegral() bool {
	switch raw := v.Raw.(type) {
	case json.Number:
		if _, err := raw.Int64(); err == nil {
			return true
		}
		f, err := raw.Float64()
		return err == nil && f == float64(int64(f))
	case float64:
		return raw == float64(int64(raw))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// Resolve walks the dot-separated path through the data tree and
// returns the leaf value with its kind. All failures come back as a
// *PathError; Resolve never panics on foreign data shapes.
func Resolve(path string, data any) (Value, error) {
	if path == "" {
		return Value{}, &PathError{Kind: ErrKindNotFound, Path: path}
	}

	keys := strings.Split(path, ".")
	if len(keys) > MaxPathSegments {
		return Value{}, &PathError{Kind: ErrKindTooDeep, Path: path}
	}

	node := data
	for _, key := range keys {
		if key == "" {
			return Value{}, &PathError{Kind: ErrKindNotFound, Path: path, FailedAt: key}
		}
		mapping, ok := asMapping(node)
		if !ok {
			return Value{}, &PathError{Kind: ErrKindTypeMismatch, Path: path, FailedAt: key}
		}
		child, present := mapping[key]
		if !present {
			return Value{}, &PathError{Kind: ErrKindNotFound, Path: path, FailedAt: key}
		}
		node = child
	}

	return Value{Raw: node, Kind: KindOf(node)}, nil
}

// KindOf classifies a runtime value into the resolver's kind taxonomy.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBoolean
	case json.Number, float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber
	default:
		return KindComplex
	}
}

// asMapping views a node as a string-keyed mapping when possible.
// JSON decoding produces map[string]any; map[string]string shows up in
// hand-built test trees.
func asMapping(node any) (map[string]any, bool) {
	switch m := node.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	default:
		return nil, false
	}
}
