package bindery

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"time"
)

// Path is a cleaned filesystem path. It renders as its string form.
type Path string

// NewPath returns the cleaned form of p.
func NewPath(p string) Path { return Path(filepath.Clean(p)) }

func (p Path) String() string { return string(p) }

// number is implemented by json.Number from encoding/json and goccy/go-json.
type number interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

var (
	errNotIntegral = errors.New("value is not integral")
	errOutOfRange  = errors.New("value out of range")
	errByteRange   = errors.New("byte value out of range 0..255")
)

type scalarConverter struct{ kind ScalarKind }

func newScalarConverter(k ScalarKind) converter { return scalarConverter{kind: k} }

func (s scalarConverter) parse(raw any, w *walk) (any, error) {
	var (
		v   any
		err error
	)
	switch s.kind {
	case ScalarBool:
		v, err = toBool(raw)
	case ScalarInt:
		v, err = toInt(raw)
	case ScalarFloat:
		v, err = toFloat(raw)
	case ScalarComplex:
		v, err = toComplex(raw)
	case ScalarString:
		v, err = toString(raw)
	case ScalarBytes:
		v, err = toBytes(raw)
	case ScalarPath:
		v, err = toPath(raw)
	case ScalarDateTime:
		v, err = toDateTime(raw)
	default:
		return nil, invalidType(w.path, "unknown scalar kind "+s.kind.String())
	}
	if err != nil {
		return nil, coercionIssue(w.path, raw, s.kind, err)
	}
	return v, nil
}

func (s scalarConverter) render(v any, w *walk) (any, error) {
	switch s.kind {
	case ScalarPath:
		p, err := toPath(v)
		if err != nil {
			return nil, coercionIssue(w.path, v, s.kind, err)
		}
		return string(p), nil
	case ScalarDateTime:
		t, err := toDateTime(v)
		if err != nil {
			return nil, coercionIssue(w.path, v, s.kind, err)
		}
		return FormatDateTime(t), nil
	case ScalarBytes:
		if b, ok := v.([]byte); ok {
			return append([]byte{}, b...), nil
		}
	}
	return v, nil
}

func (s scalarConverter) accepts(v any) bool {
	switch s.kind {
	case ScalarBool:
		_, ok := v.(bool)
		return ok
	case ScalarInt:
		_, ok := v.(int)
		return ok
	case ScalarFloat:
		_, ok := v.(float64)
		return ok
	case ScalarComplex:
		_, ok := v.(complex128)
		return ok
	case ScalarString:
		_, ok := v.(string)
		return ok
	case ScalarBytes:
		_, ok := v.([]byte)
		return ok
	case ScalarPath:
		_, ok := v.(Path)
		return ok
	case ScalarDateTime:
		_, ok := v.(time.Time)
		return ok
	}
	return false
}

func coercionIssue(path string, raw any, k ScalarKind, cause error) *Issue {
	iss := newIssue(CodeInvalidScalar, path)
	iss.Hint = fmt.Sprintf("cannot convert %T to %s", raw, k)
	iss.Cause = cause
	return iss
}

func unsupported(raw any) error { return fmt.Errorf("unsupported input %T", raw) }

func toBool(raw any) (bool, error) {
	switch t := raw.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	case float32:
		return t != 0, nil
	case float64:
		return t != 0, nil
	}
	if i, ok, err := integer(raw); ok {
		if err != nil {
			return false, err
		}
		return i != 0, nil
	}
	if n, ok := raw.(number); ok {
		f, err := n.Float64()
		return f != 0, err
	}
	return false, unsupported(raw)
}

// integer converts the Go integer kinds to int64. ok is false for any other
// input.
func integer(raw any) (int64, bool, error) {
	switch t := raw.(type) {
	case int:
		return int64(t), true, nil
	case int8:
		return int64(t), true, nil
	case int16:
		return int64(t), true, nil
	case int32:
		return int64(t), true, nil
	case int64:
		return t, true, nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return int64(t), true, nil
	case uint16:
		return int64(t), true, nil
	case uint32:
		return int64(t), true, nil
	case uint64:
		return fromUint(t)
	}
	return 0, false, nil
}

func fromUint(u uint64) (int64, bool, error) {
	if u > math.MaxInt64 {
		return 0, true, errOutOfRange
	}
	return int64(u), true, nil
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotIntegral
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, errOutOfRange
	}
	return int(f), nil
}

func toInt(raw any) (int, error) {
	if i, ok, err := integer(raw); ok {
		if err != nil {
			return 0, err
		}
		if i < math.MinInt || i > math.MaxInt {
			return 0, errOutOfRange
		}
		return int(i), nil
	}
	switch t := raw.(type) {
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case string:
		i, err := strconv.ParseInt(t, 10, strconv.IntSize)
		return int(i), err
	case number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	}
	return 0, unsupported(raw)
}

func toFloat(raw any) (float64, error) {
	if i, ok, err := integer(raw); ok {
		return float64(i), err
	}
	switch t := raw.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(t, 64)
	case number:
		return t.Float64()
	}
	return 0, unsupported(raw)
}

func toComplex(raw any) (complex128, error) {
	switch t := raw.(type) {
	case complex128:
		return t, nil
	case complex64:
		return complex128(t), nil
	case string:
		return strconv.ParseComplex(t, 128)
	}
	f, err := toFloat(raw)
	if err != nil {
		return 0, err
	}
	return complex(f, 0), nil
}

func toString(raw any) (string, error) {
	switch t := raw.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case Path:
		return string(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32), nil
	case complex128:
		return strconv.FormatComplex(t, 'g', -1, 128), nil
	case number:
		return t.String(), nil
	}
	if i, ok, err := integer(raw); ok {
		if err != nil {
			// uint64 beyond int64 still has an exact decimal form
			return fmt.Sprint(raw), nil
		}
		return strconv.FormatInt(i, 10), nil
	}
	return "", unsupported(raw)
}

func toBytes(raw any) ([]byte, error) {
	switch t := raw.(type) {
	case []byte:
		return append([]byte{}, t...), nil
	case string:
		return []byte(t), nil
	}
	items, ok := asSequence(raw)
	if !ok {
		return nil, unsupported(raw)
	}
	out := make([]byte, len(items))
	for i, it := range items {
		b, err := toInt(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if b < 0 || b > 255 {
			return nil, fmt.Errorf("item %d: %w", i, errByteRange)
		}
		out[i] = byte(b)
	}
	return out, nil
}

func toPath(raw any) (Path, error) {
	switch t := raw.(type) {
	case Path:
		return t, nil
	case string:
		return NewPath(t), nil
	}
	return "", unsupported(raw)
}
