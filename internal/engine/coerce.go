package engine

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ValueType is the declared type of a raw request value.
type ValueType int

const (
	TypeText ValueType = iota
	TypeInt
	TypeFloat
	TypeBool
)

var valueTypes = map[string]ValueType{
	"text":    TypeText,
	"int":     TypeInt,
	"integer": TypeInt,
	"float":   TypeFloat,
	"bool":    TypeBool,
	"boolean": TypeBool,
}

// ParseValueType maps a declared type name to a ValueType. Unknown names are text.
func ParseValueType(name string) ValueType {
	if t, ok := valueTypes[name]; ok {
		return t
	}
	return TypeText
}

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return "text"
	}
}

// CoerceOptions holds the rules that differ between deployments.
type CoerceOptions struct {
	// BoolAcceptsOne makes "1" coerce to true in addition to "true".
	BoolAcceptsOne bool
}

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// CoerceValue converts raw to the declared type. Numeric parsing is
// best-effort: the longest numeric prefix after leading whitespace is used,
// out-of-range values saturate and anything unparsable yields zero.
func CoerceValue(t ValueType, raw string, opts CoerceOptions) any {
	switch t {
	case TypeBool:
		return raw == "true" || (opts.BoolAcceptsOne && raw == "1")
	case TypeInt:
		// A fraction or exponent makes the prefix a float, truncated toward zero.
		if prefix := floatPrefix.FindString(trimLeading(raw)); strings.ContainsAny(prefix, ".eE") {
			f, err := strconv.ParseFloat(prefix, 64)
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return int64(0)
			}
			return truncateInt(f)
		}
		n, err := strconv.ParseInt(intPrefix.FindString(trimLeading(raw)), 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return int64(0)
		}
		return n
	case TypeFloat:
		f, err := strconv.ParseFloat(floatPrefix.FindString(trimLeading(raw)), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return float64(0)
		}
		return f
	default:
		return raw
	}
}

// truncateInt saturates at the int64 bounds.
func truncateInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func trimLeading(s string) string {
	return strings.TrimLeft(s, " \t\n\r\v\f")
}
