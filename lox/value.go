// Copyright © 2018 The ELPS authors

package lox

import (
	"math"
	"strconv"
)

// Truthy reports whether v counts as true in a condition.  Only false and nil
// are falsy.
func Truthy(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}

// Equal reports whether a and b are equal lox values.  Values of different
// types are never equal.  Functions are equal only to themselves.
func Equal(a, b interface{}) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case bool:
		b, ok := b.(bool)
		return ok && a == b
	case float64:
		b, ok := b.(float64)
		return ok && a == b
	case string:
		b, ok := b.(string)
		return ok && a == b
	case Callable:
		b, ok := b.(Callable)
		return ok && a == b
	default:
		return false
	}
}

// Stringify returns the text print writes for v.
func Stringify(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return FormatNumber(v)
	case string:
		return v
	case Callable:
		return v.String()
	default:
		return "<unknown>"
	}
}

// FormatNumber formats x without a trailing ".0" when it is integral and in
// the shortest form that parses back to x otherwise.
func FormatNumber(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case math.IsNaN(x):
		return "NaN"
	case x == math.Trunc(x) && math.Abs(x) < 1e21:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
}

// TypeName returns the name of the lox type of v for diagnostics.
func TypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case Callable:
		return "function"
	default:
		return "unknown"
	}
}
