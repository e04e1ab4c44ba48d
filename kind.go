package hxel

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cast"
)

// Kind describes the value type of a property: how assigned values are
// coerced, how attribute strings are parsed, how values are written back to
// attributes, and which value an absent attribute maps to.
//
// Coercion is total. Out-of-domain input degrades to the zero value of the
// kind instead of failing, and nil always maps to the absent value.
type Kind struct {
	name    string
	boolean bool
	empty   any
	coerce  func(v any) any
	parse   func(s string) any
	format  func(v any) string
	clone   func(v any) any
}

// Built-in kinds.
var (
	// String holds text. Removing the attribute yields "".
	String = Kind{
		name:   "String",
		empty:  "",
		coerce: func(v any) any { return cast.ToString(v) },
		parse:  func(s string) any { return s },
		format: cast.ToString,
	}

	// Number holds a float64. Removing the attribute yields 0.
	Number = Kind{
		name:   "Number",
		empty:  float64(0),
		coerce: func(v any) any { return cast.ToFloat64(v) },
		parse:  func(s string) any { return cast.ToFloat64(s) },
		format: func(v any) string { return strconv.FormatFloat(cast.ToFloat64(v), 'f', -1, 64) },
	}

	// Int holds an int. Removing the attribute yields 0.
	Int = Kind{
		name:   "Int",
		empty:  0,
		coerce: func(v any) any { return cast.ToInt(v) },
		parse:  func(s string) any { return cast.ToInt(s) },
		format: func(v any) string { return strconv.Itoa(cast.ToInt(v)) },
	}

	// Boolean follows the presence-flag convention for attributes: any
	// present attribute value is true, a missing attribute is false, and a
	// true property is written as an empty attribute.
	Boolean = Kind{
		name:    "Boolean",
		boolean: true,
		empty:   false,
		coerce:  func(v any) any { return cast.ToBool(v) },
		parse:   func(string) any { return true },
		format:  func(any) string { return "" },
	}

	// Object holds a map[string]any (or any value assigned directly).
	// Attributes are parsed and written as JSON. Removing the attribute
	// leaves the property absent.
	Object = Kind{
		name:   "Object",
		coerce: coerceJSON[map[string]any],
		parse:  func(s string) any { return parseJSON[map[string]any](s) },
		format: formatJSON,
		clone:  cloneJSON[map[string]any],
	}

	// Array holds a []any (or any slice assigned directly). Attributes are
	// parsed and written as JSON. Removing the attribute leaves the property
	// absent.
	Array = Kind{
		name:   "Array",
		coerce: coerceJSON[[]any],
		parse:  func(s string) any { return parseJSON[[]any](s) },
		format: formatJSON,
		clone:  cloneJSON[[]any],
	}
)

// CustomKind builds a kind from caller supplied functions. parse and format
// may be nil, in which case attribute strings are passed to coerce and values
// are written with cast.ToString.
func CustomKind(name string, empty any, coerce func(any) any, parse func(string) any, format func(any) string) Kind {
	if coerce == nil {
		coerce = func(v any) any { return v }
	}
	if parse == nil {
		parse = func(s string) any { return coerce(s) }
	}
	if format == nil {
		format = cast.ToString
	}
	return Kind{name: name, empty: empty, coerce: coerce, parse: parse, format: format}
}

// Name returns the kind name.
func (k Kind) Name() string {
	if k.name == "" {
		return "Any"
	}
	return k.name
}

// IsBoolean reports whether the kind uses the presence-flag convention.
func (k Kind) IsBoolean() bool {
	return k.boolean
}

// Empty returns the value a removed attribute maps to.
func (k Kind) Empty() any {
	return k.empty
}

// Coerce converts an assigned value. nil maps to the absent value.
func (k Kind) Coerce(v any) any {
	if v == nil {
		if k.boolean {
			return false
		}
		return nil
	}
	if k.coerce == nil {
		return v
	}
	return k.coerce(v)
}

// Parse converts a present attribute string.
func (k Kind) Parse(s string) any {
	if k.parse == nil {
		return k.Coerce(s)
	}
	return k.parse(s)
}

// Format serializes a value for an attribute.
func (k Kind) Format(v any) string {
	if k.format == nil {
		return cast.ToString(v)
	}
	return k.format(v)
}

func (k Kind) copyDefault(v any) any {
	if k.clone == nil || v == nil {
		return v
	}
	return k.clone(v)
}

func coerceJSON[T any](v any) any {
	if s, ok := v.(string); ok {
		return parseJSON[T](s)
	}
	return v
}

func parseJSON[T any](s string) any {
	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func formatJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func cloneJSON[T any](v any) any {
	if _, ok := v.(T); !ok {
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
