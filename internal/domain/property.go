package domain

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"
)

// Kind identifies one of the closed set of property value variants the
// graph store supports.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindTime   Kind = "time"
)

// Value is a typed node or edge property. The zero value is an empty
// string.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
}

// StringValue wraps s.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue wraps i.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue wraps f.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// TimeValue wraps t.
func TimeValue(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// Native returns the value as the representation stored in the graph.
// Timestamps round-trip as RFC 3339 strings.
func (v Value) Native() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return v.Str
	}
}

// String renders the value for display.
func (v Value) String() string {
	return fmt.Sprint(v.Native())
}

// Coerce converts a raw value into one of the supported variants. Values
// outside the closed set fall back to their string form; this is the one
// place coercion to string is allowed, and it is logged.
func Coerce(key string, raw any) Value {
	switch x := raw.(type) {
	case string:
		return StringValue(x)
	case int:
		return IntValue(int64(x))
	case int32:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case float32:
		return FloatValue(float64(x))
	case float64:
		return FloatValue(x)
	case bool:
		return BoolValue(x)
	case time.Time:
		return TimeValue(x)
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return IntValue(i)
		}
		if f, err := x.Float64(); err == nil {
			return FloatValue(f)
		}
		return StringValue(string(x))
	case Value:
		return x
	case nil:
		return StringValue("")
	default:
		log.Printf("property %q: unsupported type %T, storing string form", key, raw)
		return StringValue(fmt.Sprint(raw))
	}
}

// CoerceProperties converts a raw property bag into typed values.
func CoerceProperties(raw map[string]any) map[string]Value {
	if len(raw) == 0 {
		return nil
	}
	props := make(map[string]Value, len(raw))
	for k, v := range raw {
		props[k] = Coerce(k, v)
	}
	return props
}
