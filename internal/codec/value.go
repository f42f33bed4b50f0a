// Package codec converts an application state snapshot to and from its
// durable string form.
//
// Temporal leaves do not survive a plain JSON round trip, so every time
// value is written as a tagged wrapper {"__type":"Date","value":"<ISO-8601>"}
// and restored exactly on decode. The intermediate representation is an
// explicit sum type (Value) rather than duck-typed maps, so the tagged shape
// is recognized in exactly one place.
package codec

import (
	"fmt"
	"time"
)

// Kind discriminates the variants of Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindTime
)

// Value is one node of a JSON-safe tree. Exactly one variant field is
// meaningful, selected by Kind. KindTime is the only variant with no direct
// JSON equivalent; it is bridged through the tagged-date wrapper.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Array  []Value
	Object map[string]Value
	Time   time.Time
}

// Tagged-date wire constants.
const (
	dateTag      = "Date"
	dateTagKey   = "__type"
	dateValueKey = "value"
)

// isoFormat is the wire format for time values. RFC 3339 with nanoseconds
// keeps the round trip lossless for any time.Time the UI hands us.
const isoFormat = time.RFC3339Nano

// Null returns the null Value.
func Null() Value { return Value{Kind: KindNull} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NumberValue wraps a number.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// ArrayValue wraps a slice of values. A nil slice is an empty array, not null.
func ArrayValue(elems []Value) Value { return Value{Kind: KindArray, Array: elems} }

// ObjectValue wraps a key/value map.
func ObjectValue(fields map[string]Value) Value { return Value{Kind: KindObject, Object: fields} }

// TimeValue wraps a time instant.
func TimeValue(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// toJSON lowers a Value into the shapes encoding/json understands.
// Time becomes the tagged wrapper.
func (v Value) toJSON() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.Str
	case KindArray:
		elems := make([]any, len(v.Array))
		for i, elem := range v.Array {
			elems[i] = elem.toJSON()
		}

		return elems
	case KindObject:
		fields := make(map[string]any, len(v.Object))
		for key, field := range v.Object {
			fields[key] = field.toJSON()
		}

		return fields
	case KindTime:
		return map[string]any{
			dateTagKey:   dateTag,
			dateValueKey: v.Time.UTC().Format(isoFormat),
		}
	default:
		panic(fmt.Sprintf("codec: unknown value kind %d", v.Kind))
	}
}

// fromJSON lifts a decoded JSON tree into a Value, restoring tagged dates.
// Any object carrying the exact tagged-date shape becomes KindTime; an
// object that merely looks close (wrong tag, extra keys) stays an object.
func fromJSON(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(val), nil
	case float64:
		return NumberValue(val), nil
	case string:
		return StringValue(val), nil
	case []any:
		elems := make([]Value, len(val))

		for i, elem := range val {
			lifted, err := fromJSON(elem)
			if err != nil {
				return Value{}, err
			}

			elems[i] = lifted
		}

		return ArrayValue(elems), nil
	case map[string]any:
		if iso, ok := taggedDate(val); ok {
			parsed, err := time.Parse(isoFormat, iso)
			if err != nil {
				return Value{}, fmt.Errorf("invalid tagged date %q: %w", iso, err)
			}

			return TimeValue(parsed), nil
		}

		fields := make(map[string]Value, len(val))

		for key, field := range val {
			lifted, err := fromJSON(field)
			if err != nil {
				return Value{}, err
			}

			fields[key] = lifted
		}

		return ObjectValue(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported JSON value of type %T", raw)
	}
}

// taggedDate reports whether obj is exactly the tagged-date wrapper and
// returns its ISO string.
func taggedDate(obj map[string]any) (string, bool) {
	if len(obj) != 2 {
		return "", false
	}

	tag, ok := obj[dateTagKey].(string)
	if !ok || tag != dateTag {
		return "", false
	}

	iso, ok := obj[dateValueKey].(string)

	return iso, ok
}
