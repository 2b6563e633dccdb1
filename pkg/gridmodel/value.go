package gridmodel

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the declared type of a column and the runtime type of a
// cell value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// KindFromString resolves a schema type name ("string", "int", "float",
// "bool", "date"/"time") into a Kind.
func KindFromString(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "text":
		return KindString, nil
	case "int", "integer":
		return KindInt, nil
	case "float", "double", "number", "decimal":
		return KindFloat, nil
	case "bool", "boolean":
		return KindBool, nil
	case "time", "date", "datetime":
		return KindTime, nil
	default:
		return KindNull, fmt.Errorf("%w: unknown type %q", ErrTypeMismatch, s)
	}
}

// dateLayouts are tried in order when parsing time values from text.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// Value is a tagged variant over the supported column types. The zero Value
// is null. Values are immutable; constructors build new ones.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
}

func NullValue() Value { return Value{} }

func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

// ParseValue converts raw text into a Value of the requested kind. Blank
// input parses to null for every kind. A failed conversion reports
// ErrTypeMismatch rather than falling back to a default.
func ParseValue(raw string, kind Kind) (Value, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return NullValue(), nil
	}

	switch kind {
	case KindNull, KindString:
		return StringValue(raw), nil
	case KindInt:
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return NullValue(), fmt.Errorf("%w: %q is not a valid int", ErrTypeMismatch, raw)
		}
		return IntValue(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return NullValue(), fmt.Errorf("%w: %q is not a valid float", ErrTypeMismatch, raw)
		}
		return FloatValue(f), nil
	case KindBool:
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return NullValue(), fmt.Errorf("%w: %q is not a valid bool", ErrTypeMismatch, raw)
		}
		return BoolValue(b), nil
	case KindTime:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return TimeValue(t), nil
			}
		}
		return NullValue(), fmt.Errorf("%w: %q is not a valid time", ErrTypeMismatch, raw)
	default:
		return NullValue(), fmt.Errorf("%w: unsupported kind %s", ErrTypeMismatch, kind)
	}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBlank reports whether the value is null or a whitespace-only string.
// Blank values are what row emptiness and the rule null-bypass convention
// are defined over.
func (v Value) IsBlank() bool {
	if v.kind == KindNull {
		return true
	}
	return v.kind == KindString && strings.TrimSpace(v.s) == ""
}

// AsString returns the value rendered as text. Null renders as the empty
// string; it never fails.
func (v Value) AsString() (string, error) {
	return v.Format(), nil
}

// AsInt converts to int64. String values are parsed; float values must be
// integral.
func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		if v.f == float64(int64(v.f)) {
			return int64(v.f), nil
		}
		return 0, fmt.Errorf("%w: %v is not an integer", ErrTypeMismatch, v.f)
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a valid int", ErrTypeMismatch, v.s)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: cannot convert %s to int", ErrTypeMismatch, v.kind)
	}
}

// AsFloat converts to float64. Int values widen; string values are parsed.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a valid float", ErrTypeMismatch, v.s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: cannot convert %s to float", ErrTypeMismatch, v.kind)
	}
}

// AsBool converts to bool. String values are parsed with strconv semantics.
func (v Value) AsBool() (bool, error) {
	switch v.kind {
	case KindBool:
		return v.b, nil
	case KindString:
		b, err := strconv.ParseBool(strings.TrimSpace(v.s))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a valid bool", ErrTypeMismatch, v.s)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: cannot convert %s to bool", ErrTypeMismatch, v.kind)
	}
}

// AsTime converts to time.Time. String values are parsed against the known
// date layouts.
func (v Value) AsTime() (time.Time, error) {
	switch v.kind {
	case KindTime:
		return v.t, nil
	case KindString:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v.s)); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q is not a valid time", ErrTypeMismatch, v.s)
	default:
		return time.Time{}, fmt.Errorf("%w: cannot convert %s to time", ErrTypeMismatch, v.kind)
	}
}

// ConvertibleTo reports whether the value can be converted to the given kind
// without error. Blank values are convertible to everything.
func (v Value) ConvertibleTo(kind Kind) bool {
	if v.IsBlank() {
		return true
	}
	var err error
	switch kind {
	case KindNull, KindString:
		return true
	case KindInt:
		_, err = v.AsInt()
	case KindFloat:
		_, err = v.AsFloat()
	case KindBool:
		_, err = v.AsBool()
	case KindTime:
		_, err = v.AsTime()
	default:
		return false
	}
	return err == nil
}

// Format renders the value for display, export, and clipboard text.
func (v Value) Format() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format("2006-01-02")
	default:
		return ""
	}
}

// Equal compares two values. String values compare with surrounding
// whitespace trimmed; blank values of any kind compare equal to each other;
// everything else compares by kind and payload.
func (v Value) Equal(o Value) bool {
	if v.IsBlank() && o.IsBlank() {
		return true
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.s) == strings.TrimSpace(o.s)
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}
