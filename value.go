package pennant

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the concrete type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
)

// String returns the kind name for logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a closed variant over the attribute types the evaluation engine
// understands: null, string, number, bool and list-of-Value. Operator
// applicability (e.g. ordering requires numbers) is checked against the
// variant kind rather than via runtime type switches on interface{}.
//
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
}

// Null is the absent/typeless value.
var Null = Value{kind: KindNull}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a float64. Integer attributes fold into this.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ListValue wraps an ordered list of values. The slice is copied.
func ListValue(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// ValueOf converts an arbitrary Go value into a Value. Numeric types fold to
// Number, []string and []any fold to List, nil folds to Null. Anything else
// is carried as its canonical string form.
func ValueOf(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null
	case Value:
		return val
	case string:
		return StringValue(val)
	case bool:
		return BoolValue(val)
	case float64:
		return NumberValue(val)
	case float32:
		return NumberValue(float64(val))
	case int:
		return NumberValue(float64(val))
	case int32:
		return NumberValue(float64(val))
	case int64:
		return NumberValue(float64(val))
	case uint:
		return NumberValue(float64(val))
	case []Value:
		return ListValue(val...)
	case []string:
		items := make([]Value, len(val))
		for i, s := range val {
			items[i] = StringValue(s)
		}
		return Value{kind: KindList, list: items}
	case []any:
		items := make([]Value, len(val))
		for i, item := range val {
			items[i] = ValueOf(item)
		}
		return Value{kind: KindList, list: items}
	default:
		return StringValue(fmt.Sprintf("%v", val))
	}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload. Ok is false for non-string values.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric payload. Ok is false for non-number values.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean payload. Ok is false for non-bool values.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsList returns a copy of the list payload. Ok is false for non-list values.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	cp := make([]Value, len(v.list))
	copy(cp, v.list)
	return cp, true
}

// Equal reports structural, type-sensitive equality. A number never equals
// the string spelling of the same number.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns the canonical string form used by the substring and
// prefix/suffix operators. Numbers drop a trailing ".0" so that 42 and 42.0
// stringify identically.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return ""
	}
}

// Attributes is a named attribute set as consumed by targeting rules, hooks
// and providers.
type Attributes map[string]Value

// AttributesOf converts a plain map into an attribute set via ValueOf.
func AttributesOf(m map[string]any) Attributes {
	attrs := make(Attributes, len(m))
	for k, v := range m {
		attrs[k] = ValueOf(v)
	}
	return attrs
}

// Clone returns a shallow copy of the attribute set.
func (a Attributes) Clone() Attributes {
	cp := make(Attributes, len(a))
	for k, v := range a {
		cp[k] = v
	}
	return cp
}

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
