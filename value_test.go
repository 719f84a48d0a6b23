package pennant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueOf_Conversions(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null},
		{"string", "hello", StringValue("hello")},
		{"bool", true, BoolValue(true)},
		{"int", 42, NumberValue(42)},
		{"int64", int64(7), NumberValue(7)},
		{"float64", 3.5, NumberValue(3.5)},
		{"value passthrough", StringValue("x"), StringValue("x")},
		{"string slice", []string{"a", "b"}, ListValue(StringValue("a"), StringValue("b"))},
		{"any slice", []any{1, "a"}, ListValue(NumberValue(1), StringValue("a"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, ValueOf(tt.in).Equal(tt.want))
		})
	}
}

func TestValue_Equal_TypeSensitive(t *testing.T) {
	// No coercion: the number 42 is not the string "42".
	assert.False(t, NumberValue(42).Equal(StringValue("42")))
	assert.False(t, BoolValue(true).Equal(StringValue("true")))
	assert.False(t, Null.Equal(StringValue("")))

	assert.True(t, NumberValue(42).Equal(NumberValue(42.0)))
	assert.True(t, Null.Equal(Null))
	assert.True(t, ListValue(NumberValue(1), StringValue("a")).
		Equal(ListValue(NumberValue(1), StringValue("a"))))
	assert.False(t, ListValue(NumberValue(1)).
		Equal(ListValue(NumberValue(1), NumberValue(2))))
}

func TestValue_String_Canonical(t *testing.T) {
	assert.Equal(t, "", Null.String())
	assert.Equal(t, "hello", StringValue("hello").String())
	assert.Equal(t, "42", NumberValue(42).String())
	assert.Equal(t, "3.5", NumberValue(3.5).String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "[a,1]", ListValue(StringValue("a"), NumberValue(1)).String())
}

func TestValue_Accessors(t *testing.T) {
	s, ok := StringValue("x").AsString()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = StringValue("x").AsNumber()
	assert.False(t, ok)

	n, ok := NumberValue(1.5).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 1.5, n)

	items, ok := ListValue(NumberValue(1)).AsList()
	assert.True(t, ok)
	assert.Len(t, items, 1)

	assert.True(t, Null.IsNull())
	assert.False(t, BoolValue(false).IsNull())
}

func TestAttributes_CloneIsIndependent(t *testing.T) {
	original := Attributes{"a": NumberValue(1)}
	clone := original.Clone()
	clone["a"] = NumberValue(2)
	clone["b"] = NumberValue(3)

	assert.True(t, original["a"].Equal(NumberValue(1)))
	assert.NotContains(t, original, "b")
}

func TestAttributes_KeysSorted(t *testing.T) {
	attrs := AttributesOf(map[string]any{"b": 1, "a": 2, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, attrs.Keys())
}
