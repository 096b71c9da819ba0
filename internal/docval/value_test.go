package docval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ScalarKinds(t *testing.T) {
	v, err := Decode([]byte(`{"name":"Ada","age":36,"score":9.5,"active":true,"note":null}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)

	assert.Equal(t, String("Ada"), obj["name"])
	assert.Equal(t, Int(36), obj["age"])
	assert.Equal(t, Float(9.5), obj["score"])
	assert.Equal(t, Bool(true), obj["active"])
	assert.Equal(t, Null{}, obj["note"])
}

func TestDecode_IntegerVsFloat(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Value
	}{
		{name: "plain integer", input: `42`, want: Int(42)},
		{name: "negative integer", input: `-7`, want: Int(-7)},
		{name: "decimal point", input: `42.0`, want: Float(42.0)},
		{name: "exponent", input: `1e3`, want: Float(1000)},
		{name: "large integer survives exactly", input: `9007199254740993`, want: Int(9007199254740993)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Decode([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestDecodeAll_Stream(t *testing.T) {
	docs, err := DecodeAll([]byte("{\"id\":1}\n{\"id\":2}\n{\"id\":3}"))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	for i, doc := range docs {
		obj, ok := doc.(Object)
		require.True(t, ok)
		assert.Equal(t, Int(int64(i+1)), obj["id"])
	}
}

func TestDecodeAll_TopLevelArrayStaysOneDocument(t *testing.T) {
	// A root array is a single document; the walker decides what it means.
	docs, err := DecodeAll([]byte(`[{"id":1},{"id":2}]`))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, ok := docs[0].(Array)
	assert.True(t, ok)
}

func TestDecodeAll_Errors(t *testing.T) {
	_, err := DecodeAll([]byte(""))
	assert.Error(t, err)

	_, err = DecodeAll([]byte(`{"id":`))
	assert.Error(t, err)
}

func TestSortedKeys_Deterministic(t *testing.T) {
	obj := Object{"b": Int(1), "a": Int(2), "c": Int(3)}
	assert.Equal(t, []string{"a", "b", "c"}, obj.SortedKeys())
}

func TestLiteral(t *testing.T) {
	testCases := []struct {
		name string
		in   Value
		want string
	}{
		{name: "null", in: Null{}, want: "NULL"},
		{name: "string", in: String("hello"), want: "hello"},
		{name: "int", in: Int(42), want: "42"},
		{name: "float trims zeros", in: Float(10.5), want: "10.5"},
		{name: "whole float trims point", in: Float(3), want: "3"},
		{name: "bool", in: Bool(false), want: "false"},
		{name: "array summary", in: Array{Int(1), Int(2)}, want: "Array with 2 items"},
		{name: "object summary", in: Object{"a": Int(1)}, want: "Object with 1 keys"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Literal(tc.in))
		})
	}
}

func TestLiteral_TruncatesLongStrings(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	got := Literal(String(long))
	assert.Len(t, got, 100)
	assert.Equal(t, "...", got[97:])
}
