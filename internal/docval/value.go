package docval

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Value is a sealed interface over the document value types the walker
// understands. Only Null, String, Int, Float, Bool, Array, and Object
// implement it. The marker method prevents external implementations and
// keeps type switches in the schema package exhaustive.
type Value interface {
	docValue() // Sealed - only these types implement it
}

// Null represents a JSON null value.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) docValue() {}

// String represents a string value.
type String string

func (String) docValue() {}

// Int represents an integral number. JSON numbers without a fraction or
// exponent decode to Int, everything else decodes to Float.
type Int int64

func (Int) docValue() {}

// Float represents a non-integral number.
type Float float64

func (Float) docValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) docValue() {}

// Array represents an ordered sequence of values.
type Array []Value

func (Array) docValue() {}

// Object represents a map of string keys to values.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) docValue() {}

// SortedKeys returns the object's keys in ascending byte order.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	// Plain byte ordering is enough here: keys only feed deterministic
	// iteration, never content-addressed hashing.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// Decode parses a single JSON document into a Value.
// Numbers are kept as json.Number so integers survive without float rounding.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return convert(raw)
}

// DecodeAll parses a stream of JSON documents (concatenated or
// newline-delimited) into a slice of Values. A top-level JSON array is
// returned as a single Array value, not unpacked - the walker decides
// whether a root array is a document batch or a root-array document.
func DecodeAll(data []byte) ([]Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var docs []Value
	for dec.More() {
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document %d: %w", len(docs), err)
		}
		v, err := convert(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", len(docs), err)
		}
		docs = append(docs, v)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in input")
	}
	return docs, nil
}

// convert recursively converts a decoded Go value to a Value.
func convert(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			f, err := val.Float64()
			if err != nil {
				return nil, fmt.Errorf("number out of float64 range: %s", val)
			}
			return Float(f), nil
		}
		n, err := val.Int64()
		if err != nil {
			// Integral but beyond int64 - keep the magnitude as a float.
			f, ferr := val.Float64()
			if ferr != nil {
				return nil, fmt.Errorf("number out of range: %s", val)
			}
			return Float(f), nil
		}
		return Int(n), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			dv, err := convert(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = dv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			dv, err := convert(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = dv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// Literal renders a value as a short display string for sample tracking.
// Composite values render as a summary, scalars as their natural text.
func Literal(v Value) string {
	switch val := v.(type) {
	case Null:
		return "NULL"
	case String:
		return truncate(string(val), 100)
	case Int:
		return fmt.Sprintf("%d", int64(val))
	case Float:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", float64(val)), "0"), ".")
	case Bool:
		return fmt.Sprintf("%t", bool(val))
	case Array:
		return fmt.Sprintf("Array with %d items", len(val))
	case Object:
		return fmt.Sprintf("Object with %d keys", len(val))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
