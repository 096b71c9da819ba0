package schema

import (
	"strings"

	"github.com/itchyny/timefmt-go"

	"github.com/snowq-dev/snowq/internal/docval"
)

// Kind classifies the value observed at a schema path.
//
// KindUnknown doubles as the variant kind: a path whose observed kinds
// disagree across samples is promoted to KindUnknown and queried as VARIANT.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNull
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
	KindBinary
	KindObject
	KindArray
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindNull:      "null",
	KindString:    "string",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindBoolean:   "boolean",
	KindTimestamp: "timestamp",
	KindBinary:    "binary",
	KindObject:    "object",
	KindArray:     "array",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON serializes the kind as its name so exported schemas and
// cache entries stay readable and stable across releases.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON accepts a kind name. Unrecognized names decode to
// KindUnknown rather than failing: a schema written by a newer release
// should still load.
func (k *Kind) UnmarshalJSON(data []byte) error {
	name := strings.Trim(string(data), `"`)
	for kind, kn := range kindNames {
		if kn == name {
			*k = kind
			return nil
		}
	}
	*k = KindUnknown
	return nil
}

// IsScalar reports whether the kind is a leaf value kind.
// Null and unknown count as scalar: both are directly selectable.
func (k Kind) IsScalar() bool {
	return k != KindObject && k != KindArray
}

// SnowflakeType maps a kind to the Snowflake column type used for
// inferred casts and operator compatibility checks.
func (k Kind) SnowflakeType() string {
	switch k {
	case KindString:
		return "VARCHAR"
	case KindInteger:
		return "NUMBER"
	case KindFloat:
		return "FLOAT"
	case KindBoolean:
		return "BOOLEAN"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindBinary:
		return "BINARY"
	case KindObject:
		return "OBJECT"
	case KindArray:
		return "ARRAY"
	default:
		// Null and unknown both query as VARIANT.
		return "VARIANT"
	}
}

// timestampLayouts are the strptime layouts tried during string
// classification, most specific first.
var timestampLayouts = []string{
	"%Y-%m-%dT%H:%M:%S%z",
	"%Y-%m-%dT%H:%M:%S",
	"%Y-%m-%d %H:%M:%S",
	"%Y-%m-%d",
}

// looksLikeTimestamp reports whether s parses under one of the known
// timestamp layouts. Short strings are rejected up front so plain numbers
// like "2023" never classify as dates.
func looksLikeTimestamp(s string) bool {
	if len(s) < len("2006-01-02") || len(s) > len("2006-01-02T15:04:05+07:00") {
		return false
	}
	for _, layout := range timestampLayouts {
		if _, err := timefmt.Parse(s, layout); err == nil {
			return true
		}
	}
	return false
}

// classify maps a document value to its observed kind.
func classify(v docval.Value) Kind {
	switch val := v.(type) {
	case docval.Null:
		return KindNull
	case docval.String:
		if looksLikeTimestamp(string(val)) {
			return KindTimestamp
		}
		return KindString
	case docval.Int:
		return KindInteger
	case docval.Float:
		return KindFloat
	case docval.Bool:
		return KindBoolean
	case docval.Object:
		return KindObject
	case docval.Array:
		return KindArray
	default:
		return KindUnknown
	}
}

// mergeKind resolves a type conflict between two observations of the same
// path. The resolution forms a join-semilattice, so repeated merges are
// commutative and associative regardless of sample order:
//
//   - null yields to any concrete kind
//   - timestamp yields to string (a timestamp is a refined string)
//   - any other mismatch promotes to unknown (variant)
func mergeKind(a, b Kind) Kind {
	if a == b {
		return a
	}
	if a == KindNull {
		return b
	}
	if b == KindNull {
		return a
	}
	if (a == KindTimestamp && b == KindString) || (a == KindString && b == KindTimestamp) {
		return KindString
	}
	return KindUnknown
}
