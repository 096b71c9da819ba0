package condition

import "github.com/snowq-dev/snowq/internal/schema"

// Operator is a comparison operator from the condition mini-language.
type Operator string

const (
	// OpExists is the implicit default when a field carries no bracket
	// body: the field is projected, nothing is filtered.
	OpExists Operator = "EXISTS"

	OpEq          Operator = "="
	OpNeq         Operator = "!="
	OpLt          Operator = "<"
	OpGt          Operator = ">"
	OpLte         Operator = "<="
	OpGte         Operator = ">="
	OpLike        Operator = "LIKE"
	OpNotLike     Operator = "NOT LIKE"
	OpILike       Operator = "ILIKE"
	OpIn          Operator = "IN"
	OpNotIn       Operator = "NOT IN"
	OpBetween     Operator = "BETWEEN"
	OpContains    Operator = "CONTAINS"
	OpNotContains Operator = "NOT CONTAINS"
	OpIsNull      Operator = "IS NULL"
	OpIsNotNull   Operator = "IS NOT NULL"
)

// IsNullCheck reports whether the operator takes no value.
func (op Operator) IsNullCheck() bool {
	return op == OpIsNull || op == OpIsNotNull
}

var operators = map[string]Operator{
	"=":            OpEq,
	"!=":           OpNeq,
	"<":            OpLt,
	">":            OpGt,
	"<=":           OpLte,
	">=":           OpGte,
	"LIKE":         OpLike,
	"NOT LIKE":     OpNotLike,
	"ILIKE":        OpILike,
	"IN":           OpIn,
	"NOT IN":       OpNotIn,
	"BETWEEN":      OpBetween,
	"CONTAINS":     OpContains,
	"NOT CONTAINS": OpNotContains,
	"IS NULL":      OpIsNull,
	"IS NOT NULL":  OpIsNotNull,
}

func lookupOperator(name string) (Operator, bool) {
	op, ok := operators[name]
	return op, ok
}

// Category groups Snowflake types for operator compatibility checks.
type Category string

const (
	CategoryNumeric Category = "NUMERIC"
	CategoryString  Category = "STRING"
	CategoryDate    Category = "DATE"
	CategoryBoolean Category = "BOOLEAN"
	CategoryVariant Category = "VARIANT"
	CategoryArray   Category = "ARRAY"
	CategoryObject  Category = "OBJECT"
)

// operatorTable whitelists operators per type category. IS NULL and
// IS NOT NULL are universally valid and checked before the table.
var operatorTable = map[Category]map[Operator]bool{
	CategoryNumeric: set(OpLt, OpGt, OpLte, OpGte, OpEq, OpNeq, OpIn, OpNotIn, OpBetween),
	CategoryString:  set(OpLike, OpNotLike, OpILike, OpEq, OpNeq, OpIn, OpNotIn, OpContains, OpNotContains),
	CategoryDate:    set(OpLt, OpGt, OpLte, OpGte, OpEq, OpNeq, OpBetween),
	CategoryBoolean: set(OpEq, OpNeq),
	CategoryVariant: set(OpEq, OpNeq, OpLike, OpNotLike, OpContains, OpNotContains,
		OpLt, OpGt, OpLte, OpGte, OpIn, OpNotIn, OpBetween),
	CategoryArray:  set(OpEq, OpNeq, OpContains, OpNotContains),
	CategoryObject: set(OpEq, OpNeq, OpContains, OpNotContains),
}

// typeCategories maps Snowflake type names (cast targets included) to
// their category. Anything unlisted is treated as VARIANT.
var typeCategories = map[string]Category{
	"NUMBER":    CategoryNumeric,
	"INTEGER":   CategoryNumeric,
	"INT":       CategoryNumeric,
	"FLOAT":     CategoryNumeric,
	"DECIMAL":   CategoryNumeric,
	"STRING":    CategoryString,
	"VARCHAR":   CategoryString,
	"TEXT":      CategoryString,
	"CHAR":      CategoryString,
	"DATE":      CategoryDate,
	"TIMESTAMP": CategoryDate,
	"DATETIME":  CategoryDate,
	"BOOLEAN":   CategoryBoolean,
	"BOOL":      CategoryBoolean,
	"VARIANT":   CategoryVariant,
	"ARRAY":     CategoryArray,
	"OBJECT":    CategoryObject,
}

// castTypes is the whitelist of valid CAST targets.
var castTypes = map[string]bool{
	"NUMBER": true, "INTEGER": true, "INT": true, "FLOAT": true,
	"VARCHAR": true, "STRING": true, "BOOLEAN": true, "DATE": true,
	"TIMESTAMP": true, "VARIANT": true, "ARRAY": true, "TIME": true,
	"BINARY": true, "OBJECT": true, "TEXT": true, "CHAR": true,
}

// ValidCastType reports whether name is an allowed CAST target.
func ValidCastType(name string) bool {
	return castTypes[name]
}

// CategoryOf maps a Snowflake type name to its operator category.
func CategoryOf(typeName string) Category {
	if cat, ok := typeCategories[typeName]; ok {
		return cat
	}
	return CategoryVariant
}

// CategoryOfKind maps an inferred kind to its operator category. Variant
// (unknown) paths deliberately get the permissive VARIANT set: conflicting
// samples should not lock a field out of filtering.
func CategoryOfKind(k schema.Kind) Category {
	return CategoryOf(k.SnowflakeType())
}

// Compatible reports whether the operator may apply to a value of the
// given Snowflake type. The null checks are valid for every type.
func Compatible(op Operator, typeName string) bool {
	if op.IsNullCheck() || op == OpExists {
		return true
	}
	return operatorTable[CategoryOf(typeName)][op]
}

func set(ops ...Operator) map[Operator]bool {
	m := make(map[Operator]bool, len(ops))
	for _, op := range ops {
		m[op] = true
	}
	return m
}
