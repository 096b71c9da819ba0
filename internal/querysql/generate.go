// Package querysql renders query plans into Snowflake-dialect SQL text:
// projections over a VARIANT column, LATERAL FLATTEN chains, and predicates
// with sanitized literals.
package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snowq-dev/snowq/internal/condition"
	"github.com/snowq-dev/snowq/internal/plan"
	"github.com/snowq-dev/snowq/internal/schema"
)

// Generator renders expressions and assembles the final query text for one
// (table, column) pair. It holds no mutable state; methods are safe to call
// from any number of goroutines.
type Generator struct {
	Table  string
	Column string
}

// NewGenerator creates a Generator for the given table and VARIANT column.
// Both identifiers are sanitized once here.
func NewGenerator(table, column string) *Generator {
	return &Generator{
		Table:  Sanitize(table),
		Column: Sanitize(column),
	}
}

// Sanitize is the single literal/identifier sanitizer. Every value or path
// fragment interpolated into query text passes through here - string
// interpolation is the one injection-risk surface, so the escaping is never
// duplicated elsewhere.
//
// Quotes are doubled (the SQL escape), semicolons and control characters
// are stripped.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "'", "''")
	s = strings.ReplaceAll(s, `"`, `""`)
	return strings.Map(func(r rune) rune {
		if r == ';' || r < 0x20 {
			return -1
		}
		return r
	}, s)
}

// FieldRef renders the reference for a field: the bare column path when the
// field has no array ancestors, or the deepest flatten alias's value with
// the relative suffix when it does.
func (g *Generator) FieldRef(fullPath string, hierarchy []string, aliases map[string]string, rootArray bool) string {
	alias, arrayPath := plan.DeepestAlias(hierarchy, aliases, rootArray)
	if alias == "" {
		return g.Column + ":" + Sanitize(fullPath)
	}

	suffix := fullPath
	switch {
	case arrayPath == "":
		// Root-array element: the full path is already relative.
	case fullPath == arrayPath:
		suffix = ""
	case strings.HasPrefix(fullPath, arrayPath+"."):
		suffix = fullPath[len(arrayPath)+1:]
	}

	if suffix == "" {
		return alias + ".value"
	}
	return alias + ".value:" + Sanitize(suffix)
}

// CastExpr applies the requested cast, or the cast inferred from the
// field's kind. Returns the expression and the effective Snowflake type
// used for compatibility checks and literal rendering.
func (g *Generator) CastExpr(ref, cast string, kind schema.Kind) (expr, typeName string) {
	if cast != "" {
		return fmt.Sprintf("CAST(%s AS %s)", ref, cast), cast
	}
	typeName = kind.SnowflakeType()
	return ref + "::" + typeName, typeName
}

// FlattenClause renders one LATERAL FLATTEN step. The input expression is
// the bare column for the synthetic root-array node, a column path for
// root-level arrays, and the parent alias's value for nested arrays.
func (g *Generator) FlattenClause(node plan.FlattenNode) string {
	var input string
	switch {
	case node.ArrayPath == "":
		input = g.Column
	case node.ParentAlias == "":
		input = g.Column + ":" + Sanitize(node.ArrayPath)
	default:
		input = node.ParentAlias + ".value:" + Sanitize(node.RelativePath)
	}
	return fmt.Sprintf("LATERAL FLATTEN(input => %s) %s", input, node.Alias)
}

// PredicateExpr renders one condition into a WHERE fragment. The
// operator/type compatibility table is consulted again here - defense in
// depth against a caller skipping parse-time validation.
func (g *Generator) PredicateExpr(cond condition.Condition, expr, ref, typeName string) (string, error) {
	if !condition.Compatible(cond.Operator, typeName) {
		return "", &IncompatibleError{Operator: cond.Operator, TypeName: typeName, Field: cond.Field}
	}

	// Pattern matches always compare text, whatever the inferred type.
	switch cond.Operator {
	case condition.OpLike, condition.OpNotLike, condition.OpILike:
		expr = fmt.Sprintf("CAST(%s AS VARCHAR)", ref)
	}

	switch cond.Operator {
	case condition.OpIsNull, condition.OpIsNotNull:
		return fmt.Sprintf("%s %s", expr, cond.Operator), nil

	case condition.OpBetween:
		lo, err := valueLiteral(cond.Values[0], typeName)
		if err != nil {
			return "", err
		}
		hi, err := valueLiteral(cond.Values[1], typeName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", expr, lo, hi), nil

	case condition.OpIn, condition.OpNotIn:
		list, err := listLiteral(cond.Values, typeName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", expr, cond.Operator, list), nil

	default:
		lit, err := valueLiteral(cond.Value, typeName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", expr, cond.Operator, lit), nil
	}
}

// Render assembles the final query text from a complete plan.
func (g *Generator) Render(p *plan.QueryPlan) string {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	for i, proj := range p.Projections {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s as %s", proj.Expr, proj.Alias)
	}

	fmt.Fprintf(&sb, "\nFROM %s", g.Table)
	for _, node := range p.FlattenChain {
		sb.WriteString(", ")
		sb.WriteString(g.FlattenClause(node))
	}

	if len(p.Predicates) > 0 {
		sb.WriteString("\nWHERE ")
		for i, pred := range p.Predicates {
			if i > 0 {
				fmt.Fprintf(&sb, " %s ", pred.Logic)
			}
			sb.WriteString(pred.Expr)
		}
	}

	sb.WriteString(";")
	return sb.String()
}

// IncompatibleError reports an operator applied to a type that does not
// whitelist it. Fatal to the one condition, never to the batch.
type IncompatibleError struct {
	Operator condition.Operator
	TypeName string
	Field    string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("operator %q is not valid for %s field %q", e.Operator, e.TypeName, e.Field)
}

// valueLiteral renders one literal for interpolation. Numeric types must
// parse as numbers and pass through bare; booleans lowercase; date types
// wrap in TO_TIMESTAMP; everything else is quoted after sanitizing.
func valueLiteral(value, typeName string) (string, error) {
	switch condition.CategoryOf(typeName) {
	case condition.CategoryNumeric:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return "", fmt.Errorf("invalid numeric value %q", value)
		}
		return value, nil
	case condition.CategoryBoolean:
		return strings.ToLower(Sanitize(value)), nil
	case condition.CategoryDate:
		return fmt.Sprintf("TO_TIMESTAMP('%s')", Sanitize(value)), nil
	default:
		return "'" + Sanitize(value) + "'", nil
	}
}

// listLiteral renders a parenthesized IN list.
func listLiteral(values []string, typeName string) (string, error) {
	parts := make([]string, len(values))
	for i, v := range values {
		lit, err := valueLiteral(v, typeName)
		if err != nil {
			return "", err
		}
		parts[i] = lit
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}
