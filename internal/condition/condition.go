package condition

import (
	"fmt"
	"strings"
)

// Logic joins a condition's predicate to the previous one.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition is one parsed field condition from the mini-language.
//
// Surface forms (stable, must be preserved):
//
//	field
//	field[operator:value]
//	field[CAST:TYPE]
//	field[operator:value:LOGIC]
//	field[CAST:TYPE, operator:value]
//
// Multiple fields are comma-separated; IN/NOT IN/BETWEEN values are
// pipe-separated inside the value slot.
type Condition struct {
	Field    string
	Operator Operator
	Value    string
	Values   []string // IN / NOT IN / BETWEEN
	Cast     string   // validated cast target, "" if none
	Logic    Logic
}

// HasPredicate reports whether the condition contributes a WHERE clause.
// The implicit EXISTS operator only asserts the field is present and
// projects it; it never filters.
func (c Condition) HasPredicate() bool {
	return c.Operator != OpExists
}

// ParseError reports malformed condition syntax. It is fatal to the one
// condition it names, never to the rest of the batch (unbalanced brackets
// excepted, since they make field boundaries unknowable).
type ParseError struct {
	Field   string // offending field token, "" when unattributable
	Message string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse condition %q: %s", e.Field, e.Message)
	}
	return "parse conditions: " + e.Message
}

// Parse tokenizes a field-condition string into Condition records.
//
// Errors are collected per condition; the returned slice holds every
// condition that parsed cleanly. Bracket depth is tracked so commas inside
// nested value lists never split fields.
func Parse(input string) ([]Condition, []error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	tokens, err := splitTop(input)
	if err != nil {
		return nil, []error{err}
	}

	var conds []Condition
	var errs []error
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		cond, err := parseOne(tok)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		conds = append(conds, cond)
	}
	return conds, errs
}

// splitTop splits the input on top-level commas, tracking bracket depth.
func splitTop(input string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	depth := 0

	for _, ch := range input {
		switch ch {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, &ParseError{Message: "unbalanced brackets: unexpected ']'"}
			}
		case ',':
			if depth == 0 {
				tokens = append(tokens, strings.TrimSpace(current.String()))
				current.Reset()
				continue
			}
		}
		current.WriteRune(ch)
	}
	if depth != 0 {
		return nil, &ParseError{Message: "unbalanced brackets: missing ']'"}
	}
	tokens = append(tokens, strings.TrimSpace(current.String()))
	return tokens, nil
}

// parseOne parses a single `field` or `field[body]` token.
func parseOne(token string) (Condition, error) {
	cond := Condition{
		Field:    token,
		Operator: OpExists,
		Logic:    LogicAnd,
	}

	open := strings.IndexByte(token, '[')
	if open < 0 {
		if strings.ContainsAny(token, "]") {
			return cond, &ParseError{Field: token, Message: "unexpected ']'"}
		}
		return cond, nil
	}
	if !strings.HasSuffix(token, "]") {
		return cond, &ParseError{Field: token, Message: "condition body must end with ']'"}
	}

	cond.Field = strings.TrimSpace(token[:open])
	if cond.Field == "" {
		return cond, &ParseError{Field: token, Message: "missing field name before '['"}
	}

	body := token[open+1 : len(token)-1]
	for _, sub := range splitBody(body) {
		if sub == "" {
			continue
		}
		if err := applySub(&cond, sub); err != nil {
			return cond, err
		}
	}
	return cond, nil
}

// splitBody splits a bracket body on commas at nesting depth zero. Both
// parens and brackets count toward depth so list values survive intact.
func splitBody(body string) []string {
	var subs []string
	var current strings.Builder
	depth := 0

	for _, ch := range body {
		switch ch {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				subs = append(subs, strings.TrimSpace(current.String()))
				current.Reset()
				continue
			}
		}
		current.WriteRune(ch)
	}
	subs = append(subs, strings.TrimSpace(current.String()))
	return subs
}

// applySub folds one `CAST:type`, `operator:value`, or `operator:value:logic`
// subcondition into the condition.
func applySub(cond *Condition, sub string) error {
	parts := strings.Split(sub, ":")
	head := strings.ToUpper(strings.TrimSpace(parts[0]))

	if len(parts) == 1 {
		// Only the null checks are valid without a value slot.
		op, ok := lookupOperator(head)
		if ok && op.IsNullCheck() {
			cond.Operator = op
			return nil
		}
		return &ParseError{Field: cond.Field, Message: fmt.Sprintf("expected operator:value, got %q", sub)}
	}

	if head == "CAST" {
		target := strings.ToUpper(strings.TrimSpace(parts[1]))
		if !ValidCastType(target) {
			return &ParseError{Field: cond.Field, Message: fmt.Sprintf("invalid cast type %q", target)}
		}
		cond.Cast = target
		return nil
	}

	op, ok := lookupOperator(head)
	if !ok {
		return &ParseError{Field: cond.Field, Message: fmt.Sprintf("unknown operator %q", parts[0])}
	}
	cond.Operator = op

	// A trailing AND/OR part is the logic connector; everything between the
	// operator and it is the value, colons included (timestamps carry them).
	valueParts := parts[1:]
	if len(valueParts) > 1 {
		last := strings.ToUpper(strings.TrimSpace(valueParts[len(valueParts)-1]))
		if last == string(LogicAnd) || last == string(LogicOr) {
			cond.Logic = Logic(last)
			valueParts = valueParts[:len(valueParts)-1]
		}
	}
	value := strings.TrimSpace(strings.Join(valueParts, ":"))

	switch op {
	case OpIn, OpNotIn:
		cond.Values = splitValues(value)
		if len(cond.Values) == 0 {
			return &ParseError{Field: cond.Field, Message: fmt.Sprintf("%s requires at least one value", op)}
		}
	case OpBetween:
		cond.Values = splitValues(value)
		if len(cond.Values) != 2 {
			return &ParseError{
				Field:   cond.Field,
				Message: fmt.Sprintf("BETWEEN requires exactly 2 values, got %d", len(cond.Values)),
			}
		}
	case OpIsNull, OpIsNotNull:
		// Value slot is ignored for the null checks.
	default:
		cond.Value = value
	}
	return nil
}

// splitValues splits a pipe-delimited value list, dropping empty entries.
func splitValues(value string) []string {
	var out []string
	for _, v := range strings.Split(value, "|") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
