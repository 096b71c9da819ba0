// Package engine orchestrates one generation call as a small state machine:
//
//	ParseConditions → ResolveFields → PlanFlattens → EmitProjections →
//	EmitFlattenChain → EmitPredicates → Done
//
// Any state may transition to Failed, which is terminal and yields a
// diagnostic comment text rather than a Go error, so batch callers can keep
// going. Field-scoped problems are collected as warnings alongside the
// successfully generated output - partial success beats all-or-nothing.
package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/snowq-dev/snowq/internal/condition"
	"github.com/snowq-dev/snowq/internal/plan"
	"github.com/snowq-dev/snowq/internal/querysql"
	"github.com/snowq-dev/snowq/internal/resolve"
	"github.com/snowq-dev/snowq/internal/schema"
)

// State names one stage of the generation state machine.
type State string

const (
	StateParseConditions  State = "parse_conditions"
	StateResolveFields    State = "resolve_fields"
	StatePlanFlattens     State = "plan_flattens"
	StateEmitProjections  State = "emit_projections"
	StateEmitFlattenChain State = "emit_flatten_chain"
	StateEmitPredicates   State = "emit_predicates"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Request carries the inputs for one generation call. Table and Column are
// opaque identifiers - existence checking belongs to the data-access layer.
type Request struct {
	Table      string
	Column     string
	Conditions string
	Schema     *schema.PathSchema
}

// Result is the outcome of one generation call. On failure SQL holds a
// diagnostic comment ("-- Error ...") and Failure names the cause; on
// success it holds the query text and Warnings carries every field-scoped
// problem encountered along the way.
type Result struct {
	SQL      string          `json:"sql"`
	Plan     *plan.QueryPlan `json:"plan,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	TraceID  string          `json:"trace_id"`
	State    State           `json:"state"`
	Failure  *GenerateError  `json:"failure,omitempty"`
}

// binding pairs a parsed condition with its resolved occurrences.
type binding struct {
	cond   condition.Condition
	fields []resolve.ResolvedField
}

// Generate runs the full pipeline for one request. It is a pure function of
// its inputs: no shared state, safe to call from any number of goroutines.
func Generate(req Request) *Result {
	res := &Result{TraceID: newTraceID()}

	if req.Table == "" || req.Column == "" {
		return fail(res, NewNoInputError("table name and column are required"))
	}
	if req.Schema == nil || len(req.Schema.Paths) == 0 {
		return fail(res, NewNoInputError("no document schema supplied"))
	}

	// ParseConditions
	res.State = StateParseConditions
	conds, parseErrs := condition.Parse(req.Conditions)
	for _, err := range parseErrs {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", ErrCodeParse, err))
	}
	if len(conds) == 0 {
		if len(parseErrs) > 0 {
			return fail(res, &GenerateError{Code: ErrCodeParse, Message: "no condition parsed cleanly"})
		}
		return fail(res, NewNoInputError("no field conditions provided; specify fields to query"))
	}

	// ResolveFields
	res.State = StateResolveFields
	var bindings []binding
	var arrayPaths []string
	for _, cond := range conds {
		fields := resolve.Field(cond.Field, req.Schema)
		if len(fields) == 0 {
			res.Warnings = append(res.Warnings, NewFieldNotFoundError(cond.Field).Error())
			continue
		}
		if len(fields) > 1 {
			res.Warnings = append(res.Warnings, expansionNote(cond.Field, fields))
		} else if note := fields[0].Note; note != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("field %q: %s", cond.Field, note))
		}
		bindings = append(bindings, binding{cond: cond, fields: fields})
		for _, f := range fields {
			arrayPaths = append(arrayPaths, f.Info.ArrayHierarchy...)
		}
	}
	if len(bindings) == 0 {
		return fail(res, NewNoQueryableFieldsError())
	}

	// PlanFlattens
	res.State = StatePlanFlattens
	chain, aliases, err := plan.BuildFlattenChain(arrayPaths, req.Schema.RootArray)
	if err != nil {
		return fail(res, &GenerateError{Code: ErrCodeNoInput, Message: err.Error()})
	}

	gen := querysql.NewGenerator(req.Table, req.Column)
	qp := &plan.QueryPlan{FlattenChain: chain}

	// EmitProjections
	res.State = StateEmitProjections
	type emitted struct {
		cond     condition.Condition
		expr     string
		ref      string
		typeName string
	}
	var preds []emitted
	for _, b := range bindings {
		for _, f := range b.fields {
			ref := gen.FieldRef(f.FullPath, f.Info.ArrayHierarchy, aliases, req.Schema.RootArray)
			expr, typeName := gen.CastExpr(ref, b.cond.Cast, f.Info.Kind)
			qp.Projections = append(qp.Projections, plan.Projection{Expr: expr, Alias: f.Alias})
			if b.cond.HasPredicate() {
				preds = append(preds, emitted{cond: b.cond, expr: expr, ref: ref, typeName: typeName})
			}
		}
	}

	// EmitFlattenChain is implicit: the chain was planned above and renders
	// with the final query.
	res.State = StateEmitFlattenChain

	// EmitPredicates
	res.State = StateEmitPredicates
	for _, p := range preds {
		predExpr, err := gen.PredicateExpr(p.cond, p.expr, p.ref, p.typeName)
		if err != nil {
			// Condition-scoped: keep the projection, drop the filter.
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", ErrCodeOperatorIncompatible, err))
			continue
		}
		qp.Predicates = append(qp.Predicates, plan.Predicate{Expr: predExpr, Logic: p.cond.Logic})
	}

	res.Plan = qp
	res.SQL = gen.Render(qp)
	res.State = StateDone
	return res
}

// fail marks the result failed and fills the diagnostic comment text.
func fail(res *Result, err *GenerateError) *Result {
	res.State = StateFailed
	res.Failure = err
	res.SQL = fmt.Sprintf("-- Error: %s\n-- Please verify your inputs and try again;", err.Message)
	return res
}

// expansionNote builds the human-readable warning for a multi-level field.
func expansionNote(token string, fields []resolve.ResolvedField) string {
	aliasList := make([]string, len(fields))
	for i, f := range fields {
		aliasList[i] = fmt.Sprintf("%s as %s", f.FullPath, f.Alias)
	}
	return fmt.Sprintf("field %q expanded to %d columns: %s", token, len(fields), strings.Join(aliasList, ", "))
}

// newTraceID mints a sortable per-call identifier for log correlation.
func newTraceID() string {
	return uuid.Must(uuid.NewV7()).String()
}
