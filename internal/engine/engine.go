// Package engine compiles queries against a schema and executes the
// resulting projection plans over in-memory context values.
//
// Compilation takes a snapshot of the schema, so plans are immutable and
// unaffected by later schema mutation. Execution is synchronous and free of
// side effects on the plan and the root context; a plan may be executed
// repeatedly and concurrently against different roots.
package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/quarryql/quarry/internal/compiler"
	"github.com/quarryql/quarry/internal/expr"
	"github.com/quarryql/quarry/internal/language"
	"github.com/quarryql/quarry/internal/schema"
)

// Engine owns the live schema and compiles queries against snapshots of it.
type Engine struct {
	schema  *schema.Schema
	methods expr.MethodProvider
}

// Option configures an Engine.
type Option func(*Engine)

// WithMethods sets the expression method provider.
func WithMethods(p expr.MethodProvider) Option {
	return func(e *Engine) { e.methods = p }
}

// New creates an engine over the given schema.
func New(s *schema.Schema, opts ...Option) *Engine {
	e := &Engine{schema: s, methods: expr.DefaultMethods{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the live schema for setup-phase mutation.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// Compile parses and compiles a query into a reusable plan. Syntax errors
// abort before any schema validation; the schema is cloned at compile start
// so later mutation never reaches the plan.
func (e *Engine) Compile(query, operationName string) (*Plan, error) {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	op, err := compiler.Compile(e.schema.Clone(), e.methods, doc, operationName)
	if err != nil {
		return nil, err
	}
	return &Plan{op: op}, nil
}

// Execute compiles and runs a query in one call. Compile errors come back
// as the result's error list with null data.
func (e *Engine) Execute(ctx context.Context, query, operationName string, vars map[string]any, root any) *Result {
	plan, err := e.Compile(query, operationName)
	if err != nil {
		return &Result{Errors: []QueryError{{Message: err.Error()}}}
	}
	return plan.Execute(ctx, root, vars)
}

// Plan is a compiled projection plan.
type Plan struct {
	op *compiler.Operation
}

// Operation exposes the compiled operation, mainly for inspection in tests
// and tooling.
func (p *Plan) Operation() *compiler.Operation { return p.op }

// Execute runs the plan against a root context value, producing a record
// keyed by display name per top-level selection.
func (p *Plan) Execute(ctx context.Context, root any, vars map[string]any) *Result {
	if vars == nil {
		vars = map[string]any{}
	}
	st := &executionState{ctx: ctx, vars: vars}
	data := st.executeSelections(p.op.Selections, root, Path{})
	return &Result{Data: data, Errors: st.errors}
}

type executionState struct {
	ctx    context.Context
	vars   map[string]any
	errors []QueryError
}

func (st *executionState) addError(message string, path Path) {
	st.errors = append(st.errors, QueryError{Message: message, Path: path})
}

// executeSelections projects one level: exactly the requested fields, in
// request order.
func (st *executionState) executeSelections(sels []*compiler.Selection, value any, path Path) *Record {
	rec := NewRecord()
	for _, sel := range sels {
		fieldPath := appendPath(path, sel.DisplayName)
		rec.Set(sel.DisplayName, st.executeField(sel, value, fieldPath))
	}
	return rec
}

func (st *executionState) executeField(sel *compiler.Selection, source any, path Path) any {
	if sel.Meta {
		return sel.TypeName
	}

	args := st.evalArguments(sel, source, path)
	raw := st.resolve(sel, source, args, path)
	return st.complete(sel, raw, path)
}

// evalArguments produces the bound argument values for one selection.
func (st *executionState) evalArguments(sel *compiler.Selection, source any, path Path) map[string]any {
	if len(sel.Args) == 0 {
		return nil
	}
	out := make(map[string]any, len(sel.Args))
	for _, arg := range sel.Args {
		v, err := arg.Value.Eval(expr.Scope{Value: source, Vars: st.vars})
		if err != nil {
			st.addError(fmt.Sprintf("argument '%s': %s", arg.Name, err), path)
			continue
		}
		out[arg.Name] = v
	}
	return out
}

// resolve applies the field's resolution rule to the source value. A null
// source resolves to null rather than failing.
func (st *executionState) resolve(sel *compiler.Selection, source any, args map[string]any, path Path) any {
	if sel.Producer != nil {
		v, err := sel.Producer.Eval(expr.Scope{Value: source, Args: args, Vars: st.vars})
		if err != nil {
			st.addError(err.Error(), path)
			return nil
		}
		return v
	}
	if source == nil {
		return nil
	}
	member := sel.Field.Resolver.Member
	if member == "" {
		member = sel.Field.Name
	}
	return expr.Member(source, member)
}

// complete shapes a resolved value per the field's declared type: recurse
// into relations, iterate collections preserving cardinality and order, and
// serialize leaves. Data-level faults complete to null with a located
// error, never a panic.
func (st *executionState) complete(sel *compiler.Selection, raw any, path Path) any {
	if raw == nil {
		return nil
	}

	if sel.IsList() {
		items, ok := sequence(raw)
		if !ok {
			st.addError(fmt.Sprintf("Expected list value for field '%s', got %T", sel.FieldName, raw), path)
			return nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			itemPath := appendPath(path, i)
			if item == nil {
				out[i] = nil
				continue
			}
			if len(sel.Children) > 0 {
				out[i] = st.executeSelections(sel.Children, item, itemPath)
			} else {
				out[i] = st.leaf(sel, item, itemPath)
			}
		}
		return out
	}

	if len(sel.Children) > 0 {
		return st.executeSelections(sel.Children, raw, path)
	}
	return st.leaf(sel, raw, path)
}

// leaf serializes a scalar or enum value to a JSON-safe representation.
func (st *executionState) leaf(sel *compiler.Selection, v any, path Path) any {
	switch sel.Field.Type.GetNamedType() {
	case schema.ScalarInt, schema.ScalarUInt:
		if n, ok := intValue(v); ok {
			return n
		}
	case schema.ScalarFloat:
		if f, ok := floatValue(v); ok {
			return f
		}
	case schema.ScalarBoolean:
		if b, ok := v.(bool); ok {
			return b
		}
	case schema.ScalarString, schema.ScalarID:
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	default:
		// Enums and custom scalars pass through; enum values are their
		// symbolic names.
		return v
	}
	st.addError(fmt.Sprintf("Cannot serialize value %v (%T) for field '%s'", v, v, sel.FieldName), path)
	return nil
}

// sequence normalizes a value to []any.
func sequence(v any) ([]any, bool) {
	if direct, ok := v.([]any); ok {
		return direct, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
