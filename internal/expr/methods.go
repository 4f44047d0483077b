package expr

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/quarryql/quarry/internal/schema"
)

// MethodProvider decides which methods a context type supports and builds
// their call producers. ArgumentContext lets a method rebind the context its
// argument expressions compile against, e.g. a sequence predicate compiles
// against the element type.
type MethodProvider interface {
	HasMethod(ctx *schema.TypeRef, name string) bool
	ArgumentContext(ctx *schema.TypeRef, name string) *schema.TypeRef
	BuildCall(recv *Compiled, name string, args []*Compiled, pos int) (*Compiled, error)
}

// DefaultMethods provides sequence methods (filter, any, first, count) on
// list-typed values and a few string helpers.
type DefaultMethods struct{}

var sequenceMethods = map[string]bool{"filter": true, "any": true, "first": true, "count": true}
var stringMethods = map[string]bool{"contains": true, "startsWith": true, "lower": true, "upper": true}

func (DefaultMethods) HasMethod(ctx *schema.TypeRef, name string) bool {
	if ctx.IsList() {
		return sequenceMethods[name]
	}
	if isStringType(ctx) {
		return stringMethods[name]
	}
	return false
}

func (DefaultMethods) ArgumentContext(ctx *schema.TypeRef, name string) *schema.TypeRef {
	if ctx.IsList() && (name == "filter" || name == "any") {
		return ctx.Elem()
	}
	return ctx
}

func (DefaultMethods) BuildCall(recv *Compiled, name string, args []*Compiled, pos int) (*Compiled, error) {
	if recv.Type.IsList() {
		return buildSequenceCall(recv, name, args, pos)
	}
	return buildStringCall(recv, name, args, pos)
}

func arity(pos int, name string, args []*Compiled, want int) error {
	if len(args) != want {
		return &Error{Message: fmt.Sprintf("Method '%s' expects %d argument(s), got %d", name, want, len(args)), Pos: pos}
	}
	return nil
}

func buildSequenceCall(recv *Compiled, name string, args []*Compiled, pos int) (*Compiled, error) {
	elemType := recv.Type.Elem()

	switch name {
	case "filter":
		if err := arity(pos, name, args, 1); err != nil {
			return nil, err
		}
		pred := args[0]
		if !isBooleanType(pred.Type) {
			return nil, errNonBooleanCondition(pos, "filter predicate")
		}
		return &Compiled{Type: schema.Nullable(recv.Type), eval: func(s Scope) (any, error) {
			items, err := evalSequence(recv, s)
			if err != nil || items == nil {
				return nil, err
			}
			out := make([]any, 0, len(items))
			for _, item := range items {
				keep, err := pred.Eval(Scope{Value: item, Args: s.Args, Vars: s.Vars})
				if err != nil {
					return nil, err
				}
				if b, ok := keep.(bool); ok && b {
					out = append(out, item)
				}
			}
			return out, nil
		}}, nil

	case "any":
		if err := arity(pos, name, args, 1); err != nil {
			return nil, err
		}
		pred := args[0]
		if !isBooleanType(pred.Type) {
			return nil, errNonBooleanCondition(pos, "any predicate")
		}
		return &Compiled{Type: schema.NonNullType(schema.NamedType(schema.ScalarBoolean)), eval: func(s Scope) (any, error) {
			items, err := evalSequence(recv, s)
			if err != nil {
				return nil, err
			}
			for _, item := range items {
				v, err := pred.Eval(Scope{Value: item, Args: s.Args, Vars: s.Vars})
				if err != nil {
					return nil, err
				}
				if b, ok := v.(bool); ok && b {
					return true, nil
				}
			}
			return false, nil
		}}, nil

	case "first":
		if err := arity(pos, name, args, 0); err != nil {
			return nil, err
		}
		return &Compiled{Type: schema.Nullable(elemType), eval: func(s Scope) (any, error) {
			items, err := evalSequence(recv, s)
			if err != nil || len(items) == 0 {
				return nil, err
			}
			return items[0], nil
		}}, nil

	case "count":
		if err := arity(pos, name, args, 0); err != nil {
			return nil, err
		}
		return &Compiled{Type: schema.NonNullType(schema.NamedType(schema.ScalarInt)), eval: func(s Scope) (any, error) {
			items, err := evalSequence(recv, s)
			if err != nil {
				return nil, err
			}
			return int64(len(items)), nil
		}}, nil
	}
	return nil, errUnknownMethod(pos, name, recv.Type.String())
}

func buildStringCall(recv *Compiled, name string, args []*Compiled, pos int) (*Compiled, error) {
	switch name {
	case "contains", "startsWith":
		if err := arity(pos, name, args, 1); err != nil {
			return nil, err
		}
		if !isStringType(args[0].Type) {
			return nil, errTypeMismatch(pos, name, recv.Type.String(), args[0].Type.String())
		}
		arg := args[0]
		prefix := name == "startsWith"
		return &Compiled{Type: withNullability(schema.ScalarBoolean, recv.Type, arg.Type), eval: func(s Scope) (any, error) {
			rv, err := recv.Eval(s)
			if err != nil || rv == nil {
				return nil, err
			}
			av, err := arg.Eval(s)
			if err != nil || av == nil {
				return nil, err
			}
			if prefix {
				return strings.HasPrefix(toString(rv), toString(av)), nil
			}
			return strings.Contains(toString(rv), toString(av)), nil
		}}, nil

	case "lower", "upper":
		if err := arity(pos, name, args, 0); err != nil {
			return nil, err
		}
		up := name == "upper"
		return &Compiled{Type: recv.Type, eval: func(s Scope) (any, error) {
			rv, err := recv.Eval(s)
			if err != nil || rv == nil {
				return nil, err
			}
			if up {
				return strings.ToUpper(toString(rv)), nil
			}
			return strings.ToLower(toString(rv)), nil
		}}, nil
	}
	return nil, errUnknownMethod(pos, name, recv.Type.String())
}

// evalSequence evaluates the receiver and normalizes it to []any. A null
// receiver yields nil without error.
func evalSequence(recv *Compiled, s Scope) ([]any, error) {
	v, err := recv.Eval(s)
	if err != nil || v == nil {
		return nil, err
	}
	if direct, ok := v.([]any); ok {
		return direct, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected sequence value, got %T", v)
	}
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}
