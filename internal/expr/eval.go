package expr

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/quarryql/quarry/internal/schema"
)

func (e *Env) compileBinary(n *BinaryNode, ctx Context) (*Compiled, error) {
	l, err := e.compileNode(n.L, ctx)
	if err != nil {
		return nil, err
	}
	r, err := e.compileNode(n.R, ctx)
	if err != nil {
		return nil, err
	}

	common, compatible := reconcile(l.Type, r.Type)

	switch n.Op {
	case "and", "or":
		if !isBooleanType(l.Type) || !isBooleanType(r.Type) {
			return nil, errTypeMismatch(n.At, n.Op, l.Type.String(), r.Type.String())
		}
		isAnd := n.Op == "and"
		return &Compiled{Type: withNullability(schema.ScalarBoolean, l.Type, r.Type), eval: func(s Scope) (any, error) {
			lv, err := l.eval(s)
			if err != nil {
				return nil, err
			}
			lb, lok := lv.(bool)
			// Short circuit on a decided left operand.
			if lok && lb != isAnd {
				return lb, nil
			}
			rv, err := r.eval(s)
			if err != nil {
				return nil, err
			}
			rb, rok := rv.(bool)
			if !lok || !rok {
				return nil, nil
			}
			if isAnd {
				return lb && rb, nil
			}
			return lb || rb, nil
		}}, nil

	case "=":
		if !compatible {
			return nil, errTypeMismatch(n.At, n.Op, l.Type.String(), r.Type.String())
		}
		return &Compiled{Type: withNullability(schema.ScalarBoolean, l.Type, r.Type), eval: func(s Scope) (any, error) {
			lv, err := l.eval(s)
			if err != nil {
				return nil, err
			}
			rv, err := r.eval(s)
			if err != nil {
				return nil, err
			}
			if lv == nil || rv == nil {
				return lv == nil && rv == nil, nil
			}
			return valuesEqual(lv, rv), nil
		}}, nil

	case "<", "<=", ">", ">=":
		if !compatible || (!isNumericType(common) && !isStringType(common)) {
			return nil, errTypeMismatch(n.At, n.Op, l.Type.String(), r.Type.String())
		}
		op := n.Op
		str := isStringType(common)
		return &Compiled{Type: withNullability(schema.ScalarBoolean, l.Type, r.Type), eval: func(s Scope) (any, error) {
			lv, rv, err := evalPair(l, r, s)
			if err != nil || lv == nil || rv == nil {
				return nil, err
			}
			var c int
			if str {
				c = strings.Compare(toString(lv), toString(rv))
			} else {
				lf, _ := asFloat(lv)
				rf, _ := asFloat(rv)
				switch {
				case lf < rf:
					c = -1
				case lf > rf:
					c = 1
				}
			}
			switch op {
			case "<":
				return c < 0, nil
			case "<=":
				return c <= 0, nil
			case ">":
				return c > 0, nil
			default:
				return c >= 0, nil
			}
		}}, nil

	case "+":
		if compatible && isStringType(common) {
			return &Compiled{Type: common, eval: func(s Scope) (any, error) {
				lv, rv, err := evalPair(l, r, s)
				if err != nil || lv == nil || rv == nil {
					return nil, err
				}
				return toString(lv) + toString(rv), nil
			}}, nil
		}
		fallthrough

	case "-", "*", "/", "%", "^":
		if !compatible || !isNumericType(common) {
			return nil, errTypeMismatch(n.At, n.Op, l.Type.String(), r.Type.String())
		}
		if n.Op == "%" && common.GetNamedType() == schema.ScalarFloat {
			return nil, errTypeMismatch(n.At, n.Op, l.Type.String(), r.Type.String())
		}
		op := n.Op
		float := common.GetNamedType() == schema.ScalarFloat
		return &Compiled{Type: common, eval: func(s Scope) (any, error) {
			lv, rv, err := evalPair(l, r, s)
			if err != nil || lv == nil || rv == nil {
				return nil, err
			}
			if float {
				lf, _ := asFloat(lv)
				rf, _ := asFloat(rv)
				return applyFloatOp(op, lf, rf)
			}
			li, _ := asInt(lv)
			ri, _ := asInt(rv)
			return applyIntOp(op, li, ri)
		}}, nil

	default:
		return nil, errTypeMismatch(n.At, n.Op, l.Type.String(), r.Type.String())
	}
}

func evalPair(l, r *Compiled, s Scope) (any, any, error) {
	lv, err := l.eval(s)
	if err != nil {
		return nil, nil, err
	}
	rv, err := r.eval(s)
	if err != nil {
		return nil, nil, err
	}
	return lv, rv, nil
}

func applyIntOp(op string, a, b int64) (any, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return a % b, nil
	default: // ^
		if b < 0 {
			return nil, nil
		}
		result := int64(1)
		for i := int64(0); i < b; i++ {
			result *= a
		}
		return result, nil
	}
}

func applyFloatOp(op string, a, b float64) (any, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return a / b, nil
	default: // ^
		return math.Pow(a, b), nil
	}
}

func valuesEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return as == bs
		}
	}
	return reflect.DeepEqual(a, b)
}

// Member reads the named member off a context value. Record maps are the
// common case; exported struct fields are supported through reflection.
// A missing member reads as null.
func Member(v any, name string) any {
	if m, ok := v.(map[string]any); ok {
		return m[name]
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		mv := rv.MapIndex(reflect.ValueOf(name))
		if !mv.IsValid() {
			return nil
		}
		return mv.Interface()
	case reflect.Struct:
		fv := rv.FieldByName(strings.ToUpper(name[:1]) + name[1:])
		if !fv.IsValid() {
			fv = rv.FieldByNameFunc(func(f string) bool { return strings.EqualFold(f, name) })
		}
		if !fv.IsValid() || !fv.CanInterface() {
			return nil
		}
		return fv.Interface()
	}
	return nil
}

func asInt(v any) (int64, bool) {
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
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func isFloatValue(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
