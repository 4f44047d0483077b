package expr

import (
	"github.com/quarryql/quarry/internal/schema"
)

// argsTypeName is the synthetic context type for ambient bound arguments,
// reachable in expressions through the reserved `args` identifier.
const argsTypeName = "__Arguments"

// Env binds the expression compiler to a schema snapshot and a method
// provider. Compilation is pure; the resulting producers may be evaluated
// repeatedly and concurrently.
type Env struct {
	Schema  *schema.Schema
	Methods MethodProvider
}

// Context is the static compilation context: the type expressions are
// checked against plus the ambient argument signature, if any.
type Context struct {
	Type *schema.TypeRef
	Args []*schema.Argument
}

// Scope carries the runtime values a producer is evaluated against.
type Scope struct {
	// Value is the current context value.
	Value any
	// Args holds the bound argument values for the enclosing field.
	Args map[string]any
	// Vars holds the request variables.
	Vars map[string]any
}

// Compiled is an executable, type-carrying value producer.
type Compiled struct {
	Type *schema.TypeRef
	eval func(Scope) (any, error)
}

// Eval produces the value for the given scope.
func (c *Compiled) Eval(s Scope) (any, error) { return c.eval(s) }

// Literal builds a producer for a constant of the given type.
func Literal(v any, t *schema.TypeRef) *Compiled {
	return &Compiled{Type: t, eval: func(Scope) (any, error) { return v, nil }}
}

// Variable builds a producer reading a request variable.
func Variable(name string, t *schema.TypeRef) *Compiled {
	return &Compiled{Type: t, eval: func(s Scope) (any, error) {
		return s.Vars[name], nil
	}}
}

// List builds a producer combining element producers into a sequence.
func List(items []*Compiled, t *schema.TypeRef) *Compiled {
	return &Compiled{Type: t, eval: func(s Scope) (any, error) {
		out := make([]any, len(items))
		for i, item := range items {
			v, err := item.eval(s)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}}
}

// Object builds a producer combining named producers into a record.
func Object(fields map[string]*Compiled, t *schema.TypeRef) *Compiled {
	return &Compiled{Type: t, eval: func(s Scope) (any, error) {
		out := make(map[string]any, len(fields))
		for name, field := range fields {
			v, err := field.eval(s)
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
		return out, nil
	}}
}

// Compile parses source and compiles it against ctx. Every identifier must
// resolve to a member the schema declares on the context type or to an
// ambient argument; failures surface as *Error.
func (e *Env) Compile(source string, ctx Context) (*Compiled, error) {
	node, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return e.compileNode(node, ctx)
}

func (e *Env) methods() MethodProvider {
	if e.Methods != nil {
		return e.Methods
	}
	return DefaultMethods{}
}

func (e *Env) compileNode(node Node, ctx Context) (*Compiled, error) {
	switch n := node.(type) {
	case *LiteralNode:
		return compileLiteral(n), nil
	case *IdentNode:
		return e.compileIdent(n, ctx)
	case *MemberNode:
		return e.compileMember(n, ctx)
	case *UnaryNode:
		return e.compileUnary(n, ctx)
	case *BinaryNode:
		return e.compileBinary(n, ctx)
	case *ConditionalNode:
		return e.compileConditional(n, ctx)
	case *CallNode:
		return e.compileCall(n, ctx)
	default:
		return nil, &Error{Message: "unsupported expression node", Pos: node.Pos()}
	}
}

func compileLiteral(n *LiteralNode) *Compiled {
	switch n.Kind {
	case LitInt:
		return Literal(n.IntVal, schema.NonNullType(schema.NamedType(schema.ScalarInt)))
	case LitFloat:
		return Literal(n.FloatVal, schema.NonNullType(schema.NamedType(schema.ScalarFloat)))
	case LitBool:
		return Literal(n.BoolVal, schema.NonNullType(schema.NamedType(schema.ScalarBoolean)))
	default:
		return Literal(n.StrVal, schema.NonNullType(schema.NamedType(schema.ScalarString)))
	}
}

func (e *Env) compileIdent(n *IdentNode, ctx Context) (*Compiled, error) {
	if n.Name == "args" && len(ctx.Args) > 0 {
		return &Compiled{
			Type: schema.NamedType(argsTypeName),
			eval: func(s Scope) (any, error) { return s.Args, nil },
		}, nil
	}
	contextName := ctx.Type.GetNamedType()
	if !ctx.Type.IsList() {
		if f, ok := e.Schema.ResolveField(contextName, n.Name); ok {
			return memberProducer(f.Type, n.Name), nil
		}
	}
	if arg := findArg(ctx.Args, n.Name); arg != nil {
		return argProducer(arg), nil
	}
	return nil, errUnknownMember(n.At, n.Name, ctx.Type.String())
}

func (e *Env) compileMember(n *MemberNode, ctx Context) (*Compiled, error) {
	recv, err := e.compileNode(n.Recv, ctx)
	if err != nil {
		return nil, err
	}
	if recv.Type.GetNamedType() == argsTypeName {
		arg := findArg(ctx.Args, n.Name)
		if arg == nil {
			return nil, errUnknownMember(n.At, n.Name, "arguments")
		}
		return argProducer(arg), nil
	}
	if recv.Type.IsList() {
		return nil, errUnknownMember(n.At, n.Name, recv.Type.String())
	}
	f, ok := e.Schema.ResolveField(recv.Type.GetNamedType(), n.Name)
	if !ok {
		return nil, errUnknownMember(n.At, n.Name, recv.Type.String())
	}
	fieldType := f.Type
	return &Compiled{Type: fieldType, eval: func(s Scope) (any, error) {
		v, err := recv.eval(s)
		if err != nil || v == nil {
			return nil, err
		}
		return Member(v, n.Name), nil
	}}, nil
}

func memberProducer(t *schema.TypeRef, name string) *Compiled {
	return &Compiled{Type: t, eval: func(s Scope) (any, error) {
		if s.Value == nil {
			return nil, nil
		}
		return Member(s.Value, name), nil
	}}
}

func argProducer(arg *schema.Argument) *Compiled {
	name, def := arg.Name, arg.Default
	return &Compiled{Type: arg.Type, eval: func(s Scope) (any, error) {
		if v, ok := s.Args[name]; ok && v != nil {
			return v, nil
		}
		return def, nil
	}}
}

func findArg(args []*schema.Argument, name string) *schema.Argument {
	for _, a := range args {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func (e *Env) compileUnary(n *UnaryNode, ctx Context) (*Compiled, error) {
	x, err := e.compileNode(n.X, ctx)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "not", "!":
		if !isBooleanType(x.Type) {
			return nil, errTypeMismatch(n.At, n.Op, x.Type.String(), "")
		}
		return &Compiled{Type: x.Type, eval: func(s Scope) (any, error) {
			v, err := x.eval(s)
			if err != nil || v == nil {
				return nil, err
			}
			b, ok := v.(bool)
			if !ok {
				return nil, nil
			}
			return !b, nil
		}}, nil
	default: // unary minus
		if !isNumericType(x.Type) {
			return nil, errTypeMismatch(n.At, n.Op, x.Type.String(), "")
		}
		return &Compiled{Type: x.Type, eval: func(s Scope) (any, error) {
			v, err := x.eval(s)
			if err != nil || v == nil {
				return nil, err
			}
			if f, ok := asFloat(v); ok && isFloatValue(v) {
				return -f, nil
			}
			i, _ := asInt(v)
			return -i, nil
		}}, nil
	}
}

func (e *Env) compileConditional(n *ConditionalNode, ctx Context) (*Compiled, error) {
	cond, err := e.compileNode(n.Cond, ctx)
	if err != nil {
		return nil, err
	}
	if !isBooleanType(cond.Type) {
		return nil, errNonBooleanCondition(n.At, renderNode(n.Cond))
	}
	thenC, err := e.compileNode(n.Then, ctx)
	if err != nil {
		return nil, err
	}
	elseC, err := e.compileNode(n.Else, ctx)
	if err != nil {
		return nil, err
	}
	common, ok := reconcile(thenC.Type, elseC.Type)
	if !ok {
		return nil, errTypeMismatch(n.At, "?:", thenC.Type.String(), elseC.Type.String())
	}
	return &Compiled{Type: common, eval: func(s Scope) (any, error) {
		c, err := cond.eval(s)
		if err != nil {
			return nil, err
		}
		if b, ok := c.(bool); ok && b {
			return thenC.eval(s)
		}
		return elseC.eval(s)
	}}, nil
}

func (e *Env) compileCall(n *CallNode, ctx Context) (*Compiled, error) {
	var recv *Compiled
	if n.Recv == nil {
		t := ctx.Type
		recv = &Compiled{Type: t, eval: func(s Scope) (any, error) { return s.Value, nil }}
	} else {
		var err error
		recv, err = e.compileNode(n.Recv, ctx)
		if err != nil {
			return nil, err
		}
	}

	provider := e.methods()
	if !provider.HasMethod(recv.Type, n.Name) {
		return nil, errUnknownMethod(n.At, n.Name, recv.Type.String())
	}

	// A method may rebind the context its arguments compile against, e.g. a
	// filter predicate compiles against the element type of the receiver
	// sequence. The outer context resumes after the call.
	argCtx := Context{Type: provider.ArgumentContext(recv.Type, n.Name), Args: ctx.Args}
	args := make([]*Compiled, len(n.Args))
	for i, a := range n.Args {
		c, err := e.compileNode(a, argCtx)
		if err != nil {
			return nil, err
		}
		args[i] = c
	}
	return provider.BuildCall(recv, n.Name, args, n.At)
}
