package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarryql/quarry/internal/schema"
)

func testSchema() *schema.Schema {
	s := schema.New("Query")
	person := schema.NewType("Person", schema.TypeKindObject).
		AddField(schema.NewField("id", schema.NonNullType(schema.NamedType(schema.ScalarInt)))).
		AddField(schema.NewField("name", schema.NonNullType(schema.NamedType(schema.ScalarString)))).
		AddField(schema.NewField("nickname", schema.NamedType(schema.ScalarString))).
		AddField(schema.NewField("age", schema.NamedType(schema.ScalarInt))).
		AddField(schema.NewField("score", schema.NamedType(schema.ScalarFloat))).
		AddField(schema.NewField("visits", schema.NonNullType(schema.NamedType(schema.ScalarUInt)))).
		AddField(schema.NewField("active", schema.NonNullType(schema.NamedType(schema.ScalarBoolean)))).
		AddField(schema.NewField("tasks", schema.ListType(schema.NonNullType(schema.NamedType("Task")))))
	task := schema.NewType("Task", schema.TypeKindObject).
		AddField(schema.NewField("id", schema.NonNullType(schema.NamedType(schema.ScalarInt)))).
		AddField(schema.NewField("name", schema.NonNullType(schema.NamedType(schema.ScalarString)))).
		AddField(schema.NewField("done", schema.NonNullType(schema.NamedType(schema.ScalarBoolean))))
	s.AddType(person)
	s.AddType(task)
	return s
}

func personCtx() Context {
	return Context{Type: schema.NonNullType(schema.NamedType("Person"))}
}

func samplePerson() map[string]any {
	return map[string]any{
		"id":     int64(1),
		"name":   "Ada",
		"age":    int64(41),
		"score":  2.5,
		"visits": int64(7),
		"active": true,
		"tasks": []any{
			map[string]any{"id": int64(10), "name": "write", "done": true},
			map[string]any{"id": int64(11), "name": "review", "done": false},
		},
	}
}

func compileAndEval(t *testing.T, source string, value any) any {
	t.Helper()
	env := &Env{Schema: testSchema()}
	c, err := env.Compile(source, personCtx())
	require.NoError(t, err, "compile %q", source)
	v, err := c.Eval(Scope{Value: value})
	require.NoError(t, err, "eval %q", source)
	return v
}

func compileErr(t *testing.T, source string, ctx Context) *Error {
	t.Helper()
	env := &Env{Schema: testSchema()}
	_, err := env.Compile(source, ctx)
	require.Error(t, err, "compile %q", source)
	var ee *Error
	require.ErrorAs(t, err, &ee)
	return ee
}

func TestCompileMemberAccess(t *testing.T) {
	require.Equal(t, "Ada", compileAndEval(t, "name", samplePerson()))
	require.Equal(t, int64(41), compileAndEval(t, "age", samplePerson()))
}

func TestCompileMemberType(t *testing.T) {
	env := &Env{Schema: testSchema()}
	c, err := env.Compile("name", personCtx())
	require.NoError(t, err)
	require.Equal(t, "String!", c.Type.String())
}

func TestCompileUnknownMember(t *testing.T) {
	e := compileErr(t, "salary", personCtx())
	require.Equal(t, "Unknown member 'salary' on type 'Person!'", e.Message)
}

func TestCompileUnknownMemberNested(t *testing.T) {
	e := compileErr(t, "tasks.first().owner", personCtx())
	require.Equal(t, "Unknown member 'owner' on type 'Task'", e.Message)
}

func TestCompileArithmetic(t *testing.T) {
	require.Equal(t, int64(42), compileAndEval(t, "age + 1", samplePerson()))
	require.Equal(t, int64(82), compileAndEval(t, "age * 2", samplePerson()))
	require.Equal(t, int64(8), compileAndEval(t, "2 ^ 3", samplePerson()))
	require.Equal(t, 6.25, compileAndEval(t, "score * score", samplePerson()))
	require.Equal(t, int64(1), compileAndEval(t, "age % 4", samplePerson()))
	require.Equal(t, int64(-41), compileAndEval(t, "-age", samplePerson()))
}

func TestCompileUIntWidensToInt(t *testing.T) {
	env := &Env{Schema: testSchema()}
	c, err := env.Compile("visits + 1", personCtx())
	require.NoError(t, err)
	require.Equal(t, "Int!", c.Type.String())
	v, err := c.Eval(Scope{Value: samplePerson()})
	require.NoError(t, err)
	require.Equal(t, int64(8), v)
}

func TestCompileNullableWidening(t *testing.T) {
	// age is nullable Int, the literal is Int!: the result widens to Int.
	env := &Env{Schema: testSchema()}
	c, err := env.Compile("age + 1", personCtx())
	require.NoError(t, err)
	require.Equal(t, "Int", c.Type.String())
}

func TestCompileTypeMismatch(t *testing.T) {
	e := compileErr(t, "age + name", personCtx())
	require.Equal(t, "Cannot apply operator '+' to operands of type 'Int' and 'String!'", e.Message)

	// Int and Float never reconcile implicitly.
	e = compileErr(t, "age + score", personCtx())
	require.Equal(t, "Cannot apply operator '+' to operands of type 'Int' and 'Float'", e.Message)
}

func TestCompileFloatModuloRejected(t *testing.T) {
	e := compileErr(t, "score % 2.0", personCtx())
	require.Contains(t, e.Message, "Cannot apply operator '%'")
}

func TestCompileStringConcat(t *testing.T) {
	require.Equal(t, "Ada!", compileAndEval(t, `name + "!"`, samplePerson()))
}

func TestCompileComparison(t *testing.T) {
	require.Equal(t, true, compileAndEval(t, "age > 40", samplePerson()))
	require.Equal(t, false, compileAndEval(t, "age <= 40", samplePerson()))
	require.Equal(t, true, compileAndEval(t, `name < "Bob"`, samplePerson()))
}

func TestCompileEquality(t *testing.T) {
	require.Equal(t, true, compileAndEval(t, `name = "Ada"`, samplePerson()))
	require.Equal(t, false, compileAndEval(t, "age = 40", samplePerson()))
}

func TestCompileEqualityNullOperand(t *testing.T) {
	p := samplePerson()
	delete(p, "age")
	// A null operand compares equal only to null.
	require.Equal(t, false, compileAndEval(t, "age = 40", p))
}

func TestCompileLogic(t *testing.T) {
	require.Equal(t, true, compileAndEval(t, "active and age > 40", samplePerson()))
	require.Equal(t, true, compileAndEval(t, "active or age > 100", samplePerson()))
	require.Equal(t, false, compileAndEval(t, "not active", samplePerson()))
	require.Equal(t, false, compileAndEval(t, "!active", samplePerson()))
}

func TestCompileLogicRequiresBooleans(t *testing.T) {
	e := compileErr(t, "age and active", personCtx())
	require.Contains(t, e.Message, "Cannot apply operator 'and'")
}

func TestCompileConditional(t *testing.T) {
	require.Equal(t, "senior", compileAndEval(t, `age > 40 ? "senior" : "junior"`, samplePerson()))
	require.Equal(t, "senior", compileAndEval(t, `if age > 40 then "senior" else "junior"`, samplePerson()))
}

func TestCompileConditionalNonBoolean(t *testing.T) {
	e := compileErr(t, "age ? 1 : 2", personCtx())
	require.Equal(t, "Condition 'age' must evaluate to a boolean value", e.Message)
}

func TestCompileConditionalBranchMismatch(t *testing.T) {
	e := compileErr(t, `active ? 1 : "x"`, personCtx())
	require.Contains(t, e.Message, "Cannot apply operator '?:'")
}

func TestCompileDivisionByZero(t *testing.T) {
	env := &Env{Schema: testSchema()}
	c, err := env.Compile("age / 0", personCtx())
	require.NoError(t, err)
	_, err = c.Eval(Scope{Value: samplePerson()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
}

func TestCompileNullPropagation(t *testing.T) {
	p := samplePerson()
	delete(p, "age")
	require.Nil(t, compileAndEval(t, "age + 1", p))
	require.Nil(t, compileAndEval(t, "-age", p))
}

func TestCompileSequenceMethods(t *testing.T) {
	require.Equal(t, int64(2), compileAndEval(t, "tasks.count()", samplePerson()))
	require.Equal(t, true, compileAndEval(t, "tasks.any(done)", samplePerson()))
	require.Equal(t, false, compileAndEval(t, `tasks.any(name = "ship")`, samplePerson()))

	v := compileAndEval(t, "tasks.filter(done)", samplePerson())
	items, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	require.Equal(t, "write", Member(items[0], "name"))

	first := compileAndEval(t, "tasks.first()", samplePerson())
	require.Equal(t, int64(10), Member(first, "id"))
}

func TestCompileFilterPredicateContext(t *testing.T) {
	// The filter predicate compiles against the element type, so `done`
	// resolves even though Person has no such member.
	env := &Env{Schema: testSchema()}
	c, err := env.Compile("tasks.filter(done).count()", personCtx())
	require.NoError(t, err)
	require.Equal(t, "Int!", c.Type.String())
	v, err := c.Eval(Scope{Value: samplePerson()})
	require.NoError(t, err)
	require.Equal(t, int64(1), v)
}

func TestCompileFilterNonBooleanPredicate(t *testing.T) {
	e := compileErr(t, "tasks.filter(name)", personCtx())
	require.Contains(t, e.Message, "must evaluate to a boolean value")
}

func TestCompileUnknownMethod(t *testing.T) {
	e := compileErr(t, "name.explode()", personCtx())
	require.Equal(t, "Unknown method 'explode' on type 'String!'", e.Message)

	e = compileErr(t, "tasks.reverse()", personCtx())
	require.Equal(t, "Unknown method 'reverse' on type '[Task!]'", e.Message)
}

func TestCompileStringMethods(t *testing.T) {
	require.Equal(t, true, compileAndEval(t, `name.contains("d")`, samplePerson()))
	require.Equal(t, true, compileAndEval(t, `name.startsWith("Ad")`, samplePerson()))
	require.Equal(t, "ada", compileAndEval(t, "name.lower()", samplePerson()))
	require.Equal(t, "ADA", compileAndEval(t, "name.upper()", samplePerson()))
}

func TestCompileMethodArity(t *testing.T) {
	e := compileErr(t, "tasks.count(1)", personCtx())
	require.Contains(t, e.Message, "expects 0 argument(s), got 1")
}

func TestCompileArguments(t *testing.T) {
	ctx := personCtx()
	ctx.Args = []*schema.Argument{
		{Name: "limit", Type: schema.NonNullType(schema.NamedType(schema.ScalarInt))},
		{Name: "suffix", Type: schema.NamedType(schema.ScalarString), Default: "?"},
	}
	env := &Env{Schema: testSchema()}

	// Explicit args namespace.
	c, err := env.Compile("args.limit + 1", ctx)
	require.NoError(t, err)
	v, err := c.Eval(Scope{Value: samplePerson(), Args: map[string]any{"limit": int64(4)}})
	require.NoError(t, err)
	require.Equal(t, int64(5), v)

	// A bare identifier falls back to the argument signature when the
	// context type declares no member of that name.
	c, err = env.Compile("limit * 2", ctx)
	require.NoError(t, err)
	v, err = c.Eval(Scope{Value: samplePerson(), Args: map[string]any{"limit": int64(3)}})
	require.NoError(t, err)
	require.Equal(t, int64(6), v)

	// Omitted optional arguments read their declared default.
	c, err = env.Compile("name + suffix", ctx)
	require.NoError(t, err)
	v, err = c.Eval(Scope{Value: samplePerson(), Args: map[string]any{}})
	require.NoError(t, err)
	require.Equal(t, "Ada?", v)
}

func TestCompileContextMemberShadowsArgument(t *testing.T) {
	ctx := personCtx()
	ctx.Args = []*schema.Argument{{Name: "name", Type: schema.NamedType(schema.ScalarString)}}
	env := &Env{Schema: testSchema()}
	c, err := env.Compile("name", ctx)
	require.NoError(t, err)
	v, err := c.Eval(Scope{Value: samplePerson(), Args: map[string]any{"name": "other"}})
	require.NoError(t, err)
	require.Equal(t, "Ada", v)
}

func TestCompileUnknownArgumentMember(t *testing.T) {
	ctx := personCtx()
	ctx.Args = []*schema.Argument{{Name: "limit", Type: schema.NamedType(schema.ScalarInt)}}
	e := compileErr(t, "args.bogus", ctx)
	require.Equal(t, "Unknown member 'bogus' on type 'arguments'", e.Message)
}

func TestMemberStructAccess(t *testing.T) {
	type task struct {
		Name string
		Done bool
	}
	require.Equal(t, "write", Member(task{Name: "write"}, "name"))
	require.Equal(t, true, Member(&task{Done: true}, "done"))
	require.Nil(t, Member(task{}, "missing"))
}
