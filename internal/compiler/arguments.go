package compiler

import (
	"strconv"

	"github.com/quarryql/quarry/internal/expr"
	"github.com/quarryql/quarry/internal/language"
	"github.com/quarryql/quarry/internal/schema"
)

// bindArguments matches supplied argument values against the declared
// signature. Missing required arguments fail compilation; missing optional
// ones bind their declared default.
func (c *compiler) bindArguments(def *schema.Field, field *language.Field) ([]*BoundArgument, error) {
	supplied := map[string]*language.Argument{}
	for _, arg := range field.Arguments {
		declared := findArgument(def.Arguments, arg.Name)
		if declared == nil {
			return nil, errUnknownArgument(arg.Name, field.Name)
		}
		supplied[arg.Name] = arg
	}

	out := make([]*BoundArgument, 0, len(def.Arguments))
	for _, declared := range def.Arguments {
		if arg, ok := supplied[declared.Name]; ok {
			value, err := compileValue(arg.Value, declared.Type)
			if err != nil {
				return nil, err
			}
			out = append(out, &BoundArgument{Name: declared.Name, Value: value})
			continue
		}
		if declared.Required() {
			return nil, errMissingArgument(declared.Name, field.Name)
		}
		if declared.Default != nil {
			out = append(out, &BoundArgument{Name: declared.Name, Value: expr.Literal(declared.Default, declared.Type)})
		}
	}
	return out, nil
}

func findArgument(args []*schema.Argument, name string) *schema.Argument {
	for _, a := range args {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// compileValue turns an AST argument value into a value producer of the
// declared type. Variables read the request's variables map at execution.
func compileValue(v *language.Value, t *schema.TypeRef) (*expr.Compiled, error) {
	if v == nil {
		return expr.Literal(nil, t), nil
	}
	switch v.Kind {
	case language.Variable:
		return expr.Variable(v.Raw, t), nil
	case language.IntValue:
		n, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil {
			return nil, errorf("invalid integer value '%s'", v.Raw)
		}
		if t.GetNamedType() == schema.ScalarFloat {
			return expr.Literal(float64(n), t), nil
		}
		return expr.Literal(n, t), nil
	case language.FloatValue:
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			return nil, errorf("invalid decimal value '%s'", v.Raw)
		}
		return expr.Literal(f, t), nil
	case language.StringValue, language.BlockValue, language.EnumValue:
		return expr.Literal(v.Raw, t), nil
	case language.BooleanValue:
		return expr.Literal(v.Raw == "true", t), nil
	case language.NullValue:
		return expr.Literal(nil, t), nil
	case language.ListValue:
		elemType := t.Elem()
		if elemType == nil {
			elemType = schema.Nullable(t)
		}
		items := make([]*expr.Compiled, len(v.Children))
		for i, child := range v.Children {
			item, err := compileValue(child.Value, elemType)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return expr.List(items, t), nil
	case language.ObjectValue:
		fields := map[string]*expr.Compiled{}
		for _, child := range v.Children {
			item, err := compileValue(child.Value, schema.NamedType(schema.ScalarString))
			if err != nil {
				return nil, err
			}
			fields[child.Name] = item
		}
		return expr.Object(fields, t), nil
	default:
		return nil, errorf("unsupported argument value '%s'", v.Raw)
	}
}
