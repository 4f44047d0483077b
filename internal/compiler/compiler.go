// Package compiler walks a parsed operation against a schema snapshot and
// builds the projection plan the engine executes: per level, exactly the
// requested fields in request order, with arguments bound and resolvers
// compiled.
package compiler

import (
	"github.com/quarryql/quarry/internal/expr"
	"github.com/quarryql/quarry/internal/language"
	"github.com/quarryql/quarry/internal/schema"
)

// Meta field names handled without a schema definition.
const (
	metaTypename = "__typename"
	metaAll      = "__all"
)

// Operation is a compiled, immutable projection plan for one query
// operation. It holds no reference to mutable schema state: every field was
// resolved from the snapshot taken at compile start.
type Operation struct {
	Name       string
	RootType   string
	Selections []*Selection
}

// Selection is the validated, argument-bound counterpart of one requested
// field. DisplayName keys the result map; the field name was only used for
// resolution.
type Selection struct {
	DisplayName string
	FieldName   string
	Field       *schema.Field
	TypeName    string // enclosing type, for __typename and error paths
	Meta        bool   // __typename
	Args        []*BoundArgument
	Producer    *expr.Compiled // expression-resolved fields
	Children    []*Selection
}

// BoundArgument pairs a declared argument with its compiled value producer.
type BoundArgument struct {
	Name  string
	Value *expr.Compiled
}

// IsList reports whether the selection projects a collection.
func (s *Selection) IsList() bool { return s.Field != nil && s.Field.Type.IsList() }

type compiler struct {
	snap *schema.Schema
	env  *expr.Env
}

// Compile validates doc against the schema snapshot and builds the plan for
// the named operation (or the sole operation when operationName is empty).
// The snapshot must not be mutated afterwards; callers pass a clone.
func Compile(snap *schema.Schema, methods expr.MethodProvider, doc *language.QueryDocument, operationName string) (*Operation, error) {
	opDef := findOperation(doc, operationName)
	if opDef == nil {
		if operationName == "" {
			return nil, errorf("query document declares no single operation; pass an operation name")
		}
		return nil, errorf("operation '%s' not found", operationName)
	}
	if opDef.Operation != language.Query && opDef.Operation != "" {
		return nil, errorf("unsupported operation type: %s", opDef.Operation)
	}

	rootType := snap.GetQueryType()
	if rootType == nil {
		return nil, errorf("query type '%s' is not registered", snap.QueryType)
	}

	c := &compiler{snap: snap, env: &expr.Env{Schema: snap, Methods: methods}}
	selections, err := c.compileSelectionSet(rootType, opDef.SelectionSet)
	if err != nil {
		return nil, err
	}
	return &Operation{Name: opDef.Name, RootType: rootType.Name, Selections: selections}, nil
}

func findOperation(doc *language.QueryDocument, name string) *language.OperationDefinition {
	if name == "" {
		if len(doc.Operations) == 1 {
			return doc.Operations[0]
		}
		return nil
	}
	return doc.Operations.ForName(name)
}

// compileSelectionSet compiles one level in request order. Duplicate display
// names keep the first occurrence, including entries produced by wildcard
// expansion.
func (c *compiler) compileSelectionSet(enclosing *schema.Type, set language.SelectionSet) ([]*Selection, error) {
	out := make([]*Selection, 0, len(set))
	seen := map[string]bool{}

	add := func(sel *Selection) {
		if seen[sel.DisplayName] {
			return
		}
		seen[sel.DisplayName] = true
		out = append(out, sel)
	}

	for _, raw := range set {
		field, ok := raw.(*language.Field)
		if !ok {
			return nil, errorf("fragments are not supported")
		}

		switch field.Name {
		case metaTypename:
			add(&Selection{DisplayName: displayName(field), FieldName: field.Name, TypeName: enclosing.Name, Meta: true})
			continue
		case metaAll:
			// Wildcard: every scalar field of the enclosing type, read from
			// the snapshot at compile time, in declaration order.
			expanded, err := c.expandWildcard(enclosing)
			if err != nil {
				return nil, err
			}
			for _, sel := range expanded {
				add(sel)
			}
			continue
		}

		sel, err := c.compileField(enclosing, field)
		if err != nil {
			return nil, err
		}
		add(sel)
	}
	return out, nil
}

// expandWildcard selects the scalar fields of the enclosing type. A field
// that fails to compile fails the whole expansion; fields are never dropped
// silently.
func (c *compiler) expandWildcard(enclosing *schema.Type) ([]*Selection, error) {
	var out []*Selection
	for _, f := range c.snap.TypeFields(enclosing.Name) {
		named := c.snap.Types[f.Type.GetNamedType()]
		if named == nil || named.Kind == schema.TypeKindObject || f.Type.IsList() {
			continue
		}
		sel, err := c.compileResolved(enclosing, f, &language.Field{Name: f.Name})
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

func (c *compiler) compileField(enclosing *schema.Type, field *language.Field) (*Selection, error) {
	def, ok := c.snap.ResolveField(enclosing.Name, field.Name)
	if !ok {
		return nil, errFieldNotFound(field.Name, enclosing.Name)
	}
	return c.compileResolved(enclosing, def, field)
}

func (c *compiler) compileResolved(enclosing *schema.Type, def *schema.Field, field *language.Field) (*Selection, error) {
	sel := &Selection{
		DisplayName: displayName(field),
		FieldName:   field.Name,
		Field:       def,
		TypeName:    enclosing.Name,
	}

	named := c.snap.Types[def.Type.GetNamedType()]
	if named == nil {
		return nil, errorf("field '%s' has unregistered type '%s'", def.Name, def.Type.GetNamedType())
	}

	// The selection-set rule follows the declared type alone, not the
	// field's position in the tree.
	if named.Kind == schema.TypeKindObject {
		if len(field.SelectionSet) == 0 {
			return nil, errSelectionRequired(field.Name)
		}
		children, err := c.compileSelectionSet(named, field.SelectionSet)
		if err != nil {
			return nil, err
		}
		sel.Children = children
	}

	args, err := c.bindArguments(def, field)
	if err != nil {
		return nil, err
	}
	sel.Args = args

	if def.Resolver.Expr != "" {
		ctx := expr.Context{
			Type: schema.NonNullType(schema.NamedType(enclosing.Name)),
			Args: def.Arguments,
		}
		producer, err := c.env.Compile(def.Resolver.Expr, ctx)
		if err != nil {
			return nil, err
		}
		sel.Producer = producer
	}
	return sel, nil
}

func displayName(field *language.Field) string {
	if field.Alias != "" {
		return field.Alias
	}
	return field.Name
}
