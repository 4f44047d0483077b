package schema

// Schema maps type names to definitions. QueryType names the sole entry
// point for top-level selections.
//
// The schema is mutable during setup: fields can be added or removed on any
// registered type. Callers must serialize mutation relative to query
// compilation; the compiler works from a Clone taken at compile start, so a
// mutation never affects an in-flight compile.
type Schema struct {
	QueryType string
	Types     map[string]*Type
}

// New creates a schema with the built-in scalar types registered.
func New(queryType string) *Schema {
	s := &Schema{QueryType: queryType, Types: map[string]*Type{}}
	for _, t := range builtinScalars {
		s.AddType(t)
	}
	return s
}

// GetQueryType returns the root query type (nil if absent).
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// AddType registers t, replacing any type with the same name.
func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

// HasField reports whether the named type declares the field. Lookup is
// case-sensitive, exact-match.
func (s *Schema) HasField(typeName, fieldName string) bool {
	_, ok := s.ResolveField(typeName, fieldName)
	return ok
}

// ResolveField returns the field definition for typeName.fieldName.
func (s *Schema) ResolveField(typeName, fieldName string) (*Field, bool) {
	t := s.Types[typeName]
	if t == nil {
		return nil, false
	}
	for _, f := range t.Fields {
		if f.Name == fieldName {
			return f, true
		}
	}
	return nil, false
}

// AddField binds f to the named type. A field with the same name is replaced
// in place, keeping its declaration position.
func (s *Schema) AddField(typeName string, f *Field) bool {
	t := s.Types[typeName]
	if t == nil {
		return false
	}
	for i, existing := range t.Fields {
		if existing.Name == f.Name {
			t.Fields[i] = f
			return true
		}
	}
	t.Fields = append(t.Fields, f)
	return true
}

// RemoveField deletes the field from the named type. Removed fields are
// invisible to lookup and to wildcard expansion of any compile started
// afterward.
func (s *Schema) RemoveField(typeName, fieldName string) bool {
	t := s.Types[typeName]
	if t == nil {
		return false
	}
	for i, f := range t.Fields {
		if f.Name == fieldName {
			t.Fields = append(t.Fields[:i], t.Fields[i+1:]...)
			return true
		}
	}
	return false
}

// TypeFields returns the declared fields of the named type in declaration
// order. Used for wildcard expansion.
func (s *Schema) TypeFields(typeName string) []*Field {
	t := s.Types[typeName]
	if t == nil {
		return nil
	}
	return t.Fields
}

// Type is a named type: object, scalar or enum.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string
	Fields      []*Field // OBJECT only, declaration order
	EnumValues  []string // ENUM only
}

// TypeKind represents the kind of a named type.
type TypeKind string

const (
	TypeKindScalar TypeKind = "SCALAR"
	TypeKindObject TypeKind = "OBJECT"
	TypeKindEnum   TypeKind = "ENUM"
)

// NewType creates a named type definition.
func NewType(name string, kind TypeKind) *Type {
	return &Type{Name: name, Kind: kind}
}

// AddField appends a field definition.
func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

// Field describes one field on an object type: declared result type, an
// optional argument signature and a resolution rule.
type Field struct {
	Name      string
	Type      *TypeRef
	Arguments []*Argument
	Resolver  Resolver
}

// NewField creates a field resolved by reading the member of the same name
// off the current context.
func NewField(name string, t *TypeRef) *Field {
	return &Field{Name: name, Type: t}
}

// WithArgs sets the ordered argument signature.
func (f *Field) WithArgs(args ...*Argument) *Field {
	f.Arguments = args
	return f
}

// WithResolver sets the resolution rule.
func (f *Field) WithResolver(r Resolver) *Field {
	f.Resolver = r
	return f
}

// Argument is a named, typed field argument. A Non-Null type marks the
// argument required; otherwise Default applies when the caller omits it.
type Argument struct {
	Name    string
	Type    *TypeRef
	Default any
}

// Required reports whether the argument must be supplied.
func (a *Argument) Required() bool { return IsNonNull(a.Type) && a.Default == nil }

// Resolver is the resolution rule for a field: read a member off the current
// context, or evaluate an expression against the context and bound arguments.
// A zero Resolver reads the member named after the field.
type Resolver struct {
	// Member is the context member to read. Empty means the field name,
	// unless Expr is set.
	Member string
	// Expr is expression source compiled at query compile time against the
	// enclosing context type and the field's argument signature.
	Expr string
}

// ResolveMember builds a member-access resolution rule.
func ResolveMember(member string) Resolver { return Resolver{Member: member} }

// ResolveExpr builds an expression resolution rule.
func ResolveExpr(source string) Resolver { return Resolver{Expr: source} }
