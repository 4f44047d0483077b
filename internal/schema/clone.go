package schema

// Clone returns a deep copy of the schema. The compiler clones at compile
// start so that concurrent setup-phase mutation never reaches a compiled
// plan (snapshot semantics).
func (s *Schema) Clone() *Schema {
	out := &Schema{QueryType: s.QueryType, Types: make(map[string]*Type, len(s.Types))}
	for name, t := range s.Types {
		out.Types[name] = t.clone()
	}
	return out
}

func (t *Type) clone() *Type {
	out := &Type{Name: t.Name, Kind: t.Kind, Description: t.Description}
	if t.Fields != nil {
		out.Fields = make([]*Field, len(t.Fields))
		for i, f := range t.Fields {
			out.Fields[i] = f.clone()
		}
	}
	if t.EnumValues != nil {
		out.EnumValues = append([]string(nil), t.EnumValues...)
	}
	return out
}

func (f *Field) clone() *Field {
	out := &Field{Name: f.Name, Type: f.Type, Resolver: f.Resolver}
	if f.Arguments != nil {
		out.Arguments = make([]*Argument, len(f.Arguments))
		for i, a := range f.Arguments {
			cp := *a
			out.Arguments[i] = &cp
		}
	}
	return out
}
