// Package schemadef builds a schema from a statically described field list
// in a YAML document. No runtime reflection is involved: the document names
// every type, field, argument and resolution rule explicitly.
package schemadef

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quarryql/quarry/internal/schema"
)

// Document is the YAML shape of a schema definition.
//
//	query: Query
//	types:
//	  Query:
//	    fields:
//	      - name: people
//	        type: "[Person]"
//	      - name: person
//	        type: Person
//	        args:
//	          - { name: id, type: "Int!" }
//	        resolve: people.filter(id = args.id).first()
//	enums:
//	  Status:
//	    values: [ACTIVE, DONE]
type Document struct {
	Query string             `yaml:"query"`
	Types map[string]TypeDef `yaml:"types"`
	Enums map[string]EnumDef `yaml:"enums"`
}

type TypeDef struct {
	Fields []FieldDef `yaml:"fields"`
}

type FieldDef struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Member  string   `yaml:"member"`
	Resolve string   `yaml:"resolve"`
	Args    []ArgDef `yaml:"args"`
}

type ArgDef struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default any    `yaml:"default"`
}

type EnumDef struct {
	Values []string `yaml:"values"`
}

// Load reads and builds a schema from a YAML file.
func Load(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema definition: %w", err)
	}
	return Parse(data)
}

// Parse builds a schema from YAML bytes, walking the declared field lists
// through the schema registration API.
func Parse(data []byte) (*schema.Schema, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}
	if doc.Query == "" {
		return nil, fmt.Errorf("schema definition must name a query type")
	}

	s := schema.New(doc.Query)
	for name, def := range doc.Enums {
		t := schema.NewType(name, schema.TypeKindEnum)
		t.EnumValues = append(t.EnumValues, def.Values...)
		s.AddType(t)
	}
	for name := range doc.Types {
		s.AddType(schema.NewType(name, schema.TypeKindObject))
	}

	for name, def := range doc.Types {
		for _, fd := range def.Fields {
			field, err := buildField(fd)
			if err != nil {
				return nil, fmt.Errorf("type %s: %w", name, err)
			}
			s.AddField(name, field)
		}
	}

	if err := validate(s, &doc); err != nil {
		return nil, err
	}
	return s, nil
}

func buildField(fd FieldDef) (*schema.Field, error) {
	if fd.Name == "" {
		return nil, fmt.Errorf("field without a name")
	}
	t, err := ParseTypeRef(fd.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fd.Name, err)
	}
	field := schema.NewField(fd.Name, t)

	if fd.Resolve != "" && fd.Member != "" {
		return nil, fmt.Errorf("field %s: member and resolve are mutually exclusive", fd.Name)
	}
	if fd.Resolve != "" {
		field.WithResolver(schema.ResolveExpr(fd.Resolve))
	} else if fd.Member != "" {
		field.WithResolver(schema.ResolveMember(fd.Member))
	}

	args := make([]*schema.Argument, 0, len(fd.Args))
	for _, ad := range fd.Args {
		at, err := ParseTypeRef(ad.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s, argument %s: %w", fd.Name, ad.Name, err)
		}
		args = append(args, &schema.Argument{Name: ad.Name, Type: at, Default: normalizeDefault(ad.Default)})
	}
	if len(args) > 0 {
		field.WithArgs(args...)
	}
	return field, nil
}

// normalizeDefault widens YAML numerics to the runtime's value model.
func normalizeDefault(v any) any {
	if n, ok := v.(int); ok {
		return int64(n)
	}
	return v
}

// validate checks that every referenced type is registered.
func validate(s *schema.Schema, doc *Document) error {
	if s.GetQueryType() == nil {
		return fmt.Errorf("query type '%s' is not declared", doc.Query)
	}
	for name, def := range doc.Types {
		for _, fd := range def.Fields {
			t, _ := ParseTypeRef(fd.Type)
			named := t.GetNamedType()
			if s.Types[named] == nil {
				return fmt.Errorf("type %s, field %s: unknown type '%s'", name, fd.Name, named)
			}
			for _, ad := range fd.Args {
				at, _ := ParseTypeRef(ad.Type)
				if s.Types[at.GetNamedType()] == nil {
					return fmt.Errorf("type %s, field %s: unknown argument type '%s'", name, fd.Name, at.GetNamedType())
				}
			}
		}
	}
	return nil
}
