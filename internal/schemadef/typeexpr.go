package schemadef

import (
	"fmt"
	"strings"

	"github.com/quarryql/quarry/internal/schema"
)

// ParseTypeRef parses type-expression notation: a named type, optionally
// wrapped in list brackets, with '!' marking Non-Null at either level.
// Examples: "Int", "Int!", "[Person]", "[Person!]!".
func ParseTypeRef(s string) (*schema.TypeRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty type expression")
	}

	nonNull := false
	if strings.HasSuffix(s, "!") {
		nonNull = true
		s = strings.TrimSpace(s[:len(s)-1])
	}

	var inner *schema.TypeRef
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("unbalanced brackets in type expression '%s'", s)
		}
		elem, err := ParseTypeRef(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		inner = schema.ListType(elem)
	} else {
		if strings.ContainsAny(s, "[]! ") {
			return nil, fmt.Errorf("invalid type expression '%s'", s)
		}
		inner = schema.NamedType(s)
	}

	if nonNull {
		return schema.NonNullType(inner), nil
	}
	return inner, nil
}
