package expr

import "github.com/quarryql/quarry/internal/schema"

func isBooleanType(t *schema.TypeRef) bool {
	return !t.IsList() && t.GetNamedType() == schema.ScalarBoolean
}

func isStringType(t *schema.TypeRef) bool {
	named := t.GetNamedType()
	return !t.IsList() && (named == schema.ScalarString || named == schema.ScalarID)
}

func isNumericType(t *schema.TypeRef) bool {
	if t.IsList() {
		return false
	}
	switch t.GetNamedType() {
	case schema.ScalarInt, schema.ScalarUInt, schema.ScalarFloat:
		return true
	}
	return false
}

// reconcile applies the operand reconciliation rules in order: widen a
// non-nullable operand when exactly one side is nullable, then convert an
// unsigned integer operand to signed when the other side is signed. It
// returns the common type and whether the operands are compatible.
func reconcile(l, r *schema.TypeRef) (*schema.TypeRef, bool) {
	ln, rn := schema.IsNonNull(l), schema.IsNonNull(r)
	if ln != rn {
		l = schema.Nullable(l)
		r = schema.Nullable(r)
	}
	lName, rName := l.GetNamedType(), r.GetNamedType()
	if lName == schema.ScalarInt && rName == schema.ScalarUInt {
		rName = schema.ScalarInt
	} else if lName == schema.ScalarUInt && rName == schema.ScalarInt {
		lName = schema.ScalarInt
	}
	if lName != rName || l.IsList() != r.IsList() {
		return nil, false
	}
	if lName == l.GetNamedType() {
		return l, true
	}
	return r, true
}

// withNullability wraps named in Non-Null when both operand types are
// non-nullable.
func withNullability(named string, l, r *schema.TypeRef) *schema.TypeRef {
	t := schema.NamedType(named)
	if schema.IsNonNull(l) && schema.IsNonNull(r) {
		return schema.NonNullType(t)
	}
	return t
}
