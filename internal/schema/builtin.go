package schema

// Built-in scalar type names.
const (
	ScalarString  = "String"
	ScalarInt     = "Int"
	ScalarUInt    = "UInt"
	ScalarFloat   = "Float"
	ScalarBoolean = "Boolean"
	ScalarID      = "ID"
)

var builtinScalars = []*Type{
	{Name: ScalarString, Kind: TypeKindScalar},
	{Name: ScalarInt, Kind: TypeKindScalar},
	{Name: ScalarUInt, Kind: TypeKindScalar},
	{Name: ScalarFloat, Kind: TypeKindScalar},
	{Name: ScalarBoolean, Kind: TypeKindScalar},
	{Name: ScalarID, Kind: TypeKindScalar},
}

// IsBuiltinScalar reports whether name is one of the built-in scalars.
func IsBuiltinScalar(name string) bool {
	switch name {
	case ScalarString, ScalarInt, ScalarUInt, ScalarFloat, ScalarBoolean, ScalarID:
		return true
	}
	return false
}
