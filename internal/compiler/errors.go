package compiler

import "fmt"

// Error is a compile-time failure of the selection compiler. One kind for
// the whole taxonomy; the message carries the user-facing detail.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func errFieldNotFound(fieldName, typeName string) *Error {
	return &Error{Message: fmt.Sprintf("Field '%s' not found on type '%s'", fieldName, typeName)}
}

func errSelectionRequired(fieldName string) *Error {
	return &Error{Message: fmt.Sprintf("Field '%s' requires a selection set defining the fields you would like to select.", fieldName)}
}

func errMissingArgument(argName, fieldName string) *Error {
	return &Error{Message: fmt.Sprintf("Missing required argument '%s' on field '%s'", argName, fieldName)}
}

func errUnknownArgument(argName, fieldName string) *Error {
	return &Error{Message: fmt.Sprintf("Unknown argument '%s' on field '%s'", argName, fieldName)}
}

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
