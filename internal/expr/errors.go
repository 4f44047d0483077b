package expr

import "fmt"

// Error is a compile-time failure of the expression compiler. All failures
// share this one kind and differ only in the user-facing message.
type Error struct {
	Message string
	Pos     int
}

func (e *Error) Error() string { return e.Message }

func errUnknownMember(pos int, name, contextType string) *Error {
	return &Error{
		Message: fmt.Sprintf("Unknown member '%s' on type '%s'", name, contextType),
		Pos:     pos,
	}
}

func errUnknownMethod(pos int, name, contextType string) *Error {
	return &Error{
		Message: fmt.Sprintf("Unknown method '%s' on type '%s'", name, contextType),
		Pos:     pos,
	}
}

func errTypeMismatch(pos int, op, left, right string) *Error {
	return &Error{
		Message: fmt.Sprintf("Cannot apply operator '%s' to operands of type '%s' and '%s'", op, left, right),
		Pos:     pos,
	}
}

func errNonBooleanCondition(pos int, text string) *Error {
	return &Error{
		Message: fmt.Sprintf("Condition '%s' must evaluate to a boolean value", text),
		Pos:     pos,
	}
}
