package engine

import "fmt"

// Path locates a value in the response tree: field names and list indexes.
type Path []any

func (p Path) String() string {
	out := ""
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				out += "."
			}
			out += v
		case int:
			out += fmt.Sprintf("[%d]", v)
		}
	}
	return out
}

func appendPath(p Path, elem any) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = elem
	return out
}

// QueryError is an error located in the response tree.
type QueryError struct {
	Message string `json:"message"`
	Path    Path   `json:"path,omitempty"`
}

func (e QueryError) Error() string { return e.Message }

// Result is the outcome of executing a plan: the projected data plus any
// located errors collected along the way. Data may be partially populated
// when errors are present.
type Result struct {
	Data   *Record      `json:"data"`
	Errors []QueryError `json:"errors,omitempty"`
}
