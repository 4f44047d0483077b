// Package source supplies root context values for query execution. The
// engine only needs a value to project; where it comes from — an in-memory
// document or a SQLite database — is this package's concern.
package source

import "context"

// Source produces the root context value a plan executes against.
type Source interface {
	Root(ctx context.Context) (any, error)
}
