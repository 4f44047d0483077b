// Package events declares the instrumentation events published on the
// eventbus by the HTTP layer and the query path.
package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when a request reaches the handler.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the response is written.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// QueryStart is emitted before compiling and executing a query.
type QueryStart struct {
	Query         string
	OperationName string
}

// QueryFinish is emitted after the query completes.
type QueryFinish struct {
	Query         string
	OperationName string
	Errors        []error
	Duration      time.Duration
}
