// Package events defines the payloads published on the event bus. Publishers
// pass the request context along, so subscribers can read the request id and
// parent spans from it.
package events

import (
	"net/http"
	"time"
)

type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish carries the status written to the client, which is 200 for
// GraphQL responses with field errors.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// GraphQLStart is published once per operation, after parsing and before
// execution. Operations rejected by validation publish no events.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// Failed reports whether the operation produced at least one error.
func (e GraphQLFinish) Failed() bool { return len(e.Errors) > 0 }
