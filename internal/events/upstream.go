package events

import "time"

// UpstreamStart is emitted before an outbound REST call.
// ID is unique per call so concurrent calls of one request can be told apart.
type UpstreamStart struct {
	ID     string
	Method string
	URL    string
}

// UpstreamFinish is emitted after an outbound REST call completes.
// StatusCode is zero when no response was received.
type UpstreamFinish struct {
	ID         string
	Method     string
	URL        string
	StatusCode int
	Err        error
	Duration   time.Duration
}
