package resttp

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyURL is returned when a call is made without a target.
	ErrEmptyURL = errors.New("resttp: empty url")
	// ErrNoBaseURL is returned by Endpoint when the transport has no base URL.
	ErrNoBaseURL = errors.New("resttp: base url not configured")
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resttp: GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}
