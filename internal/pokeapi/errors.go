package pokeapi

import (
	"errors"
	"fmt"

	"github.com/hanpama/pokegraph/internal/resttp"
)

// NotFoundError is returned by fetchPokemon when the upstream lookup does not
// succeed.
type NotFoundError struct {
	Name       string
	StatusCode int
	Err        error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("Pokémon %q not found", e.Name) }

func (e *NotFoundError) Unwrap() error { return e.Err }

func (e *NotFoundError) Extensions() map[string]any {
	return map[string]any{"code": "NOT_FOUND", "status": e.StatusCode}
}

// InputError rejects an argument before any upstream call is made.
type InputError struct {
	Argument string
	Reason   string
}

func (e *InputError) Error() string { return fmt.Sprintf("invalid %s: %s", e.Argument, e.Reason) }

func (e *InputError) Extensions() map[string]any {
	return map[string]any{"code": "BAD_USER_INPUT", "argument": e.Argument}
}

// UpstreamError wraps a transport failure: network, non-2xx status or a body
// that is not the expected JSON.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Extensions() map[string]any {
	ext := map[string]any{"code": "UPSTREAM_ERROR"}
	var se *resttp.StatusError
	if errors.As(e.Err, &se) {
		ext["status"] = se.StatusCode
	}
	return ext
}
