package pokeapi

import (
	"context"
	"errors"
	"strings"

	"github.com/hanpama/pokegraph/internal/resttp"
)

// DefaultBaseURL is the public upstream.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Client fetches upstream documents. It holds no per-request state and never
// caches: every call is one GET.
type Client struct {
	tp *resttp.Transport
}

func NewClient(tp *resttp.Transport) *Client { return &Client{tp: tp} }

// FetchPokemon GETs {base}/pokemon/{name}. name is forwarded as one escaped
// path segment.
func (c *Client) FetchPokemon(ctx context.Context, name string) (*Pokemon, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &InputError{Argument: "pokemonName", Reason: "must not be empty"}
	}
	if name == "." || name == ".." {
		return nil, &InputError{Argument: "pokemonName", Reason: "must be a name or id"}
	}
	target, err := c.tp.Endpoint("pokemon", name)
	if err != nil {
		return nil, err
	}
	var p Pokemon
	if err := c.tp.GetJSON(ctx, target, &p); err != nil {
		var se *resttp.StatusError
		if errors.As(err, &se) {
			return nil, &NotFoundError{Name: name, StatusCode: se.StatusCode, Err: err}
		}
		return nil, &UpstreamError{Op: "fetch pokemon", Err: err}
	}
	return &p, nil
}

// FetchFormDetail GETs the pokemon-form document at url.
func (c *Client) FetchFormDetail(ctx context.Context, url string) (*FormDetail, error) {
	var d FormDetail
	if err := c.tp.GetJSON(ctx, url, &d); err != nil {
		return nil, &UpstreamError{Op: "fetch form detail", Err: err}
	}
	return &d, nil
}
