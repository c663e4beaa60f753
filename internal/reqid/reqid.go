package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to accept and echo request ids.
const Header = "X-Request-Id"

type key struct{}

// handle is allocated once per stored id, so it tells requests apart even
// when a client sends the same id twice.
type handle struct{ id string }

func withID(parent context.Context, id string) (context.Context, string) {
	return context.WithValue(parent, key{}, &handle{id: id}), id
}

// NewContext stores a new random request ID in parent and returns it.
func NewContext(parent context.Context) (context.Context, string) {
	return withID(parent, uuid.NewString())
}

// FromIncoming stores incoming when it is a well-formed UUID, so a caller's
// id can be carried through the gateway; otherwise it generates a new one.
func FromIncoming(parent context.Context, incoming string) (context.Context, string) {
	if incoming != "" {
		if u, err := uuid.Parse(incoming); err == nil {
			return withID(parent, u.String())
		}
	}
	return NewContext(parent)
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	h, ok := ctx.Value(key{}).(*handle)
	if !ok {
		return "", false
	}
	return h.id, true
}

// Handle returns a comparable value unique to the request whose id is stored
// in ctx, or nil. Unlike the id it cannot be chosen by the client.
func Handle(ctx context.Context) any {
	h, _ := ctx.Value(key{}).(*handle)
	if h == nil {
		return nil
	}
	return h
}
