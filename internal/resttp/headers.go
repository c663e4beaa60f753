package resttp

import (
	"context"
	"net/http"
)

type headersKey struct{}

// WithForwardedHeaders returns a copy of ctx carrying headers to be sent on
// every upstream call made with it. Values in h are copied.
func WithForwardedHeaders(ctx context.Context, h http.Header) context.Context {
	if len(h) == 0 {
		return ctx
	}
	return context.WithValue(ctx, headersKey{}, h.Clone())
}

// ForwardedHeaders returns the headers stored by WithForwardedHeaders.
func ForwardedHeaders(ctx context.Context) http.Header {
	h, _ := ctx.Value(headersKey{}).(http.Header)
	return h
}
