package server

import "time"

type Options struct {
	// Timeout applies only when the incoming context has no deadline.
	// 0 disables it.
	Timeout time.Duration

	Pretty bool

	// MaxBodyBytes caps POST bodies. 0 means unlimited.
	MaxBodyBytes int64

	// CORS is disabled while AllowedOrigins is empty.
	CORS CORSOptions

	// ForwardHeaders names incoming headers copied onto every upstream call
	// of the request. The request id header is always forwarded.
	ForwardHeaders []string

	GraphiQL bool
}

type CORSOptions struct {
	AllowedOrigins []string
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{Timeout: 10 * time.Second, GraphiQL: true}
}

func WithTimeout(d time.Duration) Option        { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                        { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option           { return func(o *Options) { o.MaxBodyBytes = n } }
func WithGraphiQL(enable bool) Option           { return func(o *Options) { o.GraphiQL = enable } }
func WithCORS(origins ...string) Option         { return func(o *Options) { o.CORS.AllowedOrigins = origins } }
func WithForwardHeaders(names ...string) Option { return func(o *Options) { o.ForwardHeaders = names } }
