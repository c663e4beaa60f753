package resttp

import (
	"net/http"
	"time"
)

// Options configures the REST transport behavior.
//
// Defaults:
//   - Client:       DefaultClient
//   - Timeout:      0 (the caller's deadline applies)
//   - UserAgent:    "pokegraph"
//   - MaxBodyBytes: 16 MiB
//
// All options are safe to leave zero-valued to use defaults.
type Options struct {
	BaseURL string
	Client  *http.Client

	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// Option mutates Options
type Option func(*Options)

// DefaultClient keeps a generous idle pool since a single query can fan out to
// many form urls on the same host.
var DefaultClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 64,
		IdleConnTimeout:     90 * time.Second,
	},
}

func defaultOptions() *Options {
	return &Options{
		Client:       DefaultClient,
		UserAgent:    "pokegraph",
		MaxBodyBytes: 16 << 20,
	}
}

func WithBaseURL(u string) Option        { return func(o *Options) { o.BaseURL = u } }
func WithClient(c *http.Client) Option   { return func(o *Options) { o.Client = c } }
func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithUserAgent(ua string) Option     { return func(o *Options) { o.UserAgent = ua } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
