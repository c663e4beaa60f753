package resttp

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"

	eventbus "github.com/hanpama/pokegraph/internal/eventbus"
	events "github.com/hanpama/pokegraph/internal/events"
)

const (
	headerAccept          = "Accept"
	headerAcceptEncoding  = "Accept-Encoding"
	headerContentEncoding = "Content-Encoding"
	headerUserAgent       = "User-Agent"

	encodingGzip    = "gzip"
	encodingDeflate = "deflate"
	encodingBrotli  = "br"

	contentTypeJSON = "application/json"
)

// Transport performs JSON GET requests against a REST upstream. It is safe
// for concurrent use and holds no per-request state.
type Transport struct {
	opts *Options
}

func New(opts ...Option) *Transport {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	if o.Client == nil {
		o.Client = DefaultClient
	}
	return &Transport{opts: o}
}

// BaseURL returns the configured base URL without a trailing slash.
func (t *Transport) BaseURL() string { return strings.TrimRight(t.opts.BaseURL, "/") }

// Endpoint joins the base URL with path segments, escaping each segment so
// that user input cannot add path components or a query.
func (t *Transport) Endpoint(segments ...string) (string, error) {
	base := t.BaseURL()
	if base == "" {
		return "", ErrNoBaseURL
	}
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String(), nil
}

// GetJSON fetches target and decodes its JSON body into out.
// Non-2xx responses return *StatusError.
func (t *Transport) GetJSON(ctx context.Context, target string, out any) (err error) {
	if target == "" {
		return ErrEmptyURL
	}
	if t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("resttp: build request: %w", err)
	}
	for k, vs := range ForwardedHeaders(ctx) {
		req.Header[k] = append([]string(nil), vs...)
	}
	req.Header.Set(headerAccept, contentTypeJSON)
	req.Header.Set(headerAcceptEncoding, encodingGzip)
	req.Header.Add(headerAcceptEncoding, encodingDeflate)
	req.Header.Add(headerAcceptEncoding, encodingBrotli)
	if t.opts.UserAgent != "" {
		req.Header.Set(headerUserAgent, t.opts.UserAgent)
	}

	id := uuid.NewString()
	start := time.Now()
	status := 0
	eventbus.Publish(ctx, events.UpstreamStart{ID: id, Method: http.MethodGet, URL: target})
	defer func() {
		eventbus.Publish(ctx, events.UpstreamFinish{
			ID:         id,
			Method:     http.MethodGet,
			URL:        target,
			StatusCode: status,
			Err:        err,
			Duration:   time.Since(start),
		})
	}()

	resp, err := t.opts.Client.Do(req)
	if err != nil {
		return fmt.Errorf("resttp: GET %s: %w", target, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := respBodyReader(resp)
	if err != nil {
		return fmt.Errorf("resttp: GET %s: %w", target, err)
	}
	defer body.Close()

	var r io.Reader = body
	if t.opts.MaxBodyBytes > 0 {
		r = io.LimitReader(body, t.opts.MaxBodyBytes)
	}
	if err = json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("resttp: decode %s: %w", target, err)
	}
	return nil
}

// respBodyReader undoes the Content-Encoding. Setting Accept-Encoding by hand
// turns off net/http's transparent gzip handling, so every advertised
// encoding is handled here.
func respBodyReader(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get(headerContentEncoding))) {
	case encodingGzip:
		return gzip.NewReader(resp.Body)
	case encodingDeflate:
		// HTTP "deflate" is the zlib format
		return zlib.NewReader(resp.Body)
	case encodingBrotli:
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
