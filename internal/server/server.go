// Package server serves GraphQL over HTTP: GET and POST, batched POST,
// CORS, and a GraphiQL page for browsers.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	eventbus "github.com/hanpama/pokegraph/internal/eventbus"
	events "github.com/hanpama/pokegraph/internal/events"
	executor "github.com/hanpama/pokegraph/internal/executor"
	language "github.com/hanpama/pokegraph/internal/language"
	reqid "github.com/hanpama/pokegraph/internal/reqid"
	"github.com/hanpama/pokegraph/internal/resttp"
	schema "github.com/hanpama/pokegraph/internal/schema"
)

type Handler struct {
	exec *executor.Executor
	opt  Options
}

// New returns a handler executing against sch with runtime. Unless
// overridden, requests time out after 10s and GraphiQL is served.
func New(runtime executor.Runtime, sch *schema.Schema, opts ...Option) (*Handler, error) {
	if sch == nil {
		return nil, errors.New("server: nil schema")
	}
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	return &Handler{exec: executor.NewExecutor(runtime, sch), opt: o}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}
	ctx, rid := reqid.FromIncoming(ctx, r.Header.Get(reqid.Header))
	w.Header().Set(reqid.Header, rid)

	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	applyCORS(w, r, h.opt.CORS)

	switch {
	case r.Method == http.MethodOptions:
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	case r.Method != http.MethodGet && r.Method != http.MethodPost:
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, rejected(&language.Error{Message: "method not allowed"}), h.opt.Pretty)
		return
	case h.opt.GraphiQL && wantsGraphiQL(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(graphiqlPage)
		return
	}

	reqs, batched, err := decodeRequest(w, r, h.opt.MaxBodyBytes)
	if err != nil {
		var re *requestError
		if !errors.As(err, &re) {
			re = badRequest(err.Error())
		}
		status = re.status
		writeJSON(w, status, rejected(&language.Error{Message: re.message}), h.opt.Pretty)
		return
	}

	ctx = resttp.WithForwardedHeaders(ctx, h.forwarded(r, rid))

	if !batched {
		writeJSON(w, status, h.execute(ctx, reqs[0]), h.opt.Pretty)
		return
	}
	out := make([]response, len(reqs))
	for i, req := range reqs {
		out[i] = h.execute(ctx, req)
	}
	writeJSON(w, status, out, h.opt.Pretty)
}

// forwarded collects the configured incoming headers plus the request id.
func (h *Handler) forwarded(r *http.Request, rid string) http.Header {
	fwd := make(http.Header, len(h.opt.ForwardHeaders)+1)
	for _, name := range h.opt.ForwardHeaders {
		if vs := r.Header.Values(name); len(vs) > 0 {
			fwd[http.CanonicalHeaderKey(name)] = append([]string(nil), vs...)
		}
	}
	fwd.Set(reqid.Header, rid)
	return fwd
}

func (h *Handler) execute(ctx context.Context, req GraphQLRequest) response {
	doc, errs := h.parse(req.Query)
	if len(errs) > 0 {
		return rejected(errs...)
	}

	var opType string
	if op := doc.Operations.ForName(req.OperationName); op != nil {
		opType = string(op.Operation)
	} else if len(doc.Operations) == 1 {
		opType = string(doc.Operations[0].Operation)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	res := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, nil)

	finish := events.GraphQLFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Duration:      time.Since(start),
	}
	for _, e := range res.Errors {
		finish.Errors = append(finish.Errors, e)
	}
	eventbus.Publish(ctx, finish)
	return fromResult(res)
}

// parse checks syntax and, when the schema carries its validated form,
// validates the document against it.
func (h *Handler) parse(query string) (*language.QueryDocument, language.ErrorList) {
	if v := h.exec.Schema().Validated; v != nil {
		return language.LoadQuery(v, query)
	}
	doc, err := language.ParseQuery(query)
	if err == nil {
		return doc, nil
	}
	var ge *language.Error
	if errors.As(err, &ge) {
		return nil, language.ErrorList{ge}
	}
	return nil, language.ErrorList{{Message: err.Error()}}
}
