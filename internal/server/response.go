package server

import (
	"encoding/json"
	"net/http"

	executor "github.com/hanpama/pokegraph/internal/executor"
	language "github.com/hanpama/pokegraph/internal/language"
)

type response struct {
	Data   any          `json:"data"`
	Errors []errorEntry `json:"errors,omitempty"`
}

type errorEntry struct {
	Message    string         `json:"message"`
	Locations  []location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// rejected builds the response for a document that never reached execution.
func rejected(errs ...*language.Error) response {
	out := response{Errors: make([]errorEntry, 0, len(errs))}
	for _, err := range errs {
		e := errorEntry{Message: err.Message, Extensions: err.Extensions}
		for _, l := range err.Locations {
			e.Locations = append(e.Locations, location{Line: l.Line, Column: l.Column})
		}
		out.Errors = append(out.Errors, e)
	}
	return out
}

func fromResult(res *executor.ExecutionResult) response {
	out := response{Data: res.Data}
	for _, err := range res.Errors {
		e := errorEntry{Message: err.Message, Extensions: err.Extensions}
		if len(err.Path) > 0 {
			e.Path = make([]any, len(err.Path))
			for i, p := range err.Path {
				e.Path[i] = p
			}
		}
		out.Errors = append(out.Errors, e)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
