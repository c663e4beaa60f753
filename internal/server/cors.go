package server

import (
	"net/http"
	"slices"
)

// applyCORS answers for allowed origins only. Preflight requests also get the
// allowed methods and echo the requested headers.
func applyCORS(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" || len(opts.AllowedOrigins) == 0 {
		return
	}
	switch {
	case slices.Contains(opts.AllowedOrigins, "*"):
		w.Header().Set("Access-Control-Allow-Origin", "*")
	case slices.Contains(opts.AllowedOrigins, origin):
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	default:
		return
	}
	if r.Method != http.MethodOptions {
		return
	}
	if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
		w.Header().Set("Access-Control-Allow-Headers", hdr)
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
}
