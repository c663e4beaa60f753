package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"help", "serve"}, &out, &errOut))
	require.Contains(t, out.String(), "-upstream.base-url")

	out.Reset()
	require.NoError(t, run([]string{"help"}, &out, &errOut))
	require.Contains(t, out.String(), "print-schema")

	require.ErrorContains(t, run([]string{"help", "nope"}, &out, &errOut), "unknown help topic")
}

func TestUnknownAndMissingCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	require.ErrorContains(t, run(nil, &out, &errOut), "missing command")
	require.ErrorContains(t, run([]string{"compile"}, &out, &errOut), `unknown command "compile"`)
	require.Contains(t, errOut.String(), "USAGE")
}

func TestPrintSchema(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"print-schema"}, &out, &errOut))
	sdl := out.String()
	require.Contains(t, sdl, "fetchPokemon(pokemonName: String!): Pokemon")
	require.Contains(t, sdl, "detail: FormDetail")
	require.NotContains(t, sdl, "@resolve")

	path := filepath.Join(t.TempDir(), "schema.graphql")
	require.NoError(t, run([]string{"print-schema", "-out", path}, &out, &errOut))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, sdl, string(written))
}

func TestParseServeFlags(t *testing.T) {
	cfg, err := parseServeFlags(nil)
	require.NoError(t, err)
	require.Equal(t, defaultServeConfig(), cfg)

	cfg, err = parseServeFlags([]string{
		"-server.addr", ":9000",
		"-server.forward-header", "Authorization",
		"-server.forward-header", "X-Trace",
		"-upstream.timeout", "3s",
		"-graphql.introspection=false",
	})
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.addr)
	require.Equal(t, stringListFlag{"Authorization", "X-Trace"}, cfg.forward)
	require.Equal(t, 3*time.Second, cfg.upstreamTimeout)
	require.False(t, cfg.introspection)

	_, err = parseServeFlags([]string{"-upstream.max-concurrency", "0"})
	require.Error(t, err)
	_, err = parseServeFlags([]string{"-nope"})
	require.Error(t, err)
	_, err = parseServeFlags([]string{"extra"})
	require.Error(t, err)
}

func TestServeEndToEnd(t *testing.T) {
	var (
		mu       sync.Mutex
		seenAuth string
	)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pokemon/ditto":
			mu.Lock()
			seenAuth = r.Header.Get("Authorization")
			mu.Unlock()
			_, _ = w.Write([]byte(`{"name":"ditto","forms":[{"name":"ditto","url":"http://` + r.Host + `/pokemon-form/132/"}]}`))
		case "/pokemon-form/132/":
			_, _ = w.Write([]byte(`{"id":132,"name":"ditto","is_battle_only":false}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	cfg := defaultServeConfig()
	cfg.upstreamBaseURL = upstream.URL
	cfg.forward = stringListFlag{"Authorization"}
	handler, err := buildHandler(cfg)
	require.NoError(t, err)
	gw := httptest.NewServer(handler)
	defer gw.Close()

	post := func(query string) map[string]any {
		body, _ := json.Marshal(map[string]any{"query": query})
		req, err := http.NewRequest("POST", gw.URL+"/graphql", bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer ash")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	out := post(`{ fetchPokemon(pokemonName: "ditto") { name forms { name detail { id } } } }`)
	require.Equal(t, map[string]any{"fetchPokemon": map[string]any{
		"name":  "ditto",
		"forms": []any{map[string]any{"name": "ditto", "detail": map[string]any{"id": float64(132)}}},
	}}, out["data"])
	mu.Lock()
	require.Equal(t, "Bearer ash", seenAuth)
	mu.Unlock()

	out = post(`{ fetchPokemon(pokemonName: "missingno") { name } }`)
	require.Equal(t, map[string]any{"fetchPokemon": nil}, out["data"])
	errs := out["errors"].([]any)
	require.True(t, strings.Contains(errs[0].(map[string]any)["message"].(string), "missingno"))

	out = post(`{ __type(name: "Form") { fields { name } } }`)
	require.Equal(t, map[string]any{"__type": map[string]any{"fields": []any{
		map[string]any{"name": "name"},
		map[string]any{"name": "url"},
		map[string]any{"name": "detail"},
	}}}, out["data"])

	resp, err := http.Get(gw.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeKeepsQueryFieldOrder(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pokemon/pikachu":
			_, _ = w.Write([]byte(`{"name":"pikachu",
				"types":[{"slot":1,"type":{"name":"electric","url":"u"}}],
				"forms":[{"name":"pikachu","url":"http://` + r.Host + `/pokemon-form/25/"}]}`))
		case "/pokemon-form/25/":
			_, _ = w.Write([]byte(`{"name":"pikachu","is_battle_only":false,"id":25}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	cfg := defaultServeConfig()
	cfg.upstreamBaseURL = upstream.URL
	handler, err := buildHandler(cfg)
	require.NoError(t, err)
	gw := httptest.NewServer(handler)
	defer gw.Close()

	// every level is selected in reverse alphabetical order
	q := `{ fetchPokemon(pokemonName: "pikachu") { types { type { url name } slot } name forms { url name detail { name id } } } }`
	resp, err := http.Get(gw.URL + "/graphql?query=" + url.QueryEscape(q))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	formURL := upstream.URL + "/pokemon-form/25/"
	want := `{"data":{"fetchPokemon":{` +
		`"types":[{"type":{"url":"u","name":"electric"},"slot":1}],` +
		`"name":"pikachu",` +
		`"forms":[{"url":"` + formURL + `","name":"pikachu","detail":{"name":"pikachu","id":25}}]}}}`
	require.Equal(t, want, strings.TrimSpace(string(body)))
}
