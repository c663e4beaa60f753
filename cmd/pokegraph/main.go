package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanpama/pokegraph/internal/eventbus"
	"github.com/hanpama/pokegraph/internal/executor"
	"github.com/hanpama/pokegraph/internal/introspection"
	"github.com/hanpama/pokegraph/internal/logging"
	"github.com/hanpama/pokegraph/internal/otel"
	"github.com/hanpama/pokegraph/internal/pokeapi"
	"github.com/hanpama/pokegraph/internal/restrt"
	"github.com/hanpama/pokegraph/internal/resttp"
	"github.com/hanpama/pokegraph/internal/schema"
	"github.com/hanpama/pokegraph/internal/server"
)

const rootUsage = `pokegraph: GraphQL gateway for PokeAPI

USAGE:
  pokegraph <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL gateway
  print-schema     Print the gateway schema as SDL
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -server.addr <addr>                 HTTP listen address (default: :4000)
  -server.path <path>                 GraphQL endpoint path (default: /graphql)
  -server.pretty                      Pretty-print JSON responses
  -server.timeout <duration>          Default per-request timeout (default: 10s)
  -server.max-body <bytes>            Request body limit (default: 1048576)
  -server.cors <origin>               Allowed CORS origin, or *. Repeatable
  -server.forward-header <name>       Forward an incoming header upstream. Repeatable
  -server.graphiql <bool>             Serve GraphiQL to browsers (default: true)
  -graphql.introspection <bool>       Enable GraphQL introspection (default: true)
  -upstream.base-url <url>            PokeAPI base URL (default: https://pokeapi.co/api/v2)
  -upstream.timeout <duration>        Per-call upstream timeout; 0 inherits the request deadline
  -upstream.user-agent <ua>           User-Agent sent upstream (default: pokegraph)
  -upstream.max-concurrency N         Concurrent upstream calls per depth (default: 8)
  -upstream.max-body <bytes>          Upstream response body limit (default: 16777216)
  -log.json                           Log as JSON
  -log.debug                          Log at debug level with source locations
  -otel.endpoint <addr>               OTLP collector endpoint
  -otel.service <name>                OpenTelemetry service name (default: pokegraph)
`

const printSchemaUsage = `print-schema FLAGS:
  -out <file>    Write SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "pokegraph:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}
	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs, stderr)
	case "print-schema":
		return cmdPrintSchema(cmdArgs, stdout, stderr)
	case "help", "-h", "-help", "--help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "print-schema":
		fmt.Fprint(stdout, printSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type serveConfig struct {
	addr          string
	path          string
	pretty        bool
	timeout       time.Duration
	maxBody       int64
	cors          stringListFlag
	forward       stringListFlag
	graphiql      bool
	introspection bool

	upstreamBaseURL     string
	upstreamTimeout     time.Duration
	upstreamUserAgent   string
	upstreamConcurrency int
	upstreamMaxBody     int64

	logJSON  bool
	logDebug bool

	otelEndpoint string
	otelService  string
}

func defaultServeConfig() serveConfig {
	return serveConfig{
		addr:                ":4000",
		path:                "/graphql",
		timeout:             10 * time.Second,
		maxBody:             1 << 20,
		graphiql:            true,
		introspection:       true,
		upstreamBaseURL:     pokeapi.DefaultBaseURL,
		upstreamUserAgent:   "pokegraph",
		upstreamConcurrency: 8,
		upstreamMaxBody:     16 << 20,
		otelService:         "pokegraph",
	}
}

func parseServeFlags(args []string) (serveConfig, error) {
	cfg := defaultServeConfig()
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&cfg.addr, "server.addr", cfg.addr, "HTTP listen address")
	fs.StringVar(&cfg.path, "server.path", cfg.path, "GraphQL endpoint path")
	fs.BoolVar(&cfg.pretty, "server.pretty", cfg.pretty, "Pretty-print JSON responses")
	fs.DurationVar(&cfg.timeout, "server.timeout", cfg.timeout, "Default per-request timeout")
	fs.Int64Var(&cfg.maxBody, "server.max-body", cfg.maxBody, "Request body limit")
	fs.Var(&cfg.cors, "server.cors", "Allowed CORS origin")
	fs.Var(&cfg.forward, "server.forward-header", "Forward an incoming header upstream")
	fs.BoolVar(&cfg.graphiql, "server.graphiql", cfg.graphiql, "Serve GraphiQL")
	fs.BoolVar(&cfg.introspection, "graphql.introspection", cfg.introspection, "Enable GraphQL introspection")
	fs.StringVar(&cfg.upstreamBaseURL, "upstream.base-url", cfg.upstreamBaseURL, "PokeAPI base URL")
	fs.DurationVar(&cfg.upstreamTimeout, "upstream.timeout", cfg.upstreamTimeout, "Per-call upstream timeout")
	fs.StringVar(&cfg.upstreamUserAgent, "upstream.user-agent", cfg.upstreamUserAgent, "User-Agent sent upstream")
	fs.IntVar(&cfg.upstreamConcurrency, "upstream.max-concurrency", cfg.upstreamConcurrency, "Concurrent upstream calls per depth")
	fs.Int64Var(&cfg.upstreamMaxBody, "upstream.max-body", cfg.upstreamMaxBody, "Upstream response body limit")
	fs.BoolVar(&cfg.logJSON, "log.json", cfg.logJSON, "Log as JSON")
	fs.BoolVar(&cfg.logDebug, "log.debug", cfg.logDebug, "Log at debug level")
	fs.StringVar(&cfg.otelEndpoint, "otel.endpoint", cfg.otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&cfg.otelService, "otel.service", cfg.otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.upstreamBaseURL == "" {
		return cfg, fmt.Errorf("-upstream.base-url must not be empty")
	}
	if cfg.upstreamConcurrency < 1 {
		return cfg, fmt.Errorf("-upstream.max-concurrency must be at least 1")
	}
	return cfg, nil
}

// buildHandler wires schema, resolvers, runtime and HTTP handler for cfg.
func buildHandler(cfg serveConfig) (http.Handler, error) {
	sch, err := pokeapi.LoadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	tp := resttp.New(
		resttp.WithBaseURL(cfg.upstreamBaseURL),
		resttp.WithTimeout(cfg.upstreamTimeout),
		resttp.WithUserAgent(cfg.upstreamUserAgent),
		resttp.WithMaxBodyBytes(cfg.upstreamMaxBody),
	)
	reg := pokeapi.Register(restrt.NewRegistry(), pokeapi.NewClient(tp))
	if err := reg.Check(sch); err != nil {
		return nil, fmt.Errorf("resolver registry: %w", err)
	}
	var runtime executor.Runtime = restrt.NewRuntime(reg, restrt.WithMaxConcurrency(cfg.upstreamConcurrency))

	if cfg.introspection {
		wrapped := introspection.Wrap(runtime, sch)
		runtime, sch = wrapped.Runtime, wrapped.Schema
	}

	sopts := []server.Option{
		server.WithTimeout(cfg.timeout),
		server.WithMaxBodyBytes(cfg.maxBody),
		server.WithGraphiQL(cfg.graphiql),
	}
	if cfg.pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(cfg.cors) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.cors...))
	}
	if len(cfg.forward) > 0 {
		sopts = append(sopts, server.WithForwardHeaders(cfg.forward...))
	}
	h, err := server.New(runtime, sch, sopts...)
	if err != nil {
		return nil, fmt.Errorf("server init: %w", err)
	}
	return server.NewMux(h, cfg.path), nil
}

func cmdServe(args []string, stderr io.Writer) error {
	cfg, err := parseServeFlags(args)
	if err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}

	logger := logging.Configure(stderr, logging.Config{JSON: cfg.logJSON, Debug: cfg.logDebug})
	eventbus.Use(eventbus.New())
	defer logging.Subscribe(logger)()

	shutdown, err := otel.Setup(cfg.otelEndpoint, cfg.otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	handler, err := buildHandler(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("GraphQL server listening",
		slog.String("addr", cfg.addr),
		slog.String("path", cfg.path),
		slog.String("upstream", cfg.upstreamBaseURL),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cmdPrintSchema(args []string, stdout, stderr io.Writer) error {
	outFile := ""
	fs := flag.NewFlagSet("print-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, printSchemaUsage)
		return err
	}

	sch, err := pokeapi.LoadSchema()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	sdl := schema.Render(sch)
	if outFile == "" {
		_, err := io.WriteString(stdout, sdl)
		return err
	}
	return os.WriteFile(outFile, []byte(sdl), 0o644)
}
