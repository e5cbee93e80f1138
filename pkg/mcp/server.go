package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/kls/pkg/lint"
	"github.com/macropower/kls/pkg/log"
	"github.com/macropower/kls/pkg/schema"
	"github.com/macropower/kls/pkg/version"
)

// Server implements the MCP server for kls.
type Server struct {
	server  *mcp.Server
	tracer  trace.Tracer
	schemas *schema.Registry
	history *log.History
	address string
	linters []lint.Linter
}

// ServerOpt configures a [Server].
type ServerOpt func(*Server)

// WithSchemas sets the registry used for node descriptions.
func WithSchemas(r *schema.Registry) ServerOpt {
	return func(s *Server) {
		s.schemas = r
	}
}

// WithLinters sets the linters run by the lint tool. Defaults to
// [lint.Builtin].
func WithLinters(linters ...lint.Linter) ServerOpt {
	return func(s *Server) {
		s.linters = linters
	}
}

// WithHistory exposes recent log records through the recent_logs tool.
func WithHistory(h *log.History) ServerOpt {
	return func(s *Server) {
		s.history = h
	}
}

// WithTracer sets the tracer used for tool call spans.
func WithTracer(t trace.Tracer) ServerOpt {
	return func(s *Server) {
		s.tracer = t
	}
}

// NewServer creates a new MCP server. An empty address serves on stdio.
func NewServer(address string, opts ...ServerOpt) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		address: address,
		server:  mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		tracer:  otel.Tracer("mcp-server"),
		linters: lint.Builtin(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()

	return s
}

// registerTools registers all available tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, detectManifestTool(), WithTracing(s.tracer, s.DetectManifest))
	mcp.AddTool(s.server, findNodeTool(), WithTracing(s.tracer, s.FindNode))
	mcp.AddTool(s.server, resolveGVKTool(), WithTracing(s.tracer, s.ResolveGVK))
	mcp.AddTool(s.server, lintTool(), WithTracing(s.tracer, s.Lint))
	mcp.AddTool(s.server, listSymbolsTool(), WithTracing(s.tracer, s.ListSymbols))

	if s.history != nil {
		mcp.AddTool(s.server, recentLogsTool(), WithTracing(s.tracer, s.RecentLogs))
	}
}

func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve starts the MCP server and blocks until ctx is canceled or the
// transport fails.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.ErrorContext(ctx, "shut down MCP server", slog.Any("error", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := mcp.NewLoggingTransport(mcp.NewStdioTransport(), os.Stderr)

	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
