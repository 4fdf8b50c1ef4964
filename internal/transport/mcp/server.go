// Package mcp exposes the optimizer to MCP clients over stdio or HTTP.
package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sandevgo/slimctx/internal/config"
	"github.com/sandevgo/slimctx/internal/core"
	"github.com/sandevgo/slimctx/internal/optimizer"
	"github.com/sandevgo/slimctx/pkg/log"
)

// Server wraps the MCP protocol server around one Optimizer instance.
type Server struct {
	opt      *optimizer.Optimizer
	counter  core.TokenCounter
	defaults *config.AppConfig
	server   *mcp.Server
	httpAddr string
}

// NewServer builds the MCP server. When httpAddr is empty the server speaks
// stdio; otherwise it serves streamable HTTP on that address.
func NewServer(opt *optimizer.Optimizer, counter core.TokenCounter, defaults *config.AppConfig, httpAddr string) *Server {
	impl := &mcp.Implementation{
		Name:    core.AppName,
		Version: core.AppVersion,
	}

	s := &Server{
		opt:      opt,
		counter:  counter,
		defaults: defaults,
		server:   mcp.NewServer(impl, nil),
		httpAddr: httpAddr,
	}

	s.registerTools()
	return s
}

// Start implements srv.Service. It blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	if s.httpAddr != "" {
		logger.Info().Str("addr", s.httpAddr).Msg("starting MCP server over HTTP")
		return s.runHTTP(ctx)
	}
	logger.Info().Msg("starting MCP server over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown implements srv.Service. Run exits on context cancellation, so
// there is nothing extra to tear down.
func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

func (s *Server) runHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              s.httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
