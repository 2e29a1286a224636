package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/germanamz/flomo-mcp/pkg/config"
	"github.com/germanamz/flomo-mcp/pkg/notetool"
	"github.com/germanamz/flomo-mcp/pkg/tools/mcpserver"
	"github.com/germanamz/flomo-mcp/pkg/tools/toolbox"
)

const shutdownTimeout = 5 * time.Second

// newWriter builds the note tool with logging, recovery and the configured
// deadline applied to every call.
func newWriter(cfg config.Config, log *slog.Logger) (*notetool.Writer, error) {
	w, err := notetool.New(cfg.APIURL,
		notetool.WithLinkHost(cfg.LinkHost),
		notetool.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	w.Tools().Use(
		toolbox.Logger(log),
		toolbox.Recovery(),
		toolbox.Timeout(cfg.Timeout),
	)

	return w, nil
}

// newServer returns an MCP server with the note tool registered.
func newServer(cfg config.Config, log *slog.Logger) (*mcpserver.MCPServer, error) {
	w, err := newWriter(cfg, log)
	if err != nil {
		return nil, err
	}

	s := mcpserver.New(serverName, serverVersion)
	s.Register(w.Tools().Tools()...)

	return s, nil
}

// runServe serves MCP until ctx is cancelled or the transport closes.
func runServe(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.APIURL == "" {
		log.Warn("flomo API URL not set; write_note will fail until " + config.EnvAPIURL + " or -flomo_api_url is provided")
	}

	s, err := newServer(cfg, log)
	if err != nil {
		return err
	}

	if cfg.HTTPAddr != "" {
		return serveHTTP(ctx, cfg.HTTPAddr, s.Router(), log)
	}

	log.Info("serving MCP over stdio", "server", serverName, "version", serverVersion)

	return s.Serve(ctx, os.Stdin, os.Stdout)
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("serving MCP over HTTP", "addr", addr, "path", mcpserver.MCPPath)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("shutting down HTTP server")

	return srv.Shutdown(shutdownCtx)
}
