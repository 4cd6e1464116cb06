package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/schierlm/mnemonifier/pkg/config"
	"github.com/schierlm/mnemonifier/pkg/mcp"
	"github.com/schierlm/mnemonifier/pkg/observability"
)

const (
	metricsPath              = "/metrics"
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(opts *GlobalOptions) *cobra.Command {
	var metricsListen string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the codec as tools that AI agents can discover and invoke:
  - mnemonify_encode: Encode Unicode text to mnemonic ASCII
  - mnemonify_decode: Decode mnemonic ASCII, optionally strictly
  - mnemonic_lookup: Look up a character, codepoint or mnemonic

With --metrics-listen the RED metrics of the tool calls are served for
Prometheus at /metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd, opts, observability.ModeMCP, func(cfg *config.Config) {
				if cmd.Flags().Changed("metrics-listen") {
					cfg.Metrics.Listen = metricsListen
				}
			})
			if err != nil {
				return err
			}
			defer sess.close(context.Background())

			srv, err := mcp.NewServer(mcp.ServerDeps{
				Codec:   sess.codec,
				Logger:  sess.logger,
				Metrics: sess.inst.RED,
				Tracer:  sess.inst.Tracer,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if sess.providers.MetricsHandler != nil {
				addr, shutdown, serveErr := serveMetrics(sess, sess.cfg.Metrics.Listen)
				if serveErr != nil {
					return serveErr
				}
				defer shutdown()

				sess.logger.InfoContext(ctx, "metrics endpoint listening", slog.String("addr", addr))
			}

			sess.logger.InfoContext(ctx, "mcp server starting", slog.Any("tools", srv.ListToolNames()))

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")

	return cmd
}

// serveMetrics starts the Prometheus endpoint and returns its bound address
// and a function that stops it.
func serveMetrics(sess *session, listen string) (string, func(), error) {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return "", nil, fmt.Errorf("listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, observability.InstrumentHandler(sess.inst, sess.providers.MetricsHandler))

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := server.Serve(ln)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			sess.logger.Error("metrics endpoint failed", slog.Any("error", serveErr))
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
			sess.logger.Warn("metrics endpoint shutdown failed", slog.Any("error", shutdownErr))
		}
	}

	return ln.Addr().String(), shutdown, nil
}
