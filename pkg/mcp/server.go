// Package mcp implements a Model Context Protocol server exposing the
// mnemonifier codec as MCP tools over stdio transport.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/schierlm/mnemonifier/pkg/codec"
	"github.com/schierlm/mnemonifier/pkg/observability"
	"github.com/schierlm/mnemonifier/pkg/version"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "mnemonify"

	// toolCount is the expected number of registered tools.
	toolCount = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Codec performs the conversions. Nil uses the embedded table without
	// an annotator.
	Codec *codec.Codec

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the codec tool registrations.
type Server struct {
	inner       *mcpsdk.Server
	codec       *codec.Codec
	logger      *slog.Logger
	mu          sync.RWMutex
	tools       []string
	instruments observability.Instruments
}

// NewServer creates a new MCP server with all codec tools registered.
func NewServer(deps ServerDeps) (*Server, error) {
	cdc := deps.Codec
	if cdc == nil {
		var err error

		cdc, err = codec.New()
		if err != nil {
			return nil, fmt.Errorf("mcp server: %w", err)
		}
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{
		inner:       inner,
		codec:       cdc,
		logger:      logger,
		tools:       make([]string, 0, toolCount),
		instruments: observability.Instruments{Tracer: deps.Tracer, RED: deps.Metrics},
	}

	srv.registerTools()

	return srv, nil
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// registerTools adds all codec MCP tools to the server.
func (s *Server) registerTools() {
	addTool(s, ToolNameEncode, encodeToolDescription, s.handleEncode)
	addTool(s, ToolNameDecode, decodeToolDescription, s.handleDecode)
	addTool(s, ToolNameLookup, lookupToolDescription, s.handleLookup)
}

func addTool[In, Out any](s *Server, name, description string, handler toolHandler[In, Out]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, mcpsdk.ToolHandlerFor[In, Out](instrumented(s.instruments, name, handler)))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

type toolHandler[In, Out any] func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, Out, error)

const (
	toolOpPrefix = "mcp."
	traceIDKey   = "trace_id"
)

// errToolResult stands in for a result the handler flagged with IsError.
var errToolResult = errors.New("tool result is an error")

// instrumented runs each call of a tool as the operation "mcp.<tool>". The
// raw argument size counts as input bytes. When the span is sampled its
// trace ID is appended to the result so clients can quote it.
func instrumented[In, Out any](in observability.Instruments, toolName string, handler toolHandler[In, Out]) toolHandler[In, Out] {
	op := toolOpPrefix + toolName

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, Out, error) {
		size := 0
		if req != nil && req.Params != nil {
			size = len(req.Params.Arguments)
		}

		ctx, finish := in.Start(ctx, op, size,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)

		result, output, err := handler(ctx, req, input)

		failure := err
		if failure == nil && result != nil && result.IsError {
			failure = errToolResult
		}

		if sc := trace.SpanContextFromContext(ctx); sc.IsSampled() && result != nil {
			result.Content = append(result.Content, &mcpsdk.TextContent{Text: traceIDKey + "=" + sc.TraceID().String()})
		}

		finish(failure)

		return result, output, err
	}
}

// Tool description constants.
const (
	encodeToolDescription = "Convert Unicode text to mnemonified ASCII. " +
		"Characters with an RFC 1345 mnemonic become [mnemonic], others become [#HEX]; " +
		"square brackets are escaped as [[] and []]."

	decodeToolDescription = "Convert mnemonified ASCII back to the original Unicode text. " +
		"Strict mode rejects any input the encoder could not have produced. " +
		"Lone surrogates such as [#D800] cannot travel in a JSON string; " +
		"when they occur the result also lists the exact UTF-16 code units."

	lookupToolDescription = "Look up the mnemonic of a single character, or the character " +
		"of a mnemonic. Accepts a character, a mnemonic, or a codepoint such as U+00FC."
)
