package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/dryscan/pkg/config"
)

// Server wraps the MCP server and registers the dryscan tools.
type Server struct {
	server *mcp.Server
	config *config.Config
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the configuration tool calls start from.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.config = cfg
	}
}

// WithLogger sets the logger handed to the analysis service. Stdout carries
// the protocol, so it must not write there.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		config: config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "dryscan",
			Version: version,
		},
		nil,
	)
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze",
		Description: describeAnalyze(),
	}, s.handler(true, true))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "similar_types",
		Description: describeSimilarTypes(),
	}, s.handler(true, false))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "dry_violations",
		Description: describeDRYViolations(),
	}, s.handler(false, true))
}
