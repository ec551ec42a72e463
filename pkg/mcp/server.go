package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/guardit/pkg/app"
)

// Server exposes the GuardIt services as MCP tools
type Server struct {
	mcpServer *server.MCPServer
	services  *app.Services
}

// NewServer creates an MCP server over services
func NewServer(services *app.Services) *Server {
	s := &Server{services: services}

	s.mcpServer = server.NewMCPServer(
		"guardit",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio serves MCP over stdin/stdout
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
