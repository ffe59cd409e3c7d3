// Package mcpfront exposes the tool registry over the Model Context
// Protocol for interactive debugging: an operator can attach an MCP
// client and call the exact same tool functions the investigation
// pipeline uses, against a live CloudClient.
package mcpfront

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

var log = logging.Get("mcpfront")

// Server wraps an mcp-go server bound to one CloudClient and one tool
// Registry. It is optional: operators enable it only for debugging a
// live investigation's tool surface, never for the pipeline itself.
type Server struct {
	mcpServer *server.MCPServer
	client    *cloudclient.Client
	registry  *tools.Registry
}

// New builds an MCP server exposing every definition in registry as an
// MCP tool, dispatching through client.
func New(registry *tools.Registry, client *cloudclient.Client, version string) *Server {
	mcpServer := server.NewMCPServer(
		"rca-engine tool frontend",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s := &Server{mcpServer: mcpServer, client: client, registry: registry}
	for _, def := range registry.List() {
		s.registerTool(def)
	}
	return s
}

func (s *Server) registerTool(def tools.Definition) {
	schemaJSON, err := json.Marshal(def.InputSchema)
	if err != nil {
		log.ErrorErr("marshal schema for tool", err, logging.F("tool", def.Name))
		return
	}

	mcpTool := mcp.NewToolWithRawSchema(def.Name, def.Description, schemaJSON)
	s.mcpServer.AddTool(mcpTool, s.handlerFor(def.Name))
}

func (s *Server) handlerFor(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		result := s.registry.Execute(ctx, s.client, name, args)
		return mcp.NewToolResultText(result), nil
	}
}

// ServeStdio runs the MCP server over stdin/stdout, blocking until the
// transport closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
