// Package toolserver exposes the capability registry over MCP.
package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/tanpawarit/careermate/agent/capability"
	logx "github.com/tanpawarit/careermate/pkg/logger"
)

const Name = "careermate-capabilities"

type Server struct {
	mcpServer *server.MCPServer
	tools     []mcp.Tool
	handlers  map[string]server.ToolHandlerFunc
	logger    zerolog.Logger
}

func New(caps *capability.Registry, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(Name, version, server.WithToolCapabilities(false)),
		handlers:  make(map[string]server.ToolHandlerFunc),
		logger:    logx.Component("toolserver"),
	}
	for _, c := range caps.List() {
		tool := toolFor(c)
		handler := s.handle(caps, c.Name)
		s.mcpServer.AddTool(tool, handler)
		s.tools = append(s.tools, tool)
		s.handlers[c.Name] = handler
	}
	return s
}

func toolFor(c *capability.Capability) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(c.Description)}
	for _, arg := range c.Args {
		propOpts := []mcp.PropertyOption{mcp.Description(arg.Desc)}
		if arg.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		switch arg.Type {
		case capability.ArgStringList:
			propOpts = append(propOpts, mcp.Items(map[string]any{"type": "string"}))
			opts = append(opts, mcp.WithArray(arg.Name, propOpts...))
		default:
			if def, ok := arg.Default.(string); ok && def != "" {
				propOpts = append(propOpts, mcp.DefaultString(def))
			}
			opts = append(opts, mcp.WithString(arg.Name, propOpts...))
		}
	}
	return mcp.NewTool(c.Name, opts...)
}

// handle turns capability failures into tool errors so the protocol
// session stays healthy.
func (s *Server) handle(caps *capability.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := caps.Invoke(name, request.GetArguments())
		if err != nil {
			s.logger.Warn().Err(err).Str("capability", name).Msg("capability call failed")
			return mcp.NewToolResultError(err.Error()), nil
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

// Tools lists the tools in registration order.
func (s *Server) Tools() []mcp.Tool {
	return append([]mcp.Tool(nil), s.tools...)
}

// Call runs one tool in process, the same way a remote client would.
func (s *Server) Call(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[request.Params.Name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown tool %q", request.Params.Name)), nil
	}
	return handler(ctx, request)
}

func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
