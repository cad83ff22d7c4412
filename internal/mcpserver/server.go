// Package mcpserver exposes the Okta admin operations as MCP tools over
// stdio. Handlers are deliberately thin: validate arguments, call the API
// client, shape the response as JSON. All authentication happens behind the
// client's token source.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"oktamcp/internal/auth"
	"oktamcp/internal/okta"
	"oktamcp/pkg/logging"
)

const subsystem = "mcpserver"

// Server wraps the MCP stdio server and the Okta client behind it.
type Server struct {
	client    *okta.Client
	mcpServer *server.MCPServer
}

// New creates the MCP server and registers the full tool surface.
func New(client *okta.Client, version string) *Server {
	mcpServer := server.NewMCPServer(
		"okta-mcp-server",
		version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		client:    client,
		mcpServer: mcpServer,
	}

	s.registerUserTools()
	s.registerGroupTools()
	s.registerApplicationTools()
	s.registerPolicyTools()
	s.registerLogTools()
	s.registerMappingTools()

	return s
}

// Start serves MCP over stdio and blocks until the connection closes or the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	logging.Info(subsystem, "serving MCP over stdio")
	return s.listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) listen(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// jsonResult marshals v as an indented JSON tool result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// rawResult returns an already-JSON payload as a tool result.
func rawResult(raw json.RawMessage) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(string(raw)), nil
}

// errorResult maps API and auth failures to tool errors. A credential that
// needs the operator's attention gets an instructive message instead of the
// bare error chain.
func errorResult(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, auth.ErrReauthenticationRequired) {
		return mcp.NewToolResultError(
			"Authentication with Okta has lapsed and cannot be renewed automatically. " +
				"Run 'oktamcp auth login' to authenticate again, then retry. (" + err.Error() + ")",
		), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}

// confirmed gates destructive operations behind an explicit confirm=true
// argument so an agent cannot delete resources on a speculative call.
func confirmed(request mcp.CallToolRequest, action string) *mcp.CallToolResult {
	if request.GetBool("confirm", false) {
		return nil
	}
	return mcp.NewToolResultError(fmt.Sprintf(
		"Refusing to %s without confirmation. Repeat the call with confirm=true once the operator has approved this destructive operation.",
		action,
	))
}

// rawBody extracts a required JSON-object argument as a raw message.
func rawBody(request mcp.CallToolRequest, key string) (json.RawMessage, *mcp.CallToolResult) {
	value, ok := request.GetArguments()[key]
	if !ok || value == nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("missing required argument %q", key))
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("argument %q is not valid JSON: %v", key, err))
	}
	return data, nil
}

// listParams reads the common list arguments.
func listParams(request mcp.CallToolRequest) okta.ListParams {
	return okta.ListParams{
		Q:      request.GetString("q", ""),
		Filter: request.GetString("filter", ""),
		Search: request.GetString("search", ""),
		Limit:  request.GetInt("limit", 0),
		After:  request.GetString("after", ""),
	}
}
