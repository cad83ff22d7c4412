package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"oktamcp/internal/okta"
)

func (s *Server) registerLogTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_logs",
		mcp.WithDescription("Query the Okta system log"),
		mcp.WithString("since", mcp.Description("Start of the query window, ISO 8601 timestamp")),
		mcp.WithString("until", mcp.Description("End of the query window, ISO 8601 timestamp")),
		mcp.WithString("filter", mcp.Description("SCIM filter expression, e.g. eventType eq \"user.session.start\"")),
		mcp.WithString("q", mcp.Description("Keyword search over event fields")),
		mcp.WithString("sort_order", mcp.Description("ASCENDING or DESCENDING (default ASCENDING)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of events per page")),
		mcp.WithString("after", mcp.Description("Pagination cursor from a previous page")),
	), s.handleListLogs)
}

func (s *Server) handleListLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.client.ListLogs(ctx, okta.LogParams{
		Since:     request.GetString("since", ""),
		Until:     request.GetString("until", ""),
		Filter:    request.GetString("filter", ""),
		Q:         request.GetString("q", ""),
		SortOrder: request.GetString("sort_order", ""),
		Limit:     request.GetInt("limit", 0),
		After:     request.GetString("after", ""),
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}
