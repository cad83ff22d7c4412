package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerMappingTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_profile_mappings",
		mcp.WithDescription("List profile mappings between apps and user types"),
		mcp.WithString("source_id", mcp.Description("Restrict to mappings from this source")),
		mcp.WithString("target_id", mcp.Description("Restrict to mappings onto this target")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results per page")),
		mcp.WithString("after", mcp.Description("Pagination cursor from a previous page")),
	), s.handleListProfileMappings)

	s.mcpServer.AddTool(mcp.NewTool("get_profile_mapping",
		mcp.WithDescription("Fetch a single profile mapping with its property mappings"),
		mcp.WithString("mapping_id", mcp.Required(), mcp.Description("Profile mapping ID")),
	), s.handleGetProfileMapping)
}

func (s *Server) handleListProfileMappings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.client.ListProfileMappings(ctx,
		request.GetString("source_id", ""),
		request.GetString("target_id", ""),
		request.GetInt("limit", 0),
		request.GetString("after", ""),
	)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}

func (s *Server) handleGetProfileMapping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mappingID, err := request.RequireString("mapping_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mapping, err := s.client.GetProfileMapping(ctx, mappingID)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(mapping)
}
