package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGroupTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_groups",
		mcp.WithDescription("List groups in the Okta organization"),
		mcp.WithString("q", mcp.Description("Keyword search over group names")),
		mcp.WithString("filter", mcp.Description("Filter expression, e.g. type eq \"OKTA_GROUP\"")),
		mcp.WithString("search", mcp.Description("Search expression over any group property")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results per page")),
		mcp.WithString("after", mcp.Description("Pagination cursor from a previous page")),
	), s.handleListGroups)

	s.mcpServer.AddTool(mcp.NewTool("get_group",
		mcp.WithDescription("Fetch a single group by ID"),
		mcp.WithString("group_id", mcp.Required(), mcp.Description("Group ID")),
	), s.handleGetGroup)

	s.mcpServer.AddTool(mcp.NewTool("create_group",
		mcp.WithDescription("Create a group from a profile document"),
		mcp.WithObject("profile", mcp.Required(), mcp.Description("Group document, e.g. {\"profile\": {\"name\": ..., \"description\": ...}}")),
	), s.handleCreateGroup)

	s.mcpServer.AddTool(mcp.NewTool("update_group",
		mcp.WithDescription("Replace a group's profile"),
		mcp.WithString("group_id", mcp.Required(), mcp.Description("Group ID")),
		mcp.WithObject("profile", mcp.Required(), mcp.Description("Group document with the full replacement profile")),
	), s.handleUpdateGroup)

	s.mcpServer.AddTool(mcp.NewTool("delete_group",
		mcp.WithDescription("Delete a group. Destructive: requires confirm=true"),
		mcp.WithString("group_id", mcp.Required(), mcp.Description("Group ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleDeleteGroup)

	s.mcpServer.AddTool(mcp.NewTool("list_group_users",
		mcp.WithDescription("List the members of a group"),
		mcp.WithString("group_id", mcp.Required(), mcp.Description("Group ID")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results per page")),
		mcp.WithString("after", mcp.Description("Pagination cursor from a previous page")),
	), s.handleListGroupUsers)

	s.mcpServer.AddTool(mcp.NewTool("list_group_apps",
		mcp.WithDescription("List the applications assigned to a group"),
		mcp.WithString("group_id", mcp.Required(), mcp.Description("Group ID")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results per page")),
		mcp.WithString("after", mcp.Description("Pagination cursor from a previous page")),
	), s.handleListGroupApps)

	s.mcpServer.AddTool(mcp.NewTool("add_user_to_group",
		mcp.WithDescription("Add a user to a group"),
		mcp.WithString("group_id", mcp.Required(), mcp.Description("Group ID")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
	), s.handleAddUserToGroup)

	s.mcpServer.AddTool(mcp.NewTool("remove_user_from_group",
		mcp.WithDescription("Remove a user from a group. Destructive: requires confirm=true"),
		mcp.WithString("group_id", mcp.Required(), mcp.Description("Group ID")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleRemoveUserFromGroup)
}

func (s *Server) handleListGroups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.client.ListGroups(ctx, listParams(request))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}

func (s *Server) handleGetGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, err := request.RequireString("group_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	group, err := s.client.GetGroup(ctx, groupID)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(group)
}

func (s *Server) handleCreateGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, errResult := rawBody(request, "profile")
	if errResult != nil {
		return errResult, nil
	}

	group, err := s.client.CreateGroup(ctx, profile)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(group)
}

func (s *Server) handleUpdateGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, err := request.RequireString("group_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profile, errResult := rawBody(request, "profile")
	if errResult != nil {
		return errResult, nil
	}

	group, err := s.client.UpdateGroup(ctx, groupID, profile)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(group)
}

func (s *Server) handleDeleteGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, err := request.RequireString("group_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if refusal := confirmed(request, "delete group "+groupID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.DeleteGroup(ctx, groupID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Group " + groupID + " deleted."), nil
}

func (s *Server) handleListGroupUsers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, err := request.RequireString("group_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := s.client.ListGroupUsers(ctx, groupID, listParams(request))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}

func (s *Server) handleListGroupApps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, err := request.RequireString("group_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := s.client.ListGroupApps(ctx, groupID, listParams(request))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}

func (s *Server) handleAddUserToGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, err := request.RequireString("group_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.client.AddUserToGroup(ctx, groupID, userID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("User " + userID + " added to group " + groupID + "."), nil
}

func (s *Server) handleRemoveUserFromGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, err := request.RequireString("group_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if refusal := confirmed(request, "remove user "+userID+" from group "+groupID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.RemoveUserFromGroup(ctx, groupID, userID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("User " + userID + " removed from group " + groupID + "."), nil
}
