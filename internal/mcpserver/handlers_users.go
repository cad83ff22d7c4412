package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerUserTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_users",
		mcp.WithDescription("List users in the Okta organization, with optional search or filter"),
		mcp.WithString("q", mcp.Description("Keyword search over first name, last name and email")),
		mcp.WithString("filter", mcp.Description("Filter expression, e.g. status eq \"ACTIVE\"")),
		mcp.WithString("search", mcp.Description("Search expression over any user property")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results per page")),
		mcp.WithString("after", mcp.Description("Pagination cursor from a previous page")),
	), s.handleListUsers)

	s.mcpServer.AddTool(mcp.NewTool("get_user",
		mcp.WithDescription("Fetch a single user by ID or login"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID or login")),
	), s.handleGetUser)

	s.mcpServer.AddTool(mcp.NewTool("create_user",
		mcp.WithDescription("Create a user from a profile document"),
		mcp.WithObject("profile", mcp.Required(), mcp.Description("User profile, e.g. {\"profile\": {\"firstName\": ..., \"email\": ...}}")),
		mcp.WithBoolean("activate", mcp.Description("Activate the user immediately (default true)")),
	), s.handleCreateUser)

	s.mcpServer.AddTool(mcp.NewTool("update_user",
		mcp.WithDescription("Apply a partial profile update to a user"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		mcp.WithObject("profile", mcp.Required(), mcp.Description("Partial user profile document")),
	), s.handleUpdateUser)

	s.mcpServer.AddTool(mcp.NewTool("activate_user",
		mcp.WithDescription("Activate a staged or deactivated user"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		mcp.WithBoolean("send_email", mcp.Description("Send the activation email (default true)")),
	), s.handleActivateUser)

	s.mcpServer.AddTool(mcp.NewTool("deactivate_user",
		mcp.WithDescription("Deactivate a user. Destructive: requires confirm=true"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleDeactivateUser)

	s.mcpServer.AddTool(mcp.NewTool("unlock_user",
		mcp.WithDescription("Unlock a locked-out user"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
	), s.handleUnlockUser)

	s.mcpServer.AddTool(mcp.NewTool("delete_user",
		mcp.WithDescription("Permanently delete a deactivated user. Destructive: requires confirm=true"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleDeleteUser)
}

func (s *Server) handleListUsers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.client.ListUsers(ctx, listParams(request))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}

func (s *Server) handleGetUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	user, err := s.client.GetUser(ctx, userID)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(user)
}

func (s *Server) handleCreateUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, errResult := rawBody(request, "profile")
	if errResult != nil {
		return errResult, nil
	}

	user, err := s.client.CreateUser(ctx, profile, request.GetBool("activate", true))
	if err != nil {
		return errorResult(err)
	}
	return rawResult(user)
}

func (s *Server) handleUpdateUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profile, errResult := rawBody(request, "profile")
	if errResult != nil {
		return errResult, nil
	}

	user, err := s.client.UpdateUser(ctx, userID, profile)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(user)
}

func (s *Server) handleActivateUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.client.ActivateUser(ctx, userID, request.GetBool("send_email", true))
	if err != nil {
		return errorResult(err)
	}
	return rawResult(result)
}

func (s *Server) handleDeactivateUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if refusal := confirmed(request, "deactivate user "+userID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.DeactivateUser(ctx, userID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("User " + userID + " deactivated."), nil
}

func (s *Server) handleUnlockUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.client.UnlockUser(ctx, userID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("User " + userID + " unlocked."), nil
}

func (s *Server) handleDeleteUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if refusal := confirmed(request, "permanently delete user "+userID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.DeleteUser(ctx, userID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("User " + userID + " deleted."), nil
}
