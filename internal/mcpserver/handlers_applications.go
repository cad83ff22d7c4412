package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerApplicationTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_applications",
		mcp.WithDescription("List applications in the Okta organization"),
		mcp.WithString("q", mcp.Description("Keyword search over application names")),
		mcp.WithString("filter", mcp.Description("Filter expression, e.g. status eq \"ACTIVE\"")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results per page")),
		mcp.WithString("after", mcp.Description("Pagination cursor from a previous page")),
	), s.handleListApplications)

	s.mcpServer.AddTool(mcp.NewTool("get_application",
		mcp.WithDescription("Fetch a single application by ID"),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("Application ID")),
		mcp.WithString("expand", mcp.Description("Embedded resource to expand, e.g. user/{userId}")),
	), s.handleGetApplication)

	s.mcpServer.AddTool(mcp.NewTool("create_application",
		mcp.WithDescription("Create an application from a settings document"),
		mcp.WithObject("application", mcp.Required(), mcp.Description("Application document with name, label and settings")),
		mcp.WithBoolean("activate", mcp.Description("Activate the application immediately (default true)")),
	), s.handleCreateApplication)

	s.mcpServer.AddTool(mcp.NewTool("update_application",
		mcp.WithDescription("Replace an application's settings"),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("Application ID")),
		mcp.WithObject("application", mcp.Required(), mcp.Description("Full replacement application document")),
	), s.handleUpdateApplication)

	s.mcpServer.AddTool(mcp.NewTool("activate_application",
		mcp.WithDescription("Activate an inactive application"),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("Application ID")),
	), s.handleActivateApplication)

	s.mcpServer.AddTool(mcp.NewTool("deactivate_application",
		mcp.WithDescription("Deactivate an application. Destructive: requires confirm=true"),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("Application ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleDeactivateApplication)

	s.mcpServer.AddTool(mcp.NewTool("delete_application",
		mcp.WithDescription("Delete an inactive application. Destructive: requires confirm=true"),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("Application ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleDeleteApplication)
}

func (s *Server) handleListApplications(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.client.ListApplications(ctx, listParams(request))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}

func (s *Server) handleGetApplication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appID, err := request.RequireString("app_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	app, err := s.client.GetApplication(ctx, appID, request.GetString("expand", ""))
	if err != nil {
		return errorResult(err)
	}
	return rawResult(app)
}

func (s *Server) handleCreateApplication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, errResult := rawBody(request, "application")
	if errResult != nil {
		return errResult, nil
	}

	app, err := s.client.CreateApplication(ctx, body, request.GetBool("activate", true))
	if err != nil {
		return errorResult(err)
	}
	return rawResult(app)
}

func (s *Server) handleUpdateApplication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appID, err := request.RequireString("app_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, errResult := rawBody(request, "application")
	if errResult != nil {
		return errResult, nil
	}

	app, err := s.client.UpdateApplication(ctx, appID, body)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(app)
}

func (s *Server) handleActivateApplication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appID, err := request.RequireString("app_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.client.ActivateApplication(ctx, appID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Application " + appID + " activated."), nil
}

func (s *Server) handleDeactivateApplication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appID, err := request.RequireString("app_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if refusal := confirmed(request, "deactivate application "+appID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.DeactivateApplication(ctx, appID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Application " + appID + " deactivated."), nil
}

func (s *Server) handleDeleteApplication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appID, err := request.RequireString("app_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if refusal := confirmed(request, "delete application "+appID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.DeleteApplication(ctx, appID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Application " + appID + " deleted."), nil
}
