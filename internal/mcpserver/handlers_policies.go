package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPolicyTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_policies",
		mcp.WithDescription("List policies of a given type"),
		mcp.WithString("type", mcp.Required(), mcp.Description("Policy type, e.g. OKTA_SIGN_ON, PASSWORD, MFA_ENROLL")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results per page")),
		mcp.WithString("after", mcp.Description("Pagination cursor from a previous page")),
	), s.handleListPolicies)

	s.mcpServer.AddTool(mcp.NewTool("get_policy",
		mcp.WithDescription("Fetch a single policy by ID"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
	), s.handleGetPolicy)

	s.mcpServer.AddTool(mcp.NewTool("create_policy",
		mcp.WithDescription("Create a policy from a document"),
		mcp.WithObject("policy", mcp.Required(), mcp.Description("Policy document with type, name and settings")),
	), s.handleCreatePolicy)

	s.mcpServer.AddTool(mcp.NewTool("update_policy",
		mcp.WithDescription("Replace a policy's definition"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
		mcp.WithObject("policy", mcp.Required(), mcp.Description("Full replacement policy document")),
	), s.handleUpdatePolicy)

	s.mcpServer.AddTool(mcp.NewTool("delete_policy",
		mcp.WithDescription("Delete a policy. Destructive: requires confirm=true"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleDeletePolicy)

	s.mcpServer.AddTool(mcp.NewTool("activate_policy",
		mcp.WithDescription("Activate an inactive policy"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
	), s.handleActivatePolicy)

	s.mcpServer.AddTool(mcp.NewTool("deactivate_policy",
		mcp.WithDescription("Deactivate a policy. Destructive: requires confirm=true"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleDeactivatePolicy)

	s.mcpServer.AddTool(mcp.NewTool("list_policy_rules",
		mcp.WithDescription("List the rules of a policy"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
	), s.handleListPolicyRules)

	s.mcpServer.AddTool(mcp.NewTool("get_policy_rule",
		mcp.WithDescription("Fetch a single policy rule"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
		mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID")),
	), s.handleGetPolicyRule)

	s.mcpServer.AddTool(mcp.NewTool("create_policy_rule",
		mcp.WithDescription("Create a rule under a policy"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
		mcp.WithObject("rule", mcp.Required(), mcp.Description("Rule document with name, conditions and actions")),
	), s.handleCreatePolicyRule)

	s.mcpServer.AddTool(mcp.NewTool("update_policy_rule",
		mcp.WithDescription("Replace a policy rule's definition"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
		mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID")),
		mcp.WithObject("rule", mcp.Required(), mcp.Description("Full replacement rule document")),
	), s.handleUpdatePolicyRule)

	s.mcpServer.AddTool(mcp.NewTool("delete_policy_rule",
		mcp.WithDescription("Delete a policy rule. Destructive: requires confirm=true"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
		mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleDeletePolicyRule)

	s.mcpServer.AddTool(mcp.NewTool("activate_policy_rule",
		mcp.WithDescription("Activate an inactive policy rule"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
		mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID")),
	), s.handleActivatePolicyRule)

	s.mcpServer.AddTool(mcp.NewTool("deactivate_policy_rule",
		mcp.WithDescription("Deactivate a policy rule. Destructive: requires confirm=true"),
		mcp.WithString("policy_id", mcp.Required(), mcp.Description("Policy ID")),
		mcp.WithString("rule_id", mcp.Required(), mcp.Description("Rule ID")),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to proceed")),
	), s.handleDeactivatePolicyRule)
}

func (s *Server) handleListPolicies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := s.client.ListPolicies(ctx, policyType, listParams(request))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}

func (s *Server) handleGetPolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	policy, err := s.client.GetPolicy(ctx, policyID)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(policy)
}

func (s *Server) handleCreatePolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, errResult := rawBody(request, "policy")
	if errResult != nil {
		return errResult, nil
	}

	policy, err := s.client.CreatePolicy(ctx, body)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(policy)
}

func (s *Server) handleUpdatePolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, errResult := rawBody(request, "policy")
	if errResult != nil {
		return errResult, nil
	}

	policy, err := s.client.UpdatePolicy(ctx, policyID, body)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(policy)
}

func (s *Server) handleDeletePolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if refusal := confirmed(request, "delete policy "+policyID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.DeletePolicy(ctx, policyID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Policy " + policyID + " deleted."), nil
}

func (s *Server) handleActivatePolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.client.ActivatePolicy(ctx, policyID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Policy " + policyID + " activated."), nil
}

func (s *Server) handleDeactivatePolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if refusal := confirmed(request, "deactivate policy "+policyID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.DeactivatePolicy(ctx, policyID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Policy " + policyID + " deactivated."), nil
}

func (s *Server) handleListPolicyRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := s.client.ListPolicyRules(ctx, policyID)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(page)
}

func (s *Server) handleGetPolicyRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, ruleID, errResult := rulePath(request)
	if errResult != nil {
		return errResult, nil
	}

	rule, err := s.client.GetPolicyRule(ctx, policyID, ruleID)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(rule)
}

func (s *Server) handleCreatePolicyRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, errResult := rawBody(request, "rule")
	if errResult != nil {
		return errResult, nil
	}

	rule, err := s.client.CreatePolicyRule(ctx, policyID, body)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(rule)
}

func (s *Server) handleUpdatePolicyRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, ruleID, errResult := rulePath(request)
	if errResult != nil {
		return errResult, nil
	}
	body, errResult := rawBody(request, "rule")
	if errResult != nil {
		return errResult, nil
	}

	rule, err := s.client.UpdatePolicyRule(ctx, policyID, ruleID, body)
	if err != nil {
		return errorResult(err)
	}
	return rawResult(rule)
}

func (s *Server) handleDeletePolicyRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, ruleID, errResult := rulePath(request)
	if errResult != nil {
		return errResult, nil
	}
	if refusal := confirmed(request, "delete rule "+ruleID+" of policy "+policyID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.DeletePolicyRule(ctx, policyID, ruleID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Rule " + ruleID + " of policy " + policyID + " deleted."), nil
}

func (s *Server) handleActivatePolicyRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, ruleID, errResult := rulePath(request)
	if errResult != nil {
		return errResult, nil
	}

	if err := s.client.ActivatePolicyRule(ctx, policyID, ruleID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Rule " + ruleID + " of policy " + policyID + " activated."), nil
}

func (s *Server) handleDeactivatePolicyRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policyID, ruleID, errResult := rulePath(request)
	if errResult != nil {
		return errResult, nil
	}
	if refusal := confirmed(request, "deactivate rule "+ruleID+" of policy "+policyID); refusal != nil {
		return refusal, nil
	}

	if err := s.client.DeactivatePolicyRule(ctx, policyID, ruleID); err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText("Rule " + ruleID + " of policy " + policyID + " deactivated."), nil
}

func rulePath(request mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	ruleID, err := request.RequireString("rule_id")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return policyID, ruleID, nil
}
