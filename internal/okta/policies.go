package okta

import (
	"context"
	"encoding/json"
	"net/url"
)

// ListPolicies lists policies of the given type (e.g. OKTA_SIGN_ON,
// PASSWORD, MFA_ENROLL). The type parameter is required by the API.
func (c *Client) ListPolicies(ctx context.Context, policyType string, params ListParams) (*Page, error) {
	query := params.values()
	query.Set("type", policyType)
	return c.list(ctx, "/policies", query)
}

// GetPolicy fetches one policy.
func (c *Client) GetPolicy(ctx context.Context, policyID string) (json.RawMessage, error) {
	if err := ValidateID(policyID, "policy ID"); err != nil {
		return nil, err
	}
	return c.get(ctx, "/policies/"+policyID)
}

// CreatePolicy creates a policy from a raw policy document.
func (c *Client) CreatePolicy(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	return c.post(ctx, "/policies", nil, body)
}

// UpdatePolicy replaces a policy.
func (c *Client) UpdatePolicy(ctx context.Context, policyID string, body json.RawMessage) (json.RawMessage, error) {
	if err := ValidateID(policyID, "policy ID"); err != nil {
		return nil, err
	}
	return c.put(ctx, "/policies/"+policyID, body)
}

// DeletePolicy removes a policy.
func (c *Client) DeletePolicy(ctx context.Context, policyID string) error {
	if err := ValidateID(policyID, "policy ID"); err != nil {
		return err
	}
	return c.delete(ctx, "/policies/"+policyID)
}

// ActivatePolicy activates a policy.
func (c *Client) ActivatePolicy(ctx context.Context, policyID string) error {
	return c.policyLifecycle(ctx, policyID, "activate")
}

// DeactivatePolicy deactivates a policy.
func (c *Client) DeactivatePolicy(ctx context.Context, policyID string) error {
	return c.policyLifecycle(ctx, policyID, "deactivate")
}

func (c *Client) policyLifecycle(ctx context.Context, policyID, action string) error {
	if err := ValidateID(policyID, "policy ID"); err != nil {
		return err
	}
	_, err := c.post(ctx, "/policies/"+policyID+"/lifecycle/"+action, url.Values{}, nil)
	return err
}

// ListPolicyRules lists the rules of a policy.
func (c *Client) ListPolicyRules(ctx context.Context, policyID string) (*Page, error) {
	if err := ValidateID(policyID, "policy ID"); err != nil {
		return nil, err
	}
	return c.list(ctx, "/policies/"+policyID+"/rules", nil)
}

// GetPolicyRule fetches one rule of a policy.
func (c *Client) GetPolicyRule(ctx context.Context, policyID, ruleID string) (json.RawMessage, error) {
	if err := validatePolicyRuleIDs(policyID, ruleID); err != nil {
		return nil, err
	}
	return c.get(ctx, "/policies/"+policyID+"/rules/"+ruleID)
}

// CreatePolicyRule adds a rule to a policy.
func (c *Client) CreatePolicyRule(ctx context.Context, policyID string, body json.RawMessage) (json.RawMessage, error) {
	if err := ValidateID(policyID, "policy ID"); err != nil {
		return nil, err
	}
	return c.post(ctx, "/policies/"+policyID+"/rules", nil, body)
}

// UpdatePolicyRule replaces a rule of a policy.
func (c *Client) UpdatePolicyRule(ctx context.Context, policyID, ruleID string, body json.RawMessage) (json.RawMessage, error) {
	if err := validatePolicyRuleIDs(policyID, ruleID); err != nil {
		return nil, err
	}
	return c.put(ctx, "/policies/"+policyID+"/rules/"+ruleID, body)
}

// DeletePolicyRule removes a rule from a policy.
func (c *Client) DeletePolicyRule(ctx context.Context, policyID, ruleID string) error {
	if err := validatePolicyRuleIDs(policyID, ruleID); err != nil {
		return err
	}
	return c.delete(ctx, "/policies/"+policyID+"/rules/"+ruleID)
}

// ActivatePolicyRule activates a rule.
func (c *Client) ActivatePolicyRule(ctx context.Context, policyID, ruleID string) error {
	return c.policyRuleLifecycle(ctx, policyID, ruleID, "activate")
}

// DeactivatePolicyRule deactivates a rule.
func (c *Client) DeactivatePolicyRule(ctx context.Context, policyID, ruleID string) error {
	return c.policyRuleLifecycle(ctx, policyID, ruleID, "deactivate")
}

func (c *Client) policyRuleLifecycle(ctx context.Context, policyID, ruleID, action string) error {
	if err := validatePolicyRuleIDs(policyID, ruleID); err != nil {
		return err
	}
	_, err := c.post(ctx, "/policies/"+policyID+"/rules/"+ruleID+"/lifecycle/"+action, nil, nil)
	return err
}

func validatePolicyRuleIDs(policyID, ruleID string) error {
	if err := ValidateID(policyID, "policy ID"); err != nil {
		return err
	}
	return ValidateID(ruleID, "policy rule ID")
}
