package okta

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ListApplications lists applications, optionally filtered.
func (c *Client) ListApplications(ctx context.Context, params ListParams) (*Page, error) {
	return c.list(ctx, "/apps", params.values())
}

// GetApplication fetches one application. expand optionally embeds related
// resources.
func (c *Client) GetApplication(ctx context.Context, appID, expand string) (json.RawMessage, error) {
	if err := ValidateID(appID, "application ID"); err != nil {
		return nil, err
	}
	query := url.Values{}
	if expand != "" {
		query.Set("expand", expand)
	}
	body, _, err := c.do(ctx, http.MethodGet, "/apps/"+appID, query, nil)
	return body, err
}

// CreateApplication creates an application from a raw configuration
// document. When activate is false the application is created inactive.
func (c *Client) CreateApplication(ctx context.Context, body json.RawMessage, activate bool) (json.RawMessage, error) {
	query := url.Values{}
	if !activate {
		query.Set("activate", "false")
	}
	return c.post(ctx, "/apps", query, body)
}

// UpdateApplication replaces an application's configuration.
func (c *Client) UpdateApplication(ctx context.Context, appID string, body json.RawMessage) (json.RawMessage, error) {
	if err := ValidateID(appID, "application ID"); err != nil {
		return nil, err
	}
	return c.put(ctx, "/apps/"+appID, body)
}

// ActivateApplication activates an inactive application.
func (c *Client) ActivateApplication(ctx context.Context, appID string) error {
	if err := ValidateID(appID, "application ID"); err != nil {
		return err
	}
	_, err := c.post(ctx, "/apps/"+appID+"/lifecycle/activate", nil, nil)
	return err
}

// DeactivateApplication deactivates an application. Required before delete.
func (c *Client) DeactivateApplication(ctx context.Context, appID string) error {
	if err := ValidateID(appID, "application ID"); err != nil {
		return err
	}
	_, err := c.post(ctx, "/apps/"+appID+"/lifecycle/deactivate", nil, nil)
	return err
}

// DeleteApplication permanently deletes an inactive application.
func (c *Client) DeleteApplication(ctx context.Context, appID string) error {
	if err := ValidateID(appID, "application ID"); err != nil {
		return err
	}
	return c.delete(ctx, "/apps/"+appID)
}
