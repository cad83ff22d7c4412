package okta

import (
	"context"
	"encoding/json"
	"net/url"
)

// ListUsers lists users, optionally filtered by q/filter/search.
func (c *Client) ListUsers(ctx context.Context, params ListParams) (*Page, error) {
	return c.list(ctx, "/users", params.values())
}

// GetUser fetches one user by id or login.
func (c *Client) GetUser(ctx context.Context, userID string) (json.RawMessage, error) {
	if err := ValidateID(userID, "user ID"); err != nil {
		return nil, err
	}
	return c.get(ctx, "/users/"+userID)
}

// CreateUser creates a user from a raw profile document. When activate is
// true the user is activated immediately.
func (c *Client) CreateUser(ctx context.Context, body json.RawMessage, activate bool) (json.RawMessage, error) {
	query := url.Values{}
	if !activate {
		query.Set("activate", "false")
	}
	return c.post(ctx, "/users", query, body)
}

// UpdateUser applies a partial profile update.
func (c *Client) UpdateUser(ctx context.Context, userID string, body json.RawMessage) (json.RawMessage, error) {
	if err := ValidateID(userID, "user ID"); err != nil {
		return nil, err
	}
	return c.post(ctx, "/users/"+userID, nil, body)
}

// ActivateUser activates a staged or deactivated user.
func (c *Client) ActivateUser(ctx context.Context, userID string, sendEmail bool) (json.RawMessage, error) {
	if err := ValidateID(userID, "user ID"); err != nil {
		return nil, err
	}
	query := url.Values{}
	if !sendEmail {
		query.Set("sendEmail", "false")
	}
	return c.post(ctx, "/users/"+userID+"/lifecycle/activate", query, nil)
}

// DeactivateUser deactivates a user. Deactivation is the required first step
// before deletion.
func (c *Client) DeactivateUser(ctx context.Context, userID string) error {
	if err := ValidateID(userID, "user ID"); err != nil {
		return err
	}
	_, err := c.post(ctx, "/users/"+userID+"/lifecycle/deactivate", nil, nil)
	return err
}

// UnlockUser unlocks a locked-out user.
func (c *Client) UnlockUser(ctx context.Context, userID string) error {
	if err := ValidateID(userID, "user ID"); err != nil {
		return err
	}
	_, err := c.post(ctx, "/users/"+userID+"/lifecycle/unlock", nil, nil)
	return err
}

// DeleteUser permanently deletes a deactivated user. The API refuses to
// delete active users, so deactivation must happen first.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if err := ValidateID(userID, "user ID"); err != nil {
		return err
	}
	return c.delete(ctx, "/users/"+userID)
}
