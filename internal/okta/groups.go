package okta

import (
	"context"
	"encoding/json"
)

// ListGroups lists groups, optionally filtered.
func (c *Client) ListGroups(ctx context.Context, params ListParams) (*Page, error) {
	return c.list(ctx, "/groups", params.values())
}

// GetGroup fetches one group.
func (c *Client) GetGroup(ctx context.Context, groupID string) (json.RawMessage, error) {
	if err := ValidateID(groupID, "group ID"); err != nil {
		return nil, err
	}
	return c.get(ctx, "/groups/"+groupID)
}

// CreateGroup creates a group from a raw profile document.
func (c *Client) CreateGroup(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	return c.post(ctx, "/groups", nil, body)
}

// UpdateGroup replaces a group's profile.
func (c *Client) UpdateGroup(ctx context.Context, groupID string, body json.RawMessage) (json.RawMessage, error) {
	if err := ValidateID(groupID, "group ID"); err != nil {
		return nil, err
	}
	return c.put(ctx, "/groups/"+groupID, body)
}

// DeleteGroup removes a group.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	if err := ValidateID(groupID, "group ID"); err != nil {
		return err
	}
	return c.delete(ctx, "/groups/"+groupID)
}

// ListGroupUsers lists the members of a group.
func (c *Client) ListGroupUsers(ctx context.Context, groupID string, params ListParams) (*Page, error) {
	if err := ValidateID(groupID, "group ID"); err != nil {
		return nil, err
	}
	return c.list(ctx, "/groups/"+groupID+"/users", params.values())
}

// ListGroupApps lists the applications assigned to a group.
func (c *Client) ListGroupApps(ctx context.Context, groupID string, params ListParams) (*Page, error) {
	if err := ValidateID(groupID, "group ID"); err != nil {
		return nil, err
	}
	return c.list(ctx, "/groups/"+groupID+"/apps", params.values())
}

// AddUserToGroup adds a user to a group's membership.
func (c *Client) AddUserToGroup(ctx context.Context, groupID, userID string) error {
	if err := ValidateID(groupID, "group ID"); err != nil {
		return err
	}
	if err := ValidateID(userID, "user ID"); err != nil {
		return err
	}
	_, err := c.put(ctx, "/groups/"+groupID+"/users/"+userID, nil)
	return err
}

// RemoveUserFromGroup removes a user from a group's membership.
func (c *Client) RemoveUserFromGroup(ctx context.Context, groupID, userID string) error {
	if err := ValidateID(groupID, "group ID"); err != nil {
		return err
	}
	if err := ValidateID(userID, "user ID"); err != nil {
		return err
	}
	return c.delete(ctx, "/groups/"+groupID+"/users/"+userID)
}
