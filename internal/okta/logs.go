package okta

import (
	"context"
	"net/url"
	"strconv"
)

// LogParams are the query parameters of the system log endpoint.
type LogParams struct {
	// Since and Until bound the query window (ISO 8601 timestamps).
	Since string
	Until string

	// Filter is a SCIM filter expression; Q is a keyword search.
	Filter string
	Q      string

	// SortOrder is ASCENDING or DESCENDING.
	SortOrder string

	Limit int
	After string
}

// ListLogs queries the system log.
func (c *Client) ListLogs(ctx context.Context, params LogParams) (*Page, error) {
	query := url.Values{}
	if params.Since != "" {
		query.Set("since", params.Since)
	}
	if params.Until != "" {
		query.Set("until", params.Until)
	}
	if params.Filter != "" {
		query.Set("filter", params.Filter)
	}
	if params.Q != "" {
		query.Set("q", params.Q)
	}
	if params.SortOrder != "" {
		query.Set("sortOrder", params.SortOrder)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.After != "" {
		query.Set("after", params.After)
	}
	return c.list(ctx, "/logs", query)
}
