package okta

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// ListProfileMappings lists profile mappings, optionally scoped to a source
// or target resource.
func (c *Client) ListProfileMappings(ctx context.Context, sourceID, targetID string, limit int, after string) (*Page, error) {
	query := url.Values{}
	if sourceID != "" {
		if err := ValidateID(sourceID, "source ID"); err != nil {
			return nil, err
		}
		query.Set("sourceId", sourceID)
	}
	if targetID != "" {
		if err := ValidateID(targetID, "target ID"); err != nil {
			return nil, err
		}
		query.Set("targetId", targetID)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if after != "" {
		query.Set("after", after)
	}
	return c.list(ctx, "/mappings", query)
}

// GetProfileMapping fetches one profile mapping.
func (c *Client) GetProfileMapping(ctx context.Context, mappingID string) (json.RawMessage, error) {
	if err := ValidateID(mappingID, "mapping ID"); err != nil {
		return nil, err
	}
	return c.get(ctx, "/mappings/"+mappingID)
}
