// Package okta is a thin client for the Okta administrative REST API. Every
// operation is a pass-through: parameters in, raw JSON out. The one job this
// package does beyond plumbing is attaching a valid bearer token to each
// request, which it delegates entirely to the auth manager.
package okta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"oktamcp/internal/auth"
	"oktamcp/pkg/logging"
)

const subsystem = "okta"

// apiTimeout bounds each admin API request.
const apiTimeout = 60 * time.Second

// Client issues authenticated requests against one org's admin API.
//
// Thread-safe: yes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	manager    *auth.Manager
	userAgent  string
}

// NewClient creates a client bound to the manager's identity. The bearer
// token rides in via the stock oauth2 transport over the manager's token
// source, so token renewal is invisible to callers.
func NewClient(manager *auth.Manager, version string) *Client {
	transport := &oauth2.Transport{
		Source: manager.TokenSource(context.Background()),
		Base:   http.DefaultTransport,
	}

	return &Client{
		baseURL:    manager.Identity().OrgURL + "/api/v1",
		httpClient: &http.Client{Transport: transport, Timeout: apiTimeout},
		manager:    manager,
		userAgent:  "okta-mcp-server/" + version,
	}
}

// APIError is an error envelope returned by the admin API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"errorCode"`
	Summary string `json:"errorSummary"`
}

func (e *APIError) Error() string {
	if e.Summary != "" {
		return fmt.Sprintf("okta api error %d (%s): %s", e.Status, e.Code, e.Summary)
	}
	return fmt.Sprintf("okta api error %d", e.Status)
}

// Page is the shape list operations return: the raw item array plus the
// cursor for the next page, when the API declared one.
type Page struct {
	Items      json.RawMessage `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// ListParams are the common query parameters of list endpoints.
type ListParams struct {
	Q      string
	Filter string
	Search string
	Limit  int
	After  string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Q != "" {
		v.Set("q", p.Q)
	}
	if p.Filter != "" {
		v.Set("filter", p.Filter)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.After != "" {
		v.Set("after", p.After)
	}
	return v
}

// do performs one API request and returns the body. A 401 means the token
// the manager handed out was revoked server-side; the cached record is
// invalidated so the next request renews.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		logging.Warn(subsystem, "API rejected the bearer token, invalidating cached credential")
		c.manager.Invalidate()
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return nil, nil, apiErr
	}

	logging.Debug(subsystem, "%s %s -> %d", method, path, resp.StatusCode)

	if len(respBody) == 0 {
		respBody = []byte(`{}`)
	}
	return respBody, resp.Header, nil
}

// list performs a GET and shapes the result into a page with the next cursor
// extracted from the Link header.
func (c *Client) list(ctx context.Context, path string, query url.Values) (*Page, error) {
	body, header, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return &Page{Items: body, NextCursor: nextCursor(header)}, nil
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	body, _, err := c.do(ctx, http.MethodGet, path, nil, nil)
	return body, err
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	respBody, _, err := c.do(ctx, http.MethodPost, path, query, body)
	return respBody, err
}

func (c *Client) put(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	respBody, _, err := c.do(ctx, http.MethodPut, path, nil, body)
	return respBody, err
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, _, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}
