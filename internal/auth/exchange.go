package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultHTTPTimeout bounds each individual token endpoint request. It is
	// deliberately independent of the device session's overall expiry.
	DefaultHTTPTimeout = 30 * time.Second

	// defaultMaxAttempts caps retries for transient exchange failures.
	defaultMaxAttempts = 5

	// defaultBackoffBase is the initial delay for exponential backoff.
	defaultBackoffBase = 1 * time.Second
)

// Grant type and assertion type identifiers from RFC 6749, RFC 7523 and
// RFC 8628.
const (
	grantTypeDeviceCode        = "urn:ietf:params:oauth:grant-type:device_code"
	grantTypeRefreshToken      = "refresh_token"
	grantTypeClientCredentials = "client_credentials"
	clientAssertionType        = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
)

// Exchanger performs token endpoint exchanges for both authentication
// strategies and normalizes responses into TokenRecords.
//
// Thread-safe: yes, all state is read-only after construction.
type Exchanger struct {
	httpClient  *http.Client
	logger      *slog.Logger
	clock       Clock
	maxAttempts int
	backoffBase time.Duration
}

// ExchangerOption configures the Exchanger.
type ExchangerOption func(*Exchanger)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ExchangerOption {
	return func(e *Exchanger) {
		e.httpClient = httpClient
	}
}

// WithExchangeLogger sets a custom logger.
func WithExchangeLogger(logger *slog.Logger) ExchangerOption {
	return func(e *Exchanger) {
		e.logger = logger
	}
}

// WithExchangeClock sets the clock used for expiry calculation and backoff.
func WithExchangeClock(clock Clock) ExchangerOption {
	return func(e *Exchanger) {
		e.clock = clock
	}
}

// WithRetryPolicy overrides the transient-failure retry budget.
func WithRetryPolicy(maxAttempts int, backoffBase time.Duration) ExchangerOption {
	return func(e *Exchanger) {
		e.maxAttempts = maxAttempts
		e.backoffBase = backoffBase
	}
}

// NewExchanger creates a new token exchanger.
func NewExchanger(opts ...ExchangerOption) *Exchanger {
	e := &Exchanger{
		httpClient:  &http.Client{Timeout: DefaultHTTPTimeout},
		logger:      slog.Default(),
		clock:       NewClock(),
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// deviceAuthResponse is the device authorization endpoint's response shape.
type deviceAuthResponse struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

// RequestDeviceSession asks the authorization server for a fresh device/user
// code pair, starting a new device grant session.
func (e *Exchanger) RequestDeviceSession(ctx context.Context, id *ClientIdentity) (*DeviceSession, error) {
	form := url.Values{
		"client_id": {id.ClientID},
		"scope":     {id.ScopeString()},
	}

	body, err := e.postForm(ctx, id.DeviceAuthorizationEndpoint(), form)
	if err != nil {
		return nil, err
	}

	var resp deviceAuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("failed to parse device authorization response: %w", err)}
	}
	if resp.DeviceCode == "" {
		return nil, &ExchangeError{Err: errors.New("device authorization response carries no device code")}
	}

	interval := time.Duration(resp.Interval) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}

	now := e.clock.Now()
	session := &DeviceSession{
		DeviceCode:              resp.DeviceCode,
		UserCode:                resp.UserCode,
		VerificationURI:         resp.VerificationURI,
		VerificationURIComplete: resp.VerificationURIComplete,
		Interval:                interval,
		ExpiresAt:               now.Add(time.Duration(resp.ExpiresIn) * time.Second),
	}

	e.logger.Info("device authorization session started",
		"verification_uri", session.VerificationURI,
		"expires_in", resp.ExpiresIn,
		"interval", resp.Interval,
	)

	return session, nil
}

// ExchangeDeviceCode performs a single device-code poll against the token
// endpoint. Pacing and retries are the negotiator's responsibility, so no
// retry happens here.
func (e *Exchanger) ExchangeDeviceCode(ctx context.Context, id *ClientIdentity, deviceCode string) (*TokenRecord, error) {
	form := url.Values{
		"client_id":   {id.ClientID},
		"device_code": {deviceCode},
		"grant_type":  {grantTypeDeviceCode},
	}
	return e.doTokenRequest(ctx, id.TokenEndpoint(), form)
}

// ExchangeRefreshToken exchanges a cached refresh token for a new access
// token. Transient failures are retried with exponential backoff.
func (e *Exchanger) ExchangeRefreshToken(ctx context.Context, id *ClientIdentity, refreshToken string) (*TokenRecord, error) {
	return e.withRetry(ctx, func() (*TokenRecord, error) {
		form := url.Values{
			"client_id":     {id.ClientID},
			"grant_type":    {grantTypeRefreshToken},
			"refresh_token": {refreshToken},
		}
		return e.doTokenRequest(ctx, id.TokenEndpoint(), form)
	})
}

// ExchangeClientCredentials performs the browserless client credentials
// exchange. A fresh assertion is signed for every attempt; assertions are
// never reused, even on retry.
func (e *Exchanger) ExchangeClientCredentials(ctx context.Context, id *ClientIdentity) (*TokenRecord, error) {
	return e.withRetry(ctx, func() (*TokenRecord, error) {
		assertion, err := SignAssertion(id, e.clock.Now())
		if err != nil {
			return nil, err
		}

		form := url.Values{
			"grant_type":            {grantTypeClientCredentials},
			"scope":                 {id.ScopeString()},
			"client_assertion_type": {clientAssertionType},
			"client_assertion":      {assertion},
		}
		return e.doTokenRequest(ctx, id.TokenEndpoint(), form)
	})
}

// withRetry runs op up to the configured attempt budget, backing off
// exponentially on transient failures and honoring server-declared
// rate-limit delays. Terminal failures return immediately.
func (e *Exchanger) withRetry(ctx context.Context, op func() (*TokenRecord, error)) (*TokenRecord, error) {
	backoff := e.backoffBase
	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		record, err := op()
		if err == nil {
			return record, nil
		}
		lastErr = err

		var exchErr *ExchangeError
		if !errors.As(err, &exchErr) {
			// Signing failures and the like: fatal for this renewal attempt.
			return nil, err
		}

		var delay time.Duration
		switch {
		case exchErr.IsRateLimited():
			delay = exchErr.RetryAfter
			if delay <= 0 {
				delay = backoff
			}
		case exchErr.IsTransient():
			delay = backoff
			backoff *= 2
		default:
			return nil, err
		}

		if attempt == e.maxAttempts {
			break
		}

		e.logger.Debug("token exchange attempt failed, backing off",
			"attempt", attempt,
			"delay", delay.String(),
			"status", exchErr.Status,
		)

		if err := e.clock.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrRenewalFailed, lastErr)
}

// tokenResponse is the token endpoint's success response shape.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
}

// oauthErrorResponse is the token endpoint's error response shape.
type oauthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// doTokenRequest posts the form to the token endpoint and normalizes the
// response into a TokenRecord.
// SECURITY: token values are never logged; only statuses and error codes.
func (e *Exchanger) doTokenRequest(ctx context.Context, endpoint string, form url.Values) (*TokenRecord, error) {
	body, err := e.postForm(ctx, endpoint, form)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("failed to parse token response: %w", err)}
	}
	if resp.AccessToken == "" {
		return nil, &ExchangeError{Err: errors.New("token response carries no access token")}
	}

	now := e.clock.Now()
	record := &TokenRecord{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		RefreshToken: resp.RefreshToken,
		Scope:        resp.Scope,
		CreatedAt:    now,
	}
	if record.TokenType == "" {
		record.TokenType = "Bearer"
	}
	if resp.ExpiresIn > 0 {
		record.ExpiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	e.logger.Debug("token exchange succeeded",
		"expires_in", resp.ExpiresIn,
		"has_refresh_token", record.RefreshToken != "",
	)

	return record, nil
}

// postForm performs a form-encoded POST and returns the body for 2xx
// responses, or a classified ExchangeError otherwise.
func (e *Exchanger) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	exchErr := &ExchangeError{Status: resp.StatusCode}

	var oauthErr oauthErrorResponse
	if err := json.Unmarshal(body, &oauthErr); err == nil {
		exchErr.Code = oauthErr.Error
		exchErr.Description = oauthErr.ErrorDescription
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		exchErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), e.clock.Now())
	}

	e.logger.Debug("token endpoint returned an error",
		"status", resp.StatusCode,
		"code", exchErr.Code,
	)

	return nil, exchErr
}

// parseRetryAfter handles both the delta-seconds and HTTP-date forms of the
// Retry-After header.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
