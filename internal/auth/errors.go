package auth

import (
	"errors"
	"fmt"
	"time"
)

// ErrIncompletePrivateKeyMaterial indicates that exactly one of the private
// key / key id pair is configured, or that the key material does not parse.
// A half-configured browserless setup is treated as an operator error rather
// than silently degrading to the interactive device flow.
var ErrIncompletePrivateKeyMaterial = errors.New("incomplete private key material: both OKTA_PRIVATE_KEY and OKTA_KEY_ID must be set, and the key must be a valid PEM-encoded RSA or EC private key")

// ErrReauthenticationRequired is returned when the stored credential is gone
// for good: the operator must repeat the interactive flow (device grant) or
// fix the client credentials (private key JWT) before API calls can succeed.
var ErrReauthenticationRequired = errors.New("reauthentication required")

// ErrRenewalFailed is returned when token renewal exhausted its retry budget
// without a terminal rejection from the authorization server.
var ErrRenewalFailed = errors.New("token renewal failed")

// ConfigError is a fatal startup error caused by malformed or incomplete
// credential configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SigningError indicates the client assertion could not be signed. It is
// fatal for the current renewal attempt only; the next attempt re-signs with
// freshly re-validated key material.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("failed to sign client assertion: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// OAuth error codes returned by the token endpoint, per RFC 6749 and RFC 8628.
const (
	errCodeAuthorizationPending = "authorization_pending"
	errCodeSlowDown             = "slow_down"
	errCodeAccessDenied         = "access_denied"
	errCodeExpiredToken         = "expired_token"
	errCodeInvalidGrant         = "invalid_grant"
)

// ExchangeError represents a failed token endpoint exchange.
// The zero Code with a non-nil Err indicates a transport-level failure.
type ExchangeError struct {
	// Code is the OAuth error code from the response body, if any.
	Code string

	// Description is the server's error_description, if any.
	Description string

	// Status is the HTTP status code of the response (0 for network errors).
	Status int

	// RetryAfter is the server-declared delay before the next attempt,
	// populated for rate-limited responses.
	RetryAfter time.Duration

	// Err is the underlying transport error, if any.
	Err error
}

func (e *ExchangeError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	case e.Description != "":
		return fmt.Sprintf("token exchange failed: %s (%s)", e.Code, e.Description)
	case e.Code != "":
		return fmt.Sprintf("token exchange failed: %s", e.Code)
	default:
		return fmt.Sprintf("token exchange failed with status %d", e.Status)
	}
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// IsInvalidGrant reports whether the exchange was terminally rejected for the
// presented grant. For the device flow this forces a fresh negotiation; for
// private key JWT it means the assertion itself was rejected.
func (e *ExchangeError) IsInvalidGrant() bool {
	return e.Code == errCodeInvalidGrant
}

// IsRateLimited reports whether the server asked us to back off.
func (e *ExchangeError) IsRateLimited() bool {
	return e.Status == 429
}

// IsTransient reports whether the failure is worth retrying with backoff:
// network errors and server-side (5xx) failures.
func (e *ExchangeError) IsTransient() bool {
	return e.Err != nil || e.Status >= 500
}

// ErrDeviceAccessDenied is returned when the user explicitly denied the
// device grant authorization. Terminal; never retried automatically.
var ErrDeviceAccessDenied = errors.New("access denied by user")

// ErrDeviceSessionExpired is returned when the device grant session reached
// its absolute expiry before the user completed authorization. A new session
// must be requested to obtain a fresh user code.
var ErrDeviceSessionExpired = errors.New("device authorization session expired")
